// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Catalog struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"catalog"`
	Refresh struct {
		IntervalHours int `mapstructure:"interval_hours"`
	} `mapstructure:"refresh"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")
	viper.AddConfigPath(".") // looking for config in the current directory

	// Environment variable overrides with a "MEDIALOG_" prefix,
	// e.g. MEDIALOG_DATABASE_PATH overrides the `database.path` key.
	viper.SetEnvPrefix("MEDIALOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./medialog.db")
	viper.SetDefault("catalog.base_url", "https://itunes.apple.com")
	viper.SetDefault("refresh.interval_hours", 6)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
