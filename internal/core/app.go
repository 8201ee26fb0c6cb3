package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/anragh/medialog/internal/config"
	"github.com/anragh/medialog/internal/db"
)

// App holds the core components of the application. It is the composition
// root: the store handle lives here and is handed to repositories
// explicitly, never reached through package-level state.
type App struct {
	Config *config.Config
	db     *sql.DB
}

// New sets up and returns a new App instance. It handles loading the
// configuration, opening the database and migrating the schema. A migration
// failure is fatal: the app must not come up over a half-migrated store.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Core application setup complete.")
	return &App{
		Config: cfg,
		db:     database,
	}, nil
}

// NewWithDB wraps an already-opened, already-migrated handle. Used by tests
// that manage their own in-memory database.
func NewWithDB(cfg *config.Config, database *sql.DB) *App {
	return &App{Config: cfg, db: database}
}

// DB returns the shared database handle.
func (a *App) DB() *sql.DB {
	return a.db
}

// Close gracefully closes the application's resources, like the DB
// connection. A later New starts over cleanly.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}
