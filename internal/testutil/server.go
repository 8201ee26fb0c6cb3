// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/anragh/medialog/internal/api"
	"github.com/anragh/medialog/internal/config"
	"github.com/anragh/medialog/internal/core"
	"github.com/anragh/medialog/internal/websocket"
)

// SetupTestApp builds a core.App over an in-memory database.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	return core.NewWithDB(cfg, db)
}

// SetupTestServer initializes a full core.App and api.Server for
// integration testing, with a running event hub.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	app := core.NewWithDB(cfg, db)

	hub := websocket.NewHub()
	go hub.Run()

	server := api.NewServer(app, hub)
	return server, db
}
