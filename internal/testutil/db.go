package testutil

import (
	"database/sql"
	"testing"

	"github.com/anragh/medialog/internal/db"
)

// SetupTestDB creates an in-memory SQLite database with the full current
// schema applied. It returns the database connection, ready for use in tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory databases keep tests fast and isolated.
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Each new connection to :memory: would see its own empty database, so
	// pin the pool to a single connection.
	database.SetMaxOpenConns(1)

	// Attach a cleanup function to automatically close the DB when the test completes.
	t.Cleanup(func() {
		database.Close()
	})

	if err := db.Migrate(database); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return database
}
