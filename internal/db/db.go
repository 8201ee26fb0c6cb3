// The db package owns the physical schema: opening the SQLite store,
// creating the current schema on fresh installs, and migrating older stores
// forward in place.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	// Import the sqlite3 driver. The blank import is used because we only
	// need the driver to be registered with database/sql.
	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the version every store is migrated up to. The persisted
// counter lives in SQLite's user_version pragma, not in a table row.
const SchemaVersion = 4

// Open opens the SQLite database at the specified path, enables foreign key
// enforcement and WAL journaling, and verifies the connection. It does not
// touch the schema; callers run Migrate before using the handle.
func Open(path string) (*sql.DB, error) {
	// foreign_keys and journal_mode are per-connection pragmas. Passing them
	// in the DSN makes the driver apply them to every connection the pool
	// opens; a plain Exec would only configure whichever connection it
	// happens to land on, leaving cascade deletes off everywhere else.
	// WAL lets readers proceed while the single writer commits. In-memory
	// databases report journal_mode=memory instead, which is fine.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_foreign_keys=on&_journal_mode=WAL"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate brings the store's schema up to SchemaVersion. Fresh stores
// (version 0) get the full current schema directly. Older stores run each
// pending step in ascending order; every step is idempotent-safe, runs in
// its own transaction, and the version is only stamped after all pending
// steps complete, so a failed run can simply be retried.
func Migrate(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case version == SchemaVersion:
		return nil
	case version > SchemaVersion:
		return fmt.Errorf("store schema version %d is newer than supported version %d", version, SchemaVersion)
	case version == 0:
		return createCurrentSchema(db)
	}

	for v := version + 1; v <= SchemaVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return fmt.Errorf("no migration step registered for version %d", v)
		}
		if err := runStep(db, step); err != nil {
			return fmt.Errorf("migration to version %d failed: %w", v, err)
		}
	}

	return stampVersion(db, SchemaVersion)
}

func runStep(db *sql.DB, step func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := step(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func userVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow("PRAGMA user_version;").Scan(&v)
	return v, err
}

func stampVersion(db *sql.DB, v int) error {
	// PRAGMA arguments cannot be bound as parameters.
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d;", v))
	if err != nil {
		return fmt.Errorf("failed to stamp schema version %d: %w", v, err)
	}
	return nil
}

// createCurrentSchema creates the full version-SchemaVersion schema in one
// transaction and stamps the version. Used only for fresh stores.
func createCurrentSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(currentSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return stampVersion(db, SchemaVersion)
}
