package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// currentSchema is the full version-4 schema, applied as-is to fresh stores.
// Evolution is additive only: columns are never renamed or dropped, so the
// deprecated poster_url and creator columns from version 1 are still here.
const currentSchema = `
CREATE TABLE IF NOT EXISTS content_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	subtype TEXT,
	status TEXT NOT NULL DEFAULT 'todo',
	rating REAL,
	year INTEGER,
	external_id TEXT,
	link TEXT,
	poster_url TEXT,
	creator TEXT,
	images TEXT,
	author TEXT,
	word_count INTEGER,
	tags TEXT,
	hosts TEXT,
	episodes_count INTEGER,
	feed_url TEXT,
	directors TEXT,
	casts TEXT,
	genres TEXT,
	seasons_count INTEGER,
	current_season INTEGER,
	countries TEXT,
	performers TEXT,
	venue TEXT,
	duration_minutes INTEGER,
	date_added DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_content_items_status ON content_items(status);
CREATE INDEX IF NOT EXISTS idx_content_items_category ON content_items(category);

CREATE TABLE IF NOT EXISTS podcast_episodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	podcast_id INTEGER NOT NULL REFERENCES content_items(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	episode_number INTEGER,
	description TEXT,
	release_date DATETIME,
	duration_millis INTEGER
);
CREATE INDEX IF NOT EXISTS idx_podcast_episodes_podcast ON podcast_episodes(podcast_id);

CREATE TABLE IF NOT EXISTS consumption_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content_item_id INTEGER NOT NULL REFERENCES content_items(id) ON DELETE CASCADE,
	date_consumed DATETIME NOT NULL,
	rating REAL,
	notes TEXT,
	episode_id INTEGER REFERENCES podcast_episodes(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_consumption_records_item ON consumption_records(content_item_id);
`

// migrations maps a target version to the step that brings a version-(n-1)
// store to version n. Steps check for column and table existence before
// adding anything, so re-running a partially applied step is safe.
var migrations = map[int]func(tx *sql.Tx) error{
	2: migrateToV2,
	3: migrateToV3,
	4: migrateToV4,
}

// migrateToV2 adds the structured image set and the book detail columns.
// Version 1 stored a single poster_url and a generic creator column; the new
// columns are backfilled from them, keeping any value already present.
func migrateToV2(tx *sql.Tx) error {
	cols := []struct{ name, typ string }{
		{"images", "TEXT"},
		{"author", "TEXT"},
		{"word_count", "INTEGER"},
		{"tags", "TEXT"},
	}
	for _, c := range cols {
		if err := addColumn(tx, "content_items", c.name, c.typ); err != nil {
			return err
		}
	}

	if err := backfillImages(tx); err != nil {
		return err
	}

	// First non-null wins: an author set by hand beats the legacy creator.
	_, err := tx.Exec(`UPDATE content_items SET author = COALESCE(author, creator) WHERE category = 'book'`)
	return err
}

// migrateToV3 adds podcast support: the podcast detail columns, the episode
// table, and the optional episode link on consumption records.
func migrateToV3(tx *sql.Tx) error {
	cols := []struct{ name, typ string }{
		{"hosts", "TEXT"},
		{"episodes_count", "INTEGER"},
		{"feed_url", "TEXT"},
	}
	for _, c := range cols {
		if err := addColumn(tx, "content_items", c.name, c.typ); err != nil {
			return err
		}
	}

	exists, err := tableExists(tx, "podcast_episodes")
	if err != nil {
		return err
	}
	if !exists {
		_, err := tx.Exec(`
			CREATE TABLE podcast_episodes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				podcast_id INTEGER NOT NULL REFERENCES content_items(id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				episode_number INTEGER,
				description TEXT,
				release_date DATETIME,
				duration_millis INTEGER
			);
			CREATE INDEX idx_podcast_episodes_podcast ON podcast_episodes(podcast_id);
		`)
		if err != nil {
			return err
		}
	}

	return addColumn(tx, "consumption_records", "episode_id", "INTEGER REFERENCES podcast_episodes(id) ON DELETE SET NULL")
}

// migrateToV4 adds the TV/movie and drama detail columns.
func migrateToV4(tx *sql.Tx) error {
	cols := []struct{ name, typ string }{
		{"directors", "TEXT"},
		{"casts", "TEXT"},
		{"genres", "TEXT"},
		{"seasons_count", "INTEGER"},
		{"current_season", "INTEGER"},
		{"countries", "TEXT"},
		{"performers", "TEXT"},
		{"venue", "TEXT"},
		{"duration_minutes", "INTEGER"},
	}
	for _, c := range cols {
		if err := addColumn(tx, "content_items", c.name, c.typ); err != nil {
			return err
		}
	}

	_, err := tx.Exec(`UPDATE content_items
		SET directors = COALESCE(directors, CASE WHEN creator IS NOT NULL THEN json_array(creator) END)
		WHERE category IN ('tvmovie', 'drama')`)
	return err
}

// backfillImages wraps the deprecated poster_url into the medium slot of the
// new serialized image set, for rows that have no image set yet.
func backfillImages(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, poster_url FROM content_items WHERE images IS NULL AND poster_url IS NOT NULL`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type pending struct {
		id  int64
		url string
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.url); err != nil {
			return err
		}
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range todo {
		blob, err := json.Marshal(map[string]string{"medium": p.url})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE content_items SET images = ? WHERE id = ?`, string(blob), p.id); err != nil {
			return err
		}
	}
	return nil
}

// addColumn adds a nullable column if it is not already there.
func addColumn(tx *sql.Tx, table, column, typ string) error {
	exists, err := columnExists(tx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, typ))
	if err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func tableExists(tx *sql.Tx, table string) (bool, error) {
	var name string
	err := tx.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
