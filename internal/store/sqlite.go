package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBName is the SQLite database inside the data directory.
const DBName = "history.db"

// SQLite stores one row per entry, ordered by position.
type SQLite struct {
	path string
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database in dir and initializes
// the schema.
func OpenSQLite(dir string) (*SQLite, error) {
	path := filepath.Join(dir, DBName)

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &SQLite{path: path, conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *SQLite) initSchema() error {
	_, err := db.conn.Exec(`
	CREATE TABLE IF NOT EXISTS entries (
		position INTEGER PRIMARY KEY,
		text     TEXT NOT NULL UNIQUE
	);`)
	return err
}

func (db *SQLite) Location() string { return db.path }

func (db *SQLite) Close() error { return db.conn.Close() }

func (db *SQLite) Load() ([]string, error) {
	rows, err := db.conn.Query(`SELECT text FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		entries = append(entries, text)
	}
	return entries, rows.Err()
}

// Save replaces the table contents in one transaction.
func (db *SQLite) Save(entries []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO entries (position, text) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(i, e); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}
