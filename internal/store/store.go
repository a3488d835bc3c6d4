// Package store keeps a log of recommendation runs and the playlists each run
// wrote. Profiles are never stored; every run learns from scratch.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const createQuery = `
CREATE TABLE IF NOT EXISTS Run (
  id TEXT PRIMARY KEY,
  started DATETIME NOT NULL,
  finished DATETIME,
  accounts INTEGER NOT NULL DEFAULT 0,
  errors INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Playlist (
  run TEXT NOT NULL,
  account TEXT NOT NULL,
  section TEXT NOT NULL,
  title TEXT NOT NULL,
  playlist_id TEXT,
  items INTEGER NOT NULL DEFAULT 0,
  error TEXT,
  FOREIGN KEY (run) REFERENCES Run(id),
  PRIMARY KEY (run, account, section)
);
`

func createTables(db *sql.DB) error {
	if _, err := db.Exec(createQuery); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// ensureSchema adds columns introduced after the first release.
func ensureSchema(db *sql.DB) error {
	if err := addColumnIfNotExists(db, "Run", "dry_run", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}
	if err := addColumnIfNotExists(db, "Run", "audience_profile", "TEXT"); err != nil {
		return err
	}
	return nil
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, tableName string, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    interface{}
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}
