package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlaylistRecord is what one run did for one account's section.
type PlaylistRecord struct {
	Account    string
	Section    string
	Title      string
	PlaylistID string
	Items      int
	Error      string
}

// StartRun records the start of a run and returns its id.
func (s *Store) StartRun(started time.Time, dryRun bool, audienceProfile string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO Run (id, started, dry_run, audience_profile) VALUES (?, ?, ?, ?)",
		id, started.UTC(), dryRun, audienceProfile)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// RecordPlaylists stores the outcome of every section of a run, in one
// transaction. Recording the same section twice keeps the latest outcome.
func (s *Store) RecordPlaylists(runID string, records []PlaylistRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO Playlist (run, account, section, title, playlist_id, items, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, r.Account, r.Section, r.Title, r.PlaylistID, r.Items, r.Error)
		if err != nil {
			return fmt.Errorf("inserting playlist %q for %q: %w", r.Title, r.Account, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FinishRun marks a run as complete.
func (s *Store) FinishRun(runID string, finished time.Time, accounts int, errors int) error {
	res, err := s.db.Exec(
		"UPDATE Run SET finished = ?, accounts = ?, errors = ? WHERE id = ?",
		finished.UTC(), accounts, errors, runID)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}
