package store

import (
	"database/sql"
	"fmt"
	"time"
)

type Run struct {
	ID              string
	Started         time.Time
	Finished        time.Time
	DryRun          bool
	AudienceProfile string
	Accounts        int
	Errors          int
}

// Runs returns the most recent runs, newest first. A limit of 0 or less
// returns every run.
func (s *Store) Runs(limit int) ([]Run, error) {
	query := `SELECT id, started, finished, dry_run, audience_profile, accounts, errors
		FROM Run ORDER BY started DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		var profile sql.NullString
		if err := rows.Scan(&r.ID, &r.Started, &finished, &r.DryRun, &profile, &r.Accounts, &r.Errors); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Finished = finished.Time
		r.AudienceProfile = profile.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Playlists returns what a run recorded, ordered by account and section.
func (s *Store) Playlists(runID string) ([]PlaylistRecord, error) {
	rows, err := s.db.Query(`SELECT account, section, title, playlist_id, items, error
		FROM Playlist WHERE run = ? ORDER BY account, section`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying playlists of run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []PlaylistRecord
	for rows.Next() {
		var r PlaylistRecord
		var id, errText sql.NullString
		if err := rows.Scan(&r.Account, &r.Section, &r.Title, &id, &r.Items, &errText); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		r.PlaylistID = id.String
		r.Error = errText.String
		records = append(records, r)
	}
	return records, rows.Err()
}
