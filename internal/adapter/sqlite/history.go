// Package sqlite stores water-level reading history in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS elevation_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		observed_at INTEGER NOT NULL,
		elevation_ft REAL NOT NULL,
		simulated INTEGER NOT NULL DEFAULT 0,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_elevation_readings_site_time
		ON elevation_readings(site, observed_at);
`

// HistoryStore persists elevation readings. Simulated readings are stored
// flagged so history views can tell them apart.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the database at path and ensures
// the schema exists. Use ":memory:" for an ephemeral store.
func OpenHistory(ctx context.Context, path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating elevation_readings table: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Record stores a reading. A second reading for the same site and time
// replaces the first.
func (s *HistoryStore) Record(ctx context.Context, r domain.ElevationReading) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO elevation_readings (site, observed_at, elevation_ft, simulated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(site, observed_at) DO UPDATE SET
			elevation_ft = excluded.elevation_ft,
			simulated = excluded.simulated`,
		r.Site, r.Timestamp.Unix(), r.Value, r.Simulated)
	if err != nil {
		return fmt.Errorf("recording reading: %w", err)
	}
	return nil
}

// Since returns readings observed at or after t, oldest first.
func (s *HistoryStore) Since(ctx context.Context, t time.Time) ([]domain.ElevationReading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT site, observed_at, elevation_ft, simulated
		FROM elevation_readings
		WHERE observed_at >= ?
		ORDER BY observed_at ASC`, t.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	readings := []domain.ElevationReading{}
	for rows.Next() {
		var (
			r        domain.ElevationReading
			observed int64
		)
		if err := rows.Scan(&r.Site, &observed, &r.Value, &r.Simulated); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		r.Timestamp = time.Unix(observed, 0).UTC()
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}

// Prune deletes readings observed before t and reports how many were removed.
func (s *HistoryStore) Prune(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM elevation_readings WHERE observed_at < ?`, t.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning readings: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
