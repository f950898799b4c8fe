package database

import (
	"database/sql"
	"fmt"
	"time"

	"flight_tracker/internal/models"
)

type SightingRepository interface {
	InsertBatch(sightings []*models.Sighting) error
	ListByICAO(icao string, limit int) ([]*models.Sighting, error)
	CountSince(since time.Time) (int, error)
}

type sightingRepository struct {
	db *sql.DB
}

func NewSightingRepository(db *sql.DB) SightingRepository {
	return &sightingRepository{db: db}
}

// InsertBatch writes one or more sightings in a single transaction.
// Batching is preferred over individual inserts, especially on Raspberry Pi with SD card storage.
func (r *sightingRepository) InsertBatch(sightings []*models.Sighting) error {
	if len(sightings) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO sightings (
		session_id, icao, callsign, first_seen, last_seen, messages,
		latitude, longitude, altitude
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range sightings {
		if _, err := stmt.Exec(
			s.SessionID,
			s.ICAO,
			nullString(s.Callsign),
			s.FirstSeen.UTC(),
			s.LastSeen.UTC(),
			s.Messages,
			s.Latitude,
			s.Longitude,
			s.Altitude,
		); err != nil {
			return fmt.Errorf("failed to insert sighting: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByICAO returns the most recent sightings of one aircraft, newest first
func (r *sightingRepository) ListByICAO(icao string, limit int) ([]*models.Sighting, error) {
	rows, err := r.db.Query(`SELECT session_id, icao, callsign, first_seen, last_seen,
		messages, latitude, longitude, altitude
		FROM sightings WHERE icao = ? ORDER BY last_seen DESC LIMIT ?`, icao, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sightings: %w", err)
	}
	defer rows.Close()

	var sightings []*models.Sighting
	for rows.Next() {
		var (
			s        models.Sighting
			callsign sql.NullString
			lat, lon sql.NullFloat64
			alt      sql.NullInt64
		)
		if err := rows.Scan(&s.SessionID, &s.ICAO, &callsign, &s.FirstSeen, &s.LastSeen,
			&s.Messages, &lat, &lon, &alt); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		s.Callsign = callsign.String
		if lat.Valid && lon.Valid {
			s.Latitude = &lat.Float64
			s.Longitude = &lon.Float64
		}
		if alt.Valid {
			v := int(alt.Int64)
			s.Altitude = &v
		}
		sightings = append(sightings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sightings: %w", err)
	}

	return sightings, nil
}

// CountSince counts sightings that ended at or after since
func (r *sightingRepository) CountSince(since time.Time) (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sightings WHERE last_seen >= ?`, since.UTC()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sightings: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
