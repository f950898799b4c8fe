package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the SQLite store for sighting history and the aircraft registry.
// It never holds live tracker state.
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Optimize SQLite for Raspberry Pi performance
	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// optimizeSQLite applies performance optimizations for Raspberry Pi
func optimizeSQLite(db *sql.DB) error {
	pragmas := []struct {
		stmt string
		desc string
	}{
		// WAL lets the HTTP surface read while a sweep writes
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		// 64MB page cache, RAM only
		{"PRAGMA cache_size=-64000", "set cache size"},
		{"PRAGMA synchronous=NORMAL", "set synchronous mode"},
		{"PRAGMA temp_store=MEMORY", "set temp_store"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			return fmt.Errorf("failed to %s: %w", p.desc, err)
		}
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks the connection, used by the health endpoint
func (d *DB) Ping() error {
	return d.db.Ping()
}

// SightingRepository returns the repository for sighting summaries
func (d *DB) SightingRepository() SightingRepository {
	return NewSightingRepository(d.db)
}

// AircraftRepository returns the repository for the aircraft registry
func (d *DB) AircraftRepository() AircraftRepository {
	return NewAircraftRepository(d.db)
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	sightingsSchema := `CREATE TABLE IF NOT EXISTS sightings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		icao TEXT NOT NULL,
		callsign TEXT,
		first_seen TIMESTAMP NOT NULL,
		last_seen TIMESTAMP NOT NULL,
		messages INTEGER NOT NULL,
		latitude REAL,
		longitude REAL,
		altitude INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	aircraftSchema := `CREATE TABLE IF NOT EXISTS aircraft (
		icao24 TEXT PRIMARY KEY,
		registration TEXT,
		typecode TEXT,
		manufacturerName TEXT,
		model TEXT,
		operator TEXT,
		operatorCallsign TEXT,
		operatorIcao TEXT,
		owner TEXT,
		country TEXT,
		built TEXT
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sightings_icao ON sightings(icao)`,
		`CREATE INDEX IF NOT EXISTS idx_sightings_last_seen ON sightings(last_seen)`,
		`CREATE INDEX IF NOT EXISTS idx_sightings_callsign ON sightings(callsign)`,
	}

	if _, err := d.db.Exec(sightingsSchema); err != nil {
		return fmt.Errorf("failed to create sightings table: %w", err)
	}

	if _, err := d.db.Exec(aircraftSchema); err != nil {
		return fmt.Errorf("failed to create aircraft table: %w", err)
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
