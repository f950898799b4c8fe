package tracker

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"flight_tracker/internal/geo"
	"flight_tracker/internal/models"
)

var (
	// ErrInvalidRadius is returned for a negative or non-finite range radius
	ErrInvalidRadius = errors.New("radius must be a finite, non-negative number of meters")
	// ErrInvalidCoordinate is returned for a query centre outside WGS84 bounds
	ErrInvalidCoordinate = errors.New("invalid center coordinate")
)

// FlightTracker owns the live set of aircraft keyed by transponder identifier.
// A single lock guards the whole map: updates and sweeps take it exclusively,
// queries share it for a full pass. Callers only ever get copies.
type FlightTracker struct {
	mu         sync.RWMutex
	flights    map[string]*models.AircraftRecord
	staleAfter time.Duration
	now        func() time.Time
}

// Option configures a FlightTracker
type Option func(*FlightTracker)

// WithClock overrides the clock used by Sweep
func WithClock(now func() time.Time) Option {
	return func(t *FlightTracker) {
		t.now = now
	}
}

// WithStaleAfter sets how long an aircraft may go unheard before Sweep evicts
// it. Zero disables age-based eviction.
func WithStaleAfter(d time.Duration) Option {
	return func(t *FlightTracker) {
		t.staleAfter = d
	}
}

// New creates an empty tracker
func New(opts ...Option) *FlightTracker {
	t := &FlightTracker{
		flights: make(map[string]*models.AircraftRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update merges a normalized report into the tracked picture.
//
// An unseen identifier creates a record seeded from the report. Otherwise
// fields present in the report overwrite the record's and absent ones are left
// alone. A report generated strictly before the record's LastSeen is out of
// order: it never moves LastSeen back and never overwrites a populated field,
// it only fills fields that are still unknown. Equal timestamps count as in
// order, so re-applying a report leaves the record exactly as it was. Messages
// counts only reports that changed the record or advanced LastSeen.
//
// A report without identifier or timestamp is a caller bug; it is rejected
// without touching state.
func (t *FlightTracker) Update(r models.Report) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("update rejected: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.flights[r.ID]
	if !ok {
		t.flights[r.ID] = models.NewAircraftRecord(r)
		return nil
	}

	if r.Generated.Before(rec.LastSeen) {
		if rec.FillAbsent(r) {
			rec.Messages++
		}
		return nil
	}

	changed := rec.Merge(r)
	if changed || r.Generated.After(rec.LastSeen) {
		rec.Messages++
	}
	rec.LastSeen = r.Generated
	return nil
}

// Callsigns returns the callsign of every record that has one. The result is
// derived per record: two identifiers sharing a callsign yield two entries.
// Order is unspecified.
func (t *FlightTracker) Callsigns() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	callsigns := make([]string, 0, len(t.flights))
	for _, rec := range t.flights {
		if rec.Callsign != "" {
			callsigns = append(callsigns, rec.Callsign)
		}
	}
	return callsigns
}

// InRange returns copies of the records whose last known position lies within
// radiusMeters (inclusive) of the centre, by great-circle distance. Records
// without a position are never in range.
func (t *FlightTracker) InRange(lat, lon, radiusMeters float64) (map[string]models.AircraftRecord, error) {
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radiusMeters)
	}
	if !geo.ValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: %v,%v", ErrInvalidCoordinate, lat, lon)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	inRange := make(map[string]models.AircraftRecord)
	for id, rec := range t.flights {
		if !rec.HasPosition() {
			continue
		}
		if geo.DistanceMeters(lat, lon, *rec.Latitude, *rec.Longitude) <= radiusMeters {
			inRange[id] = rec.Clone()
		}
	}
	return inRange, nil
}

// Get returns a copy of the record for id
func (t *FlightTracker) Get(id string) (models.AircraftRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.flights[id]
	if !ok {
		return models.AircraftRecord{}, false
	}
	return rec.Clone(), true
}

// Snapshot returns copies of all tracked records in unspecified order
func (t *FlightTracker) Snapshot() []models.AircraftRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records := make([]models.AircraftRecord, 0, len(t.flights))
	for _, rec := range t.flights {
		records = append(records, rec.Clone())
	}
	return records
}

// Len returns the number of tracked aircraft
func (t *FlightTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.flights)
}

// Evict removes every record last seen strictly before olderThan and returns
// copies of what was removed
func (t *FlightTracker) Evict(olderThan time.Time) []models.AircraftRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var evicted []models.AircraftRecord
	for id, rec := range t.flights {
		if rec.LastSeen.Before(olderThan) {
			evicted = append(evicted, rec.Clone())
			delete(t.flights, id)
		}
	}
	return evicted
}

// Sweep evicts aircraft not heard from within the staleness window. It is a
// no-op when no window is configured.
func (t *FlightTracker) Sweep() []models.AircraftRecord {
	if t.staleAfter <= 0 {
		return nil
	}
	return t.Evict(t.now().Add(-t.staleAfter))
}
