package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flight_tracker/internal/database"
	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"

	"github.com/google/uuid"
)

// Sweeper is the eviction side of the tracker
type Sweeper interface {
	Sweep() []models.AircraftRecord
	Len() int
}

// Eviction runs the tracker's staleness sweep on an interval and writes a
// sighting summary for every aircraft it removes
type Eviction struct {
	tracker   Sweeper
	sightings database.SightingRepository // optional
	metrics   *metrics.Registry
	interval  time.Duration
	sessionID func() string
}

func NewEviction(tracker Sweeper, sightings database.SightingRepository, m *metrics.Registry, interval time.Duration) *Eviction {
	return &Eviction{
		tracker:   tracker,
		sightings: sightings,
		metrics:   m,
		interval:  interval,
		sessionID: uuid.NewString,
	}
}

func (e *Eviction) Name() string            { return "eviction" }
func (e *Eviction) Interval() time.Duration { return e.interval }

func (e *Eviction) Run(ctx context.Context) error {
	evicted := e.tracker.Sweep()
	tracked := e.tracker.Len()

	if e.metrics != nil {
		e.metrics.TrackedAircraft.Set(float64(tracked))
		e.metrics.EvictedTotal.Add(float64(len(evicted)))
	}

	if len(evicted) == 0 {
		return nil
	}

	slog.Info("Evicted stale aircraft", "evicted", len(evicted), "tracked", tracked)

	if e.sightings == nil {
		return nil
	}

	batch := make([]*models.Sighting, 0, len(evicted))
	for _, rec := range evicted {
		slog.Debug("Recording sighting",
			"icao", rec.ID,
			"callsign", rec.Callsign,
			"messages", rec.Messages,
			"duration", rec.LastSeen.Sub(rec.FirstSeen),
		)
		batch = append(batch, models.NewSighting(e.sessionID(), rec))
	}

	if err := e.sightings.InsertBatch(batch); err != nil {
		return fmt.Errorf("failed to record %d sightings: %w", len(batch), err)
	}
	if e.metrics != nil {
		e.metrics.SightingsRecorded.Add(float64(len(batch)))
	}
	return nil
}
