package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"
	"flight_tracker/internal/tracker"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository is a simple mock implementation of database.SightingRepository
type mockRepository struct {
	sightings []*models.Sighting
	batches   int
	errors    []error
}

func (m *mockRepository) InsertBatch(sightings []*models.Sighting) error {
	m.batches++
	if len(m.errors) > 0 {
		err := m.errors[0]
		m.errors = m.errors[1:]
		return err
	}
	m.sightings = append(m.sightings, sightings...)
	return nil
}

func (m *mockRepository) ListByICAO(icao string, limit int) ([]*models.Sighting, error) {
	var out []*models.Sighting
	for _, s := range m.sightings {
		if s.ICAO == icao && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRepository) CountSince(since time.Time) (int, error) {
	n := 0
	for _, s := range m.sightings {
		if !s.LastSeen.Before(since) {
			n++
		}
	}
	return n, nil
}

func staleTracker(t *testing.T, now time.Time) *tracker.FlightTracker {
	t.Helper()
	tr := tracker.New(
		tracker.WithStaleAfter(time.Minute),
		tracker.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, tr.Update(models.Report{ID: "OLD001", Generated: now.Add(-5 * time.Minute), Callsign: "OLD1"}))
	require.NoError(t, tr.Update(positionReport("OLD002", now.Add(-2*time.Minute), 40.0, -75.0)))
	require.NoError(t, tr.Update(models.Report{ID: "NEW001", Generated: now.Add(-10 * time.Second)}))
	return tr
}

func TestEviction_RecordsSightings(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := staleTracker(t, now)
	repo := &mockRepository{}
	m := metrics.NewRegistry()

	task := NewEviction(tr, repo, m, 10*time.Second)
	n := 0
	task.sessionID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}

	assert.Equal(t, "eviction", task.Name())
	assert.Equal(t, 10*time.Second, task.Interval())

	require.NoError(t, task.Run(context.Background()))

	assert.Equal(t, 1, tr.Len())
	_, ok := tr.Get("NEW001")
	assert.True(t, ok)

	assert.Equal(t, 1, repo.batches)
	require.Len(t, repo.sightings, 2)
	byICAO := map[string]*models.Sighting{}
	for _, s := range repo.sightings {
		byICAO[s.ICAO] = s
		assert.NotEmpty(t, s.SessionID)
	}
	assert.Equal(t, "OLD1", byICAO["OLD001"].Callsign)
	require.NotNil(t, byICAO["OLD002"].Latitude)
	assert.Equal(t, 40.0, *byICAO["OLD002"].Latitude)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvictedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SightingsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrackedAircraft))

	// nothing left to evict
	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, 1, repo.batches)
}

func TestEviction_DefaultSessionIDsAreUnique(t *testing.T) {
	now := time.Now()
	tr := staleTracker(t, now)
	repo := &mockRepository{}

	require.NoError(t, NewEviction(tr, repo, nil, time.Second).Run(context.Background()))

	require.Len(t, repo.sightings, 2)
	assert.NotEqual(t, repo.sightings[0].SessionID, repo.sightings[1].SessionID)
}

func TestEviction_WithoutRepository(t *testing.T) {
	now := time.Now()
	tr := staleTracker(t, now)

	require.NoError(t, NewEviction(tr, nil, nil, time.Second).Run(context.Background()))
	assert.Equal(t, 1, tr.Len())
}

func TestEviction_InsertError(t *testing.T) {
	now := time.Now()
	tr := staleTracker(t, now)
	repo := &mockRepository{errors: []error{errors.New("disk full")}}
	m := metrics.NewRegistry()

	err := NewEviction(tr, repo, m, time.Second).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// eviction itself still happened
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvictedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SightingsRecorded))
}

func TestEviction_DisabledStaleness(t *testing.T) {
	tr := tracker.New()
	require.NoError(t, tr.Update(models.Report{ID: "OLD001", Generated: time.Now().Add(-time.Hour)}))
	repo := &mockRepository{}

	require.NoError(t, NewEviction(tr, repo, nil, time.Second).Run(context.Background()))
	assert.Equal(t, 1, tr.Len())
	assert.Zero(t, repo.batches)
}
