package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"
	"flight_tracker/internal/tracker"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRange struct{}

func (failingRange) InRange(lat, lon, radiusMeters float64) (map[string]models.AircraftRecord, error) {
	return nil, errors.New("query failed")
}

type mockLookup struct {
	info  map[string]*models.AircraftInfo
	calls []string
	err   error
}

func (m *mockLookup) Lookup(icao string) (*models.AircraftInfo, error) {
	m.calls = append(m.calls, icao)
	if m.err != nil {
		return nil, m.err
	}
	return m.info[icao], nil
}

func positionReport(id string, at time.Time, lat, lon float64) models.Report {
	return models.Report{
		ID:        id,
		Generated: at,
		Latitude:  models.Ptr(lat),
		Longitude: models.Ptr(lon),
	}
}

func TestRangeReporter_Observe(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := tracker.New()
	m := metrics.NewRegistry()

	reporter := NewRangeReporter(tr, 40.0, -75.0, 5000, time.Second).WithMetrics(m)
	assert.Equal(t, "range_reporter", reporter.Name())
	assert.Equal(t, time.Second, reporter.Interval())

	change, changed, err := reporter.Observe()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, change.Current)

	// 0.01 deg of latitude is roughly 1.1 km; 1 deg is far outside
	require.NoError(t, tr.Update(positionReport("AAAAAA", t0, 40.01, -75.0)))
	require.NoError(t, tr.Update(positionReport("BBBBBB", t0, 41.0, -75.0)))
	require.NoError(t, tr.Update(models.Report{ID: "CCCCCC", Generated: t0, Callsign: "NOPOS"}))

	change, changed, err = reporter.Observe()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"AAAAAA"}, change.Entered)
	assert.Empty(t, change.Left)
	assert.Equal(t, []string{"AAAAAA"}, change.Current)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InRangeAircraft))

	_, changed, err = reporter.Observe()
	require.NoError(t, err)
	assert.False(t, changed)

	// A moves out, B moves in
	require.NoError(t, tr.Update(positionReport("AAAAAA", t0.Add(time.Second), 42.0, -75.0)))
	require.NoError(t, tr.Update(positionReport("BBBBBB", t0.Add(time.Second), 40.0, -75.01)))

	change, changed, err = reporter.Observe()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"BBBBBB"}, change.Entered)
	assert.Equal(t, []string{"AAAAAA"}, change.Left)
	assert.Equal(t, []string{"BBBBBB"}, change.Current)
}

func TestRangeReporter_QueryError(t *testing.T) {
	reporter := NewRangeReporter(failingRange{}, 0, 0, 1000, time.Second)

	_, _, err := reporter.Observe()
	assert.Error(t, err)
	assert.Error(t, reporter.Run(context.Background()))
}

func TestRangeReporter_RunDescribesEnteredAircraft(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tr := tracker.New()
	require.NoError(t, tr.Update(positionReport("A1B2C3", t0, 40.0, -75.0)))
	require.NoError(t, tr.Update(positionReport("FFFFFF", t0, 40.0, -75.0)))

	lookup := &mockLookup{info: map[string]*models.AircraftInfo{
		"A1B2C3": {ICAO24: "A1B2C3", Registration: "N12345", TypeCode: "B738"},
	}}
	reporter := NewRangeReporter(tr, 40.0, -75.0, 1000, time.Second).WithLookup(lookup)

	require.NoError(t, reporter.Run(context.Background()))
	assert.Equal(t, []string{"A1B2C3", "FFFFFF"}, lookup.calls)

	// nothing changed, nothing looked up
	require.NoError(t, reporter.Run(context.Background()))
	assert.Len(t, lookup.calls, 2)
}

func TestRangeReporter_LookupErrorIsNotFatal(t *testing.T) {
	tr := tracker.New()
	require.NoError(t, tr.Update(positionReport("A1B2C3", time.Now(), 40.0, -75.0)))

	reporter := NewRangeReporter(tr, 40.0, -75.0, 1000, time.Second).
		WithLookup(&mockLookup{err: errors.New("db locked")})

	assert.NoError(t, reporter.Run(context.Background()))
}

func TestDifference(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want []string
	}{
		{name: "both empty"},
		{name: "nothing removed", a: []string{"A", "B"}, want: []string{"A", "B"}},
		{name: "all removed", a: []string{"A", "B"}, b: []string{"A", "B"}},
		{name: "partial", a: []string{"A", "B", "C"}, b: []string{"B"}, want: []string{"A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, difference(tt.a, tt.b))
		})
	}
}
