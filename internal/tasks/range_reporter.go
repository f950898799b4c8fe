package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"
)

// RangeSource answers point-radius queries
type RangeSource interface {
	InRange(lat, lon, radiusMeters float64) (map[string]models.AircraftRecord, error)
}

// AircraftLookup resolves static registry information for an ICAO address.
// A nil result with a nil error means the address is unknown.
type AircraftLookup interface {
	Lookup(icao string) (*models.AircraftInfo, error)
}

// RangeChange describes how the in-range set moved between two runs
type RangeChange struct {
	Entered []string
	Left    []string
	Current []string
}

// RangeReporter periodically queries the aircraft within radius of home and
// logs whenever the set of identifiers changes
type RangeReporter struct {
	source   RangeSource
	lookup   AircraftLookup // optional
	metrics  *metrics.Registry
	interval time.Duration
	lat      float64
	lon      float64
	radius   float64
	previous []string
}

func NewRangeReporter(source RangeSource, lat, lon, radiusMeters float64, interval time.Duration) *RangeReporter {
	return &RangeReporter{
		source:   source,
		interval: interval,
		lat:      lat,
		lon:      lon,
		radius:   radiusMeters,
	}
}

// WithLookup enriches notifications with registry information
func (r *RangeReporter) WithLookup(lookup AircraftLookup) *RangeReporter {
	r.lookup = lookup
	return r
}

// WithMetrics keeps the in-range gauge current
func (r *RangeReporter) WithMetrics(m *metrics.Registry) *RangeReporter {
	r.metrics = m
	return r
}

func (r *RangeReporter) Name() string            { return "range_reporter" }
func (r *RangeReporter) Interval() time.Duration { return r.interval }

// Observe queries the tracker and diffs the result against the previous run
func (r *RangeReporter) Observe() (RangeChange, bool, error) {
	inRange, err := r.source.InRange(r.lat, r.lon, r.radius)
	if err != nil {
		return RangeChange{}, false, fmt.Errorf("range query failed: %w", err)
	}

	current := make([]string, 0, len(inRange))
	for id := range inRange {
		current = append(current, id)
	}
	sort.Strings(current)

	if r.metrics != nil {
		r.metrics.InRangeAircraft.Set(float64(len(current)))
	}

	if slices.Equal(current, r.previous) {
		return RangeChange{Current: current}, false, nil
	}

	change := RangeChange{
		Entered: difference(current, r.previous),
		Left:    difference(r.previous, current),
		Current: current,
	}
	r.previous = current
	return change, true, nil
}

func (r *RangeReporter) Run(ctx context.Context) error {
	change, changed, err := r.Observe()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	for _, id := range change.Entered {
		slog.Info("Aircraft entered range", "icao", id, "aircraft", r.describe(id), "radius_m", r.radius)
	}
	for _, id := range change.Left {
		slog.Info("Aircraft left range", "icao", id)
	}
	slog.Info("In range: "+strings.Join(change.Current, ","), "count", len(change.Current))
	return nil
}

func (r *RangeReporter) describe(id string) string {
	if r.lookup == nil {
		return ""
	}
	info, err := r.lookup.Lookup(id)
	if err != nil {
		slog.Warn("Aircraft lookup failed", "icao", id, "error", err)
		return ""
	}
	return info.Describe()
}

// difference returns the elements of a not in b; both must be sorted
func difference(a, b []string) []string {
	var out []string
	for _, s := range a {
		if _, found := slices.BinarySearch(b, s); !found {
			out = append(out, s)
		}
	}
	return out
}
