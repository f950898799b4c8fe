package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcomes for ReportsTotal
const (
	ReportApplied  = "applied"
	ReportRejected = "rejected"
)

// Feed line outcomes for FeedLinesTotal
const (
	FeedParsed      = "parsed"
	FeedMalformed   = "malformed"
	FeedUnsupported = "unsupported"
)

// Registry holds the daemon's Prometheus metrics on a private registry so
// several instances (tests) never collide on the default one
type Registry struct {
	registry *prometheus.Registry

	// Tracker
	TrackedAircraft   prometheus.Gauge
	InRangeAircraft   prometheus.Gauge
	ReportsTotal      *prometheus.CounterVec
	EvictedTotal      prometheus.Counter
	SightingsRecorded prometheus.Counter

	// Feed
	FeedLinesTotal      *prometheus.CounterVec
	FeedReconnectsTotal prometheus.Counter
	FeedConnected       prometheus.Gauge
}

// NewRegistry creates and registers all metrics
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Registry{
		registry: reg,

		TrackedAircraft: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flight_tracker_aircraft_tracked",
			Help: "Number of aircraft currently tracked",
		}),
		InRangeAircraft: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flight_tracker_aircraft_in_range",
			Help: "Number of aircraft within the configured range of home",
		}),
		ReportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flight_tracker_reports_total",
				Help: "Normalized reports handed to the tracker by result",
			},
			[]string{"result"},
		),
		EvictedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "flight_tracker_aircraft_evicted_total",
			Help: "Aircraft removed by the staleness sweep",
		}),
		SightingsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "flight_tracker_sightings_recorded_total",
			Help: "Sighting summaries written to the database",
		}),

		FeedLinesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flight_tracker_feed_lines_total",
				Help: "SBS lines read from the feed by parse status",
			},
			[]string{"status"},
		),
		FeedReconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "flight_tracker_feed_reconnects_total",
			Help: "Failed connection attempts to the feed",
		}),
		FeedConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flight_tracker_feed_connected",
			Help: "1 while connected to the feed, 0 otherwise",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer returns the underlying registry, mostly for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
