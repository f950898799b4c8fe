package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Tracker is the read side of the flight tracker
type Tracker interface {
	Snapshot() []models.AircraftRecord
	Get(id string) (models.AircraftRecord, bool)
	Callsigns() []string
	InRange(lat, lon, radiusMeters float64) (map[string]models.AircraftRecord, error)
	Len() int
}

// Pinger is satisfied by the database handle
type Pinger interface {
	Ping() error
}

// SightingHistory reads recorded sightings
type SightingHistory interface {
	ListByICAO(icao string, limit int) ([]*models.Sighting, error)
	CountSince(since time.Time) (int, error)
}

// AircraftLookup resolves registry information; nil, nil means unknown
type AircraftLookup interface {
	Lookup(icao string) (*models.AircraftInfo, error)
}

// Home is the default centre for range queries
type Home struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Dependencies are what the handlers read from. Only Tracker is required.
type Dependencies struct {
	Tracker   Tracker
	Home      Home
	Metrics   *metrics.Registry
	DB        Pinger
	Sightings SightingHistory
	Registry  AircraftLookup
	UpSince   time.Time
}

// NewRouter builds the chi router for the status API
func NewRouter(deps Dependencies) http.Handler {
	if deps.UpSince.IsZero() {
		deps.UpSince = time.Now()
	}
	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", h.health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/callsigns", h.callsigns)
		r.Route("/aircraft", func(r chi.Router) {
			r.Get("/", h.listAircraft)
			r.Get("/in-range", h.inRange)
			r.Get("/{id}", h.getAircraft)
			r.Get("/{id}/sightings", h.sightings)
		})
	})

	return r
}

// requestLogger logs each request at debug through slog
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Server runs the status API until its context is cancelled
type Server struct {
	srv *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("HTTP server stopped")
	return nil
}
