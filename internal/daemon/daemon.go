package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flight_tracker/internal/api"
	"flight_tracker/internal/config"
	"flight_tracker/internal/database"
	"flight_tracker/internal/dump1090"
	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"
	"flight_tracker/internal/scheduler"
	"flight_tracker/internal/tasks"
	"flight_tracker/internal/tracker"

	"golang.org/x/sync/errgroup"
)

// messageBuffer is how many parsed feed lines may queue ahead of the tracker
const messageBuffer = 1000

// Daemon represents the main daemon structure
type Daemon struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cfg         *config.Config
	tracker     *tracker.FlightTracker
	metrics     *metrics.Registry
	scheduler   *scheduler.Scheduler
	database    *database.DB // nil when db_path is empty
	sbsClient   *dump1090.SBSClient
	ingest      *tasks.FeedIngest
	server      *api.Server // nil when http.addr is empty
	messageChan chan *models.SBSMessage

	startOnce sync.Once
	stopOnce  sync.Once
	err       error
	done      chan struct{}
}

// New creates a new daemon instance from the loaded configuration
func New(cfg *config.Config, opts ...dump1090.Option) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := metrics.NewRegistry()

	ft := tracker.New(tracker.WithStaleAfter(cfg.StaleAfter))

	var db *database.DB
	if cfg.DBPath != "" {
		var err error
		db, err = database.New(cfg.DBPath)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := loadRegistry(db.AircraftRepository(), cfg.Registry); err != nil {
			db.Close()
			cancel()
			return nil, err
		}
	} else {
		slog.Info("No db_path configured, sighting history and registry disabled")
	}

	// Create message channel for the SBS feed
	messageChan := make(chan *models.SBSMessage, messageBuffer)

	clientOpts := append([]dump1090.Option{dump1090.WithMetrics(m)}, opts...)
	sbsClient := dump1090.NewSBSClient(cfg.FeedAddr(), clientOpts...)

	ingest := tasks.NewFeedIngest(ft, messageChan, m)

	// Create scheduler
	sched := scheduler.New(ctx)
	sched.AddTask(tasks.NewCallsignReporter(ft, cfg.ReportInterval))

	rangeReporter := tasks.NewRangeReporter(ft, cfg.HomeLatitude, cfg.HomeLongitude, cfg.RangeRadiusMeters, cfg.ReportInterval).
		WithMetrics(m)

	var sightings database.SightingRepository
	deps := api.Dependencies{
		Tracker: ft,
		Home: api.Home{
			Latitude:     cfg.HomeLatitude,
			Longitude:    cfg.HomeLongitude,
			RadiusMeters: cfg.RangeRadiusMeters,
		},
		Metrics: m,
		UpSince: time.Now(),
	}
	if db != nil {
		sightings = db.SightingRepository()
		registry := db.AircraftRepository()
		rangeReporter.WithLookup(registry)
		deps.DB = db
		deps.Sightings = sightings
		deps.Registry = registry
	}
	sched.AddTask(rangeReporter)
	sched.AddTask(tasks.NewEviction(ft, sightings, m, cfg.SweepInterval))

	var server *api.Server
	if cfg.HTTP.Addr != "" {
		server = api.NewServer(cfg.HTTP.Addr, api.NewRouter(deps))
	}

	return &Daemon{
		ctx:         ctx,
		cancel:      cancel,
		cfg:         cfg,
		tracker:     ft,
		metrics:     m,
		scheduler:   sched,
		database:    db,
		sbsClient:   sbsClient,
		ingest:      ingest,
		server:      server,
		messageChan: messageChan,
		done:        make(chan struct{}),
	}, nil
}

// loadRegistry fills the aircraft table from CSV dumps the first time the
// database is created
func loadRegistry(repo database.AircraftRepository, cfg config.RegistryConfig) error {
	if len(cfg.CSVPaths) == 0 {
		return nil
	}

	populated, err := repo.IsTablePopulated()
	if err != nil {
		return fmt.Errorf("failed to check aircraft table: %w", err)
	}
	if populated {
		slog.Info("Aircraft table is already populated")
		return nil
	}

	slog.Info("Aircraft table is empty, loading from CSV files", "csv_paths", cfg.CSVPaths)
	start := time.Now()
	if err := repo.LoadFromMultipleCSV(cfg.CSVPaths, cfg.BatchSize); err != nil {
		return fmt.Errorf("failed to load aircraft from CSV: %w", err)
	}
	slog.Info("Successfully loaded aircraft database from CSV", "duration", time.Since(start))
	return nil
}

// Start launches the feed, ingest, HTTP server and scheduled tasks. The first
// long-lived component to fail stops the others; Done is closed when all have
// returned.
func (d *Daemon) Start() error {
	d.startOnce.Do(func() {
		slog.Info("Starting daemon",
			"feed_addr", d.cfg.FeedAddr(),
			"home", fmt.Sprintf("%.5f,%.5f", d.cfg.HomeLatitude, d.cfg.HomeLongitude),
			"radius_m", d.cfg.RangeRadiusMeters,
			"stale_after", d.cfg.StaleAfter,
		)

		g, ctx := errgroup.WithContext(d.ctx)

		g.Go(func() error {
			defer close(d.messageChan)
			return ignoreCancel(ctx, d.sbsClient.StreamMessages(ctx, d.messageChan))
		})

		g.Go(func() error {
			return ignoreCancel(ctx, d.ingest.Start(ctx))
		})

		if d.server != nil {
			g.Go(func() error {
				return d.server.Run(ctx)
			})
		}

		d.scheduler.Start()

		go func() {
			d.err = g.Wait()
			if d.err != nil {
				slog.Error("Daemon component failed", "error", d.err)
			}
			close(d.done)
		}()

		slog.Info("Daemon started successfully")
	})
	return nil
}

// Done is closed once every long-lived component has returned, either after
// Stop or because one of them failed
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Err returns the error that brought the daemon down, if any. Only valid
// after Done is closed.
func (d *Daemon) Err() error {
	return d.err
}

// Tracker exposes the live tracker, mostly for tests
func (d *Daemon) Tracker() *tracker.FlightTracker {
	return d.tracker
}

// Stop gracefully stops the daemon
func (d *Daemon) Stop() error {
	var err error
	d.stopOnce.Do(func() {
		slog.Info("Stopping daemon")
		d.cancel()
		d.startOnce.Do(func() { close(d.done) })
		<-d.done
		err = d.err

		d.scheduler.Stop()

		if closeErr := d.sbsClient.Close(); closeErr != nil {
			slog.Error("Error closing SBS client", "error", closeErr)
		}

		if d.database != nil {
			if closeErr := d.database.Close(); closeErr != nil {
				slog.Error("Error closing database", "error", closeErr)
			}
		}

		slog.Info("Daemon stopped", "tracked", d.tracker.Len())
	})
	return err
}

// ignoreCancel drops the error a component returns because the group is
// shutting down
func ignoreCancel(ctx context.Context, err error) error {
	if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		return nil
	}
	return err
}
