package tasks

import (
	"context"
	"log/slog"
	"time"

	"flight_tracker/internal/metrics"
	"flight_tracker/internal/models"
)

// FlightUpdater is the write side of the tracker
type FlightUpdater interface {
	Update(r models.Report) error
}

// FeedIngest normalizes feed messages and hands them to the tracker. It is
// the single place where messages without identifier or generation time are
// filtered out, so the tracker never sees them.
type FeedIngest struct {
	tracker     FlightUpdater
	messageChan <-chan *models.SBSMessage
	metrics     *metrics.Registry
}

func NewFeedIngest(tracker FlightUpdater, messageChan <-chan *models.SBSMessage, m *metrics.Registry) *FeedIngest {
	return &FeedIngest{
		tracker:     tracker,
		messageChan: messageChan,
		metrics:     m,
	}
}

// Start consumes messages until the context is cancelled or the channel is closed
func (f *FeedIngest) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-f.messageChan:
			if !ok {
				slog.Info("Message channel closed")
				return nil
			}
			if msg == nil {
				continue
			}
			f.handle(msg)
		}
	}
}

func (f *FeedIngest) handle(msg *models.SBSMessage) {
	report, err := msg.Report()
	if err != nil {
		f.count(metrics.ReportRejected)
		slog.Debug("Dropping incomplete message",
			"hex_ident", msg.HexIdent,
			"kind", msg.Kind(),
			"error", err,
		)
		return
	}

	if err := f.tracker.Update(report); err != nil {
		f.count(metrics.ReportRejected)
		slog.Error("Tracker rejected report", "icao", report.ID, "error", err)
		return
	}
	f.count(metrics.ReportApplied)

	slog.Debug("Applied report",
		"icao", report.ID,
		"kind", msg.Kind(),
		"generated", report.Generated.Format(time.RFC3339Nano),
	)
}

func (f *FeedIngest) count(result string) {
	if f.metrics != nil {
		f.metrics.ReportsTotal.WithLabelValues(result).Inc()
	}
}
