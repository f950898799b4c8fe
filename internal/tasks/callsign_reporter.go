package tasks

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// CallsignSource lists the callsigns currently known to the tracker
type CallsignSource interface {
	Callsigns() []string
}

// CallsignReporter periodically lists callsigns and logs when one appears that
// was not present at the previous run. The previous snapshot is owned by the
// reporter instance.
type CallsignReporter struct {
	source   CallsignSource
	interval time.Duration
	previous map[string]struct{}
}

func NewCallsignReporter(source CallsignSource, interval time.Duration) *CallsignReporter {
	return &CallsignReporter{
		source:   source,
		interval: interval,
		previous: make(map[string]struct{}),
	}
}

func (r *CallsignReporter) Name() string            { return "callsign_reporter" }
func (r *CallsignReporter) Interval() time.Duration { return r.interval }

// Observe takes a new snapshot and returns the callsigns absent from the
// previous one, plus the full sorted, de-duplicated current list
func (r *CallsignReporter) Observe() (added []string, current []string) {
	snapshot := make(map[string]struct{})
	for _, cs := range r.source.Callsigns() {
		snapshot[cs] = struct{}{}
	}

	for cs := range snapshot {
		current = append(current, cs)
		if _, ok := r.previous[cs]; !ok {
			added = append(added, cs)
		}
	}
	sort.Strings(added)
	sort.Strings(current)

	r.previous = snapshot
	return added, current
}

func (r *CallsignReporter) Run(ctx context.Context) error {
	added, current := r.Observe()
	if len(added) == 0 {
		return nil
	}
	slog.Info("Callsigns: "+strings.Join(current, ","),
		"new", added,
		"count", len(current),
	)
	return nil
}
