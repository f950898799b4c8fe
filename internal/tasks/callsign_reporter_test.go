package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCallsigns struct {
	callsigns []string
}

func (s *staticCallsigns) Callsigns() []string {
	return s.callsigns
}

func TestCallsignReporter_Observe(t *testing.T) {
	source := &staticCallsigns{}
	reporter := NewCallsignReporter(source, time.Second)

	assert.Equal(t, "callsign_reporter", reporter.Name())
	assert.Equal(t, time.Second, reporter.Interval())

	steps := []struct {
		name        string
		callsigns   []string
		wantAdded   []string
		wantCurrent []string
	}{
		{
			name: "empty tracker",
		},
		{
			name:        "first callsigns",
			callsigns:   []string{"UAL123", "DAL45"},
			wantAdded:   []string{"DAL45", "UAL123"},
			wantCurrent: []string{"DAL45", "UAL123"},
		},
		{
			name:        "unchanged",
			callsigns:   []string{"DAL45", "UAL123"},
			wantCurrent: []string{"DAL45", "UAL123"},
		},
		{
			name:        "one new one gone",
			callsigns:   []string{"UAL123", "SWA9"},
			wantAdded:   []string{"SWA9"},
			wantCurrent: []string{"SWA9", "UAL123"},
		},
		{
			name:        "duplicates collapse",
			callsigns:   []string{"SWA9", "SWA9", "UAL123"},
			wantCurrent: []string{"SWA9", "UAL123"},
		},
		{
			name:        "returning callsign is new again",
			callsigns:   []string{"DAL45", "SWA9", "UAL123"},
			wantAdded:   []string{"DAL45"},
			wantCurrent: []string{"DAL45", "SWA9", "UAL123"},
		},
	}

	for _, step := range steps {
		source.callsigns = step.callsigns
		added, current := reporter.Observe()
		assert.Equal(t, step.wantAdded, added, step.name)
		assert.Equal(t, step.wantCurrent, current, step.name)
	}
}

func TestCallsignReporter_Run(t *testing.T) {
	source := &staticCallsigns{callsigns: []string{"UAL123"}}
	reporter := NewCallsignReporter(source, time.Second)

	require.NoError(t, reporter.Run(context.Background()))
	require.NoError(t, reporter.Run(context.Background()))

	added, _ := reporter.Observe()
	assert.Empty(t, added)
}

func TestCallsignReporter_IndependentInstances(t *testing.T) {
	source := &staticCallsigns{callsigns: []string{"UAL123"}}
	first := NewCallsignReporter(source, time.Second)
	second := NewCallsignReporter(source, time.Second)

	added, _ := first.Observe()
	assert.Equal(t, []string{"UAL123"}, added)

	// the second reporter has its own snapshot
	added, _ = second.Observe()
	assert.Equal(t, []string{"UAL123"}, added)
}
