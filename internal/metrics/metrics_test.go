package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Independent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.ReportsTotal.WithLabelValues(ReportApplied).Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ReportsTotal.WithLabelValues(ReportApplied)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReportsTotal.WithLabelValues(ReportApplied)))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.TrackedAircraft.Set(3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "flight_tracker_aircraft_tracked 3"), body)
}
