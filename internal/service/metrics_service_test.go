package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveBackendCall("events", 20*time.Millisecond, nil)
	m.ObserveBackendCall("events", 40*time.Millisecond, errors.New("boom"))
	m.ObserveExport("csv", 1024, time.Second, nil)
	m.ObserveExport("ics", 0, time.Second, errors.New("boom"))

	snap := m.Snapshot()
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(2), snap.BackendCalls)
	assert.Equal(t, uint64(1), snap.BackendFailures)
	assert.InDelta(t, 30.0, snap.AverageBackendDurationMs, 0.001)
	assert.Equal(t, uint64(1), snap.ExportsGenerated)
	assert.Equal(t, uint64(1), snap.ExportsFailed)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.exportsTotal.WithLabelValues("csv", outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exportsTotal.WithLabelValues("ics", outcomeError)))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/calendar/events", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	var nilMetrics *MetricsService
	w = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
