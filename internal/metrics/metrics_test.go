package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	m := New()
	m.Operation("create_booking", "ok")
	m.Operation("create_booking", "ok")
	m.Operation("create_booking", "seat_unavailable")
	m.ObserveSave(20 * time.Millisecond)
	m.SetActiveBookings(3)
	m.EventPublished(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("create_booking", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create_booking", "seat_unavailable")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.bookings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "cinema_operations_total")
	assert.Contains(t, string(body), "cinema_snapshot_save_seconds_count 1")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Operation("x", "ok")
		m.ObserveSave(time.Second)
		m.SetActiveBookings(1)
		m.EventPublished(true)
	})
}
