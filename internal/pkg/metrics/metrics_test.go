package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.ReservationsTotal)
	assert.NotNil(t, m.DistributedLockDuration)
	assert.NotNil(t, m.ReservationTransitionsTotal)
	assert.NotNil(t, m.CacheRequestsTotal)
	assert.NotNil(t, m.CacheDegraded)
	assert.NotNil(t, m.NotificationsTotal)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/restaurants/:id/availability", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/restaurants/:id/reservations", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/restaurants/:id/reservations", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestRecordReservation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.RecordReservation("created")
	m.RecordReservation("created")
	m.RecordReservation("waitlisted")
	m.RecordReservation("conflict")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("waitlisted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("conflict")))
}

func TestRecordCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.RecordCache("availability", "miss")
	m.RecordCache("availability", "hit")
	m.RecordCache("availability", "hit")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("availability", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("availability", "miss")))
}

func TestSetCacheDegraded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.SetCacheDegraded(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheDegraded))

	m.SetCacheDegraded(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CacheDegraded))
}

func TestObserveLock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveLock("acquire", "success", time.Now().Add(-15*time.Millisecond))
	m.ObserveLock("release", "success", time.Now())

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "table_lock_duration_seconds" {
			found = true
			assert.Equal(t, 2, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "table_lock_duration_seconds metric not found")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// nil でもパニックしない
	assert.NotPanics(t, func() {
		m.RecordReservation("created")
		m.RecordTransition("confirmed")
		m.RecordCache("timeslots", "hit")
		m.SetCacheDegraded(true)
		m.ObserveLock("acquire", "success", time.Now())
		m.RecordNotification("confirmation", "sent")
	})
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)

	// 同じレジストリに二重登録するとパニック
	assert.Panics(t, func() {
		NewWithRegistry(reg)
	})
}
