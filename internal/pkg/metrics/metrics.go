package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約リクエストの結果（status: created, waitlisted, conflict, rejected, error）
	ReservationsTotal *prometheus.CounterVec

	// テーブルロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 状態遷移の回数（transition: confirmed, cancelled, modified）
	ReservationTransitionsTotal *prometheus.CounterVec

	// キャッシュ参照の結果（kind: availability/timeslots/reservations, result: hit/miss/error）
	CacheRequestsTotal *prometheus.CounterVec

	// キャッシュがプロセス内フォールバックで動作中なら1
	CacheDegraded prometheus.Gauge

	// 通知送信の結果（kind, status: sent/failed）
	NotificationsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation attempts by outcome",
			},
			[]string{"status"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "table_lock_duration_seconds",
				Help:    "Time spent on per-table advisory lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ReservationTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_transitions_total",
				Help: "Total number of reservation lifecycle transitions",
			},
			[]string{"transition"},
		),
		CacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_requests_total",
				Help: "Read-through cache lookups by kind and result",
			},
			[]string{"kind", "result"},
		),
		CacheDegraded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cache_backend_degraded",
				Help: "1 when the process-local fallback cache is serving requests",
			},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Customer notifications dispatched by kind and status",
			},
			[]string{"kind", "status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.DistributedLockDuration,
		m.ReservationTransitionsTotal,
		m.CacheRequestsTotal,
		m.CacheDegraded,
		m.NotificationsTotal,
	)

	return m
}

// 以下のヘルパーは nil レシーバでも安全に呼べる（メトリクス無効時）

// RecordReservation は予約リクエストの結果を記録する
func (m *Metrics) RecordReservation(status string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
}

// RecordTransition は状態遷移を記録する
func (m *Metrics) RecordTransition(transition string) {
	if m == nil {
		return
	}
	m.ReservationTransitionsTotal.WithLabelValues(transition).Inc()
}

// RecordCache はキャッシュ参照の結果を記録する
func (m *Metrics) RecordCache(kind, result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(kind, result).Inc()
}

// SetCacheDegraded はキャッシュの劣化状態を記録する
func (m *Metrics) SetCacheDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.CacheDegraded.Set(1)
		return
	}
	m.CacheDegraded.Set(0)
}

// ObserveLock はロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation, status string, since time.Time) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(since).Seconds())
}

// RecordNotification は通知送信の結果を記録する
func (m *Metrics) RecordNotification(kind, status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind, status).Inc()
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
