package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約試行の総数（status: success, sold_out, capacity_exceeded, not_published, error）
	BookingsTotal *prometheus.CounterVec

	// チェックイン操作の総数（operation: checkin/undo, status: success/rejected/error）
	CheckinsTotal *prometheus.CounterVec

	// トランザクションのリトライ回数
	TxRetriesTotal prometheus.Counter

	// 確認メール送信の総数（status: sent/failed）
	ConfirmationMailsTotal *prometheus.CounterVec

	// 売り切れイベント数
	SoldOutEvents prometheus.Gauge
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
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking attempts",
			},
			[]string{"status"},
		),
		CheckinsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkins_total",
				Help: "Total number of check-in operations",
			},
			[]string{"operation", "status"},
		),
		TxRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "store_tx_retries_total",
				Help: "Total number of transaction retries after conflicts",
			},
		),
		ConfirmationMailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "confirmation_mails_total",
				Help: "Total number of booking confirmation mails",
			},
			[]string{"status"},
		),
		SoldOutEvents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sold_out_events",
				Help: "Current number of sold out events",
			},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.CheckinsTotal,
		m.TxRetriesTotal,
		m.ConfirmationMailsTotal,
		m.SoldOutEvents,
	)

	return m
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
