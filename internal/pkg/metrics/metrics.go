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

	// 申込の総数（outcome: admitted または拒否理由）
	RegistrationsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// ステータス再計算の結果（result: updated/unchanged/failed）
	StatusRefreshTotal *prometheus.CounterVec
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
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrations_total",
				Help: "Total number of registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		StatusRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_status_refresh_total",
				Help: "Total number of cached event status refreshes by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationsTotal,
		m.DistributedLockDuration,
		m.StatusRefreshTotal,
	)

	return m
}

// 申込結果のラベル
const OutcomeAdmitted = "admitted"

// ObserveRegistration は申込結果をカウントする
// outcome が空の場合は受付成功として扱う。Init 前は何もしない
func ObserveRegistration(outcome string) {
	if defaultMetrics == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeAdmitted
	}
	defaultMetrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLock は分散ロック操作の所要時間を記録する
func ObserveLock(operation string, ok bool, seconds float64) {
	if defaultMetrics == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failed"
	}
	defaultMetrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(seconds)
}

// ObserveStatusRefresh はステータス再計算の結果を加算する
func ObserveStatusRefresh(result string, n int) {
	if defaultMetrics == nil || n == 0 {
		return
	}
	defaultMetrics.StatusRefreshTotal.WithLabelValues(result).Add(float64(n))
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
