// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層、ワーカー、ミドルウェアから利用する。
type MetricsCollector interface {
	RecordWebhookEvent(eventType, outcome string)
	RecordVisibilityTransition(requested, outcome string)
	RecordReconcileSuspended(count int64)
	RecordReconcileLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	webhookEvents        *prometheus.CounterVec
	visibilityTransition *prometheus.CounterVec
	reconcileSuspended   prometheus.Counter
	reconcileLatency     prometheus.Histogram
	httpStatus           *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pianoclass_webhook_events_total",
			Help: "決済Webhookイベントの処理結果別の合計数",
		}, []string{"type", "outcome"}),
		visibilityTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pianoclass_visibility_transitions_total",
			Help: "教室の公開状態変更リクエストの結果別の合計数",
		}, []string{"requested", "outcome"}),
		reconcileSuspended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pianoclass_reconcile_suspended_total",
			Help: "掲載権の失効により非公開化された教室の合計数",
		}),
		reconcileLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pianoclass_reconcile_duration_seconds",
			Help:    "掲載状態の整合ジョブの実行時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pianoclass_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.webhookEvents,
		c.visibilityTransition,
		c.reconcileSuspended,
		c.reconcileLatency,
		c.httpStatus,
	)

	return c
}

// RecordWebhookEvent はWebhookイベントの処理結果を記録する。
func (c *Collector) RecordWebhookEvent(eventType, outcome string) {
	c.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordVisibilityTransition は公開状態変更の結果を記録する。
func (c *Collector) RecordVisibilityTransition(requested, outcome string) {
	c.visibilityTransition.WithLabelValues(requested, outcome).Inc()
}

// RecordReconcileSuspended は非公開化した教室数を記録する。
func (c *Collector) RecordReconcileSuspended(count int64) {
	c.reconcileSuspended.Add(float64(count))
}

// RecordReconcileLatency は整合ジョブの実行時間を記録する。
func (c *Collector) RecordReconcileLatency(duration time.Duration) {
	c.reconcileLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// StatusRecorder はレスポンスのHTTPステータスコードを記録するミドルウェアを返す。
func StatusRecorder(c MetricsCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			c.RecordHTTPStatus(sw.status)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
