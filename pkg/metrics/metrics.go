package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
		[]string{"routing_key", "queue"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	ExportCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launch_export_total",
			Help: "Project exports by format and outcome",
		},
		[]string{"format", "status"}, // status: success, failed
	)

	ExportSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "launch_export_size_bytes",
			Help:    "Size of rendered exports",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"format"},
	)

	StepUpdateCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launch_step_update_total",
			Help: "Checklist step updates by new status",
		},
		[]string{"status"},
	)

	RecommendationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launch_recommendation_total",
			Help: "Recommendation requests by kind",
		},
		[]string{"kind"},
	)

	InsightCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launch_insight_cache_total",
			Help: "Insight cache lookups by result",
		},
		[]string{"result"}, // hit, miss, invalidated, error
	)

	OutboxPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_publish_total",
			Help: "Outbox events published by outcome",
		},
		[]string{"status"}, // sent, failed, breaker_open
	)
)

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery counts a slow statement. The statement label is
// truncated by the caller.
func IncrementSlowQuery(statement string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(statement).Inc()
	DBQueryDuration.WithLabelValues("slow", "").Observe(duration.Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordExport(format, status string, size int) {
	ExportCount.WithLabelValues(format, status).Inc()
	if status == "success" {
		ExportSize.WithLabelValues(format).Observe(float64(size))
	}
}

func IncrementStepUpdate(status string) {
	StepUpdateCount.WithLabelValues(status).Inc()
}

func IncrementRecommendation(kind string) {
	RecommendationCount.WithLabelValues(kind).Inc()
}

func IncrementInsightCache(result string) {
	InsightCacheCount.WithLabelValues(result).Inc()
}

func IncrementOutboxPublish(status string) {
	OutboxPublishCount.WithLabelValues(status).Inc()
}
