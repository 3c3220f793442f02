// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "transcriber_backend"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Store metrics
	StoreOps       *prometheus.CounterVec
	StoreErrors    *prometheus.CounterVec
	StoreOpLatency *prometheus.HistogramVec

	// Purge metrics
	PurgeBatches   prometheus.Counter
	PurgeDocuments prometheus.Counter

	// Pipeline metrics
	PipelineRuns       prometheus.Counter
	PipelineFailed     *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram
	ParagraphsAppended prometheus.Counter

	// Transcript metrics
	TranscriptsCreated prometheus.Counter
	TranscriptsDeleted prometheus.Counter
	ExportsTotal       *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		StoreOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_ops_total",
			Help:      "Total number of document store operations",
		}, []string{"op"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Total number of failed document store operations",
		}, []string{"op"}),
		StoreOpLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_op_latency_seconds",
			Help:      "Document store operation latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"op"}),

		PurgeBatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purge_batches_total",
			Help:      "Total number of deletion batches committed",
		}),
		PurgeDocuments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purge_documents_total",
			Help:      "Total number of documents removed by subtree deletion",
		}),

		PipelineRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of transcription pipeline runs started",
		}),
		PipelineFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_failed_total",
			Help:      "Total number of pipeline runs failed, by stage",
		}, []string{"stage"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		ParagraphsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paragraphs_appended_total",
			Help:      "Total number of paragraphs appended to transcripts",
		}),

		TranscriptsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_created_total",
			Help:      "Total number of transcripts created",
		}),
		TranscriptsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_deleted_total",
			Help:      "Total number of transcripts deleted",
		}),
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of transcript exports served, by format",
		}, []string{"format"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordKafkaPublish records the outcome of one Kafka publish.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, seconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(seconds)
}

// RecordStoreOp records one store operation and its latency.
func (m *Metrics) RecordStoreOp(op string, err error, start time.Time) {
	m.StoreOps.WithLabelValues(op).Inc()
	if err != nil {
		m.StoreErrors.WithLabelValues(op).Inc()
	}
	m.StoreOpLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
