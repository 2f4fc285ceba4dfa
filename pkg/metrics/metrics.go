// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewer_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// IngestsTotal tracks dataset ingest attempts by origin and outcome.
	IngestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_ingests_total",
			Help: "Dataset ingest attempts",
		},
		[]string{"origin", "status"},
	)

	// DatasetConversations tracks the size of the loaded dataset.
	DatasetConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viewer_dataset_conversations",
			Help: "Conversations in the loaded dataset",
		},
	)

	// DatasetMessages tracks the message count of the loaded dataset.
	DatasetMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viewer_dataset_messages",
			Help: "Messages in the loaded dataset",
		},
	)

	// ExportsTotal tracks export downloads by format.
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_exports_total",
			Help: "Export downloads",
		},
		[]string{"format"},
	)

	// FeedbackOpsTotal tracks feedback side-channel operations.
	FeedbackOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_feedback_ops_total",
			Help: "Feedback side-channel operations",
		},
		[]string{"op", "status"},
	)

	// LiveMessagesTotal tracks messages received over the live NATS channel.
	LiveMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewer_live_messages_total",
			Help: "Messages received over the live ingest channel",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordIngest records a dataset ingest attempt.
func RecordIngest(origin, status string) {
	IngestsTotal.WithLabelValues(origin, status).Inc()
}

// SetDatasetSize records the size of the loaded dataset.
func SetDatasetSize(conversations, messages int) {
	DatasetConversations.Set(float64(conversations))
	DatasetMessages.Set(float64(messages))
}
