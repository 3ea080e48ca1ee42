package handler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	submissionsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "saipos_bridge",
			Subsystem: "submissions",
			Name:      "delivered_total",
			Help:      "Total number of orders delivered to the POS",
		},
	)

	submissionsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "saipos_bridge",
			Subsystem: "submissions",
			Name:      "failed_total",
			Help:      "Total number of POS submissions that failed",
		},
	)

	submissionsDuplicate = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "saipos_bridge",
			Subsystem: "submissions",
			Name:      "duplicate_total",
			Help:      "Total number of duplicate orders answered from the journal",
		},
	)

	webhookFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "saipos_bridge",
			Subsystem: "webhook",
			Name:      "rejected_total",
			Help:      "Total number of webhook orders rejected before submission",
		},
	)

	ordersDLQ = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "saipos_bridge",
			Subsystem: "kafka_consumer",
			Name:      "orders_dlq_total",
			Help:      "Total number of orders written to DLQ",
		},
	)

	commitErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "saipos_bridge",
			Subsystem: "kafka_consumer",
			Name:      "commit_errors_total",
			Help:      "Total number of Kafka commit errors",
		},
	)

	orderProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "saipos_bridge",
			Subsystem: "kafka_consumer",
			Name:      "order_processing_duration_seconds",
			Help:      "Histogram of order processing durations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(
		submissionsDelivered,
		submissionsFailed,
		submissionsDuplicate,
		webhookFailures,

		ordersDLQ,
		commitErrors,
		orderProcessingDuration,
	)
}
