package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarket_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PredictionRequests counts model server calls by outcome.
	PredictionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarket_prediction_requests_total",
		Help: "Total number of prediction requests by outcome",
	}, []string{"outcome"})

	// PredictionLatency records model server round-trip time.
	PredictionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookmarket_prediction_latency_seconds",
		Help:    "Prediction request latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// StorageOperations counts object store calls by operation and outcome.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarket_storage_operations_total",
		Help: "Total number of object storage operations",
	}, []string{"operation", "outcome"})

	// ListingWorkflows counts listing create/update/delete runs by outcome.
	ListingWorkflows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarket_listing_workflows_total",
		Help: "Total number of listing workflows by operation and outcome",
	}, []string{"operation", "outcome"})
)

// Outcome returns the metric label for err.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
