package scheduling

import (
	"sync"

	"github.com/go-faster/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	operations *prometheus.CounterVec
	conflicts  *prometheus.CounterVec
	lockWait   *prometheus.HistogramVec
	batchSize  prometheus.Histogram
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "operations_total",
			Help:      "Total number of schedule write operations by outcome.",
		}, []string{"op", "result"}),
		conflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "conflicts_total",
			Help:      "Total number of rejected bookings by violation kind.",
		}, []string{"kind"}),
		lockWait: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Name:      "lock_wait_seconds",
			Help:      "Time spent acquiring row locks before validation.",
			Buckets: []float64{
				0.0005, 0.001, 0.005,
				0.01, 0.05, 0.1,
				0.5, 1, 2, 5,
			},
		}, []string{"op"}),
		batchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Name:      "bulk_batch_size",
			Help:      "Number of entries per bulk create request.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

const (
	resultOK        = "ok"
	resultRejected  = "rejected"
	resultNotFound  = "not_found"
	resultTransient = "transient"
	resultError     = "error"
)

func outcome(err error) string {
	var (
		conflict *ConflictError
		bulk     *BulkError
		notFound *NotFoundError
		shape    *ShapeError
	)
	switch {
	case err == nil:
		return resultOK
	case errors.As(err, &conflict), errors.As(err, &bulk), errors.As(err, &shape), errors.Is(err, ErrCancelled):
		return resultRejected
	case errors.As(err, &notFound):
		return resultNotFound
	case IsTransient(err):
		return resultTransient
	}
	return resultError
}

func observeOperation(op string, err error) {
	m := getMetrics()
	m.operations.WithLabelValues(op, outcome(err)).Inc()

	var (
		conflict *ConflictError
		bulk     *BulkError
	)
	switch {
	case errors.As(err, &conflict) && conflict.Result != nil:
		for _, v := range conflict.Result.Violations {
			m.conflicts.WithLabelValues(string(v.Kind)).Inc()
		}
	case errors.As(err, &bulk):
		for _, it := range bulk.Items {
			for _, k := range it.Kinds {
				m.conflicts.WithLabelValues(string(k)).Inc()
			}
		}
	}
}
