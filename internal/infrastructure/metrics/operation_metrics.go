// Package metrics exposes Prometheus metrics for the thread and user operations.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lllypuk/threads/internal/application/appcore"
	"github.com/lllypuk/threads/internal/domain/errs"
)

// Operation outcome labels.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// OperationMetrics implements appcore.OperationObserver.
type OperationMetrics struct {
	OperationsTotal    *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	StoreUnavailable   *prometheus.CounterVec
	LastSuccessSeconds *prometheus.GaugeVec
}

// NewOperationMetrics creates and registers operation metrics with the given registerer.
func NewOperationMetrics(registerer prometheus.Registerer) *OperationMetrics {
	metrics := &OperationMetrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threads_operations_total",
				Help: "Total number of operations by outcome",
			},
			[]string{"operation", "status", "code"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "threads_operation_duration_seconds",
				Help:    "Operation latency including store round trips",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		StoreUnavailable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "threads_store_unavailable_total",
				Help: "Operations that failed because the document store was unreachable",
			},
			[]string{"operation"},
		),
		LastSuccessSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "threads_operation_last_success_timestamp_seconds",
				Help: "Unix time of the last successful operation",
			},
			[]string{"operation"},
		),
	}

	registerer.MustRegister(
		metrics.OperationsTotal,
		metrics.OperationDuration,
		metrics.StoreUnavailable,
		metrics.LastSuccessSeconds,
	)

	return metrics
}

// ObserveOperation records one finished operation.
func (m *OperationMetrics) ObserveOperation(op string, d time.Duration, err error) {
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())

	if err == nil {
		m.OperationsTotal.WithLabelValues(op, StatusSuccess, "").Inc()
		m.LastSuccessSeconds.WithLabelValues(op).SetToCurrentTime()
		return
	}

	_, code := appcore.ClassifyError(err)
	m.OperationsTotal.WithLabelValues(op, StatusFailed, code).Inc()
	if errors.Is(err, errs.ErrUnavailable) {
		m.StoreUnavailable.WithLabelValues(op).Inc()
	}
}
