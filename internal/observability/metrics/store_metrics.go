package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
)

// Store failure reasons. Kept low-cardinality for alerting.
const (
	StoreReasonDeadlineExceeded = "deadline_exceeded"
	StoreReasonCanceled         = "canceled"
	StoreReasonQueryCanceled    = "query_canceled"
	StoreReasonUndefinedTable   = "undefined_table"
	StoreReasonConnection       = "connection"
	StoreReasonUnknown          = "unknown"
)

// StoreMetrics captures case store health for the Prometheus scrape endpoint.
type StoreMetrics struct {
	queryDuration *prometheus.HistogramVec
	queryFailures *prometheus.CounterVec
}

var (
	storeMetricsOnce sync.Once
	storeMetrics     *StoreMetrics
)

// Store returns the process-wide store metrics registered on the default registerer.
func Store(cfg Config) *StoreMetrics {
	storeMetricsOnce.Do(func() {
		storeMetrics = newStoreMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return storeMetrics
}

func newStoreMetrics(registerer prometheus.Registerer, cfg Config) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "chargedesk"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "chargedesk_store_query_duration_seconds",
		Help:        "Case store query latency by operation.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"operation"})
	queryFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "chargedesk_store_query_failures_total",
		Help:        "Case store query failures by operation and reason.",
		ConstLabels: constLabels,
	}, []string{"operation", "reason"})

	registerer.MustRegister(queryDuration, queryFailures)

	return &StoreMetrics{
		queryDuration: queryDuration,
		queryFailures: queryFailures,
	}
}

// ObserveQuery records a store call. A non-nil err is also counted as a failure.
func (m *StoreMetrics) ObserveQuery(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	operation = strings.TrimSpace(operation)
	m.queryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		m.queryFailures.WithLabelValues(operation, ClassifyStoreFailure(err)).Inc()
	}
}

// ClassifyStoreFailure maps a store error to a failure reason.
func ClassifyStoreFailure(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return StoreReasonDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return StoreReasonCanceled
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57014":
			return StoreReasonQueryCanceled
		case "42P01":
			return StoreReasonUndefinedTable
		case "08000", "08003", "08006", "08001", "08004":
			return StoreReasonConnection
		}
		return StoreReasonUnknown
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return StoreReasonConnection
	}

	// sqlite and mysql surface these as plain messages.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "doesn't exist"):
		return StoreReasonUndefinedTable
	case strings.Contains(msg, "database is closed"), strings.Contains(msg, "connection refused"):
		return StoreReasonConnection
	}
	return StoreReasonUnknown
}
