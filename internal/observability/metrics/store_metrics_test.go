package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClassifyStoreFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), want: StoreReasonDeadlineExceeded},
		{name: "canceled", err: context.Canceled, want: StoreReasonCanceled},
		{name: "pg_query_canceled", err: &pgconn.PgError{Code: "57014"}, want: StoreReasonQueryCanceled},
		{name: "pg_undefined_table", err: &pgconn.PgError{Code: "42P01"}, want: StoreReasonUndefinedTable},
		{name: "sqlite_missing_table", err: errors.New("SQL logic error: no such table: chargebacks (1)"), want: StoreReasonUndefinedTable},
		{name: "closed", err: errors.New("sql: database is closed"), want: StoreReasonConnection},
		{name: "unknown", err: errors.New("boom"), want: StoreReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyStoreFailure(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestObserveQuery(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newStoreMetrics(registry, Config{
		ServiceName: "chargedesk",
		Environment: "test",
	})

	metrics.ObserveQuery("fetch_cases", 20*time.Millisecond, nil)
	metrics.ObserveQuery("fetch_cases", time.Second, context.DeadlineExceeded)

	got := testutil.ToFloat64(metrics.queryFailures.WithLabelValues("fetch_cases", StoreReasonDeadlineExceeded))
	if got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if n := testutil.CollectAndCount(metrics.queryDuration); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}
}
