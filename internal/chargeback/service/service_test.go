package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu     sync.Mutex
	cases  []domain.Case
	events []domain.CaseEvent
	err    error
	block  bool
	calls  int
	lastID string
}

func (f *fakeRepo) FetchCases(ctx context.Context, _ *gorm.DB) ([]domain.Case, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, &domain.StoreError{Op: "fetch_cases", Err: ctx.Err()}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Case, len(f.cases))
	copy(out, f.cases)
	return out, nil
}

func (f *fakeRepo) ListEvents(_ context.Context, _ *gorm.DB, chargebackID string) ([]domain.CaseEvent, error) {
	f.lastID = chargebackID
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func strPtr(v string) *string    { return &v }
func floatPtr(v float64) *float64 { return &v }

func newTestService(repo domain.Repository, log *zap.Logger, timeout time.Duration) domain.Service {
	return New(Params{
		DB:     &gorm.DB{},
		Log:    log,
		Repo:   repo,
		Config: config.Config{CaseStoreTimeout: timeout},
	})
}

func TestListCasesRanksStoreRows(t *testing.T) {
	repo := &fakeRepo{cases: []domain.Case{
		{ChargebackID: "A", Status: "won", DisputeDate: "2024-03-01"},
		{ChargebackID: "B", Status: "open", DisputeDate: "2024-01-01"},
		{ChargebackID: "C", Status: "closed", Outcome: strPtr("lost"), DisputeDate: "2024-02-01"},
		{ChargebackID: "D", Status: "under_review", DisputeDate: "2024-02-15"},
	}}
	svc := newTestService(repo, zap.NewNop(), time.Second)

	resp, err := svc.ListCases(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(resp.Chargebacks))
	for _, c := range resp.Chargebacks {
		ids = append(ids, c.ChargebackID)
	}
	assert.Equal(t, []string{"D", "B", "C", "A"}, ids)
}

func TestListCasesEmptyIsNotNull(t *testing.T) {
	svc := newTestService(&fakeRepo{}, zap.NewNop(), time.Second)

	resp, err := svc.ListCases(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, resp.Chargebacks)
	assert.Empty(t, resp.Chargebacks)
}

func TestListCasesTranslatesStoreFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	cause := &domain.StoreError{Op: "fetch_cases", Err: errors.New("no such table: merchants")}
	svc := newTestService(&fakeRepo{err: cause}, zap.New(core), time.Second)

	_, err := svc.ListCases(context.Background())
	require.ErrorIs(t, err, domain.ErrCasesUnavailable)
	assert.False(t, domain.IsStoreError(err), "store internals must not reach the caller")

	entries := logs.FilterMessage("case retrieval failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "no such table")
}

func TestListCasesTimesOut(t *testing.T) {
	repo := &fakeRepo{block: true}
	svc := newTestService(repo, zap.NewNop(), 20*time.Millisecond)

	start := time.Now()
	_, err := svc.ListCases(context.Background())
	require.ErrorIs(t, err, domain.ErrCasesUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestListCasesIsRepeatable(t *testing.T) {
	repo := &fakeRepo{cases: []domain.Case{
		{ChargebackID: "cb_2", Status: "open", DisputeDate: "2024-01-02"},
		{ChargebackID: "cb_1", Status: "open", DisputeDate: "2024-01-02"},
	}}
	svc := newTestService(repo, zap.NewNop(), time.Second)

	first, err := svc.ListCases(context.Background())
	require.NoError(t, err)
	second, err := svc.ListCases(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, repo.calls, "every call reads the store")
}

func TestListCasesWithoutStoreHandle(t *testing.T) {
	svc := New(Params{Log: zap.NewNop(), Repo: &fakeRepo{}})

	_, err := svc.ListCases(context.Background())
	assert.ErrorIs(t, err, domain.ErrCasesUnavailable)
}

func TestListEvents(t *testing.T) {
	repo := &fakeRepo{events: []domain.CaseEvent{{EventID: 2, ChargebackID: "cb_001", EventType: "login"}}}
	svc := newTestService(repo, zap.NewNop(), time.Second)

	resp, err := svc.ListEvents(context.Background(), domain.ListEventsRequest{ChargebackID: " cb_001 "})
	require.NoError(t, err)
	assert.Len(t, resp.Events, 1)
	assert.Equal(t, "cb_001", repo.lastID)

	_, err = svc.ListEvents(context.Background(), domain.ListEventsRequest{ChargebackID: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidChargebackID)

	repo.err = &domain.StoreError{Op: "list_events", Err: errors.New("boom")}
	_, err = svc.ListEvents(context.Background(), domain.ListEventsRequest{ChargebackID: "cb_001"})
	assert.ErrorIs(t, err, domain.ErrCasesUnavailable)
}

func TestSummary(t *testing.T) {
	repo := &fakeRepo{cases: []domain.Case{
		{ChargebackID: "1", Status: "open", ChargebackAmount: 100.10, RiskLevel: "high", FraudScore: floatPtr(0.9)},
		{ChargebackID: "2", Status: "open", ChargebackAmount: 0.20, RiskLevel: "HIGH", FraudScore: floatPtr(0.8)},
		{ChargebackID: "3", Status: "won", ChargebackAmount: 50, RiskLevel: "low", FraudScore: floatPtr(0.1)},
		{ChargebackID: "4", Status: "pending", ChargebackAmount: 10, RiskLevel: "medium"},
		{ChargebackID: "5", Status: "lost", ChargebackAmount: 5.05, RiskLevel: "critical", FraudScore: floatPtr(0.5)},
	}}
	svc := newTestService(repo, zap.NewNop(), time.Second)

	resp, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, resp.TotalCases)
	assert.Equal(t, "165.35", resp.TotalAmount)

	byStatus := map[string]domain.StatusSummary{}
	for _, s := range resp.ByStatus {
		byStatus[s.Status] = s
	}
	assert.Len(t, resp.ByStatus, 5)
	assert.Equal(t, 2, byStatus["open"].Cases)
	assert.Equal(t, "100.30", byStatus["open"].TotalAmount)
	assert.Equal(t, 0, byStatus["under_review"].Cases)
	assert.Equal(t, "0.00", byStatus["under_review"].TotalAmount)
	assert.Equal(t, 1, byStatus["other"].Cases)

	levels := make([]string, 0, len(resp.ByRisk))
	for _, r := range resp.ByRisk {
		levels = append(levels, r.RiskLevel)
	}
	assert.Equal(t, []string{"low", "medium", "high", "critical"}, levels)

	high := resp.ByRisk[2]
	assert.Equal(t, 2, high.Cases)
	require.NotNil(t, high.AvgFraudScore)
	assert.InDelta(t, 0.85, *high.AvgFraudScore, 1e-9)
	assert.Equal(t, "100.30", high.TotalDisputed)
	assert.Nil(t, resp.ByRisk[1].AvgFraudScore)
}

func TestSummaryStoreFailure(t *testing.T) {
	svc := newTestService(&fakeRepo{err: &domain.StoreError{Op: "fetch_cases", Err: errors.New("down")}}, zap.NewNop(), time.Second)

	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, domain.ErrCasesUnavailable)
}
