package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/chargeback/ranking"
	"github.com/smallbiznis/chargedesk/internal/config"
	"github.com/smallbiznis/chargedesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/chargedesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const summaryStatusOther = "other"

var errStoreNotConfigured = errors.New("store_not_configured")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         domain.Repository
	Config       config.Config
	Metrics      *obsmetrics.Metrics      `optional:"true"`
	StoreMetrics *obsmetrics.StoreMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	timeout      time.Duration
	metrics      *obsmetrics.Metrics
	storeMetrics *obsmetrics.StoreMetrics
}

func New(p Params) domain.Service {
	timeout := p.Config.CaseStoreTimeout
	if timeout <= 0 {
		timeout = config.DefaultCaseStoreTimeout
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("chargeback.service"),
		repo:         p.Repo,
		timeout:      timeout,
		metrics:      p.Metrics,
		storeMetrics: p.StoreMetrics,
	}
}

// ListCases returns every resolvable case in ranking order. Store failures are
// logged here and surface to callers only as ErrCasesUnavailable.
func (s *Service) ListCases(ctx context.Context) (domain.ListCasesResponse, error) {
	cases, err := s.fetchCases(ctx)
	if err != nil {
		s.metrics.RecordCaseRetrieval(ctx, obsmetrics.OutcomeFailure, 0)
		return domain.ListCasesResponse{}, err
	}

	ranking.Sort(cases)
	s.metrics.RecordCaseRetrieval(ctx, obsmetrics.OutcomeSuccess, len(cases))
	return domain.ListCasesResponse{Chargebacks: cases}, nil
}

func (s *Service) ListEvents(ctx context.Context, req domain.ListEventsRequest) (domain.ListEventsResponse, error) {
	chargebackID := strings.TrimSpace(req.ChargebackID)
	if chargebackID == "" {
		return domain.ListEventsResponse{}, domain.ErrInvalidChargebackID
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	events, err := s.repo.ListEvents(ctx, s.db, chargebackID)
	s.storeMetrics.ObserveQuery("list_events", time.Since(start), err)
	if err != nil {
		logger.WithCase(logger.WithContext(ctx, s.log), chargebackID).Error("case event retrieval failed",
			zap.String("reason", obsmetrics.ClassifyStoreFailure(err)),
			zap.Error(err),
		)
		return domain.ListEventsResponse{}, domain.ErrCasesUnavailable
	}
	return domain.ListEventsResponse{Events: events}, nil
}

// Summary aggregates the same rows ListCases returns. Amounts are summed
// across currencies as stored.
func (s *Service) Summary(ctx context.Context) (domain.SummaryResponse, error) {
	cases, err := s.fetchCases(ctx)
	if err != nil {
		return domain.SummaryResponse{}, err
	}
	return summarize(cases), nil
}

func (s *Service) fetchCases(ctx context.Context) ([]domain.Case, error) {
	if s.db == nil {
		logger.WithContext(ctx, s.log).Error("case retrieval failed", zap.Error(errStoreNotConfigured))
		return nil, domain.ErrCasesUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	cases, err := s.repo.FetchCases(ctx, s.db)
	s.storeMetrics.ObserveQuery("fetch_cases", time.Since(start), err)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("case retrieval failed",
			zap.String("reason", obsmetrics.ClassifyStoreFailure(err)),
			zap.Duration("timeout", s.timeout),
			zap.Error(err),
		)
		return nil, domain.ErrCasesUnavailable
	}
	if cases == nil {
		cases = []domain.Case{}
	}
	return cases, nil
}

var summaryStatuses = []string{
	domain.StatusOpen,
	domain.StatusUnderReview,
	domain.StatusWon,
	domain.StatusLost,
	summaryStatusOther,
}

var summaryRiskOrder = map[string]int{"low": 0, "medium": 1, "high": 2}

type riskAccumulator struct {
	cases    int
	scored   int
	scoreSum decimal.Decimal
	amount   decimal.Decimal
}

func summarize(cases []domain.Case) domain.SummaryResponse {
	statusCount := map[string]int{}
	statusAmount := map[string]decimal.Decimal{}
	risks := map[string]*riskAccumulator{}
	total := decimal.Zero

	for _, c := range cases {
		amount := decimal.NewFromFloat(c.ChargebackAmount)
		total = total.Add(amount)

		status := c.Status
		switch status {
		case domain.StatusOpen, domain.StatusUnderReview, domain.StatusWon, domain.StatusLost:
		default:
			status = summaryStatusOther
		}
		statusCount[status]++
		statusAmount[status] = statusAmount[status].Add(amount)

		level := strings.ToLower(c.RiskLevel)
		acc, ok := risks[level]
		if !ok {
			acc = &riskAccumulator{}
			risks[level] = acc
		}
		acc.cases++
		acc.amount = acc.amount.Add(amount)
		if c.FraudScore != nil {
			acc.scored++
			acc.scoreSum = acc.scoreSum.Add(decimal.NewFromFloat(*c.FraudScore))
		}
	}

	resp := domain.SummaryResponse{
		TotalCases:  len(cases),
		TotalAmount: total.StringFixed(2),
		ByStatus:    make([]domain.StatusSummary, 0, len(summaryStatuses)),
		ByRisk:      make([]domain.RiskSummary, 0, len(risks)),
	}
	for _, status := range summaryStatuses {
		resp.ByStatus = append(resp.ByStatus, domain.StatusSummary{
			Status:      status,
			Cases:       statusCount[status],
			TotalAmount: statusAmount[status].StringFixed(2),
		})
	}

	levels := make([]string, 0, len(risks))
	for level := range risks {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		ri, iKnown := summaryRiskOrder[levels[i]]
		rj, jKnown := summaryRiskOrder[levels[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return levels[i] < levels[j]
		}
	})
	for _, level := range levels {
		acc := risks[level]
		summary := domain.RiskSummary{
			RiskLevel:     level,
			Cases:         acc.cases,
			TotalDisputed: acc.amount.StringFixed(2),
		}
		if acc.scored > 0 {
			avg, _ := acc.scoreSum.DivRound(decimal.NewFromInt(int64(acc.scored)), 3).Float64()
			summary.AvgFraudScore = &avg
		}
		resp.ByRisk = append(resp.ByRisk, summary)
	}
	return resp
}
