package domain

import "context"

type ListCasesResponse struct {
	Chargebacks []Case `json:"chargebacks"`
}

type ListEventsRequest struct {
	ChargebackID string
}

type ListEventsResponse struct {
	Events []CaseEvent `json:"events"`
}

type StatusSummary struct {
	Status      string `json:"status"`
	Cases       int    `json:"cases"`
	TotalAmount string `json:"total_amount"`
}

type RiskSummary struct {
	RiskLevel     string   `json:"risk_level"`
	Cases         int      `json:"cases"`
	AvgFraudScore *float64 `json:"avg_fraud_score"`
	TotalDisputed string   `json:"total_disputed"`
}

type SummaryResponse struct {
	TotalCases  int             `json:"total_cases"`
	TotalAmount string          `json:"total_amount"`
	ByStatus    []StatusSummary `json:"by_status"`
	ByRisk      []RiskSummary   `json:"by_risk"`
}

type Service interface {
	ListCases(ctx context.Context) (ListCasesResponse, error)
	ListEvents(ctx context.Context, req ListEventsRequest) (ListEventsResponse, error)
	Summary(ctx context.Context) (SummaryResponse, error)
}
