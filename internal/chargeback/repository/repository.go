package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	storedb "github.com/smallbiznis/chargedesk/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// fetchCasesSQL joins every chargeback to its transaction, customer and
// merchant. Chargebacks whose chain does not resolve drop out of the inner joins.
const fetchCasesSQL = `SELECT
	c.chargeback_id,
	%[1]s AS dispute_date,
	c.reason_code,
	c.dispute_type,
	c.chargeback_amount,
	c.status,
	c.outcome,
	c.issuing_bank,
	c.analyst_id,
	%[2]s AS response_deadline,
	t.transaction_id,
	t.amount AS transaction_amount,
	t.currency,
	t.payment_method,
	%[3]s AS transaction_date,
	t.risk_level,
	t.fraud_score,
	cu.customer_id,
	cu.name AS customer_name,
	cu.email AS customer_email,
	m.merchant_name
FROM chargebacks c
JOIN transactions t ON c.transaction_id = t.transaction_id
JOIN customers cu ON t.customer_id = cu.customer_id
JOIN merchants m ON t.merchant_id = m.merchant_id
ORDER BY c.chargeback_id`

const listEventsSQL = `SELECT
	e.event_id,
	e.chargeback_id,
	e.event_type,
	%[1]s AS event_date,
	COALESCE(e.event_data, 'null') AS event_data,
	COALESCE(e.description, '') AS description
FROM case_events e
WHERE e.chargeback_id = ?
ORDER BY e.event_date DESC, e.event_id DESC`

// FetchCases reads the joined case rows on a single dedicated connection.
// Nullable text columns other than outcome and response_deadline are coalesced
// to empty strings.
func (r *repo) FetchCases(ctx context.Context, db *gorm.DB) ([]domain.Case, error) {
	dialect := db.Dialector.Name()
	query := fmt.Sprintf(fetchCasesSQL,
		coalesceText(storedb.TextCast(dialect, "c.dispute_date")),
		storedb.TextCast(dialect, "c.response_deadline"),
		coalesceText(storedb.TextCast(dialect, "t.transaction_date")),
	)

	var cases []domain.Case
	err := db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return conn.Raw(query).Scan(&cases).Error
	})
	if err != nil {
		return nil, &domain.StoreError{Op: "fetch_cases", Err: err}
	}
	if cases == nil {
		cases = []domain.Case{}
	}
	return cases, nil
}

func (r *repo) ListEvents(ctx context.Context, db *gorm.DB, chargebackID string) ([]domain.CaseEvent, error) {
	query := fmt.Sprintf(listEventsSQL,
		coalesceText(storedb.TextCast(db.Dialector.Name(), "e.event_date")),
	)

	var events []domain.CaseEvent
	err := db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return conn.Raw(query, chargebackID).Scan(&events).Error
	})
	if err != nil {
		return nil, &domain.StoreError{Op: "list_events", Err: err}
	}
	if events == nil {
		events = []domain.CaseEvent{}
	}
	return events, nil
}

func coalesceText(expr string) string {
	return "COALESCE(" + expr + ", '')"
}
