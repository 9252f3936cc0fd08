// Package present turns chargeback cases into display-ready summary cards.
package present

import (
	"context"
	"fmt"

	"github.com/smallbiznis/chargedesk/internal/chargeback/classify"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/config"
	"github.com/smallbiznis/chargedesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/chargedesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const DefaultPlaceholder = "—"

// Field names reported by FormatError.
const (
	FieldChargebackAmount  = "chargeback_amount"
	FieldTransactionAmount = "transaction_amount"
	FieldDisputeDate       = "dispute_date"
	FieldResponseDeadline  = "response_deadline"
	FieldTransactionDate   = "transaction_date"
	FieldFraudScore        = "fraud_score"
)

// FormatError reports a single field that could not be formatted. The field
// renders the placeholder; the rest of the card is unaffected.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e FormatError) Error() string {
	return fmt.Sprintf("format %s %q: %v", e.Field, e.Value, e.Err)
}

func (e FormatError) Unwrap() error { return e.Err }

// Card is the fully resolved display record of one case.
type Card struct {
	Key string `json:"key"`

	ChargebackID  string `json:"chargeback_id"`
	TransactionID string `json:"transaction_id"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	MerchantName  string `json:"merchant_name"`
	ReasonCode    string `json:"reason_code"`
	DisputeType   string `json:"dispute_type"`
	PaymentMethod string `json:"payment_method"`
	IssuingBank   string `json:"issuing_bank"`
	AnalystID     string `json:"analyst_id"`

	StatusLabel  string               `json:"status_label"`
	StatusClass  classify.StatusClass `json:"status_class"`
	OutcomeLabel string               `json:"outcome_label"`
	RiskLabel    string               `json:"risk_label"`
	RiskClass    classify.RiskClass   `json:"risk_class"`

	ChargebackAmount  string `json:"chargeback_amount"`
	TransactionAmount string `json:"transaction_amount"`
	DisputeDate       string `json:"dispute_date"`
	ResponseDeadline  string `json:"response_deadline"`
	TransactionDate   string `json:"transaction_date"`
	FraudScore        string `json:"fraud_score"`

	Errors []FormatError `json:"-"`
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Display *config.DisplayConfigHolder `optional:"true"`
	Metrics *obsmetrics.Metrics         `optional:"true"`
}

type Presenter struct {
	log     *zap.Logger
	display *config.DisplayConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) *Presenter {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Presenter{
		log:     log.Named("chargeback.present"),
		display: p.Display,
		metrics: p.Metrics,
	}
}

func (p *Presenter) placeholder() string {
	if p.display == nil {
		return DefaultPlaceholder
	}
	if v := p.display.Get().Placeholder; v != "" {
		return v
	}
	return DefaultPlaceholder
}

// Cards renders every case in order. A malformed case never blanks the list.
func (p *Presenter) Cards(ctx context.Context, cases []domain.Case) []Card {
	cards := make([]Card, 0, len(cases))
	for _, c := range cases {
		cards = append(cards, p.Card(ctx, c))
	}
	return cards
}

// Card renders a single case.
func (p *Presenter) Card(ctx context.Context, c domain.Case) Card {
	card := Card{
		Key:           c.ChargebackID,
		ChargebackID:  c.ChargebackID,
		TransactionID: c.TransactionID,
		CustomerID:    c.CustomerID,
		CustomerName:  c.CustomerName,
		CustomerEmail: c.CustomerEmail,
		MerchantName:  c.MerchantName,
		ReasonCode:    c.ReasonCode,
		DisputeType:   HumanizeLabel(c.DisputeType),
		PaymentMethod: HumanizeLabel(c.PaymentMethod),
		IssuingBank:   c.IssuingBank,
		AnalystID:     c.AnalystID,
		StatusLabel:   HumanizeLabel(c.Status),
		StatusClass:   classify.Status(c.Status),
		OutcomeLabel:  HumanizeLabel(c.OutcomeValue()),
		RiskLabel:     HumanizeLabel(c.RiskLevel),
		RiskClass:     classify.Risk(c.RiskLevel),
	}

	placeholder := p.placeholder()
	if card.OutcomeLabel == "" {
		card.OutcomeLabel = placeholder
	}

	card.ChargebackAmount = p.field(ctx, &card, FieldChargebackAmount, fmt.Sprint(c.ChargebackAmount), placeholder, func() (string, error) {
		return FormatMoney(c.ChargebackAmount, c.Currency)
	})
	card.TransactionAmount = p.field(ctx, &card, FieldTransactionAmount, fmt.Sprint(c.TransactionAmount), placeholder, func() (string, error) {
		return FormatMoney(c.TransactionAmount, c.Currency)
	})
	card.DisputeDate = p.field(ctx, &card, FieldDisputeDate, c.DisputeDate, placeholder, func() (string, error) {
		return FormatDate(c.DisputeDate)
	})
	card.TransactionDate = p.field(ctx, &card, FieldTransactionDate, c.TransactionDate, placeholder, func() (string, error) {
		return FormatDate(c.TransactionDate)
	})

	card.ResponseDeadline = placeholder
	if c.ResponseDeadline != nil {
		deadline := *c.ResponseDeadline
		card.ResponseDeadline = p.field(ctx, &card, FieldResponseDeadline, deadline, placeholder, func() (string, error) {
			return FormatDate(deadline)
		})
	}

	card.FraudScore = placeholder
	if c.FraudScore != nil {
		score := *c.FraudScore
		if score < 0 || score > 1 {
			logger.WithContext(ctx, p.log).Warn("fraud score outside [0,1], rendering as given",
				zap.String("chargeback_id", c.ChargebackID),
				zap.Float64("fraud_score", score),
			)
		}
		card.FraudScore = p.field(ctx, &card, FieldFraudScore, fmt.Sprint(score), placeholder, func() (string, error) {
			return FormatFraudScore(score)
		})
	}

	return card
}

func (p *Presenter) field(ctx context.Context, card *Card, name, raw, placeholder string, format func() (string, error)) string {
	out, err := format()
	if err == nil {
		return out
	}

	fmtErr := FormatError{Field: name, Value: raw, Err: err}
	card.Errors = append(card.Errors, fmtErr)
	logger.WithContext(ctx, p.log).Warn("failed to format case field",
		zap.String("chargeback_id", card.ChargebackID),
		zap.String("field", name),
		zap.String("value", raw),
		zap.Error(err),
	)
	p.metrics.RecordFormatError(ctx, name)
	return placeholder
}
