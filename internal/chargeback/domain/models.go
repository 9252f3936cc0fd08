package domain

import "gorm.io/datatypes"

// Case is a chargeback joined with its transaction, customer and merchant.
// It is rebuilt from the source tables on every retrieval and never persisted.
type Case struct {
	ChargebackID     string  `gorm:"column:chargeback_id" json:"chargeback_id"`
	DisputeDate      string  `gorm:"column:dispute_date" json:"dispute_date"`
	ReasonCode       string  `gorm:"column:reason_code" json:"reason_code"`
	DisputeType      string  `gorm:"column:dispute_type" json:"dispute_type"`
	ChargebackAmount float64 `gorm:"column:chargeback_amount" json:"chargeback_amount"`
	Status           string  `gorm:"column:status" json:"status"`
	Outcome          *string `gorm:"column:outcome" json:"outcome"`
	IssuingBank      string  `gorm:"column:issuing_bank" json:"issuing_bank"`
	AnalystID        string  `gorm:"column:analyst_id" json:"analyst_id"`
	ResponseDeadline *string `gorm:"column:response_deadline" json:"response_deadline"`

	TransactionID     string   `gorm:"column:transaction_id" json:"transaction_id"`
	TransactionAmount float64  `gorm:"column:transaction_amount" json:"transaction_amount"`
	Currency          string   `gorm:"column:currency" json:"currency"`
	PaymentMethod     string   `gorm:"column:payment_method" json:"payment_method"`
	TransactionDate   string   `gorm:"column:transaction_date" json:"transaction_date"`
	RiskLevel         string   `gorm:"column:risk_level" json:"risk_level"`
	FraudScore        *float64 `gorm:"column:fraud_score" json:"fraud_score"`

	CustomerID    string `gorm:"column:customer_id" json:"customer_id"`
	CustomerName  string `gorm:"column:customer_name" json:"customer_name"`
	CustomerEmail string `gorm:"column:customer_email" json:"customer_email"`

	MerchantName string `gorm:"column:merchant_name" json:"merchant_name"`
}

// OutcomeValue returns the outcome or an empty string while the case is not finalized.
func (c Case) OutcomeValue() string {
	if c.Outcome == nil {
		return ""
	}
	return *c.Outcome
}

// CaseEvent is one entry of a chargeback's activity log.
type CaseEvent struct {
	EventID      int64          `gorm:"column:event_id" json:"event_id"`
	ChargebackID string         `gorm:"column:chargeback_id" json:"chargeback_id"`
	EventType    string         `gorm:"column:event_type" json:"event_type"`
	EventDate    string         `gorm:"column:event_date" json:"event_date"`
	EventData    datatypes.JSON `gorm:"column:event_data" json:"event_data,omitempty"`
	Description  string         `gorm:"column:description" json:"description"`
}

// Raw status values written by the case management system.
const (
	StatusOpen        = "open"
	StatusUnderReview = "under_review"
	StatusWon         = "won"
	StatusLost        = "lost"
)

// Outcome values recorded when a case is finalized.
const (
	OutcomeWon  = "won"
	OutcomeLost = "lost"
)
