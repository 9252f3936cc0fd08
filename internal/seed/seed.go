// Package seed loads a deterministic synthetic case dataset for local use.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const storeTimeLayout = "2006-01-02T15:04:05"

// Stats reports how many rows Load wrote per table.
type Stats struct {
	Merchants    int
	Customers    int
	Transactions int
	Chargebacks  int
	Events       int
}

type merchant struct {
	id, name, bank string
	winRate        float64
}

type customer struct {
	id, name, email, region string
}

type dispute struct {
	id          string
	customerID  string
	merchantID  string
	amount      float64
	currency    string
	method      string
	riskLevel   string
	fraudScore  *float64
	reasonCode  string
	disputeType string
	bank        string
	analystID   string
	status      string
	outcome     *string
	daysAgo     int
	hasDeadline bool
	notes       string
	events      []event
}

type event struct {
	eventType   string
	daysAgo     int
	data        map[string]any
	description string
}

var merchants = []merchant{
	{"merch_001", "TechStore Pro", "Chase Bank", 72.5},
	{"merch_002", "FashionHub", "Bank of America", 68.3},
	{"merch_003", "Electronics Plus", "Wells Fargo", 75.1},
	{"merch_004", "Home Essentials", "Citi Bank", 70.8},
}

var customers = []customer{
	{"cust_001", "Sarah Johnson", "sarah.j@email.com", "US"},
	{"cust_002", "Michael Chen", "m.chen@email.com", "US"},
	{"cust_003", "Emma Williams", "emma.w@email.com", "US"},
	{"cust_004", "David Rodriguez", "d.rodriguez@email.com", "US"},
	{"cust_005", "Lisa Anderson", "lisa.a@email.com", "US"},
	{"cust_006", "James Taylor", "j.taylor@email.com", "US"},
	{"cust_007", "Maria Garcia", "maria.g@email.com", "DE"},
}

func score(v float64) *float64 { return &v }
func text(v string) *string     { return &v }

var disputes = []dispute{
	{
		id: "cb_001", customerID: "cust_001", merchantID: "merch_001", amount: 1249.99, currency: "USD", method: "visa",
		riskLevel: "high", fraudScore: score(0.955), reasonCode: "4855", disputeType: "fraud", bank: "Chase Bank",
		analystID: "analyst_001", status: "open", daysAgo: 22, hasDeadline: true,
		notes: "Cardholder reports card stolen. Transaction from unusual location.",
		events: []event{
			{"support_ticket", 21, map[string]any{"ticket_id": "TKT10001", "contact_method": "phone"}, "Cardholder reported card stolen."},
			{"login", 23, map[string]any{"ip_address": "185.220.101.45", "new_device": true}, "Login from unrecognized device and location."},
			{"velocity_alert", 23, map[string]any{"cards_last_24h": 8, "transactions_last_week": 12}, "Velocity rules flagged eight cards in 24 hours."},
		},
	},
	{
		id: "cb_002", customerID: "cust_002", merchantID: "merch_002", amount: 899.50, currency: "USD", method: "mastercard",
		riskLevel: "high", fraudScore: score(0.882), reasonCode: "4853", disputeType: "fraud", bank: "Bank of America",
		analystID: "analyst_002", status: "open", daysAgo: 20, hasDeadline: true,
		notes: "Account takeover suspected. Customer denies all transactions.",
	},
	{
		id: "cb_003", customerID: "cust_003", merchantID: "merch_001", amount: 299.99, currency: "USD", method: "visa",
		riskLevel: "low", fraudScore: score(0.15), reasonCode: "4855", disputeType: "service_not_provided", bank: "Wells Fargo",
		analystID: "analyst_003", status: "under_review", daysAgo: 32, hasDeadline: true,
		notes: "Customer claims item never received. Tracking shows delivered.",
		events: []event{
			{"support_ticket", 33, map[string]any{"ticket_id": "TKT10003", "customer_statement": "Package never arrived."}, "Customer reported item not received."},
			{"shipping", 40, map[string]any{"carrier": "UPS", "delivered": true, "signature": "E. Williams"}, "Carrier confirms signed delivery."},
			{"previous_dispute", 30, map[string]any{"total_disputes": 3, "item_not_received_claims": 2}, "Customer has two prior item-not-received claims."},
		},
	},
	{
		id: "cb_004", customerID: "cust_004", merchantID: "merch_003", amount: 549.99, currency: "USD", method: "amex",
		riskLevel: "low", fraudScore: score(0.125), reasonCode: "4855", disputeType: "service_not_provided", bank: "Citi Bank",
		analystID: "analyst_004", status: "under_review", daysAgo: 47, hasDeadline: true,
		notes: "Merchant refunded but customer filed chargeback anyway.",
	},
	{
		id: "cb_005", customerID: "cust_005", merchantID: "merch_002", amount: 79.99, currency: "USD", method: "visa",
		riskLevel: "low", fraudScore: score(0.10), reasonCode: "4855", disputeType: "service_not_provided", bank: "Chase Bank",
		analystID: "analyst_005", status: "open", daysAgo: 77, hasDeadline: true,
		notes: "Subscription charged after claimed cancellation.",
	},
	{
		id: "cb_006", customerID: "cust_006", merchantID: "merch_004", amount: 199.99, currency: "USD", method: "mastercard",
		riskLevel: "medium", fraudScore: score(0.42), reasonCode: "4855", disputeType: "fraud", bank: "Bank of America",
		analystID: "analyst_006", status: "open", daysAgo: 27, hasDeadline: true,
		notes: "Same IP, device and shipping address. Likely family member.",
	},
	{
		id: "cb_007", customerID: "cust_001", merchantID: "merch_003", amount: 149.99, currency: "USD", method: "visa",
		riskLevel: "low", fraudScore: score(0.05), reasonCode: "4837", disputeType: "duplicate", bank: "Chase Bank",
		analystID: "analyst_007", status: "open", daysAgo: 13, hasDeadline: true,
		notes: "Charged twice for the same purchase.",
	},
	{
		id: "cb_008", customerID: "cust_002", merchantID: "merch_002", amount: 249.99, currency: "USD", method: "mastercard",
		riskLevel: "low", fraudScore: score(0.08), reasonCode: "4837", disputeType: "duplicate", bank: "Bank of America",
		analystID: "analyst_008", status: "lost", outcome: text("lost"), daysAgo: 16,
		notes: "Pricing error confirmed by merchant.",
	},
	{
		id: "cb_009", customerID: "cust_003", merchantID: "merch_001", amount: 179.99, currency: "USD", method: "visa",
		riskLevel: "low", fraudScore: score(0.12), reasonCode: "4855", disputeType: "fraud", bank: "Wells Fargo",
		analystID: "analyst_009", status: "won", outcome: text("won"), daysAgo: 57,
		notes: "Same IP, device and shipping address as prior orders. Chargeback reversed.",
	},
	{
		id: "cb_010", customerID: "cust_004", merchantID: "merch_002", amount: 49.99, currency: "USD", method: "amex",
		riskLevel: "low", fraudScore: score(0.10), reasonCode: "4855", disputeType: "service_not_provided", bank: "Citi Bank",
		analystID: "analyst_010", status: "won", outcome: text("won"), daysAgo: 72,
		notes: "Signed terms and six months of usage logs provided.",
	},
	{
		id: "cb_011", customerID: "cust_005", merchantID: "merch_003", amount: 89.99, currency: "USD", method: "visa",
		riskLevel: "low", fraudScore: score(0.09), reasonCode: "4855", disputeType: "service_not_provided", bank: "Chase Bank",
		analystID: "analyst_011", status: "closed", outcome: text("won"), daysAgo: 48,
		notes: "Download logs prove digital goods were delivered.",
	},
	{
		id: "cb_012", customerID: "cust_007", merchantID: "merch_004", amount: 639.00, currency: "EUR", method: "visa",
		riskLevel: "medium", fraudScore: score(0.61), reasonCode: "4853", disputeType: "fraud", bank: "Deutsche Bank",
		analystID: "analyst_012", status: "closed", outcome: text("lost"), daysAgo: 35,
		notes: "Evidence submitted after the response deadline.",
	},
	{
		id: "cb_013", customerID: "cust_006", merchantID: "merch_001", amount: 34.50, currency: "USD", method: "amex",
		riskLevel: "medium", reasonCode: "4860", disputeType: "credit_not_processed", bank: "Citi Bank",
		analystID: "analyst_013", status: "pending", daysAgo: 5,
		notes: "Awaiting acquirer documentation. Risk assessment not yet run.",
	},
}

// Load replaces the contents of the case tables with the synthetic dataset.
// Dates are computed relative to now so the dashboard always looks current.
func Load(ctx context.Context, db *gorm.DB, now time.Time) (Stats, error) {
	if db == nil {
		return Stats{}, errors.New("seed database handle is required")
	}

	var stats Stats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"case_events", "chargebacks", "transactions", "customers", "merchants"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for _, m := range merchants {
			if err := tx.Exec(
				`INSERT INTO merchants (merchant_id, merchant_name, acquiring_bank, win_rate, created_at) VALUES (?, ?, ?, ?, ?)`,
				m.id, m.name, m.bank, m.winRate, at(now, 730, 9),
			).Error; err != nil {
				return fmt.Errorf("insert merchant %s: %w", m.id, err)
			}
			stats.Merchants++
		}

		for _, c := range customers {
			if err := tx.Exec(
				`INSERT INTO customers (customer_id, name, email, region, created_at) VALUES (?, ?, ?, ?, ?)`,
				c.id, c.name, c.email, c.region, at(now, 400, 12),
			).Error; err != nil {
				return fmt.Errorf("insert customer %s: %w", c.id, err)
			}
			stats.Customers++
		}

		txnSeq := 0
		for ci, c := range customers {
			for n := 0; n < 3; n++ {
				txnSeq++
				m := merchants[(ci+n)%len(merchants)]
				amount := 25.0 + float64((ci*7+n*13)%80)*10.25
				if err := insertTransaction(tx, txnID(txnSeq), c.id, m.id, amount, "USD", "visa", "low", score(0.05+float64(n)*0.05), "completed", at(now, 120-ci*5-n, 10+n), nil); err != nil {
					return err
				}
				stats.Transactions++
			}
		}

		for _, d := range disputes {
			txnSeq++
			transactionID := txnID(txnSeq)
			velocity := map[string]any{"cards_last_24h": 1, "same_ip_count": 4}
			if d.riskLevel == "high" {
				velocity = map[string]any{"cards_last_24h": 6, "same_ip_count": 0}
			}
			if err := insertTransaction(tx, transactionID, d.customerID, d.merchantID, d.amount, d.currency, d.method, d.riskLevel, d.fraudScore, "disputed", at(now, d.daysAgo+5, 14), velocity); err != nil {
				return err
			}
			stats.Transactions++

			var deadline *string
			if d.hasDeadline {
				deadline = text(at(now, d.daysAgo-30, 23))
			}
			var closedAt *string
			if d.outcome != nil {
				closedAt = text(at(now, d.daysAgo-10, 17))
			}
			if err := tx.Exec(
				`INSERT INTO chargebacks (chargeback_id, transaction_id, dispute_date, reason_code, dispute_type, issuing_bank,
					chargeback_amount, analyst_id, status, opened_at, closed_at, outcome, response_deadline, notes)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				d.id, transactionID, at(now, d.daysAgo, 11), d.reasonCode, d.disputeType, d.bank,
				d.amount, d.analystID, d.status, at(now, d.daysAgo-1, 9), closedAt, d.outcome, deadline, d.notes,
			).Error; err != nil {
				return fmt.Errorf("insert chargeback %s: %w", d.id, err)
			}
			stats.Chargebacks++

			events := d.events
			if len(events) == 0 {
				events = []event{
					{"chargeback_received", d.daysAgo, map[string]any{"reason_code": d.reasonCode}, "Chargeback received from issuer."},
					{"evidence_requested", d.daysAgo - 1, map[string]any{"analyst_id": d.analystID}, "Evidence requested from merchant."},
				}
			}
			for _, e := range events {
				raw, err := json.Marshal(e.data)
				if err != nil {
					return err
				}
				if err := tx.Exec(
					`INSERT INTO case_events (chargeback_id, event_type, event_date, event_data, description) VALUES (?, ?, ?, ?, ?)`,
					d.id, e.eventType, at(now, e.daysAgo, 15), datatypes.JSON(raw), e.description,
				).Error; err != nil {
					return fmt.Errorf("insert event for %s: %w", d.id, err)
				}
				stats.Events++
			}
		}

		return tx.Exec(`UPDATE customers SET total_chargebacks = (
			SELECT COUNT(*) FROM chargebacks c JOIN transactions t ON c.transaction_id = t.transaction_id
			WHERE t.customer_id = customers.customer_id
		)`).Error
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func insertTransaction(tx *gorm.DB, id, customerID, merchantID string, amount float64, currency, method, riskLevel string, fraudScore *float64, status, date string, velocity map[string]any) error {
	var velocityData any
	if velocity != nil {
		raw, err := json.Marshal(velocity)
		if err != nil {
			return err
		}
		velocityData = datatypes.JSON(raw)
	}
	err := tx.Exec(
		`INSERT INTO transactions (transaction_id, customer_id, merchant_id, amount, currency, payment_method,
			transaction_date, status, fraud_score, risk_level, velocity_flag, velocity_data, risk_assessed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, customerID, merchantID, amount, currency, method,
		date, status, fraudScore, riskLevel, riskLevel == "high", velocityData, date,
	).Error
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", id, err)
	}
	return nil
}

func txnID(n int) string {
	return fmt.Sprintf("txn_%04d", n)
}

// at renders midnight-relative timestamps in the store's text layout.
func at(now time.Time, daysAgo, hour int) string {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -daysAgo).Add(time.Duration(hour) * time.Hour).Format(storeTimeLayout)
}
