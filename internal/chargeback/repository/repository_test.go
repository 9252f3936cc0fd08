package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/migration"
	"github.com/smallbiznis/chargedesk/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.RunMigrations(context.Background(), sqlDB, migration.DialectSQLite))
	return db
}

func insertChain(t *testing.T, db *gorm.DB, cbID, txnID, custID, merchID string) {
	t.Helper()
	require.NoError(t, db.Exec(`INSERT INTO customers (customer_id, name, email) VALUES (?, ?, ?)`, custID, "Name "+custID, custID+"@email.com").Error)
	require.NoError(t, db.Exec(`INSERT INTO merchants (merchant_id, merchant_name) VALUES (?, ?)`, merchID, "Merchant "+merchID).Error)
	require.NoError(t, db.Exec(`INSERT INTO transactions (transaction_id, customer_id, merchant_id, amount, currency, payment_method, transaction_date, risk_level, fraud_score)
		VALUES (?, ?, ?, ?, 'USD', 'visa', '2024-02-28T13:00:00', 'high', 0.873)`, txnID, custID, merchID, 1249.99).Error)
	require.NoError(t, db.Exec(`INSERT INTO chargebacks (chargeback_id, transaction_id, dispute_date, reason_code, dispute_type, issuing_bank, chargeback_amount, analyst_id, status)
		VALUES (?, ?, '2024-03-05', '4855', 'fraud', 'Chase Bank', 1234.5, 'analyst_001', 'open')`, cbID, txnID).Error)
}

func TestFetchCasesJoinsContext(t *testing.T) {
	db := setupTestDB(t)
	insertChain(t, db, "cb_001", "txn_0001", "cust_001", "merch_001")

	cases, err := Provide().FetchCases(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	c := cases[0]
	assert.Equal(t, "cb_001", c.ChargebackID)
	assert.Equal(t, "2024-03-05", c.DisputeDate)
	assert.Equal(t, 1234.5, c.ChargebackAmount)
	assert.Equal(t, "txn_0001", c.TransactionID)
	assert.Equal(t, 1249.99, c.TransactionAmount)
	assert.Equal(t, "2024-02-28T13:00:00", c.TransactionDate)
	assert.Equal(t, "Name cust_001", c.CustomerName)
	assert.Equal(t, "cust_001@email.com", c.CustomerEmail)
	assert.Equal(t, "Merchant merch_001", c.MerchantName)
	assert.Nil(t, c.Outcome)
	assert.Nil(t, c.ResponseDeadline)
	require.NotNil(t, c.FraudScore)
	assert.InDelta(t, 0.873, *c.FraudScore, 1e-9)
}

func TestFetchCasesOmitsUnresolvableChains(t *testing.T) {
	db := setupTestDB(t)
	insertChain(t, db, "cb_001", "txn_0001", "cust_001", "merch_001")

	// sqlite foreign keys are off on this connection, so a dangling row can be written.
	require.NoError(t, db.Exec(`INSERT INTO chargebacks (chargeback_id, transaction_id, chargeback_amount, status) VALUES ('cb_999', 'txn_missing', 10, 'open')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO transactions (transaction_id, customer_id, merchant_id, amount) VALUES ('txn_orphan', 'cust_missing', 'merch_001', 5)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO chargebacks (chargeback_id, transaction_id, chargeback_amount, status) VALUES ('cb_998', 'txn_orphan', 5, 'open')`).Error)

	cases, err := Provide().FetchCases(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "cb_001", cases[0].ChargebackID)
}

func TestFetchCasesEmptyStore(t *testing.T) {
	db := setupTestDB(t)

	cases, err := Provide().FetchCases(context.Background(), db)
	require.NoError(t, err)
	assert.NotNil(t, cases)
	assert.Empty(t, cases)
}

func TestFetchCasesIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	_, err := seed.Load(context.Background(), db, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	r := Provide()
	first, err := r.FetchCases(context.Background(), db)
	require.NoError(t, err)
	second, err := r.FetchCases(context.Background(), db)
	require.NoError(t, err)

	assert.Len(t, first, 13)
	assert.Equal(t, first, second)

	seen := map[string]struct{}{}
	for i, c := range first {
		_, dup := seen[c.ChargebackID]
		assert.False(t, dup, "duplicate %s", c.ChargebackID)
		seen[c.ChargebackID] = struct{}{}
		if i > 0 {
			assert.Less(t, first[i-1].ChargebackID, c.ChargebackID)
		}
	}
}

func TestFetchCasesSurfacesNullableFields(t *testing.T) {
	db := setupTestDB(t)
	_, err := seed.Load(context.Background(), db, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	cases, err := Provide().FetchCases(context.Background(), db)
	require.NoError(t, err)

	byID := map[string]domain.Case{}
	for _, c := range cases {
		byID[c.ChargebackID] = c
	}

	pending := byID["cb_013"]
	assert.Nil(t, pending.FraudScore)
	assert.Nil(t, pending.ResponseDeadline)
	assert.Nil(t, pending.Outcome)

	won := byID["cb_011"]
	require.NotNil(t, won.Outcome)
	assert.Equal(t, domain.OutcomeWon, *won.Outcome)
	assert.Equal(t, "closed", won.Status)

	euro := byID["cb_012"]
	assert.Equal(t, "EUR", euro.Currency)
}

func TestFetchCasesStoreFailure(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Exec(`DROP TABLE merchants`).Error)

	cases, err := Provide().FetchCases(context.Background(), db)
	assert.Nil(t, cases)
	require.Error(t, err)

	var storeErr *domain.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "fetch_cases", storeErr.Op)
}

func TestFetchCasesClosedHandle(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = Provide().FetchCases(context.Background(), db)
	assert.True(t, domain.IsStoreError(err))
}

func TestListEvents(t *testing.T) {
	db := setupTestDB(t)
	_, err := seed.Load(context.Background(), db, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	events, err := Provide().ListEvents(context.Background(), db, "cb_003")
	require.NoError(t, err)
	require.Len(t, events, 3)

	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i-1].EventDate, events[i].EventDate)
	}
	assert.Equal(t, "previous_dispute", events[0].EventType)
	assert.JSONEq(t, `{"total_disputes":3,"item_not_received_claims":2}`, string(events[0].EventData))

	none, err := Provide().ListEvents(context.Background(), db, "cb_404")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
