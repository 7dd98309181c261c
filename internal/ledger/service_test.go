package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
	"github.com/orderdesk/orderdesk-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY,
  referrer_id INTEGER,
  completed_orders INTEGER NOT NULL DEFAULT 0,
  last_seen_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	transactions := `
CREATE TABLE IF NOT EXISTS balance_transactions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL,
  amount INTEGER NOT NULL,
  type TEXT NOT NULL,
  reason TEXT NOT NULL,
  description TEXT NOT NULL,
  order_id INTEGER,
  created_at DATETIME
);`
	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id INTEGER NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, conn.Exec(customers).Error)
	require.NoError(t, conn.Exec(transactions).Error)
	require.NoError(t, conn.Exec(outboxEvents).Error)
	return conn
}

func newLedgerService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(db.NewWithConn(conn), NewRepository(conn), outboxSvc, nil)
	require.NoError(t, err)
	return svc
}

func seedCustomer(t *testing.T, conn *gorm.DB, id int64) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Customer{ID: id}).Error)
}

func TestCreditThenBalance(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc := newLedgerService(t, conn)
	seedCustomer(t, conn, 100)
	ctx := context.Background()

	after, err := svc.Credit(ctx, EntryInput{
		CustomerID:  100,
		Amount:      10000,
		Reason:      enums.ReasonOrderBonus,
		Description: "order creation bonus",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), after)

	after, err = svc.Credit(ctx, EntryInput{
		CustomerID:  100,
		Amount:      15000,
		Reason:      enums.ReasonReferralBonus,
		Description: "referral bonus",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), after)

	balance, err := svc.Balance(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), balance)

	var eventCount int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&eventCount).Error)
	assert.Equal(t, int64(2), eventCount)
}

func TestDebitInsufficientFunds(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc := newLedgerService(t, conn)
	seedCustomer(t, conn, 200)
	ctx := context.Background()

	_, err := svc.Credit(ctx, EntryInput{
		CustomerID:  200,
		Amount:      5000,
		Reason:      enums.ReasonOrderBonus,
		Description: "bonus",
	})
	require.NoError(t, err)

	_, err = svc.Debit(ctx, EntryInput{
		CustomerID:  200,
		Amount:      7500,
		Reason:      enums.ReasonOrderDiscount,
		Description: "wallet payment",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientFunds))

	// the rejected debit must leave no trace
	var txnCount int64
	require.NoError(t, conn.Model(&models.BalanceTransaction{}).Where("customer_id = ?", 200).Count(&txnCount).Error)
	assert.Equal(t, int64(1), txnCount)

	balance, err := svc.Balance(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)
}

func TestDebitAppendsNegativeAmount(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc := newLedgerService(t, conn)
	seedCustomer(t, conn, 300)
	ctx := context.Background()

	_, err := svc.Credit(ctx, EntryInput{
		CustomerID:  300,
		Amount:      20000,
		Reason:      enums.ReasonCompensation,
		Description: "compensation",
	})
	require.NoError(t, err)

	orderID := int64(42)
	after, err := svc.Debit(ctx, EntryInput{
		CustomerID:  300,
		Amount:      8000,
		Reason:      enums.ReasonOrderDiscount,
		Description: "wallet payment for order",
		OrderID:     &orderID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), after)

	var txn models.BalanceTransaction
	require.NoError(t, conn.Where("customer_id = ? AND type = ?", 300, enums.TransactionTypeDebit).Take(&txn).Error)
	assert.Equal(t, int64(-8000), txn.Amount)
	require.NotNil(t, txn.OrderID)
	assert.Equal(t, orderID, *txn.OrderID)
}

func TestDebitUnknownCustomer(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc := newLedgerService(t, conn)

	_, err := svc.Debit(context.Background(), EntryInput{
		CustomerID:  999,
		Amount:      100,
		Reason:      enums.ReasonOrderDiscount,
		Description: "ghost",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestEntryValidation(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc := newLedgerService(t, conn)
	ctx := context.Background()

	tests := []struct {
		name  string
		input EntryInput
	}{
		{name: "missing customer", input: EntryInput{Amount: 100, Reason: enums.ReasonOrderBonus}},
		{name: "zero amount", input: EntryInput{CustomerID: 1, Amount: 0, Reason: enums.ReasonOrderBonus}},
		{name: "negative amount", input: EntryInput{CustomerID: 1, Amount: -50, Reason: enums.ReasonOrderBonus}},
		{name: "invalid reason", input: EntryInput{CustomerID: 1, Amount: 100, Reason: enums.TransactionReason("bogus")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Credit(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
			_, err = svc.Debit(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		})
	}
}

func TestHistoryPagination(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc := newLedgerService(t, conn)
	seedCustomer(t, conn, 400)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, conn.Create(&models.BalanceTransaction{
			CustomerID:  400,
			Amount:      int64(1000 * (i + 1)),
			Type:        enums.TransactionTypeCredit,
			Reason:      enums.ReasonAdminAdjustment,
			Description: fmt.Sprintf("adjustment %d", i+1),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	ctx := context.Background()
	first, next, err := svc.History(ctx, 400, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)
	// newest first
	assert.Equal(t, int64(5000), first[0].Amount)
	assert.Equal(t, int64(4000), first[1].Amount)

	second, _, err := svc.History(ctx, 400, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, int64(3000), second[0].Amount)
	assert.Equal(t, int64(2000), second[1].Amount)
}

func TestHistoryRejectsBadCursor(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc := newLedgerService(t, conn)

	_, _, err := svc.History(context.Background(), 1, pagination.Params{Cursor: "not-base64!!"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
