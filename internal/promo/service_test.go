package promo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
)

func setupPromoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY,
  referrer_id INTEGER,
  completed_orders INTEGER NOT NULL DEFAULT 0,
  last_seen_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL,
  work_category TEXT NOT NULL,
  subject TEXT,
  topic TEXT,
  description TEXT NOT NULL,
  deadline_key TEXT NOT NULL,
  has_attachments INTEGER NOT NULL DEFAULT 0,
  base_price INTEGER NOT NULL DEFAULT 0,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  promo_discount_percent INTEGER NOT NULL DEFAULT 0,
  wallet_amount INTEGER NOT NULL DEFAULT 0,
  paid_amount INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  risk_factors TEXT,
  payment_method TEXT,
  priced_at DATETIME,
  paid_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS promo_codes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  discount_percent INTEGER NOT NULL,
  max_uses INTEGER NOT NULL DEFAULT 0,
  current_uses INTEGER NOT NULL DEFAULT 0,
  valid_from DATETIME,
  valid_until DATETIME,
  active INTEGER NOT NULL DEFAULT 1,
  new_users_only INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS promo_code_usages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  promo_code_id INTEGER NOT NULL,
  customer_id INTEGER NOT NULL,
  order_id INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  used_at DATETIME,
  returned_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_usages_active
  ON promo_code_usages (promo_code_id, customer_id)
  WHERE is_active;`, `
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
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newPromoService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(NewRepository(conn), outboxSvc)
	require.NoError(t, err)
	return svc
}

func seedPromo(t *testing.T, conn *gorm.DB, promo *models.PromoCode) *models.PromoCode {
	t.Helper()
	require.NoError(t, conn.Create(promo).Error)
	return promo
}

func seedOrderRow(t *testing.T, conn *gorm.DB, customerID int64) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerID:   customerID,
		WorkCategory: "essay",
		Description:  "a perfectly ordinary description of the work",
		DeadlineKey:  "7d",
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestCheckValidCode(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	seedPromo(t, conn, &models.PromoCode{Code: "spring10", DiscountPercent: 10, Active: true})

	result, err := svc.Check(context.Background(), "  SPRING10 ", 1)
	require.NoError(t, err)
	assert.Equal(t, "spring10", result.Code)
	assert.Equal(t, 10, result.DiscountPercent)
}

func TestCheckRejections(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	seedPromo(t, conn, &models.PromoCode{Code: "disabled", DiscountPercent: 5})
	seedPromo(t, conn, &models.PromoCode{Code: "expired", DiscountPercent: 5, Active: true, ValidUntil: &past})
	seedPromo(t, conn, &models.PromoCode{Code: "upcoming", DiscountPercent: 5, Active: true, ValidFrom: &future})
	seedPromo(t, conn, &models.PromoCode{Code: "soldout", DiscountPercent: 5, Active: true, MaxUses: 3, CurrentUses: 3})

	_, err := svc.Check(ctx, "missing", 1)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	for _, code := range []string{"disabled", "expired", "upcoming", "soldout"} {
		_, err := svc.Check(ctx, code, 1)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict), "code %s: %v", code, err)
	}
}

func TestCheckNewUsersOnly(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	ctx := context.Background()

	seedPromo(t, conn, &models.PromoCode{Code: "welcome", DiscountPercent: 15, Active: true, NewUsersOnly: true})
	seedOrderRow(t, conn, 77)

	_, err := svc.Check(ctx, "welcome", 77)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	// a customer with no orders qualifies
	_, err = svc.Check(ctx, "welcome", 78)
	require.NoError(t, err)
}

func TestApplyNewUsersOnlyIgnoresOwnOrder(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	ctx := context.Background()

	seedPromo(t, conn, &models.PromoCode{Code: "welcome", DiscountPercent: 15, Active: true, NewUsersOnly: true})

	// intake inserts the order before applying the code; that row must not
	// trip the new-users gate
	order := seedOrderRow(t, conn, 79)
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, order, "welcome", 79)
	}))
	assert.Equal(t, 15, order.PromoDiscountPercent)

	// a second order for the same customer does
	later := seedOrderRow(t, conn, 79)
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, later, "welcome", 79)
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestSeedInactivePromoStaysInactive(t *testing.T) {
	conn := setupPromoTestDB(t)

	seedPromo(t, conn, &models.PromoCode{Code: "paused", DiscountPercent: 5})

	var reloaded models.PromoCode
	require.NoError(t, conn.Where("code = ?", "paused").Take(&reloaded).Error)
	assert.False(t, reloaded.Active)
}

func TestApplySetsDiscountAndConsumesUse(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	ctx := context.Background()

	promo := seedPromo(t, conn, &models.PromoCode{Code: "spring10", DiscountPercent: 10, Active: true, MaxUses: 5})
	order := seedOrderRow(t, conn, 10)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, order, "spring10", 10)
	}))

	assert.Equal(t, 10, order.PromoDiscountPercent)

	var reloaded models.PromoCode
	require.NoError(t, conn.Take(&reloaded, promo.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUses)

	var usage models.PromoCodeUsage
	require.NoError(t, conn.Where("order_id = ?", order.ID).Take(&usage).Error)
	assert.True(t, usage.IsActive)
	assert.Equal(t, int64(10), usage.CustomerID)

	var eventCount int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", "promo_applied").Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)
}

func TestApplyBlocksSecondActiveUsage(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	ctx := context.Background()

	seedPromo(t, conn, &models.PromoCode{Code: "once", DiscountPercent: 20, Active: true})
	first := seedOrderRow(t, conn, 11)
	second := seedOrderRow(t, conn, 11)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, first, "once", 11)
	}))

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, second, "once", 11)
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestApplyCounterGuard(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	ctx := context.Background()

	// one use left; the guard update must hand it to exactly one caller
	seedPromo(t, conn, &models.PromoCode{Code: "lastone", DiscountPercent: 5, Active: true, MaxUses: 1})
	winner := seedOrderRow(t, conn, 20)
	loser := seedOrderRow(t, conn, 21)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, winner, "lastone", 20)
	}))

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, loser, "lastone", 21)
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestReleaseFreesGateKeepsCounter(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)
	ctx := context.Background()

	promo := seedPromo(t, conn, &models.PromoCode{Code: "comeback", DiscountPercent: 10, Active: true, MaxUses: 10})
	order := seedOrderRow(t, conn, 30)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, order, "comeback", 30)
	}))
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ReleaseInTx(ctx, tx, order.ID)
	}))

	var usage models.PromoCodeUsage
	require.NoError(t, conn.Where("order_id = ?", order.ID).Take(&usage).Error)
	assert.False(t, usage.IsActive)
	require.NotNil(t, usage.ReturnedAt)

	// the counter does not roll back with the usage
	var reloaded models.PromoCode
	require.NoError(t, conn.Take(&reloaded, promo.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUses)

	// the customer may use the code again on a fresh order
	retry := seedOrderRow(t, conn, 30)
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ApplyInTx(ctx, tx, retry, "comeback", 30)
	}))
	require.NoError(t, conn.Take(&reloaded, promo.ID).Error)
	assert.Equal(t, 2, reloaded.CurrentUses)
}

func TestReleaseWithoutUsageIsNoop(t *testing.T) {
	conn := setupPromoTestDB(t)
	svc := newPromoService(t, conn)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.ReleaseInTx(context.Background(), tx, 9999)
	}))
}
