package promo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
)

// Repository manages promo codes and their usage records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
	HasActiveUsage(ctx context.Context, promoCodeID, customerID int64) (bool, error)
	CountCustomerOrders(ctx context.Context, customerID, excludeOrderID int64) (int64, error)
	IncrementUses(ctx context.Context, promoCodeID int64) (int64, error)
	InsertUsage(ctx context.Context, usage *models.PromoCodeUsage) error
	FindActiveUsageByOrder(ctx context.Context, orderID int64) (*models.PromoCodeUsage, error)
	DeactivateUsage(ctx context.Context, usageID int64, returnedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a promo repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToLower(strings.TrimSpace(code))).
		Take(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *repository) HasActiveUsage(ctx context.Context, promoCodeID, customerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PromoCodeUsage{}).
		Where("promo_code_id = ? AND customer_id = ? AND is_active", promoCodeID, customerID).
		Count(&count).Error
	return count > 0, err
}

// CountCustomerOrders counts the customer's orders. The order being created
// is excluded so the new-users check inside the intake transaction does not
// count the row it just inserted.
func (r *repository) CountCustomerOrders(ctx context.Context, customerID, excludeOrderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ? AND id <> ?", customerID, excludeOrderID).
		Count(&count).Error
	return count, err
}

// IncrementUses bumps the usage counter only while capacity remains. The
// returned rows-affected count is the caller's signal that the code sold out
// between check and apply.
func (r *repository) IncrementUses(ctx context.Context, promoCodeID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses = 0 OR current_uses < max_uses)", promoCodeID).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	return result.RowsAffected, result.Error
}

func (r *repository) InsertUsage(ctx context.Context, usage *models.PromoCodeUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

func (r *repository) FindActiveUsageByOrder(ctx context.Context, orderID int64) (*models.PromoCodeUsage, error) {
	var usage models.PromoCodeUsage
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND is_active", orderID).
		Take(&usage).Error
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

func (r *repository) DeactivateUsage(ctx context.Context, usageID int64, returnedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PromoCodeUsage{}).
		Where("id = ?", usageID).
		Updates(map[string]any{"is_active": false, "returned_at": returnedAt}).Error
}
