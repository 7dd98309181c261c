package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// Repository covers the order and customer reads the payment workflow needs
// plus the guarded status writes that decide races between operators.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID int64) (*models.Order, error)
	FindCustomer(ctx context.Context, customerID int64) (*models.Customer, error)
	UpdateStatusGuarded(ctx context.Context, orderID int64, from, to enums.OrderStatus, updates map[string]any) (int64, error)
	CountPaidOrders(ctx context.Context, customerID, excludeOrderID int64) (int64, error)
	IncrementCompletedOrders(ctx context.Context, customerID int64) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).Take(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", customerID).Take(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) UpdateStatusGuarded(ctx context.Context, orderID int64, from, to enums.OrderStatus, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CountPaidOrders counts the customer's previously confirmed orders. The
// current order is excluded so the first-payment check works inside the
// confirming transaction.
func (r *repository) CountPaidOrders(ctx context.Context, customerID, excludeOrderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ? AND id <> ? AND status IN ?", customerID, excludeOrderID, []enums.OrderStatus{
			enums.OrderStatusPaid,
			enums.OrderStatusPaidFull,
			enums.OrderStatusInProgress,
			enums.OrderStatusReview,
			enums.OrderStatusRevision,
			enums.OrderStatusCompleted,
		}).
		Count(&count).Error
	return count, err
}

// IncrementCompletedOrders bumps the customer's settled-order counter and
// returns the new value.
func (r *repository) IncrementCompletedOrders(ctx context.Context, customerID int64) (int, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("completed_orders", gorm.Expr("completed_orders + 1")).Error
	if err != nil {
		return 0, err
	}

	var customer models.Customer
	if err := r.db.WithContext(ctx).Select("completed_orders").Where("id = ?", customerID).Take(&customer).Error; err != nil {
		return 0, err
	}
	return customer.CompletedOrders, nil
}
