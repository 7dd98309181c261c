package orders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).Take(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatusGuarded flips the status only while the row still holds `from`.
// Rows affected is the winner/loser signal under concurrent operators.
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

func (r *repository) Update(ctx context.Context, orderID int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(customer).Error
}

func (r *repository) FindCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", customerID).Take(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
