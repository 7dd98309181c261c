package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// Repository defines persistence operations for orders and their customers.
// Status writes are guarded compare-and-set updates: the caller names the
// status it saw and the update applies only if the row still carries it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID int64) (*models.Order, error)
	UpdateStatusGuarded(ctx context.Context, orderID int64, from, to enums.OrderStatus, updates map[string]any) (int64, error)
	Update(ctx context.Context, orderID int64, updates map[string]any) error
	UpsertCustomer(ctx context.Context, customer *models.Customer) error
	FindCustomer(ctx context.Context, customerID int64) (*models.Customer, error)
}
