package ledger

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/pagination"
)

// Repository manages persistence for balance transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockCustomer(ctx context.Context, customerID int64) error
	SumByCustomer(ctx context.Context, customerID int64) (int64, error)
	Insert(ctx context.Context, txn *models.BalanceTransaction) error
	ListByCustomer(ctx context.Context, customerID int64, limit int, cursor *pagination.Cursor) ([]models.BalanceTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockCustomer takes a row lock on the customer so concurrent debits against
// the same balance serialize. SQLite has no FOR UPDATE; its writes serialize
// on their own, so the clause is skipped there.
func (r *repository) LockCustomer(ctx context.Context, customerID int64) error {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var locked models.Customer
	return query.Select("id").Where("id = ?", customerID).Take(&locked).Error
}

func (r *repository) SumByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.BalanceTransaction{}).
		Where("customer_id = ?", customerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) Insert(ctx context.Context, txn *models.BalanceTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64, limit int, cursor *pagination.Cursor) ([]models.BalanceTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var txns []models.BalanceTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
