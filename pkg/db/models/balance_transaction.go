package models

import (
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// BalanceTransaction is an immutable, append-only balance change. The signed
// amount is positive for credits and negative for debits; a customer's
// balance is the sum of their rows.
type BalanceTransaction struct {
	ID          int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID  int64                   `gorm:"column:customer_id;not null;index"`
	Amount      int64                   `gorm:"column:amount;not null"`
	Type        enums.TransactionType   `gorm:"column:type;type:text;not null"`
	Reason      enums.TransactionReason `gorm:"column:reason;type:text;not null"`
	Description string                  `gorm:"column:description;not null"`
	OrderID     *int64                  `gorm:"column:order_id;index"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}
