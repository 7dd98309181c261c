package models

import "time"

// PromoCodeUsage joins a promo code to the customer and order that consumed
// it. A partial unique index on (promo_code_id, customer_id) WHERE is_active
// enforces at most one active usage per customer; releasing a usage clears
// is_active but keeps the row for history.
type PromoCodeUsage struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	PromoCodeID int64      `gorm:"column:promo_code_id;not null;index"`
	CustomerID  int64      `gorm:"column:customer_id;not null;index"`
	OrderID     int64      `gorm:"column:order_id;not null;index"`
	IsActive    bool       `gorm:"column:is_active;not null"`
	UsedAt      time.Time  `gorm:"column:used_at;autoCreateTime"`
	ReturnedAt  *time.Time `gorm:"column:returned_at"`
}
