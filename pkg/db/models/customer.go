package models

import "time"

// Customer is a chat-identified account. Its balance is never stored here:
// it is always derived from the sum of balance transactions.
type Customer struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	ReferrerID      *int64     `gorm:"column:referrer_id"`
	CompletedOrders int        `gorm:"column:completed_orders;not null;default:0"`
	LastSeenAt      *time.Time `gorm:"column:last_seen_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
