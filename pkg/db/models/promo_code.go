package models

import "time"

// PromoCode is a discount code. Codes are stored lowercased and compared
// case-insensitively. MaxUses of zero means unlimited. Active carries no
// struct-tag default: GORM would substitute it for the zero value on Create
// and make inactive codes impossible to insert.
type PromoCode struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Code            string     `gorm:"column:code;not null;uniqueIndex"`
	DiscountPercent int        `gorm:"column:discount_percent;not null"`
	MaxUses         int        `gorm:"column:max_uses;not null;default:0"`
	CurrentUses     int        `gorm:"column:current_uses;not null;default:0"`
	ValidFrom       *time.Time `gorm:"column:valid_from"`
	ValidUntil      *time.Time `gorm:"column:valid_until"`
	Active          bool       `gorm:"column:active;not null"`
	NewUsersOnly    bool       `gorm:"column:new_users_only;not null;default:false"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
