package models

import (
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// Order is the central aggregate. Money columns are integer kopecks; status
// changes only through the order state machine.
type Order struct {
	ID                   int64               `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID           int64               `gorm:"column:customer_id;not null;index"`
	WorkCategory         enums.WorkCategory  `gorm:"column:work_category;type:text;not null"`
	Subject              *string             `gorm:"column:subject"`
	Topic                *string             `gorm:"column:topic"`
	Description          string              `gorm:"column:description;not null"`
	DeadlineKey          enums.DeadlineKey   `gorm:"column:deadline_key;type:text;not null"`
	HasAttachments       bool                `gorm:"column:has_attachments;not null;default:false"`
	BasePrice            int64               `gorm:"column:base_price;not null;default:0"`
	DiscountPercent      int                 `gorm:"column:discount_percent;not null;default:0"`
	PromoDiscountPercent int                 `gorm:"column:promo_discount_percent;not null;default:0"`
	WalletAmount         int64               `gorm:"column:wallet_amount;not null;default:0"`
	PaidAmount           int64               `gorm:"column:paid_amount;not null;default:0"`
	Status               enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	RiskFactors          RiskFactors         `gorm:"column:risk_factors;type:jsonb;serializer:json"`
	PaymentMethod        *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	PricedAt             *time.Time          `gorm:"column:priced_at"`
	PaidAt               *time.Time          `gorm:"column:paid_at"`
	CompletedAt          *time.Time          `gorm:"column:completed_at"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// RiskFactors is the jsonb list of conditions that blocked auto-quoting.
type RiskFactors []enums.RiskFactor

// FinalPrice applies discounts and the wallet reservation, clamped at zero.
// Nothing here touches the ledger; the wallet amount is only reserved.
func (o *Order) FinalPrice() int64 {
	price := o.BasePrice
	price -= o.BasePrice * int64(o.DiscountPercent) / 100
	price -= o.BasePrice * int64(o.PromoDiscountPercent) / 100
	price -= o.WalletAmount
	if price < 0 {
		return 0
	}
	return price
}
