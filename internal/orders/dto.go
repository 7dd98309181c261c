package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

// CreateOrderInput carries the intake form a customer submits through the
// chat front end. Deadline is either a key ("24h", "3d", "7d", "14d") or a
// DD.MM.YYYY date.
type CreateOrderInput struct {
	CustomerID      int64
	ReferrerID      *int64
	WorkCategory    string
	Subject         *string
	Topic           *string
	Description     string
	Deadline        string
	HasAttachments  bool
	DiscountPercent int
	PromoCode       string
}

// QuoteView is the priced breakdown returned for an order.
type QuoteView struct {
	OrderID              int64             `json:"order_id"`
	Status               enums.OrderStatus `json:"status"`
	BasePrice            int64             `json:"base_price"`
	UrgencyMultiplier    decimal.Decimal   `json:"urgency_multiplier"`
	DiscountPercent      int               `json:"discount_percent"`
	PromoDiscountPercent int               `json:"promo_discount_percent"`
	WalletAmount         int64             `json:"wallet_amount"`
	FinalPrice           int64             `json:"final_price"`
}

// Actor identifies who asked for an order mutation. Exactly one side is set.
type Actor struct {
	CustomerID *int64
	OperatorID *int64
}

// OrderStatusEvent is the payload of every status-change outbox event.
type OrderStatusEvent struct {
	OrderID         int64             `json:"order_id"`
	CustomerID      int64             `json:"customer_id"`
	From            enums.OrderStatus `json:"from"`
	To              enums.OrderStatus `json:"to"`
	Reason          string            `json:"reason,omitempty"`
	ReportedPayment bool              `json:"reported_payment,omitempty"`
}

// OrderCreatedEvent is emitted once per intake.
type OrderCreatedEvent struct {
	OrderID      int64              `json:"order_id"`
	CustomerID   int64              `json:"customer_id"`
	WorkCategory enums.WorkCategory `json:"work_category"`
	DeadlineKey  enums.DeadlineKey  `json:"deadline_key"`
	Status       enums.OrderStatus  `json:"status"`
	FinalPrice   int64              `json:"final_price"`
	RiskFactors  []enums.RiskFactor `json:"risk_factors,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// OrderPricedEvent is emitted when price fields change outside a status flip.
type OrderPricedEvent struct {
	OrderID      int64 `json:"order_id"`
	CustomerID   int64 `json:"customer_id"`
	BasePrice    int64 `json:"base_price"`
	WalletAmount int64 `json:"wallet_amount"`
	FinalPrice   int64 `json:"final_price"`
}

// OrderCompletedEvent carries the settlement data of a finished order.
type OrderCompletedEvent struct {
	OrderID         int64 `json:"order_id"`
	CustomerID      int64 `json:"customer_id"`
	PaidAmount      int64 `json:"paid_amount"`
	CompletedOrders int   `json:"completed_orders"`
	CashbackPercent int   `json:"cashback_percent"`
	CashbackAmount  int64 `json:"cashback_amount"`
}
