package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateBalance OutboxAggregateType = "customer_balance"
	AggregatePromo   OutboxAggregateType = "promo_code"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateBalance,
	AggregatePromo,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderPriced        OutboxEventType = "order_priced"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderCancelled     OutboxEventType = "order_cancelled"
	EventOrderCompleted     OutboxEventType = "order_completed"
	EventPaymentReported    OutboxEventType = "payment_reported"
	EventPaymentConfirmed   OutboxEventType = "payment_confirmed"
	EventPaymentRejected    OutboxEventType = "payment_rejected"
	EventBalanceChanged     OutboxEventType = "balance_changed"
	EventPromoApplied       OutboxEventType = "promo_applied"
	EventPromoReleased      OutboxEventType = "promo_released"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderPriced,
	EventOrderStatusChanged,
	EventOrderCancelled,
	EventOrderCompleted,
	EventPaymentReported,
	EventPaymentConfirmed,
	EventPaymentRejected,
	EventBalanceChanged,
	EventPromoApplied,
	EventPromoReleased,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
