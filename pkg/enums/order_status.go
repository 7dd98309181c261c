package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusDraft               OrderStatus = "draft"
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusWaitingEstimation   OrderStatus = "waiting_estimation"
	OrderStatusWaitingPayment      OrderStatus = "waiting_payment"
	OrderStatusVerificationPending OrderStatus = "verification_pending"
	OrderStatusPaid                OrderStatus = "paid"
	OrderStatusPaidFull            OrderStatus = "paid_full"
	OrderStatusInProgress          OrderStatus = "in_progress"
	OrderStatusReview              OrderStatus = "review"
	OrderStatusRevision            OrderStatus = "revision"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
	OrderStatusRejected            OrderStatus = "rejected"
)

// legacyWaitPayment is a historical synonym still present in old rows.
// It is folded into waiting_payment here, at the persistence boundary,
// and never appears inside business logic.
const legacyWaitPayment = "wait_payment"

var validOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusPending,
	OrderStatusWaitingEstimation,
	OrderStatusWaitingPayment,
	OrderStatusVerificationPending,
	OrderStatusPaid,
	OrderStatusPaidFull,
	OrderStatusInProgress,
	OrderStatusReview,
	OrderStatusRevision,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRejected,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the order lifecycle.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus, folding the
// legacy synonym into its canonical value.
func ParseOrderStatus(value string) (OrderStatus, error) {
	if value == legacyWaitPayment {
		return OrderStatusWaitingPayment, nil
	}
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
