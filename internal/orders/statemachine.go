package orders

import "github.com/orderdesk/orderdesk-backend/pkg/enums"

// transitions is the single source of truth for legal status changes. Every
// status mutation in the codebase goes through CanTransition first.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusDraft: {
		enums.OrderStatusPending,
		enums.OrderStatusWaitingEstimation,
		enums.OrderStatusWaitingPayment,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusPending: {
		enums.OrderStatusWaitingEstimation,
		enums.OrderStatusWaitingPayment,
		enums.OrderStatusCancelled,
		enums.OrderStatusRejected,
	},
	enums.OrderStatusWaitingEstimation: {
		enums.OrderStatusWaitingPayment,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusWaitingPayment: {
		enums.OrderStatusVerificationPending,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusVerificationPending: {
		enums.OrderStatusPaid,
		enums.OrderStatusPaidFull,
		enums.OrderStatusWaitingPayment,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusPaid: {
		enums.OrderStatusInProgress,
	},
	enums.OrderStatusPaidFull: {
		enums.OrderStatusInProgress,
	},
	enums.OrderStatusInProgress: {
		enums.OrderStatusReview,
	},
	enums.OrderStatusReview: {
		enums.OrderStatusRevision,
		enums.OrderStatusCompleted,
	},
	enums.OrderStatusRevision: {
		enums.OrderStatusReview,
	},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// cancellable lists every status a customer or operator may cancel out of.
// Once fulfillment starts the order can only finish or be handled manually.
var cancellable = map[enums.OrderStatus]bool{
	enums.OrderStatusDraft:               true,
	enums.OrderStatusPending:             true,
	enums.OrderStatusWaitingEstimation:   true,
	enums.OrderStatusWaitingPayment:      true,
	enums.OrderStatusVerificationPending: true,
}

// IsCancellable reports whether an order in the given status may be cancelled.
func IsCancellable(status enums.OrderStatus) bool {
	return cancellable[status]
}

// fulfillmentTargets restricts what Advance accepts as a destination.
var fulfillmentTargets = map[enums.OrderStatus]bool{
	enums.OrderStatusInProgress: true,
	enums.OrderStatusReview:     true,
	enums.OrderStatusRevision:   true,
	enums.OrderStatusCompleted:  true,
}
