package orders

import (
	"testing"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusDraft, enums.OrderStatusPending},
		{enums.OrderStatusPending, enums.OrderStatusWaitingEstimation},
		{enums.OrderStatusPending, enums.OrderStatusWaitingPayment},
		{enums.OrderStatusWaitingEstimation, enums.OrderStatusWaitingPayment},
		{enums.OrderStatusWaitingPayment, enums.OrderStatusVerificationPending},
		{enums.OrderStatusVerificationPending, enums.OrderStatusPaid},
		{enums.OrderStatusVerificationPending, enums.OrderStatusPaidFull},
		{enums.OrderStatusVerificationPending, enums.OrderStatusWaitingPayment},
		{enums.OrderStatusPaid, enums.OrderStatusInProgress},
		{enums.OrderStatusPaidFull, enums.OrderStatusInProgress},
		{enums.OrderStatusInProgress, enums.OrderStatusReview},
		{enums.OrderStatusReview, enums.OrderStatusRevision},
		{enums.OrderStatusRevision, enums.OrderStatusReview},
		{enums.OrderStatusReview, enums.OrderStatusCompleted},
		{enums.OrderStatusPending, enums.OrderStatusRejected},
		{enums.OrderStatusVerificationPending, enums.OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPaid, enums.OrderStatusCancelled},
		{enums.OrderStatusInProgress, enums.OrderStatusCancelled},
		{enums.OrderStatusWaitingPayment, enums.OrderStatusPaid},
		{enums.OrderStatusCompleted, enums.OrderStatusInProgress},
		{enums.OrderStatusCancelled, enums.OrderStatusPending},
		{enums.OrderStatusRejected, enums.OrderStatusWaitingPayment},
		{enums.OrderStatusRevision, enums.OrderStatusCompleted},
		{enums.OrderStatusPaid, enums.OrderStatusReview},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
		enums.OrderStatusRejected,
	} {
		if exits, ok := transitions[status]; ok && len(exits) > 0 {
			t.Errorf("terminal status %s has exits %v", status, exits)
		}
	}
}

func TestIsCancellable(t *testing.T) {
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusDraft,
		enums.OrderStatusPending,
		enums.OrderStatusWaitingEstimation,
		enums.OrderStatusWaitingPayment,
		enums.OrderStatusVerificationPending,
	} {
		if !IsCancellable(status) {
			t.Errorf("expected %s to be cancellable", status)
		}
	}
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPaid,
		enums.OrderStatusPaidFull,
		enums.OrderStatusInProgress,
		enums.OrderStatusReview,
		enums.OrderStatusRevision,
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
		enums.OrderStatusRejected,
	} {
		if IsCancellable(status) {
			t.Errorf("expected %s not to be cancellable", status)
		}
	}
}
