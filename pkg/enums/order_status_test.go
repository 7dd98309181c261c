package enums

import "testing"

func TestParseOrderStatusFoldsLegacyAlias(t *testing.T) {
	status, err := ParseOrderStatus("wait_payment")
	if err != nil {
		t.Fatalf("legacy alias should parse: %v", err)
	}
	if status != OrderStatusWaitingPayment {
		t.Fatalf("expected waiting_payment, got %s", status)
	}
}

func TestParseOrderStatusRoundTrips(t *testing.T) {
	for _, status := range validOrderStatuses {
		parsed, err := ParseOrderStatus(string(status))
		if err != nil {
			t.Fatalf("status %s should parse: %v", status, err)
		}
		if parsed != status {
			t.Fatalf("status %s parsed as %s", status, parsed)
		}
	}
}

func TestParseOrderStatusRejectsUnknown(t *testing.T) {
	if _, err := ParseOrderStatus("exploded"); err == nil {
		t.Fatalf("unknown status should not parse")
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	terminal := []OrderStatus{OrderStatusCompleted, OrderStatusCancelled, OrderStatusRejected}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
	}
	for _, status := range []OrderStatus{OrderStatusDraft, OrderStatusPaid, OrderStatusReview} {
		if status.IsTerminal() {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestDeadlineKeyBuckets(t *testing.T) {
	tests := map[DeadlineKey]DeadlineBucket{
		DeadlineDay:      DeadlineBucketUrgent,
		DeadlineThreeDay: DeadlineBucketShort,
		DeadlineWeek:     DeadlineBucketStandard,
		DeadlineTwoWeeks: DeadlineBucketRelaxed,
	}
	for key, bucket := range tests {
		if key.Bucket() != bucket {
			t.Fatalf("key %s expected bucket %s got %s", key, bucket, key.Bucket())
		}
	}
}
