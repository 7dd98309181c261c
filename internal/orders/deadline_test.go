package orders

import (
	"testing"
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
)

func TestResolveDeadlineKeys(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	for _, key := range []string{"24h", "3d", "7d", "14d"} {
		got, err := ResolveDeadline(key, now)
		if err != nil {
			t.Fatalf("ResolveDeadline(%q) error: %v", key, err)
		}
		if string(got) != key {
			t.Fatalf("ResolveDeadline(%q) = %q", key, got)
		}
	}
}

func TestResolveDeadlineFreeDates(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		want enums.DeadlineKey
	}{
		{date: "10.06.2025", want: enums.DeadlineDay},      // due tonight
		{date: "12.06.2025", want: enums.DeadlineThreeDay}, // ~2.6 days out
		{date: "16.06.2025", want: enums.DeadlineWeek},     // ~6.6 days out
		{date: "30.06.2025", want: enums.DeadlineTwoWeeks},
	}
	for _, tc := range tests {
		got, err := ResolveDeadline(tc.date, now)
		if err != nil {
			t.Fatalf("ResolveDeadline(%q) error: %v", tc.date, err)
		}
		if got != tc.want {
			t.Fatalf("ResolveDeadline(%q) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestResolveDeadlineRejects(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	for _, value := range []string{"yesterday", "2025-06-12", "32.01.2025", ""} {
		if _, err := ResolveDeadline(value, now); !apperrors.IsCode(err, apperrors.CodeValidation) {
			t.Fatalf("ResolveDeadline(%q): expected validation error, got %v", value, err)
		}
	}

	if _, err := ResolveDeadline("01.06.2025", now); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected past date to be rejected, got %v", err)
	}
}
