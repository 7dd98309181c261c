package enums

import "fmt"

// DeadlineKey is the enumerated deadline label a customer picks at intake.
// Free-form dates are resolved to the nearest key before they reach pricing.
type DeadlineKey string

const (
	DeadlineDay      DeadlineKey = "24h"
	DeadlineThreeDay DeadlineKey = "3d"
	DeadlineWeek     DeadlineKey = "7d"
	DeadlineTwoWeeks DeadlineKey = "14d"
)

var validDeadlineKeys = []DeadlineKey{
	DeadlineDay,
	DeadlineThreeDay,
	DeadlineWeek,
	DeadlineTwoWeeks,
}

// DeadlineBucket groups deadline keys by urgency for pricing.
type DeadlineBucket string

const (
	DeadlineBucketUrgent   DeadlineBucket = "urgent"
	DeadlineBucketShort    DeadlineBucket = "short"
	DeadlineBucketStandard DeadlineBucket = "standard"
	DeadlineBucketRelaxed  DeadlineBucket = "relaxed"
)

// String implements fmt.Stringer.
func (d DeadlineKey) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeadlineKey.
func (d DeadlineKey) IsValid() bool {
	for _, candidate := range validDeadlineKeys {
		if candidate == d {
			return true
		}
	}
	return false
}

// Bucket maps the key to its pricing bucket.
func (d DeadlineKey) Bucket() DeadlineBucket {
	switch d {
	case DeadlineDay:
		return DeadlineBucketUrgent
	case DeadlineThreeDay:
		return DeadlineBucketShort
	case DeadlineWeek:
		return DeadlineBucketStandard
	default:
		return DeadlineBucketRelaxed
	}
}

// ParseDeadlineKey converts raw input into DeadlineKey.
func ParseDeadlineKey(value string) (DeadlineKey, error) {
	for _, candidate := range validDeadlineKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deadline key %q", value)
}
