package orders

import (
	"time"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
)

const freeDateLayout = "02.01.2006"

// ResolveDeadline accepts either an enumerated deadline key or a free-form
// DD.MM.YYYY date and folds the latter to the nearest key. Dates count to the
// end of the named day.
func ResolveDeadline(value string, now time.Time) (enums.DeadlineKey, error) {
	if key, err := enums.ParseDeadlineKey(value); err == nil {
		return key, nil
	}

	due, err := time.ParseInLocation(freeDateLayout, value, now.Location())
	if err != nil {
		return "", apperrors.New(apperrors.CodeValidation, "deadline must be a known key or a DD.MM.YYYY date")
	}
	due = due.Add(24*time.Hour - time.Second)
	if due.Before(now) {
		return "", apperrors.New(apperrors.CodeValidation, "deadline is in the past")
	}

	remaining := due.Sub(now)
	switch {
	case remaining < 24*time.Hour:
		return enums.DeadlineDay, nil
	case remaining <= 72*time.Hour:
		return enums.DeadlineThreeDay, nil
	case remaining <= 168*time.Hour:
		return enums.DeadlineWeek, nil
	default:
		return enums.DeadlineTwoWeeks, nil
	}
}
