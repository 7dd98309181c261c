package pricing

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	apperrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
)

// Quote is the priced breakdown for an order before wallet and promo apply.
// All amounts are integer kopecks.
type Quote struct {
	BasePrice         int64                `json:"base_price"`
	UrgencyMultiplier decimal.Decimal      `json:"urgency_multiplier"`
	DiscountPercent   int                  `json:"discount_percent"`
	FinalPrice        int64                `json:"final_price"`
	Bucket            enums.DeadlineBucket `json:"deadline_bucket"`
}

// ClassifyInput carries the order attributes the risk rules inspect.
type ClassifyInput struct {
	WorkCategory   enums.WorkCategory
	DeadlineKey    enums.DeadlineKey
	Description    string
	HasAttachments bool
}

// Service computes quotes from the lookup tables and decides whether an
// order may be priced without operator review.
type Service interface {
	Quote(category enums.WorkCategory, deadline enums.DeadlineKey, discountPercent int) (Quote, error)
	Classify(input ClassifyInput) (bool, []enums.RiskFactor)
}

type service struct{}

// NewService returns the table-driven pricing service.
func NewService() Service {
	return &service{}
}

func (s *service) Quote(category enums.WorkCategory, deadline enums.DeadlineKey, discountPercent int) (Quote, error) {
	if !category.IsValid() {
		return Quote{}, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid work category %q", category))
	}
	if !deadline.IsValid() {
		return Quote{}, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid deadline key %q", deadline))
	}
	if discountPercent < 0 || discountPercent > 100 {
		return Quote{}, apperrors.New(apperrors.CodeValidation, "discount percent must be between 0 and 100")
	}

	base, ok := basePrices[category]
	if !ok {
		return Quote{}, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("no price table entry for category %q", category))
	}

	bucket := deadline.Bucket()
	multiplier := decimal.RequireFromString(urgencyMultipliers[bucket])

	// round half-up to whole kopecks
	price := decimal.NewFromInt(base).
		Mul(multiplier).
		Mul(decimal.NewFromInt(int64(100 - discountPercent))).
		Div(decimal.NewFromInt(100)).
		Round(0)

	return Quote{
		BasePrice:         base,
		UrgencyMultiplier: multiplier,
		DiscountPercent:   discountPercent,
		FinalPrice:        price.IntPart(),
		Bucket:            bucket,
	}, nil
}

// Classify is pure: it reports whether the order may be auto-quoted and, if
// not, every rule it tripped. Rules are checked in a fixed order so the
// factor list is deterministic.
func (s *service) Classify(input ClassifyInput) (bool, []enums.RiskFactor) {
	var factors []enums.RiskFactor

	if input.HasAttachments {
		factors = append(factors, enums.RiskFactorHasAttachments)
	}
	if !autoQuoteCategories[input.WorkCategory] {
		factors = append(factors, enums.RiskFactorCategoryNotAllowed)
	}
	if input.DeadlineKey.Bucket() == enums.DeadlineBucketUrgent {
		factors = append(factors, enums.RiskFactorUrgentDeadline)
	}
	if utf8.RuneCountInString(input.Description) < MinDescriptionLength {
		factors = append(factors, enums.RiskFactorDescriptionTooShort)
	}

	return len(factors) == 0, factors
}
