package enums

// RiskFactor names a condition that blocks automatic quoting.
type RiskFactor string

const (
	RiskFactorHasAttachments      RiskFactor = "has_attachments"
	RiskFactorCategoryNotAllowed  RiskFactor = "category_not_allowlisted"
	RiskFactorUrgentDeadline      RiskFactor = "urgent_deadline"
	RiskFactorDescriptionTooShort RiskFactor = "description_too_short"
)

var validRiskFactors = []RiskFactor{
	RiskFactorHasAttachments,
	RiskFactorCategoryNotAllowed,
	RiskFactorUrgentDeadline,
	RiskFactorDescriptionTooShort,
}

// IsValid reports whether the value is a known RiskFactor.
func (r RiskFactor) IsValid() bool {
	for _, candidate := range validRiskFactors {
		if candidate == r {
			return true
		}
	}
	return false
}
