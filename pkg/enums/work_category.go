package enums

import "fmt"

// WorkCategory identifies the kind of work an order asks for.
type WorkCategory string

const (
	WorkCategoryEssay        WorkCategory = "essay"
	WorkCategoryCoursework   WorkCategory = "coursework"
	WorkCategoryThesis       WorkCategory = "thesis"
	WorkCategoryLabReport    WorkCategory = "lab_report"
	WorkCategoryPresentation WorkCategory = "presentation"
	WorkCategoryProblemSet   WorkCategory = "problem_set"
	WorkCategoryTranslation  WorkCategory = "translation"
	WorkCategoryEditing      WorkCategory = "editing"
	WorkCategoryOther        WorkCategory = "other"
)

var validWorkCategories = []WorkCategory{
	WorkCategoryEssay,
	WorkCategoryCoursework,
	WorkCategoryThesis,
	WorkCategoryLabReport,
	WorkCategoryPresentation,
	WorkCategoryProblemSet,
	WorkCategoryTranslation,
	WorkCategoryEditing,
	WorkCategoryOther,
}

// String implements fmt.Stringer.
func (w WorkCategory) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WorkCategory.
func (w WorkCategory) IsValid() bool {
	for _, candidate := range validWorkCategories {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWorkCategory converts raw input into WorkCategory.
func ParseWorkCategory(value string) (WorkCategory, error) {
	for _, candidate := range validWorkCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid work category %q", value)
}
