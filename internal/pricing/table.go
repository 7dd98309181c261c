package pricing

import "github.com/orderdesk/orderdesk-backend/pkg/enums"

// basePrices holds the starting price per work category in kopecks. A
// category missing here cannot be auto-quoted and goes to manual estimation.
var basePrices = map[enums.WorkCategory]int64{
	enums.WorkCategoryEssay:        150000,
	enums.WorkCategoryLabReport:    120000,
	enums.WorkCategoryPresentation: 100000,
	enums.WorkCategoryProblemSet:   80000,
	enums.WorkCategoryTranslation:  90000,
	enums.WorkCategoryEditing:      60000,
	enums.WorkCategoryCoursework:   500000,
	enums.WorkCategoryThesis:       1500000,
}

// urgencyMultipliers scales the base price by deadline bucket.
var urgencyMultipliers = map[enums.DeadlineBucket]string{
	enums.DeadlineBucketUrgent:   "2.0",
	enums.DeadlineBucketShort:    "1.5",
	enums.DeadlineBucketStandard: "1.2",
	enums.DeadlineBucketRelaxed:  "1.0",
}

// autoQuoteCategories is the fixed allow-list of categories simple enough to
// price without a human look. Long-form work always gets operator review.
var autoQuoteCategories = map[enums.WorkCategory]bool{
	enums.WorkCategoryEssay:        true,
	enums.WorkCategoryLabReport:    true,
	enums.WorkCategoryPresentation: true,
	enums.WorkCategoryProblemSet:   true,
	enums.WorkCategoryTranslation:  true,
	enums.WorkCategoryEditing:      true,
}

// MinDescriptionLength is the shortest description accepted for auto-quoting.
const MinDescriptionLength = 30
