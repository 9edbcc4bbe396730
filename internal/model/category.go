package model

// Category names with special meaning to budget scoping.
const (
	CategorySalary      = "salary"
	CategoryOtherIncome = "other income"
	CategoryGeneral     = "general"
	CategoryUnknown     = "general/other"
)

// SuggestedCategories is the recommended taxonomy offered to the classifier and the UI.
// Categories are open: anything outside this list is still a valid category.
var SuggestedCategories = []string{
	"groceries",
	"dining",
	"shopping",
	"transport",
	"entertainment",
	"utilities",
	"health",
	"housing",
	"education",
	"travel",
	CategorySalary,
	CategoryOtherIncome,
	CategoryGeneral,
}
