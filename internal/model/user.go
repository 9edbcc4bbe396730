package model

// BudgetMode selects how a period's budget ceiling is derived.
type BudgetMode string

const (
	// BudgetModeAuto derives the ceiling from observed salary income.
	BudgetModeAuto BudgetMode = "auto"
	// BudgetModeManual uses the user's fixed flexible-spending allowance.
	BudgetModeManual BudgetMode = "manual"
)

// User holds the profile values the analytics depend on.
type User struct {
	ID             string
	Name           string
	BudgetMode     BudgetMode
	Language       string  // Target language for cached translations; empty disables them
	BaselineIncome float64 // Declared monthly income
	FlexibleBudget float64 // Manual monthly spending allowance
}
