package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name       string
	Amount     Money
	Percentage float64 // share of the group total, 0 when the total is 0
}

// MonthlyAggregate is the derived per-month view of the ledger.
type MonthlyAggregate struct {
	Year          int
	Month         int // 1-12
	Income        Money
	Expense       Money
	CategorySpend map[string]int64 // expense minor units per category
}

// Balance is income minus expense and may be negative.
func (a MonthlyAggregate) Balance() int64 {
	return a.Income.Cents - a.Expense.Cents
}
