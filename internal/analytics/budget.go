package analytics

import "fintrack/internal/core"

// Status classifies a category's utilization.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "Warning"
	StatusOver    Status = "OVER"
)

const (
	warningPct = 70
	overPct    = 100
)

// StatusFor maps a utilization percentage to a Status.
func StatusFor(utilization float64) Status {
	switch {
	case utilization >= overPct:
		return StatusOver
	case utilization >= warningPct:
		return StatusWarning
	default:
		return StatusOK
	}
}

// BudgetLine is one budgeted category measured against a month's spend.
type BudgetLine struct {
	Category    string  `json:"category"`
	Budget      int64   `json:"budget_minor"`
	Spent       int64   `json:"spent_minor"`
	Remaining   int64   `json:"remaining_minor"`
	Utilization float64 `json:"utilization_pct"`
	Status      Status  `json:"status"`
}

// BudgetStatus measures every budget, in registry order, against the
// month's expenses. A zero limit yields zero utilization.
func BudgetStatus(txs []core.Transaction, budgets []core.Budget, year, month int) []BudgetLine {
	spend := Aggregate(txs, year, month).CategorySpend
	lines := make([]BudgetLine, 0, len(budgets))
	for _, b := range budgets {
		spent := spend[b.Category]
		util := percent(spent, b.Limit.Cents)
		lines = append(lines, BudgetLine{
			Category:    b.Category,
			Budget:      b.Limit.Cents,
			Spent:       spent,
			Remaining:   b.Limit.Cents - spent,
			Utilization: util,
			Status:      StatusFor(util),
		})
	}
	return lines
}

// Overall totals the budget lines.
type Overall struct {
	Budget      int64    `json:"budget_minor"`
	Spent       int64    `json:"spent_minor"`
	Remaining   int64    `json:"remaining_minor"`
	Utilization float64  `json:"utilization_pct"`
	Status      Status   `json:"status"`
	OverBudget  []string `json:"over_budget,omitempty"`
}

// OverallBudget sums every budgeted category for the month.
func OverallBudget(txs []core.Transaction, budgets []core.Budget, year, month int) Overall {
	var o Overall
	for _, line := range BudgetStatus(txs, budgets, year, month) {
		o.Budget += line.Budget
		o.Spent += line.Spent
		if line.Status == StatusOver {
			o.OverBudget = append(o.OverBudget, line.Category)
		}
	}
	o.Remaining = o.Budget - o.Spent
	o.Utilization = percent(o.Spent, o.Budget)
	o.Status = StatusFor(o.Utilization)
	return o
}

// DailyBudget is what is left to spend per day for the rest of the month.
type DailyBudget struct {
	Total         int64 // sum of all limits
	Spent         int64 // all expenses this month, budgeted or not
	RemainingDays int   // today included
	PerDay        int64
	Available     bool // false when no limits are set
	Over          bool
}

// RemainingDailyBudget divides the unspent monthly budget over the days left in today's month.
func RemainingDailyBudget(txs []core.Transaction, budgets []core.Budget, today core.Date) DailyBudget {
	year, month := today.Year(), today.Month()
	d := DailyBudget{
		Spent:         total(txs, core.Expense, year, month),
		RemainingDays: DaysInMonth(year, month) - today.Day() + 1,
	}
	for _, b := range budgets {
		d.Total += b.Limit.Cents
	}
	if d.Total <= 0 || d.RemainingDays <= 0 {
		return d
	}
	d.Available = true
	left := d.Total - d.Spent
	if left <= 0 {
		d.Over = true
		return d
	}
	d.PerDay = left / int64(d.RemainingDays)
	return d
}
