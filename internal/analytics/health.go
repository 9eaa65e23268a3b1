package analytics

import "fintrack/internal/core"

// Component maxima of the health score.
const (
	MaxSavingsRatePoints     = 30
	MaxBudgetAdherencePoints = 25
	MaxIncomeVsExpensePoints = 25
	MaxDebtManagementPoints  = 20
)

// neutralAdherencePoints is awarded when budget adherence cannot be measured.
const neutralAdherencePoints = 10

// HealthBreakdown is the composite financial health score for one month.
type HealthBreakdown struct {
	SavingsRate     int `json:"savings_rate_points"`
	BudgetAdherence int `json:"budget_adherence_points"`
	IncomeVsExpense int `json:"income_vs_expense_points"`
	DebtManagement  int `json:"debt_management_points"`
	Total           int `json:"total"`
}

// Tier buckets a health score total.
type Tier int

const (
	TierCritical Tier = iota // below 50
	TierFair                 // 50 to 74
	TierStrong               // 75 and above
)

// Tier returns the score's tier.
func (h HealthBreakdown) Tier() Tier {
	switch {
	case h.Total < 50:
		return TierCritical
	case h.Total < 75:
		return TierFair
	default:
		return TierStrong
	}
}

// Recommendation is the one-line advice for the score's tier.
func (h HealthBreakdown) Recommendation() string {
	return h.Tier().Recommendation()
}

func (t Tier) Recommendation() string {
	switch t {
	case TierCritical:
		return "Your finances need attention. Cut non-essential spending aggressively and build a basic budget."
	case TierFair:
		return "You are on the right track. Focus on increasing your savings rate and trimming over-budget categories."
	default:
		return "Your finances are in good shape. Maintain your habits and consider raising your savings goals."
	}
}

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierFair:
		return "fair"
	default:
		return "strong"
	}
}

// HealthScore scores the given month. Only that month's transactions count.
//
// Budget adherence compares expenses in budgeted categories with the sum of
// all limits. Having no budgets and having limits that sum to zero both
// score the neutral 10 points.
func HealthScore(txs []core.Transaction, budgets []core.Budget, year, month int) HealthBreakdown {
	agg := Aggregate(txs, year, month)
	income, expense := agg.Income.Cents, agg.Expense.Cents
	savings := income - expense

	var h HealthBreakdown

	// rate >= 20% and rate >= 10%, compared in integers
	if income > 0 {
		switch {
		case savings*100 >= 20*income:
			h.SavingsRate = MaxSavingsRatePoints
		case savings*100 >= 10*income:
			h.SavingsRate = 15
		}
	}

	h.BudgetAdherence = neutralAdherencePoints
	if len(budgets) > 0 {
		var limits, actual int64
		for _, b := range budgets {
			limits += b.Limit.Cents
			actual += agg.CategorySpend[b.Category]
		}
		if limits > 0 {
			switch {
			case actual <= limits:
				h.BudgetAdherence = MaxBudgetAdherencePoints
			case actual*10 <= limits*11:
				h.BudgetAdherence = 15
			default:
				h.BudgetAdherence = 5
			}
		}
	}

	switch {
	case income > expense:
		h.IncomeVsExpense = MaxIncomeVsExpensePoints
	case income == expense:
		h.IncomeVsExpense = 10
	}

	// No debt data is tracked; non-negative savings stands in for it.
	if savings >= 0 {
		h.DebtManagement = MaxDebtManagementPoints
	} else {
		h.DebtManagement = 5
	}

	h.Total = h.SavingsRate + h.BudgetAdherence + h.IncomeVsExpense + h.DebtManagement
	return h
}

// SavingsRate returns (income-expense)/income*100 for the month. ok is false
// when the month has no income.
func SavingsRate(txs []core.Transaction, year, month int) (rate float64, ok bool) {
	s := MonthlySummary(txs, year, month)
	if s.Income <= 0 {
		return 0, false
	}
	return float64(s.Balance) / float64(s.Income) * 100, true
}

// MonthSavings is one point of a savings trend.
type MonthSavings struct {
	Year    int   `json:"year"`
	Month   int   `json:"month"`
	Savings int64 `json:"savings_minor"`
}

// SavingsTrend walks back n months starting at (year, month) inclusive.
// The first element is the given month.
func SavingsTrend(txs []core.Transaction, year, month, n int) []MonthSavings {
	if n <= 0 {
		return nil
	}
	out := make([]MonthSavings, 0, n)
	for i := 0; i < n; i++ {
		y, m := AddMonths(year, month, -i)
		out = append(out, MonthSavings{Year: y, Month: m, Savings: MonthlySummary(txs, y, m).Balance})
	}
	return out
}

// IncomeConsistent reports whether each of the n months ending at
// (year, month) has at least one income record.
func IncomeConsistent(txs []core.Transaction, year, month, n int) bool {
	for i := 0; i < n; i++ {
		y, m := AddMonths(year, month, -i)
		if total(txs, core.Income, y, m) == 0 {
			return false
		}
	}
	return true
}
