package analytics

import (
	"fmt"

	"fintrack/internal/core"
)

// AlertKind names the condition an Alert reports.
type AlertKind string

const (
	AlertBudgetWarning   AlertKind = "budget_warning"
	AlertBudgetOverspent AlertKind = "budget_overspent"
	AlertLargeExpense    AlertKind = "large_expense"
)

// Alert is a condition in the month worth surfacing to the user.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	Category string    `json:"category"`
	Amount   int64     `json:"amount_minor"`
	Limit    int64     `json:"limit_minor,omitempty"`
	Date     string    `json:"date,omitempty"`
	Message  string    `json:"message"`
}

// Alerts lists budget warnings (more than 80% used), overspent budgets and
// single expenses larger than 20% of the month's income. Budget alerts come
// first in the order categories were first spent in.
func Alerts(txs []core.Transaction, budgets []core.Budget, year, month int) []Alert {
	limits := limitsByCategory(budgets)
	monthTxs := ForMonth(txs, year, month)
	income := total(monthTxs, core.Income, year, month)

	var alerts []Alert
	for _, c := range CategoryBreakdownInOrder(monthTxs, core.Expense) {
		limit, ok := limits[c.Name]
		if !ok {
			continue
		}
		spent := c.Amount.Cents
		switch {
		case spent > limit:
			alerts = append(alerts, Alert{
				Kind: AlertBudgetOverspent, Category: c.Name, Amount: spent, Limit: limit,
				Message: fmt.Sprintf("%s budget overspent by %s", c.Name, core.FormatCents(spent-limit)),
			})
		case limit > 0 && spent*5 > limit*4:
			alerts = append(alerts, Alert{
				Kind: AlertBudgetWarning, Category: c.Name, Amount: spent, Limit: limit,
				Message: fmt.Sprintf("%s is at %.0f%% of its budget (%s / %s)",
					c.Name, percent(spent, limit), core.FormatCents(spent), core.FormatCents(limit)),
			})
		}
	}

	if income > 0 {
		for _, tx := range monthTxs {
			if tx.Kind == core.Expense && tx.Amount.Cents*5 > income {
				alerts = append(alerts, Alert{
					Kind: AlertLargeExpense, Category: tx.Category, Amount: tx.Amount.Cents, Date: tx.Date.String(),
					Message: fmt.Sprintf("Large expense of %s in %s on %s (more than 20%% of monthly income)",
						tx.Amount.Display(), tx.Category, tx.Date.Format("Jan 02")),
				})
			}
		}
	}
	return alerts
}

// AdviceKind names the rule that produced an Advice.
type AdviceKind string

const (
	AdviceReduceSpending   AdviceKind = "reduce_spending"
	AdviceNearingLimit     AdviceKind = "nearing_limit"
	AdviceUnbudgetedSpend  AdviceKind = "unbudgeted_spend"
	AdviceLowSavings       AdviceKind = "low_savings"
	AdviceExcellentSavings AdviceKind = "excellent_savings"
	AdviceRecordIncome     AdviceKind = "record_income"
	AdviceIrregularIncome  AdviceKind = "irregular_income"
	AdviceSetBudgets       AdviceKind = "set_budgets"
)

// Advice is one actionable recommendation.
type Advice struct {
	Kind     AdviceKind `json:"kind"`
	Category string     `json:"category,omitempty"`
	Message  string     `json:"message"`
}

// consistencyWindow is how many months of income IncomeConsistent checks for advice.
const consistencyWindow = 3

// Recommendations applies the advice rules to the month.
func Recommendations(txs []core.Transaction, budgets []core.Budget, year, month int) []Advice {
	limits := limitsByCategory(budgets)
	s := MonthlySummary(txs, year, month)

	var out []Advice
	for _, c := range CategoryBreakdownInOrder(ForMonth(txs, year, month), core.Expense) {
		spent := c.Amount.Cents
		limit, budgeted := limits[c.Name]
		switch {
		case budgeted && spent > limit:
			over := spent - limit
			reduction := 100.0
			if limit > 0 {
				reduction = min(100, percent(over, limit))
			}
			out = append(out, Advice{
				Kind: AdviceReduceSpending, Category: c.Name,
				Message: fmt.Sprintf("Consider reducing spending in %s. You have overspent by %s. Try to cut down by %.0f%%.",
					c.Name, core.FormatCents(over), reduction),
			})
		case budgeted && spent*5 > limit*4:
			out = append(out, Advice{
				Kind: AdviceNearingLimit, Category: c.Name,
				Message: fmt.Sprintf("You are nearing your budget limit for %s. You have %s remaining out of %s.",
					c.Name, core.FormatCents(limit-spent), core.FormatCents(limit)),
			})
		case !budgeted && s.Income > 0 && spent*10 > s.Income:
			out = append(out, Advice{
				Kind: AdviceUnbudgetedSpend, Category: c.Name,
				Message: fmt.Sprintf("You have significant spending in %s (%s) but no budget set. Consider setting a budget for this category.",
					c.Name, core.FormatCents(spent)),
			})
		}
	}

	switch {
	case s.Income <= 0:
		out = append(out, Advice{
			Kind:    AdviceRecordIncome,
			Message: "Record your income to get a clear picture of your savings rate and receive more tailored advice.",
		})
	case s.Balance*100 < 10*s.Income:
		out = append(out, Advice{
			Kind:    AdviceLowSavings,
			Message: "Your savings rate is low. Try the 50/30/20 rule (50% needs, 30% wants, 20% savings) to boost your savings.",
		})
	case s.Balance*100 >= 20*s.Income:
		out = append(out, Advice{
			Kind:    AdviceExcellentSavings,
			Message: "Excellent savings rate! Keep up the great work and consider increasing your savings goals.",
		})
	}

	if !IncomeConsistent(txs, year, month, consistencyWindow) {
		out = append(out, Advice{
			Kind:    AdviceIrregularIncome,
			Message: "Your income appears to be irregular. Building a 3-month emergency fund is highly recommended.",
		})
	}

	if len(budgets) == 0 && s.Expense > 0 {
		out = append(out, Advice{
			Kind:    AdviceSetBudgets,
			Message: "You haven't set any budgets. Setting budgets helps you control spending and find room to save.",
		})
	}
	return out
}

// CategoryBreakdownInOrder sums the kind's amounts per category keeping
// first-encountered order, without sorting.
func CategoryBreakdownInOrder(txs []core.Transaction, kind core.Kind) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, core.CategoryAmount{Name: tx.Category})
		}
		out[i].Amount.Cents += tx.Amount.Cents
	}
	return out
}

func limitsByCategory(budgets []core.Budget) map[string]int64 {
	m := make(map[string]int64, len(budgets))
	for _, b := range budgets {
		m[b.Category] = b.Limit.Cents
	}
	return m
}
