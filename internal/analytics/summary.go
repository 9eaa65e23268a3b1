// Package analytics derives monthly figures from a loaded ledger and budget set.
// Every function is pure: callers pass the period explicitly and no I/O happens here.
package analytics

import (
	"time"

	"fintrack/internal/core"
)

// Summary is the income, expense and balance of one month in minor units.
type Summary struct {
	Income  int64 `json:"income_minor"`
	Expense int64 `json:"expense_minor"`
	Balance int64 `json:"balance_minor"`
}

// ForMonth returns the transactions dated in the given month, in input order.
func ForMonth(txs []core.Transaction, year, month int) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Date.In(year, month) {
			out = append(out, tx)
		}
	}
	return out
}

// MonthlySummary sums income and expense for the month. Balance may be negative.
func MonthlySummary(txs []core.Transaction, year, month int) Summary {
	var s Summary
	for _, tx := range txs {
		if !tx.Date.In(year, month) {
			continue
		}
		switch tx.Kind {
		case core.Income:
			s.Income += tx.Amount.Cents
		case core.Expense:
			s.Expense += tx.Amount.Cents
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}

// Totals sums every transaction regardless of date.
func Totals(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			s.Income += tx.Amount.Cents
		case core.Expense:
			s.Expense += tx.Amount.Cents
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}

// Aggregate computes the month's totals plus expense spend per category.
func Aggregate(txs []core.Transaction, year, month int) core.MonthlyAggregate {
	agg := core.MonthlyAggregate{
		Year:          year,
		Month:         month,
		CategorySpend: make(map[string]int64),
	}
	for _, tx := range ForMonth(txs, year, month) {
		switch tx.Kind {
		case core.Income:
			agg.Income.Cents += tx.Amount.Cents
		case core.Expense:
			agg.Expense.Cents += tx.Amount.Cents
			agg.CategorySpend[tx.Category] += tx.Amount.Cents
		}
	}
	return agg
}

// PreviousMonth returns the calendar month before (year, month).
func PreviousMonth(year, month int) (int, int) {
	return AddMonths(year, month, -1)
}

// AddMonths shifts (year, month) by n months. n may be negative; years are assumed positive.
func AddMonths(year, month, n int) (int, int) {
	idx := year*12 + (month - 1) + n
	return idx / 12, idx%12 + 1
}

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Change compares one kind's total between a month and the month before.
type Change struct {
	Current  int64
	Previous int64
	// Percent is only meaningful when Comparable is true.
	Percent    float64
	Comparable bool
}

// MonthOverMonth compares the kind's total for (year, month) with the previous month.
// The change is not comparable when the previous month is zero.
func MonthOverMonth(txs []core.Transaction, kind core.Kind, year, month int) Change {
	py, pm := PreviousMonth(year, month)
	c := Change{
		Current:  total(txs, kind, year, month),
		Previous: total(txs, kind, py, pm),
	}
	if c.Previous > 0 {
		c.Percent = float64(c.Current-c.Previous) / float64(c.Previous) * 100
		c.Comparable = true
	}
	return c
}

// AverageDailyExpense spreads the month's expense over its calendar days, in minor units.
func AverageDailyExpense(txs []core.Transaction, year, month int) float64 {
	return float64(total(txs, core.Expense, year, month)) / float64(DaysInMonth(year, month))
}

func total(txs []core.Transaction, kind core.Kind, year, month int) int64 {
	var sum int64
	for _, tx := range txs {
		if tx.Kind == kind && tx.Date.In(year, month) {
			sum += tx.Amount.Cents
		}
	}
	return sum
}
