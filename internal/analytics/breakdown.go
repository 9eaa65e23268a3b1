package analytics

import (
	"sort"

	"fintrack/internal/core"
)

// CategoryBreakdown sums amounts per category over the given transactions and
// sorts by amount descending. Ties keep first-encountered order. Percentages
// are of the group total, zero when the total is zero.
func CategoryBreakdown(txs []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	var sum int64
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, core.CategoryAmount{Name: tx.Category})
		}
		out[i].Amount.Cents += tx.Amount.Cents
		sum += tx.Amount.Cents
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	for i := range out {
		out[i].Percentage = percent(out[i].Amount.Cents, sum)
	}
	return out
}

// ExpenseBreakdown is the category breakdown of the month's expenses.
func ExpenseBreakdown(txs []core.Transaction, year, month int) []core.CategoryAmount {
	return CategoryBreakdown(filter(txs, core.Expense, year, month))
}

// IncomeBySource is the breakdown of the month's income by source.
func IncomeBySource(txs []core.Transaction, year, month int) []core.CategoryAmount {
	return CategoryBreakdown(filter(txs, core.Income, year, month))
}

// TopCategories returns at most n entries of the month's expense breakdown.
func TopCategories(txs []core.Transaction, year, month, n int) []core.CategoryAmount {
	b := ExpenseBreakdown(txs, year, month)
	if n >= 0 && len(b) > n {
		b = b[:n]
	}
	return b
}

func filter(txs []core.Transaction, kind core.Kind, year, month int) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Kind == kind && tx.Date.In(year, month) {
			out = append(out, tx)
		}
	}
	return out
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
