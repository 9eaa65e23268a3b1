package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestQueries(t *testing.T) {
	txs := []core.Transaction{
		expense(1, "A", 1),
		{Date: core.NewDate(2024, 3, 10), Kind: core.Income, Category: "Salary", Amount: core.Money{Cents: 5}},
		expense(10, "B", 2),
		expense(12, "C", 3),
	}

	assert.Len(t, OfKind(txs, core.Income), 1)
	assert.Len(t, OfKind(txs, core.Expense), 3)

	recent := LastDays(txs, core.NewDate(2024, 3, 11), 7)
	assert.Len(t, recent, 2)

	sorted := SortNewestFirst(txs)
	assert.Equal(t, "C", sorted[0].Category)
	assert.Equal(t, "Salary", sorted[1].Category)
	assert.Equal(t, "B", sorted[2].Category)
	assert.Equal(t, "A", sorted[3].Category)
	assert.Equal(t, "A", txs[0].Category, "input must not be reordered")
}

func TestFilterRecordsKeepsPositions(t *testing.T) {
	recs := []Record{
		{Position: 0, Transaction: expense(1, "A", 1)},
		{Position: 1, Transaction: core.Transaction{Date: core.NewDate(2024, 3, 9), Kind: core.Income, Category: "Salary", Amount: core.Money{Cents: 5}}},
		{Position: 2, Transaction: expense(10, "B", 2)},
		{Position: 3, Transaction: expense(12, "C", 3)},
	}
	today := core.NewDate(2024, 3, 11)

	got := FilterRecords(recs, KindIs(core.Expense), WithinDays(today, 7))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Position)

	assert.Len(t, FilterRecords(recs), 4)

	newest := SortRecordsNewestFirst(FilterRecords(recs, WithinDays(today, 7)))
	require.Len(t, newest, 2)
	assert.Equal(t, []int{2, 1}, []int{newest[0].Position, newest[1].Position})
	assert.Equal(t, 0, recs[0].Position, "input must not be reordered")
}
