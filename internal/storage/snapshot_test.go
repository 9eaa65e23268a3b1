package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestSnapshot_Replace(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "exports", "fintrack.db")

	snap, err := OpenSnapshot(path)
	require.NoError(t, err)
	defer snap.Close()

	txs := []core.Transaction{
		{ID: "a", Date: core.NewDate(2024, 1, 5), Kind: core.Income, Category: "Salary", Amount: core.Money{Cents: 500000}},
		{Date: core.NewDate(2024, 1, 10), Kind: core.Expense, Category: "Food", Description: "Lunch", Amount: core.Money{Cents: 12000}},
		{Date: core.NewDate(2024, 1, 11), Kind: core.Expense, Category: "Food", Amount: core.Money{Cents: 3000}},
		{Date: core.NewDate(2024, 2, 1), Kind: core.Expense, Category: "Rent", Amount: core.Money{Cents: 90000}},
	}
	budgets := []core.Budget{{Category: "Food", Limit: core.Money{Cents: 100000}}}
	takenAt := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, snap.Replace(ctx, txs, budgets, takenAt))

	nTx, nBudgets, err := snap.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, nTx)
	assert.Equal(t, 1, nBudgets)

	totals, err := snap.MonthCategoryTotals(ctx, 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, []CategoryTotal{
		{Category: "Salary", Kind: core.Income, Total: 500000},
		{Category: "Food", Kind: core.Expense, Total: 15000},
	}, totals)

	got, err := snap.TakenAt(ctx)
	require.NoError(t, err)
	assert.True(t, takenAt.Equal(got))

	// Replacing again drops the old rows.
	require.NoError(t, snap.Replace(ctx, txs[:1], nil, takenAt))
	nTx, nBudgets, err = snap.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, nTx)
	assert.Equal(t, 0, nBudgets)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))
}
