package budget

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(filepath.Join(t.TempDir(), "budgets.txt"))
}

func budget(category string, cents int64) core.Budget {
	return core.Budget{Category: category, Limit: core.Money{Cents: cents}}
}

func TestRegistry_MissingFile(t *testing.T) {
	r := newTestRegistry(t)
	res, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Budgets)
	assert.Empty(t, res.Map())
}

func TestRegistry_SetUpsertsAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	require.NoError(t, r.Set(ctx, budget("Food", 100000)))
	require.NoError(t, r.Set(ctx, budget("Rent", 500000)))
	require.NoError(t, r.Set(ctx, budget("Food", 120000)))

	res, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Budget{budget("Food", 120000), budget("Rent", 500000)}, res.Budgets)

	data, err := os.ReadFile(r.Path())
	require.NoError(t, err)
	assert.Equal(t, "Food,120000\nRent,500000\n", string(data))

	b, ok, err := r.Get(ctx, "Rent")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(500000), b.Limit.Cents)

	_, ok, err = r.Get(ctx, "Travel")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := r.Budgets(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegistry_SetValidates(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.Set(ctx, budget("Food", 0)), core.ErrInvalidLimit)
	assert.ErrorIs(t, r.Set(ctx, budget(" ", 10)), core.ErrEmptyCategory)
	assert.ErrorIs(t, r.Set(ctx, budget("Food,Drink", 10)), core.ErrInvalidCategory)

	_, err := os.Stat(r.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRegistry_Delete(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	require.NoError(t, r.Set(ctx, budget("Food", 100)))
	require.NoError(t, r.Set(ctx, budget("Rent", 200)))

	ok, err := r.Delete(ctx, "Food")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Delete(ctx, "Food")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Rent": 200}, res.Map())
}

func TestRegistry_LoadToleratesMixedLines(t *testing.T) {
	r := newTestRegistry(t)
	content := "Food,100000\n" +
		`{"category": "Transport", "amount_paisa": 25000}` + "\n" +
		"broken line\n" +
		"Rent,abc\n" +
		"Food,90000\n"
	require.NoError(t, os.WriteFile(r.Path(), []byte(content), 0o644))

	res, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Budget{budget("Food", 90000), budget("Transport", 25000)}, res.Budgets)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, 2, res.Diagnostics[0].Line)
}

func TestRegistry_OversizedLineIsSkipped(t *testing.T) {
	r := newTestRegistry(t)
	content := "Food,100000\n" + strings.Repeat("y", 2<<20) + "\nRent,500000\n"
	require.NoError(t, os.WriteFile(r.Path(), []byte(content), 0o644))

	res, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Budget{budget("Food", 100000), budget("Rent", 500000)}, res.Budgets)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 1, res.Diagnostics[0].Line)
	assert.Contains(t, res.Diagnostics[0].Reason, "line too long")
}
