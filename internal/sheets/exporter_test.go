package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

type memoryWriter struct {
	sheet string
	rows  [][]any
	err   error
}

func (m *memoryWriter) AppendRows(_ context.Context, sheet string, rows [][]any) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sheet = sheet
	m.rows = append(m.rows, rows...)
	return sheet + "!A1:F3", nil
}

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Kind: core.Income, Category: "Salary", Description: "march", Amount: core.Money{Cents: 300000}},
		{Date: core.NewDate(2024, 3, 2), Kind: core.Expense, Category: "Food", Description: "lunch", Amount: core.Money{Cents: 1250}},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sample())
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []any{"2024-03-01", "Income", "Salary", "march", 3000.0, "a"}, rows[1])
	assert.Equal(t, []any{"2024-03-02", "Expense", "Food", "lunch", 12.5, ""}, rows[2])
}

func TestExporter_Export(t *testing.T) {
	w := &memoryWriter{}
	n, err := NewExporter(w, "Transactions").Export(context.Background(), sample())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Transactions", w.sheet)
	assert.Len(t, w.rows, 3)
}

func TestExporter_Empty(t *testing.T) {
	w := &memoryWriter{}
	_, err := NewExporter(w, "Transactions").Export(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTransactions)
	assert.Empty(t, w.rows)
}

func TestExporter_WriterError(t *testing.T) {
	boom := errors.New("quota exceeded")
	_, err := NewExporter(&memoryWriter{err: boom}, "Transactions").Export(context.Background(), sample())
	assert.ErrorIs(t, err, boom)
}

func TestExporter_NilWriter(t *testing.T) {
	_, err := NewExporter(nil, "Transactions").Export(context.Background(), sample())
	assert.Error(t, err)
}
