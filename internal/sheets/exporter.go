// Package sheets exports the ledger to a spreadsheet. It is a one-shot copy:
// the spreadsheet is never read back and never kept in sync.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// ErrNoTransactions is returned when there is nothing to export.
var ErrNoTransactions = errors.New("no transactions to export")

// Header is the first row written to the sheet.
var Header = []any{"Date", "Type", "Category/Source", "Description", "Amount", "ID"}

type Exporter struct {
	writer RowWriter
	sheet  string
}

func NewExporter(w RowWriter, sheet string) *Exporter {
	return &Exporter{writer: w, sheet: sheet}
}

// Export appends a header row and one row per transaction, in ledger order.
// It returns the number of transactions written.
func (e *Exporter) Export(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, ErrNoTransactions
	}
	if e.writer == nil {
		return 0, errors.New("sheets writer not initialized")
	}

	rng, err := e.writer.AppendRows(ctx, e.sheet, Rows(txs))
	if err != nil {
		return 0, fmt.Errorf("export to sheet %s: %w", e.sheet, err)
	}

	slog.InfoContext(ctx, "Transactions exported to sheet",
		"sheet", e.sheet,
		"range", rng,
		"count", len(txs))
	return len(txs), nil
}

// Rows converts transactions to sheet rows, header first. Amounts are plain
// numbers so the spreadsheet can sum them.
func Rows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, Header)
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.Date.String(),
			kindLabel(tx.Kind),
			tx.Category,
			tx.Description,
			tx.Amount.Float(),
			tx.ID,
		})
	}
	return rows
}

func kindLabel(k core.Kind) string {
	if k == core.Income {
		return "Income"
	}
	return "Expense"
}
