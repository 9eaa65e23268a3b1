package transfer

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// SQLiteReport is read back from the snapshot after it is written.
type SQLiteReport struct {
	Transactions int
	Budgets      int
	TakenAt      time.Time
	// MonthTotals covers the calendar month of the export time.
	MonthTotals []storage.CategoryTotal
}

// ExportSQLite replaces the snapshot database at dbPath with txs and budgets.
func ExportSQLite(ctx context.Context, txs []core.Transaction, budgets []core.Budget, dbPath string, now time.Time) (SQLiteReport, error) {
	if len(txs) == 0 && len(budgets) == 0 {
		return SQLiteReport{}, ErrNothingToExport
	}
	snap, err := storage.OpenSnapshot(dbPath)
	if err != nil {
		return SQLiteReport{}, errors.Wrap(err, "open snapshot")
	}
	defer snap.Close()

	if err := snap.Replace(ctx, txs, budgets, now); err != nil {
		return SQLiteReport{}, errors.Wrap(err, "write snapshot")
	}

	var rep SQLiteReport
	if rep.Transactions, rep.Budgets, err = snap.Counts(ctx); err != nil {
		return SQLiteReport{}, errors.Wrap(err, "verify snapshot")
	}
	if rep.TakenAt, err = snap.TakenAt(ctx); err != nil {
		return SQLiteReport{}, errors.Wrap(err, "verify snapshot")
	}
	if rep.MonthTotals, err = snap.MonthCategoryTotals(ctx, now.Year(), int(now.Month())); err != nil {
		return SQLiteReport{}, errors.Wrap(err, "verify snapshot")
	}
	return rep, nil
}
