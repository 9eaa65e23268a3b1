// Package storage writes queryable SQLite snapshots of the ledger and budgets.
// The text files stay the source of truth; a snapshot is replaced wholesale.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type Snapshot struct {
	db *sql.DB
}

// OpenSnapshot opens or creates the database at dbPath and migrates it.
func OpenSnapshot(dbPath string) (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Snapshot{db: db}, nil
}

func (s *Snapshot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Replace swaps the snapshot contents for txs and budgets in one database transaction.
func (s *Snapshot) Replace(ctx context.Context, txs []core.Transaction, budgets []core.Budget, takenAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM transactions", "DELETE FROM budgets", "DELETE FROM snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}

	insertTx, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(position, id, date, year, month, kind, category, description, amount_minor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer insertTx.Close()

	for i, t := range txs {
		var id sql.NullString
		if t.ID != "" {
			id = sql.NullString{String: t.ID, Valid: true}
		}
		if _, err := insertTx.ExecContext(ctx, i, id, t.Date.String(), t.Date.Year(), t.Date.Month(),
			string(t.Kind), t.Category, t.Description, t.Amount.Cents); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	for _, b := range budgets {
		if _, err := tx.ExecContext(ctx, "INSERT INTO budgets (category, limit_minor) VALUES (?, ?)",
			b.Category, b.Limit.Cents); err != nil {
			return fmt.Errorf("insert budget %s: %w", b.Category, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO snapshot_meta (key, value) VALUES ('taken_at', ?)",
		takenAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "SQLite snapshot written",
		"transactions", len(txs),
		"budgets", len(budgets))
	return nil
}

// CategoryTotal is one row of MonthCategoryTotals.
type CategoryTotal struct {
	Category string
	Kind     core.Kind
	Total    int64
}

// MonthCategoryTotals sums the snapshot by kind and category for one month,
// largest first.
func (s *Snapshot) MonthCategoryTotals(ctx context.Context, year, month int) ([]CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, category, SUM(amount_minor) AS total
		FROM transactions
		WHERE year = ? AND month = ?
		GROUP BY kind, category
		ORDER BY total DESC, MIN(position)`, year, month)
	if err != nil {
		return nil, fmt.Errorf("query month totals: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		var kind string
		if err := rows.Scan(&kind, &ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan month totals: %w", err)
		}
		ct.Kind = core.Kind(kind)
		out = append(out, ct)
	}
	return out, rows.Err()
}

// Counts returns how many transactions and budgets the snapshot holds.
func (s *Snapshot) Counts(ctx context.Context) (transactions, budgets int, err error) {
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&transactions); err != nil {
		return 0, 0, fmt.Errorf("count transactions: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM budgets").Scan(&budgets); err != nil {
		return 0, 0, fmt.Errorf("count budgets: %w", err)
	}
	return transactions, budgets, nil
}

// TakenAt returns when the snapshot was last replaced.
func (s *Snapshot) TakenAt(ctx context.Context) (time.Time, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM snapshot_meta WHERE key = 'taken_at'").Scan(&v)
	if err != nil {
		return time.Time{}, fmt.Errorf("read snapshot time: %w", err)
	}
	return time.Parse(time.RFC3339, v)
}
