package ledger

import (
	"sort"

	"fintrack/internal/core"
)

// Match reports whether a transaction should be kept.
type Match func(core.Transaction) bool

// KindIs matches transactions of kind.
func KindIs(kind core.Kind) Match {
	return func(tx core.Transaction) bool { return tx.Kind == kind }
}

// WithinDays matches transactions dated within n days before today, today
// included.
func WithinDays(today core.Date, n int) Match {
	cutoff := today.AddDate(0, 0, -n)
	return func(tx core.Transaction) bool {
		return !tx.Date.Before(cutoff) && !tx.Date.After(today.Time)
	}
}

// OfKind returns the transactions of the given kind, preserving order.
func OfKind(txs []core.Transaction, kind core.Kind) []core.Transaction {
	return filter(txs, KindIs(kind))
}

// LastDays keeps transactions dated within n days before today, today included.
func LastDays(txs []core.Transaction, today core.Date, n int) []core.Transaction {
	return filter(txs, WithinDays(today, n))
}

func filter(txs []core.Transaction, keep Match) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// SortNewestFirst returns a copy ordered by date descending. Entries on the
// same date keep their ledger order.
func SortNewestFirst(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// FilterRecords keeps the records whose transaction satisfies every match.
// Positions are left untouched so callers can still edit by position.
func FilterRecords(recs []Record, matches ...Match) []Record {
	var out []Record
next:
	for _, rec := range recs {
		for _, m := range matches {
			if !m(rec.Transaction) {
				continue next
			}
		}
		out = append(out, rec)
	}
	return out
}

// SortRecordsNewestFirst is SortNewestFirst for records.
func SortRecordsNewestFirst(recs []Record) []Record {
	out := make([]Record, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Transaction.Date.After(out[j].Transaction.Date.Time)
	})
	return out
}
