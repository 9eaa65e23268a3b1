package transfer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"fintrack/internal/core"
)

// ErrMissingHeader rejects a CSV file that lacks one of the required columns.
var ErrMissingHeader = errors.New("missing required CSV header")

// RowIssue explains why a data row was not accepted. Row is the 1-based
// file line, so the first data row is 2.
type RowIssue struct {
	Row       int
	Reason    string
	Duplicate bool
}

// ImportReport is a staged import. Nothing is written until Commit.
type ImportReport struct {
	Accepted   []core.Transaction
	Invalid    int
	Duplicates int
	Issues     []RowIssue
}

// Skipped is the number of rows not accepted for any reason.
func (r ImportReport) Skipped() int {
	return r.Invalid + r.Duplicates
}

// ImportCSV stages the rows of r. A row is a duplicate when its
// (date, type, category, description, amount) tuple matches an existing
// transaction or a row accepted earlier in the same file.
func ImportCSV(r io.Reader, existing []core.Transaction) (ImportReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportReport{}, errors.Wrap(ErrMissingHeader, "empty file")
	}
	if err != nil {
		return ImportReport{}, errors.Wrap(err, "read csv header")
	}
	cols, err := columnIndex(header)
	if err != nil {
		return ImportReport{}, err
	}

	seen := make(map[core.DedupKey]struct{}, len(existing))
	for _, tx := range existing {
		seen[tx.Key()] = struct{}{}
	}

	var report ImportReport
	for row := 2; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Invalid++
				report.Issues = append(report.Issues, RowIssue{Row: row, Reason: perr.Error()})
				continue
			}
			return ImportReport{}, errors.Wrap(err, "read csv row")
		}

		tx, err := parseRow(record, cols)
		if err != nil {
			report.Invalid++
			report.Issues = append(report.Issues, RowIssue{Row: row, Reason: err.Error()})
			continue
		}
		key := tx.Key()
		if _, dup := seen[key]; dup {
			report.Duplicates++
			report.Issues = append(report.Issues, RowIssue{Row: row, Reason: "duplicate transaction", Duplicate: true})
			continue
		}
		seen[key] = struct{}{}
		report.Accepted = append(report.Accepted, tx)
	}
	return report, nil
}

// ImportCSVFile stages the CSV file at path.
func ImportCSVFile(path string, existing []core.Transaction) (ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportReport{}, errors.Wrap(err, "open import file")
	}
	defer f.Close()
	return ImportCSV(f, existing)
}

// Appender is the part of the ledger store Commit needs.
type Appender interface {
	AppendAll(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
}

// Commit appends every accepted row in one pass. A mid-write I/O failure
// can leave a partial append.
func Commit(ctx context.Context, a Appender, report ImportReport) ([]core.Transaction, error) {
	if len(report.Accepted) == 0 {
		return nil, nil
	}
	stored, err := a.AppendAll(ctx, report.Accepted)
	if err != nil {
		return nil, errors.Wrap(err, "commit import")
	}
	return stored, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, ok := cols[h]; !ok {
			cols[h] = i
		}
	}
	var missing []string
	for _, h := range Header {
		if _, ok := cols[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrap(ErrMissingHeader, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(record []string, cols map[string]int) (core.Transaction, error) {
	field := func(name string) (string, error) {
		i := cols[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing %s value", name)
		}
		return record[i], nil
	}
	values := make(map[string]string, len(Header))
	for _, h := range Header {
		v, err := field(h)
		if err != nil {
			return core.Transaction{}, err
		}
		values[h] = v
	}

	date, err := core.ParseDate(values["Date"])
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(values["Type"])
	if err != nil {
		return core.Transaction{}, err
	}
	cents, err := core.ParseDecimalToCents(values["Amount"])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", err, values["Amount"])
	}
	return core.Transaction{
		Date:        date,
		Kind:        kind,
		Category:    values["Category/Source"],
		Description: values["Description"],
		Amount:      core.Money{Cents: cents},
	}, nil
}
