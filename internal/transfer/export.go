// Package transfer converts the ledger to and from CSV and JSON files.
package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"fintrack/internal/core"
	"fintrack/internal/fileutil"
)

// ErrNothingToExport is returned when there are no records to write. No file is created.
var ErrNothingToExport = errors.New("nothing to export")

// Header is the fixed CSV column order for both export and import.
var Header = []string{"Date", "Type", "Category/Source", "Description", "Amount"}

// exportRecord is a transaction with its amount as a display string.
type exportRecord struct {
	Date             string `json:"date"`
	Type             string `json:"type"`
	CategoryOrSource string `json:"category_or_source"`
	Description      string `json:"description"`
	Amount           string `json:"amount"`
}

func toExport(txs []core.Transaction) []exportRecord {
	out := make([]exportRecord, len(txs))
	for i, tx := range txs {
		out[i] = exportRecord{
			Date:             tx.Date.String(),
			Type:             tx.Kind.String(),
			CategoryOrSource: tx.Category,
			Description:      tx.Description,
			Amount:           tx.Amount.Display(),
		}
	}
	return out
}

// WriteCSV writes the header and one row per transaction.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, r := range toExport(txs) {
		if err := cw.Write([]string{r.Date, r.Type, r.CategoryOrSource, r.Description, r.Amount}); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteJSON writes the transactions as an indented JSON array.
func WriteJSON(w io.Writer, txs []core.Transaction) error {
	return writeIndented(w, toExport(txs))
}

// ExportCSV writes txs to dest. An empty set returns ErrNothingToExport.
func ExportCSV(txs []core.Transaction, dest string) error {
	if len(txs) == 0 {
		return ErrNothingToExport
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs); err != nil {
		return err
	}
	return errors.Wrapf(fileutil.WriteFileAtomic(dest, buf.Bytes()), "export csv to %s", dest)
}

// ExportJSON writes txs to dest. An empty set returns ErrNothingToExport.
func ExportJSON(txs []core.Transaction, dest string) error {
	if len(txs) == 0 {
		return ErrNothingToExport
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, txs); err != nil {
		return err
	}
	return errors.Wrapf(fileutil.WriteFileAtomic(dest, buf.Bytes()), "export json to %s", dest)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return errors.Wrap(enc.Encode(v), "encode json")
}
