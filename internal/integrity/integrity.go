// Package integrity inspects the ledger and budget files and reports problems
// without changing them.
package integrity

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// FileReport is the result of checking one file.
type FileReport struct {
	Path     string
	Exists   bool
	Records  int
	Issues   []core.Diagnostic
	Warnings []string
}

// Report covers both data files.
type Report struct {
	Ledger  FileReport
	Budgets FileReport
}

// OK reports whether neither file has issues. Warnings do not count.
func (r Report) OK() bool {
	return len(r.Ledger.Issues) == 0 && len(r.Budgets.Issues) == 0
}

// Check validates every line of both files. A missing file is noted, not an issue.
func Check(ctx context.Context, ledgerPath, budgetPath string) (Report, error) {
	l, err := checkLedger(ctx, ledgerPath)
	if err != nil {
		return Report{}, err
	}
	b, err := checkBudgets(ctx, budgetPath)
	if err != nil {
		return Report{}, err
	}
	return Report{Ledger: l, Budgets: b}, nil
}

func checkLedger(ctx context.Context, path string) (FileReport, error) {
	fr := FileReport{Path: path, Exists: exists(path)}
	if !fr.Exists {
		return fr, nil
	}
	res, err := ledger.NewStore(path).ReadAll(ctx)
	if err != nil {
		return fr, err
	}
	fr.Records = len(res.Records)
	fr.Issues = res.Diagnostics

	formats := make(map[ledger.Format]int)
	ids := make(map[string][]int)
	for _, rec := range res.Records {
		formats[rec.Format]++
		if id := rec.Transaction.ID; id != "" {
			ids[id] = append(ids[id], rec.Line)
		}
	}
	if len(formats) > 1 {
		fr.Warnings = append(fr.Warnings, fmt.Sprintf("mixed record encodings: %s", describeFormats(formats)))
	}
	for id, lines := range ids {
		if len(lines) > 1 {
			fr.Warnings = append(fr.Warnings, fmt.Sprintf("id %q used on %d lines", id, len(lines)))
		}
	}
	sort.Strings(fr.Warnings)
	return fr, nil
}

func checkBudgets(ctx context.Context, path string) (FileReport, error) {
	fr := FileReport{Path: path, Exists: exists(path)}
	if !fr.Exists {
		return fr, nil
	}
	res, err := budget.NewRegistry(path).Load(ctx)
	if err != nil {
		return fr, err
	}
	fr.Records = len(res.Budgets)
	fr.Issues = res.Diagnostics
	return fr, nil
}

func describeFormats(formats map[ledger.Format]int) string {
	parts := make([]string, 0, len(formats))
	for f, n := range formats {
		parts = append(parts, fmt.Sprintf("%s=%d", f, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
