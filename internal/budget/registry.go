// Package budget persists monthly spending caps keyed by category.
package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/fileutil"
	"fintrack/internal/log"
)

// LoadResult holds the budgets in first-seen order plus skipped-line diagnostics.
type LoadResult struct {
	Budgets     []core.Budget
	Skipped     int
	Diagnostics []core.Diagnostic
}

// Map returns the limits keyed by category.
func (r LoadResult) Map() map[string]int64 {
	m := make(map[string]int64, len(r.Budgets))
	for _, b := range r.Budgets {
		m[b.Category] = b.Limit.Cents
	}
	return m
}

// Registry is the category to limit file. Every change rewrites the whole file.
type Registry struct {
	mu   sync.Mutex
	path string
}

func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

func (r *Registry) Path() string { return r.path }

// Load reads the registry. A missing file is an empty registry. When a
// category appears more than once the last limit wins and the first
// position is kept.
func (r *Registry) Load(ctx context.Context) (LoadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.load()
	if err != nil {
		return LoadResult{}, err
	}
	if res.Skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed budget lines", log.FieldPath, r.path, log.FieldSkipped, res.Skipped)
	}
	return res, nil
}

func (r *Registry) load() (LoadResult, error) {
	lines, err := fileutil.ReadLines(r.path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read budgets: %w", err)
	}
	var res LoadResult
	index := make(map[string]int)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fileutil.CheckLine(line); err != nil {
			res.Skipped++
			res.Diagnostics = append(res.Diagnostics, core.Diagnostic{Line: i, Raw: fileutil.Excerpt(line), Reason: err.Error()})
			continue
		}
		b, err := decodeLine(line)
		if err != nil {
			res.Skipped++
			res.Diagnostics = append(res.Diagnostics, core.Diagnostic{Line: i, Raw: line, Reason: err.Error()})
			continue
		}
		if pos, ok := index[b.Category]; ok {
			res.Budgets[pos] = b
			continue
		}
		index[b.Category] = len(res.Budgets)
		res.Budgets = append(res.Budgets, b)
	}
	return res, nil
}

// Budgets returns the valid budgets in file order.
func (r *Registry) Budgets(ctx context.Context) ([]core.Budget, error) {
	res, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return res.Budgets, nil
}

// Get returns the budget for category.
func (r *Registry) Get(ctx context.Context, category string) (core.Budget, bool, error) {
	res, err := r.Load(ctx)
	if err != nil {
		return core.Budget{}, false, err
	}
	for _, b := range res.Budgets {
		if b.Category == category {
			return b, true, nil
		}
	}
	return core.Budget{}, false, nil
}

// Set upserts b and rewrites the file.
func (r *Registry) Set(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range res.Budgets {
		if res.Budgets[i].Category == b.Category {
			res.Budgets[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		res.Budgets = append(res.Budgets, b)
	}
	if err := r.write(res.Budgets); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget set",
		log.FieldCategory, b.Category,
		"limit_minor", b.Limit.Cents,
		"replaced", replaced)
	return nil
}

// Delete removes category. It reports false, without touching the file,
// when the category is not present.
func (r *Registry) Delete(ctx context.Context, category string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.load()
	if err != nil {
		return false, err
	}
	kept := res.Budgets[:0:0]
	for _, b := range res.Budgets {
		if b.Category != category {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(res.Budgets) {
		return false, nil
	}
	if err := r.write(kept); err != nil {
		return false, err
	}
	slog.InfoContext(ctx, "Budget deleted", log.FieldCategory, category)
	return true, nil
}

func (r *Registry) write(budgets []core.Budget) error {
	lines := make([]string, len(budgets))
	for i, b := range budgets {
		lines[i] = encodeLine(b)
	}
	if err := fileutil.WriteLinesAtomic(r.path, lines); err != nil {
		return fmt.Errorf("write budgets: %w", err)
	}
	return nil
}

func encodeLine(b core.Budget) string {
	return b.Category + "," + strconv.FormatInt(b.Limit.Cents, 10)
}

type jsonLine struct {
	Category    *string     `json:"category"`
	AmountPaisa json.Number `json:"amount_paisa"`
}

// decodeLine accepts "category,limit_minor" and the one-object-per-line form
// {"category": ..., "amount_paisa": ...}.
func decodeLine(line string) (core.Budget, error) {
	line = strings.TrimSpace(line)
	var category, amount string
	if strings.HasPrefix(line, "{") {
		var in jsonLine
		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&in); err != nil {
			return core.Budget{}, fmt.Errorf("invalid JSON: %v", err)
		}
		if in.Category == nil {
			return core.Budget{}, errors.New("missing category")
		}
		category, amount = *in.Category, in.AmountPaisa.String()
	} else {
		idx := strings.LastIndex(line, ",")
		if idx < 0 || strings.Count(line, ",") != 1 {
			return core.Budget{}, fmt.Errorf("expected 2 fields, got %d", strings.Count(line, ",")+1)
		}
		category, amount = line[:idx], line[idx+1:]
	}
	limit, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
	if err != nil {
		return core.Budget{}, fmt.Errorf("invalid limit %q", amount)
	}
	b := core.Budget{Category: category, Limit: core.Money{Cents: limit}}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}
