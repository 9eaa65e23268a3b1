package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/fileutil"
	"fintrack/internal/log"
)

// Record is one successfully decoded ledger entry.
type Record struct {
	// Position is the zero-based index among valid records in read order.
	Position int
	// Line is the zero-based physical line index in the file.
	Line        int
	Raw         string
	Format      Format
	Transaction core.Transaction
}

type ReadResult struct {
	Records     []Record
	Skipped     int
	Diagnostics []core.Diagnostic
}

// Transactions returns the decoded transactions in read order.
func (r ReadResult) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Transaction
	}
	return out
}

// Store is the line-oriented transaction ledger. A missing file is an empty ledger.
type Store struct {
	mu       sync.Mutex
	path     string
	encoding Encoding
	newID    func() string
}

type Option func(*Store)

// WithEncoding sets the encoding used for new records.
func WithEncoding(e Encoding) Option {
	return func(s *Store) { s.encoding = e }
}

// WithIDGenerator replaces the uuid generator, mostly for tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		encoding: EncodingJSON,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

func (s *Store) Encoding() Encoding { return s.encoding }

// ReadAll decodes every line. Malformed lines are skipped and reported in
// the result, never returned as an error.
func (s *Store) ReadAll(ctx context.Context) (ReadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, res, err := s.load()
	if err != nil {
		return ReadResult{}, err
	}
	if res.Skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed ledger lines",
			log.FieldPath, s.path,
			log.FieldSkipped, res.Skipped)
	}
	return res, nil
}

func (s *Store) load() ([]string, ReadResult, error) {
	lines, err := fileutil.ReadLines(s.path)
	if err != nil {
		return nil, ReadResult{}, fmt.Errorf("read ledger: %w", err)
	}
	var res ReadResult
	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		if err := fileutil.CheckLine(line); err != nil {
			res.Skipped++
			res.Diagnostics = append(res.Diagnostics, core.Diagnostic{Line: i, Raw: fileutil.Excerpt(line), Reason: err.Error()})
			continue
		}
		tx, format, err := decodeLine(line)
		if err != nil {
			res.Skipped++
			res.Diagnostics = append(res.Diagnostics, core.Diagnostic{Line: i, Raw: line, Reason: err.Error()})
			continue
		}
		res.Records = append(res.Records, Record{
			Position:    len(res.Records),
			Line:        i,
			Raw:         line,
			Format:      format,
			Transaction: tx,
		})
	}
	return lines, res, nil
}

// Append validates tx and adds it to the end of the ledger. In JSON encoding
// a missing id is generated; the stored transaction is returned.
func (s *Store) Append(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	stored, err := s.AppendAll(ctx, []core.Transaction{tx})
	if err != nil {
		return core.Transaction{}, err
	}
	return stored[0], nil
}

// AppendAll validates and encodes every transaction before writing any of them.
func (s *Store) AppendAll(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]core.Transaction, len(txs))
	lines := make([]string, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if s.encoding == EncodingJSON && tx.ID == "" {
			tx.ID = s.newID()
		}
		line, err := encodeLine(tx, s.encoding.format())
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		stored[i] = tx
		lines[i] = line
	}
	if err := fileutil.AppendLines(s.path, lines); err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}

	for _, tx := range stored {
		slog.InfoContext(ctx, "Transaction appended",
			log.FieldTransactionID, tx.ID,
			log.FieldKind, tx.Kind,
			log.FieldCategory, tx.Category,
			log.FieldAmountMinor, tx.Amount.Cents,
			"date", tx.Date.String())
	}
	return stored, nil
}

// OverwriteAll atomically replaces the ledger contents with lines.
func (s *Store) OverwriteAll(ctx context.Context, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fileutil.WriteLinesAtomic(s.path, lines); err != nil {
		return fmt.Errorf("overwrite ledger: %w", err)
	}
	slog.InfoContext(ctx, "Ledger overwritten", log.FieldPath, s.path, log.FieldCount, len(lines))
	return nil
}

// DeleteAt removes the record at position. It reports false when the
// position is out of range and leaves the file untouched.
func (s *Store) DeleteAt(ctx context.Context, position int) (bool, error) {
	return s.mutate(ctx, func(res ReadResult) (int, bool) {
		return locate(res, position)
	}, func(lines []string, rec Record) ([]string, error) {
		return append(lines[:rec.Line:rec.Line], lines[rec.Line+1:]...), nil
	})
}

// EditAt applies p to the record at position and rewrites it in the
// record's own format. An empty patch leaves the file byte-for-byte unchanged.
func (s *Store) EditAt(ctx context.Context, position int, p Patch) (bool, error) {
	return s.mutate(ctx, func(res ReadResult) (int, bool) {
		return locate(res, position)
	}, editLine(p))
}

// DeleteByID removes the record with the given id.
func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	return s.mutate(ctx, func(res ReadResult) (int, bool) {
		return locateID(res, id)
	}, func(lines []string, rec Record) ([]string, error) {
		return append(lines[:rec.Line:rec.Line], lines[rec.Line+1:]...), nil
	})
}

// EditByID applies p to the record with the given id.
func (s *Store) EditByID(ctx context.Context, id string, p Patch) (bool, error) {
	return s.mutate(ctx, func(res ReadResult) (int, bool) {
		return locateID(res, id)
	}, editLine(p))
}

// Find returns the record with the given id.
func (s *Store) Find(ctx context.Context, id string) (Record, bool, error) {
	res, err := s.ReadAll(ctx)
	if err != nil {
		return Record{}, false, err
	}
	i, ok := locateID(res, id)
	if !ok {
		return Record{}, false, nil
	}
	return res.Records[i], true, nil
}

var errNoChange = errors.New("no change")

func (s *Store) mutate(
	ctx context.Context,
	find func(ReadResult) (int, bool),
	change func([]string, Record) ([]string, error),
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, res, err := s.load()
	if err != nil {
		return false, err
	}
	i, ok := find(res)
	if !ok {
		return false, nil
	}
	rec := res.Records[i]
	updated, err := change(lines, rec)
	if errors.Is(err, errNoChange) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if err := fileutil.WriteLinesAtomic(s.path, updated); err != nil {
		return false, fmt.Errorf("rewrite ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger record rewritten",
		"position", rec.Position,
		log.FieldTransactionID, rec.Transaction.ID,
		"lines_before", len(lines),
		"lines_after", len(updated))
	return true, nil
}

func editLine(p Patch) func([]string, Record) ([]string, error) {
	return func(lines []string, rec Record) ([]string, error) {
		if p.IsEmpty() {
			return nil, errNoChange
		}
		tx, err := p.Apply(rec.Transaction)
		if err != nil {
			return nil, err
		}
		line, err := encodeLine(tx, rec.Format)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(lines))
		copy(out, lines)
		out[rec.Line] = line
		return out, nil
	}
}

func locate(res ReadResult, position int) (int, bool) {
	if position < 0 || position >= len(res.Records) {
		return 0, false
	}
	return position, true
}

func locateID(res ReadResult, id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i, rec := range res.Records {
		if rec.Transaction.ID == id {
			return i, true
		}
	}
	return 0, false
}

func isBlank(line string) bool {
	for _, r := range line {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
