package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Encoding selects how new records are written.
type Encoding string

const (
	// EncodingJSON writes one JSON object per line and carries the record id.
	EncodingJSON Encoding = "json"
	// EncodingLegacy writes date,kind,category,description,amount_minor with no id.
	EncodingLegacy Encoding = "legacy"
)

// Format identifies the encoding a line was read from.
type Format string

const (
	FormatLegacy Format = "legacy"
	FormatJSON   Format = "json"
	// FormatLegacyID is date,kind,category,amount_minor,description,id.
	FormatLegacyID Format = "legacy-id"
)

var (
	ErrMalformed = errors.New("malformed record")
	// ErrUnencodable is returned when a field cannot be represented in the positional format.
	ErrUnencodable = errors.New("field cannot be stored in the legacy encoding")
)

// ParseEncoding maps a configuration value to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case EncodingJSON, "":
		return EncodingJSON, nil
	case EncodingLegacy:
		return EncodingLegacy, nil
	default:
		return "", fmt.Errorf("unknown ledger encoding %q", s)
	}
}

type decoder struct {
	format  Format
	accepts func(line string) bool
	decode  func(line string) (core.Transaction, error)
}

// decoders are tried in order; the first one that accepts the line's shape decides.
var decoders = []decoder{
	{
		format:  FormatLegacy,
		accepts: func(l string) bool { return !isObject(l) && strings.Count(l, ",") == 4 },
		decode:  decodeLegacy,
	},
	{
		format:  FormatJSON,
		accepts: isObject,
		decode:  decodeJSON,
	},
	{
		format:  FormatLegacyID,
		accepts: func(l string) bool { return !isObject(l) && strings.Count(l, ",") == 5 },
		decode:  decodeLegacyID,
	},
}

func isObject(line string) bool {
	return strings.HasPrefix(line, "{")
}

// decodeLine parses one ledger line in whichever encoding it uses.
func decodeLine(line string) (core.Transaction, Format, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return core.Transaction{}, "", fmt.Errorf("%w: empty line", ErrMalformed)
	}
	for _, d := range decoders {
		if !d.accepts(trimmed) {
			continue
		}
		tx, err := d.decode(trimmed)
		if err != nil {
			return core.Transaction{}, d.format, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return tx, d.format, nil
	}
	return core.Transaction{}, "", fmt.Errorf("%w: expected 5 fields, got %d", ErrMalformed, strings.Count(trimmed, ",")+1)
}

func decodeLegacy(line string) (core.Transaction, error) {
	parts := strings.Split(line, ",")
	amount, err := parseMinor(parts[4])
	if err != nil {
		return core.Transaction{}, err
	}
	return build("", parts[0], parts[1], parts[2], parts[3], amount)
}

func decodeLegacyID(line string) (core.Transaction, error) {
	parts := strings.Split(line, ",")
	amount, err := parseMinor(parts[3])
	if err != nil {
		return core.Transaction{}, err
	}
	return build(strings.TrimSpace(parts[5]), parts[0], parts[1], parts[2], parts[4], amount)
}

// jsonLine is the structured record as read. Older writers used "category"
// instead of "category_or_source".
type jsonLine struct {
	ID               json.RawMessage `json:"id"`
	Date             *string         `json:"date"`
	Type             *string         `json:"type"`
	CategoryOrSource *string         `json:"category_or_source"`
	Category         *string         `json:"category"`
	Description      *string         `json:"description"`
	AmountPaisa      json.RawMessage `json:"amount_paisa"`
	AmountMinor      json.RawMessage `json:"amount_minor"`
}

// jsonRecord is the structured record as written.
type jsonRecord struct {
	ID               string `json:"id,omitempty"`
	Date             string `json:"date"`
	Type             string `json:"type"`
	CategoryOrSource string `json:"category_or_source"`
	Description      string `json:"description"`
	AmountPaisa      int64  `json:"amount_paisa"`
}

func decodeJSON(line string) (core.Transaction, error) {
	var in jsonLine
	if err := json.Unmarshal([]byte(line), &in); err != nil {
		return core.Transaction{}, fmt.Errorf("invalid JSON: %v", err)
	}
	if in.Date == nil {
		return core.Transaction{}, errors.New("missing date")
	}
	if in.Type == nil {
		return core.Transaction{}, errors.New("missing type")
	}
	category := in.CategoryOrSource
	if category == nil {
		category = in.Category
	}
	if category == nil {
		return core.Transaction{}, errors.New("missing category_or_source")
	}
	rawAmount := in.AmountPaisa
	if len(rawAmount) == 0 {
		rawAmount = in.AmountMinor
	}
	if len(rawAmount) == 0 {
		return core.Transaction{}, errors.New("missing amount_paisa")
	}
	amount, err := parseMinor(string(bytes.Trim(rawAmount, `"`)))
	if err != nil {
		return core.Transaction{}, err
	}
	var description string
	if in.Description != nil {
		description = *in.Description
	}
	return build(rawID(in.ID), *in.Date, *in.Type, *category, description, amount)
}

// rawID accepts string or numeric ids.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// parseMinor parses an integer minor-unit amount. Integral decimals such as
// "1200.0" are tolerated because some writers stored them that way; exponent
// forms are not.
func parseMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i > 0 && i < len(s)-1 && strings.Trim(s[i+1:], "0") == "" {
		s = s[:i]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", v)
	}
	return v, nil
}

func build(id, date, kind, category, description string, amount int64) (core.Transaction, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	k := core.Kind(strings.TrimSpace(kind))
	if !k.Valid() {
		return core.Transaction{}, fmt.Errorf("invalid type %q", kind)
	}
	return core.Transaction{
		ID:          id,
		Date:        d,
		Kind:        k,
		Category:    category,
		Description: description,
		Amount:      core.Money{Cents: amount},
	}, nil
}

// encodeLine serializes tx in the given format.
func encodeLine(tx core.Transaction, format Format) (string, error) {
	switch format {
	case FormatJSON:
		b, err := json.Marshal(jsonRecord{
			ID:               tx.ID,
			Date:             tx.Date.String(),
			Type:             tx.Kind.String(),
			CategoryOrSource: tx.Category,
			Description:      tx.Description,
			AmountPaisa:      tx.Amount.Cents,
		})
		if err != nil {
			return "", fmt.Errorf("marshal record: %w", err)
		}
		return string(b), nil
	case FormatLegacy:
		if err := checkPositional(tx.Category, tx.Description); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s,%s,%s,%s,%d", tx.Date, tx.Kind, tx.Category, tx.Description, tx.Amount.Cents), nil
	case FormatLegacyID:
		if err := checkPositional(tx.Category, tx.Description, tx.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s,%s,%s,%d,%s,%s", tx.Date, tx.Kind, tx.Category, tx.Amount.Cents, tx.Description, tx.ID), nil
	default:
		return "", fmt.Errorf("unknown record format %q", format)
	}
}

func checkPositional(fields ...string) error {
	for _, f := range fields {
		if strings.ContainsAny(f, ",\n\r") {
			return fmt.Errorf("%w: %q", ErrUnencodable, f)
		}
	}
	return nil
}

func (e Encoding) format() Format {
	if e == EncodingLegacy {
		return FormatLegacy
	}
	return FormatJSON
}
