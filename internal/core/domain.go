package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateLayout is the on-disk and interchange date format.
const DateLayout = "2006-01-02"

type (
	// Kind tells income and expense events apart.
	Kind string

	// Date is a calendar day without a time component, always in UTC.
	Date struct {
		time.Time
	}

	// Money is an amount in currency minor units (cents, paisa).
	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string // empty for records read from the legacy encoding
		Date        Date
		Kind        Kind
		Category    string // expense category or income source
		Description string
		Amount      Money
	}

	// DedupKey is the identity used to detect duplicate imports.
	DedupKey struct {
		Date        string
		Kind        Kind
		Category    string
		Description string
		Amount      int64
	}

	// Budget is a monthly spending cap for one category.
	Budget struct {
		Category string
		Limit    Money
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidKind     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidLimit    = errors.New("invalid budget limit")
	ErrInvalidCategory = errors.New("category contains a reserved character")
)

// Valid reports whether k is exactly one of the two known kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts "income" or "expense" in any letter case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// In reports whether the date falls in the given year and month.
func (d Date) In(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	return t.Amount.Validate()
}

// Key returns the tuple used for duplicate detection. The ID is not part of it.
func (t Transaction) Key() DedupKey {
	return DedupKey{
		Date:        t.Date.String(),
		Kind:        t.Kind,
		Category:    t.Category,
		Description: t.Description,
		Amount:      t.Amount.Cents,
	}
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.ContainsAny(b.Category, ",\n\r") {
		return ErrInvalidCategory
	}
	if b.Limit.Cents <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
