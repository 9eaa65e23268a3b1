package ledger

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Patch holds the fields an edit replaces. Nil fields are kept as they are.
// Amount is a decimal display amount; AmountMinor wins when both are set.
type Patch struct {
	Date        *string
	Kind        *string
	Category    *string
	Description *string
	Amount      *string
	AmountMinor *int64
}

func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Kind == nil && p.Category == nil &&
		p.Description == nil && p.Amount == nil && p.AmountMinor == nil
}

// Apply returns tx with the patch applied, validated.
func (p Patch) Apply(tx core.Transaction) (core.Transaction, error) {
	if p.Date != nil {
		d, err := core.ParseDate(*p.Date)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Date = d
	}
	if p.Kind != nil {
		k := core.Kind(strings.TrimSpace(*p.Kind))
		if !k.Valid() {
			return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidKind, *p.Kind)
		}
		tx.Kind = k
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	switch {
	case p.AmountMinor != nil:
		tx.Amount = core.Money{Cents: *p.AmountMinor}
	case p.Amount != nil:
		cents, err := core.ParseDecimalToCents(*p.Amount)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Amount = core.Money{Cents: cents}
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
