package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 || d.String() != "2024-02-29" {
		t.Fatalf("unexpected date %v", d)
	}
	for _, bad := range []string{"", "2023-02-29", "2024/01/01", "24-01-01", "2024-13-01"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"income": Income, "EXPENSE": Expense, " Income ": Income} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if Kind("Income").Valid() {
		t.Fatalf("Valid must be exact")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2025, 1, 1),
		Kind:     Expense,
		Category: "Food",
		Amount:   Money{Cents: 100},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Kind: Expense, Amount: Money{Cents: 1}},
		{Date: NewDate(2025, 1, 1), Kind: "refund", Amount: Money{Cents: 1}},
		{Date: NewDate(2025, 1, 1), Kind: Income, Amount: Money{Cents: 0}},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionKeyIgnoresID(t *testing.T) {
	a := Transaction{ID: "a", Date: NewDate(2024, 1, 5), Kind: Income, Category: "Salary", Description: "Paycheck", Amount: Money{Cents: 500000}}
	b := a
	b.ID = ""
	if a.Key() != b.Key() {
		t.Fatalf("keys should match regardless of id")
	}
	b.Amount.Cents++
	if a.Key() == b.Key() {
		t.Fatalf("keys should differ on amount")
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Category: "Food", Limit: Money{Cents: 100000}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	cases := map[string]Budget{
		"empty":    {Category: " ", Limit: Money{Cents: 1}},
		"comma":    {Category: "Food,Drink", Limit: Money{Cents: 1}},
		"zero":     {Category: "Food", Limit: Money{Cents: 0}},
		"negative": {Category: "Food", Limit: Money{Cents: -10}},
	}
	for name, b := range cases {
		if err := b.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
