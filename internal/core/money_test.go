package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{"12.345", 1235, true},
		{" 2.50 ", 250, true},
		{"5000", 500000, true},
		{"-1", 0, false},
		{"-5.00", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		1:      "0.01",
		12000:  "120.00",
		488000: "4880.00",
		-5:     "-0.05",
		-12345: "-123.45",
	}
	for in, want := range cases {
		if got := FormatCents(in); got != want {
			t.Fatalf("FormatCents(%d) = %q, want %q", in, got, want)
		}
	}
	if got := (Money{Cents: 80001}).Display(); got != "800.01" {
		t.Fatalf("Display = %q", got)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, c := range []int64{1, 99, 100, 12345, 500000, 80001} {
		got, err := ParseDecimalToCents(FormatCents(c))
		if err != nil || got != c {
			t.Fatalf("round trip %d -> %d (err=%v)", c, got, err)
		}
	}
}
