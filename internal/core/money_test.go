package core

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"5", 500, true},
		{"5.00", 500, true},
		{"2,50", 250, true},
		{"0", 0, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 6.00 ", 600, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
	if _, err := ParseMoney("-2"); err != ErrNegativePrice {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		cents int64
		plain string
		brl   string
	}{
		{0, "0.00", "R$ 0,00"},
		{250, "2.50", "R$ 2,50"},
		{1200, "12.00", "R$ 12,00"},
		{123450, "1234.50", "R$ 1.234,50"},
		{-505, "-5.05", "-R$ 5,05"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if got := m.String(); got != tc.plain {
			t.Fatalf("String(%d)=%q want %q", tc.cents, got, tc.plain)
		}
		if got := m.BRL(); got != tc.brl {
			t.Fatalf("BRL(%d)=%q want %q", tc.cents, got, tc.brl)
		}
	}
}

func TestMoneyDivideBy(t *testing.T) {
	if got := (Money{Cents: 1200}).DivideBy(3); got.Cents != 400 {
		t.Fatalf("expected 400, got %d", got.Cents)
	}
	if got := (Money{Cents: 1000}).DivideBy(3); got.Cents != 333 {
		t.Fatalf("expected 333, got %d", got.Cents)
	}
	if got := (Money{Cents: 500}).DivideBy(0); !got.IsZero() {
		t.Fatalf("expected zero for division by zero, got %d", got.Cents)
	}
}
