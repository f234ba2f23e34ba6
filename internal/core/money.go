// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Sums are done on cents to keep totals exact.
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// ParseMoney converts a decimal string to Money with half-up rounding to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero is a
// valid price; negative values return ErrNegativePrice.
//
// Examples:
//
//	ParseMoney("5")     -> 500
//	ParseMoney("2,50")  -> 250
//	ParseMoney("1.005") -> 101
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidPrice
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidPrice
	}
	if d.IsNegative() {
		return Money{}, ErrNegativePrice
	}
	return MoneyFromDecimal(d), nil
}

// MoneyFromDecimal rounds a decimal amount half-up to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(hundred).Round(0).IntPart()}
}

// Decimal returns the amount as a decimal with two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// DivideBy returns m/n rounded half-up to cents, or zero when n is 0.
func (m Money) DivideBy(n int) Money {
	if n == 0 {
		return Money{}
	}
	return MoneyFromDecimal(m.Decimal().Div(decimal.NewFromInt(int64(n))))
}

// String renders the plain decimal form, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// BRL formats the amount in Brazilian real notation, e.g. "R$ 1.234,50".
func (m Money) BRL() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := decimal.NewFromInt(cents / 100).String()
	var b strings.Builder
	for i, r := range units {
		if i > 0 && (len(units)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	rem := cents % 100
	out := "R$ " + b.String() + "," + string(rune('0'+rem/10)) + string(rune('0'+rem%10))
	if neg {
		return "-" + out
	}
	return out
}
