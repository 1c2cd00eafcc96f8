// Package money implements exact fixed-point currency arithmetic.
//
// Amounts are stored as int64 cents, so addition, subtraction and
// comparison are exact. Division and percentage application round
// half-up to the cent; callers that need a conserved total (equal
// splits) distribute the remainder themselves.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a currency amount in cents.
type Money int64

// Percent is a percentage with two fractional digits, stored as
// hundredths (60.25% == Percent(6025)).
type Percent int64

// HundredPercent is the exact sum required of a percentage split.
const HundredPercent = Percent(10000)

// FromCents builds a Money from a raw cent count.
func FromCents(cents int64) Money { return Money(cents) }

// Cents returns the raw cent count.
func (m Money) Cents() int64 { return int64(m) }

func (m Money) Add(o Money) Money { return m + o }
func (m Money) Sub(o Money) Money { return m - o }
func (m Money) Neg() Money        { return -m }

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsNegative() bool { return m < 0 }

// Min returns the smaller of two amounts.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// DivRoundHalfUp divides the amount into n parts, rounding half-up to
// the cent. n must be positive and the amount non-negative.
func (m Money) DivRoundHalfUp(n int) Money {
	q := int64(m) / int64(n)
	r := int64(m) % int64(n)
	if 2*r >= int64(n) {
		q++
	}
	return Money(q)
}

// ApplyPercent returns pct of the amount, rounded half-up to the cent.
func (m Money) ApplyPercent(pct Percent) Money {
	p := int64(m) * int64(pct)
	q := p / int64(HundredPercent)
	r := p % int64(HundredPercent)
	if 2*r >= int64(HundredPercent) {
		q++
	}
	return Money(q)
}

// String formats the amount with exactly two fractional digits,
// e.g. "12.30" or "-0.05".
func (m Money) String() string {
	c := int64(m)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Parse reads a decimal amount with at most two fractional digits.
// "12", "12.3" and "12.30" are all accepted; "12.345" is not.
func Parse(s string) (Money, error) {
	cents, err := parseScaled(s, 100)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money(cents), nil
}

// ParsePercent reads a percentage with at most two fractional digits.
func ParsePercent(s string) (Percent, error) {
	hundredths, err := parseScaled(s, 100)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	return Percent(hundredths), nil
}

func (p Percent) String() string {
	h := int64(p)
	sign := ""
	if h < 0 {
		sign = "-"
		h = -h
	}
	return fmt.Sprintf("%s%d.%02d", sign, h/100, h%100)
}

// parseScaled parses a decimal string into an integer scaled by the
// given power-of-ten factor, rejecting excess fractional digits.
func parseScaled(s string, scale int64) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("no digits")
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad integer part")
	}

	maxFrac := 0
	for f := scale; f > 1; f /= 10 {
		maxFrac++
	}
	if len(fracPart) > maxFrac {
		return 0, fmt.Errorf("more than %d fractional digits", maxFrac)
	}
	frac := int64(0)
	if fracPart != "" {
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad fractional part")
		}
		for i := len(fracPart); i < maxFrac; i++ {
			frac *= 10
		}
	}

	v := whole*scale + frac
	if neg {
		v = -v
	}
	return v, nil
}
