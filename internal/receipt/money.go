package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Money is a monetary amount stored as integer cents. It serializes as a
// decimal string ("42.50") so values survive storage boundaries without
// floating point drift.
type Money int64

var moneyRE = regexp.MustCompile(`^-?\d+\.\d{2}$`)

// NewMoney builds a Money from whole units and cents.
func NewMoney(units, cents int64) Money {
	if units < 0 {
		return Money(units*100 - cents)
	}
	return Money(units*100 + cents)
}

// ParseMoney parses a decimal string with exactly two fractional digits.
// Currency symbols and thousands separators are removed before parsing.
func ParseMoney(s string) (Money, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimLeft(cleaned, "$€£ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if !moneyRE.MatchString(cleaned) {
		return 0, fmt.Errorf("invalid money value %q", s)
	}
	neg := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")
	parts := strings.SplitN(cleaned, ".", 2)
	units, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	v := units*100 + cents
	if neg {
		v = -v
	}
	return Money(v), nil
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 { return int64(m) }

// Float64 returns the amount in currency units. Intended for tolerance
// comparisons only, never for serialization.
func (m Money) Float64() float64 { return float64(m) / 100.0 }

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// String formats the amount as a decimal string with two fractional digits.
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON decodes a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("money must be a decimal string: %w", err)
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MoneyPtr is a convenience helper for optional amounts.
func MoneyPtr(m Money) *Money { return &m }
