// Package core provides the domain types for receipt records.
//
// This file contains parsing and formatting of monetary amounts. Amounts
// are held as integer pence internally; the persisted layout and the UI
// both speak in pounds.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToPence converts a decimal string to pence with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators. Zero is a valid amount; negatives and signs
// are rejected.
//
// Examples:
//
//	ParseDecimalToPence("12.34") -> 1234, nil
//	ParseDecimalToPence("12,34") -> 1234, nil
//	ParseDecimalToPence("12.345") -> 1234, nil (rounds down)
//	ParseDecimalToPence("12.346") -> 1235, nil (rounds up)
func ParseDecimalToPence(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	// A separator with no digits after it is malformed, not a whole amount.
	if len(parts) == 2 && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracPence int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracPence = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracPence += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPence++
			}
		}
	}
	return iv*100 + fracPence, nil
}

// MoneyFromPounds converts a decimal pound value to Money, rounding to the
// nearest penny. Used when decoding persisted records and analyzer output.
func MoneyFromPounds(pounds float64) Money {
	return Money{Pence: int64(math.Round(pounds * 100))}
}

// Pounds returns the pound value as a float64 for serialization and
// display. Use pence for arithmetic to avoid floating-point drift.
func (m Money) Pounds() float64 {
	return float64(m.Pence) / 100.0
}

// Format renders the amount as a sterling string, e.g. "£9.99".
func (m Money) Format() string {
	neg := m.Pence < 0
	p := m.Pence
	if neg {
		p = -p
	}
	s := strconv.FormatInt(p/100, 10) + "." + fmt.Sprintf("%02d", p%100)
	if neg {
		return "-£" + s
	}
	return "£" + s
}
