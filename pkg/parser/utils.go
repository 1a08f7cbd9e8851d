package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amounts must fit a float64: below 1e308 and with no more than
// -minAmountExponent decimal places.
const (
	maxAmountMagnitude = 308
	minAmountExponent  = -324
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// RowError describes a rejected row.
type RowError struct {
	Position int
	Field    string
	Raw      string
	Err      error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Position, e.Field, e.Raw, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// recordID is unique within a batch because position is.
func recordID(dateText, description string, position int) string {
	return fmt.Sprintf("%s-%s-%d", dateText, description, position)
}

// parseDate reads a dd/mm/yyyy date at UTC midnight. Dates that do not exist
// in the calendar (31/02) are rejected instead of rolled over.
func parseDate(text string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(text), "/")
	if len(parts) != 3 {
		return time.Time{}, ErrInvalidDate
	}

	var n [3]int
	for i, part := range parts {
		if !isDigits(part) {
			return time.Time{}, ErrInvalidDate
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, ErrInvalidDate
		}
		n[i] = v
	}

	day, month, year := n[0], n[1], n[2]
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, ErrInvalidDate
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// parseAmount parses a decimal amount. A lone comma is read as the decimal
// separator ("12,50"); anything else must be a plain decimal number.
func parseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !inFloatRange(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// inFloatRange reports whether d stays finite and representable as a
// float64. It only inspects exponent and digit count, so huge exponents
// like 1e50000000 are rejected without being expanded.
func inFloatRange(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	exp := int64(d.Exponent())
	magnitude := exp + int64(d.NumDigits())
	return magnitude <= maxAmountMagnitude && exp >= minAmountExponent
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
