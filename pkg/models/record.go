package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the transaction kind label as it appears in the spreadsheet.
type Kind string

const (
	Inflow  Kind = "Entrada"
	Outflow Kind = "Saída"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == Inflow || k == Outflow
}

// RawRow is a spreadsheet row keyed by column header.
type RawRow map[string]string

// Record represents a normalized financial transaction from the spreadsheet
type Record struct {
	ID          string
	Date        time.Time
	DateText    string
	Description string
	Kind        Kind
	Amount      decimal.Decimal
	Category    string
}

// MonthKey returns the locale independent "YYYY-MM" key of the record date.
func (r Record) MonthKey() string {
	return r.Date.Format("2006-01")
}

// MonthlySummary is the total of one calendar month.
type MonthlySummary struct {
	Label string
	Total decimal.Decimal
}

// CategorySummary is the total of one category with its chart color.
type CategorySummary struct {
	Label string
	Total decimal.Decimal
	Color string
}

// Totals is the headline summary shown on the home page and dashboard cards.
type Totals struct {
	Balance      decimal.Decimal
	Inflow       decimal.Decimal
	Outflow      decimal.Decimal
	InflowCount  int
	OutflowCount int
}

// FilterKind returns the records of the given kind, preserving order.
func FilterKind(records []Record, kind Kind) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
