package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/yurifrl/transparencia/pkg/csv"
	"github.com/yurifrl/transparencia/pkg/models"
)

const filterDateLayout = "02/01/2006"

type filters struct {
	startDate   string
	endDate     string
	minAmount   float64
	maxAmount   float64
	hasMin      bool
	hasMax      bool
	description string
	category    string
	kind        string
}

func (f *filters) toFilterFunc() csv.FilterFunc {
	var start, end time.Time
	if f.startDate != "" {
		start, _ = time.Parse(filterDateLayout, f.startDate)
	}
	if f.endDate != "" {
		end, _ = time.Parse(filterDateLayout, f.endDate)
	}
	minAmount := decimal.NewFromFloat(f.minAmount)
	maxAmount := decimal.NewFromFloat(f.maxAmount)

	return func(r models.Record) bool {
		if !start.IsZero() && r.Date.Before(start) {
			return false
		}
		if !end.IsZero() && r.Date.After(end) {
			return false
		}
		if f.hasMin && r.Amount.LessThan(minAmount) {
			return false
		}
		if f.hasMax && r.Amount.GreaterThan(maxAmount) {
			return false
		}
		if f.description != "" && !strings.Contains(strings.ToLower(r.Description), strings.ToLower(f.description)) {
			return false
		}
		if f.category != "" && !strings.EqualFold(r.Category, f.category) {
			return false
		}
		if f.kind != "" && !strings.EqualFold(string(r.Kind), f.kind) {
			return false
		}
		return true
	}
}

// prepare records which amount bounds were set on the command line and
// reports malformed date bounds before any fetch happens.
func (f *filters) prepare(flags *pflag.FlagSet) error {
	if flags != nil {
		f.hasMin = flags.Changed("min")
		f.hasMax = flags.Changed("max")
	}
	for _, d := range []string{f.startDate, f.endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(filterDateLayout, d); err != nil {
			return fmt.Errorf("invalid date %q (want DD/MM/YYYY)", d)
		}
	}
	return nil
}

func apply(records []models.Record, keep csv.FilterFunc) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
