// Package aggregate groups normalized records into the summaries shown by the
// dashboard. Every function is pure: it builds its own accumulator and returns
// a fresh slice, so concurrent callers never interact.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yurifrl/transparencia/pkg/models"
)

// ByMonth sums amounts per calendar month and returns the months in
// ascending chronological order, labelled like "mar/2025".
func ByMonth(records []models.Record, names MonthNames) []models.MonthlySummary {
	totals := make(map[string]decimal.Decimal)
	labels := make(map[string]string)
	keys := make([]string, 0)

	for _, r := range records {
		key := r.MonthKey()
		if _, ok := totals[key]; !ok {
			keys = append(keys, key)
			labels[key] = fmt.Sprintf("%s/%d", names.Name(int(r.Date.Month())), r.Date.Year())
			totals[key] = decimal.Zero
		}
		totals[key] = totals[key].Add(r.Amount)
	}

	sort.Strings(keys)

	out := make([]models.MonthlySummary, 0, len(keys))
	for _, key := range keys {
		out = append(out, models.MonthlySummary{Label: labels[key], Total: totals[key]})
	}
	return out
}

// ByCategory sums amounts per category in order of first appearance and
// colors the k-th category with palette color k mod len(palette).
func ByCategory(records []models.Record, palette Palette) []models.CategorySummary {
	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)

	for _, r := range records {
		if _, ok := totals[r.Category]; !ok {
			order = append(order, r.Category)
			totals[r.Category] = decimal.Zero
		}
		totals[r.Category] = totals[r.Category].Add(r.Amount)
	}

	out := make([]models.CategorySummary, 0, len(order))
	for i, name := range order {
		out = append(out, models.CategorySummary{
			Label: name,
			Total: totals[name],
			Color: palette.Color(i),
		})
	}
	return out
}

// Summarize computes the balance and the per kind totals and counts.
// Records of an unknown kind are left out.
func Summarize(records []models.Record) models.Totals {
	t := models.Totals{Inflow: decimal.Zero, Outflow: decimal.Zero}
	for _, r := range records {
		switch r.Kind {
		case models.Inflow:
			t.Inflow = t.Inflow.Add(r.Amount)
			t.InflowCount++
		case models.Outflow:
			t.Outflow = t.Outflow.Add(r.Amount)
			t.OutflowCount++
		}
	}
	t.Balance = t.Inflow.Sub(t.Outflow)
	return t
}

// Sum adds up the amounts of records.
func Sum(records []models.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
