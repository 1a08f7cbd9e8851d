package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/transparencia/pkg/dashboard"
	"github.com/yurifrl/transparencia/pkg/format"
	"github.com/yurifrl/transparencia/pkg/models"
)

func jsonEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// ---------------- html ----------------

type page struct {
	Title string
	Error string
}

type homePage struct {
	page
	Totals models.Totals
}

type bar struct {
	Label string
	Total decimal.Decimal
	Width float64
}

type pieSlice struct {
	Label   string
	Total   decimal.Decimal
	Color   string
	Percent string
}

type pie struct {
	Gradient template.CSS
	Slices   []pieSlice
}

type dashboardPage struct {
	page
	Totals          models.Totals
	MonthlyInflow   []bar
	MonthlyOutflow  []bar
	CategoryInflow  pie
	CategoryOutflow pie
	Recent          []models.Record
	Rejected        int
	GeneratedAt     string
}

// recentLimit caps the transactions table on the dashboard page.
const recentLimit = 50

func newHomePage(d *dashboard.Dashboard) homePage {
	return homePage{page: page{Title: "Transparência"}, Totals: d.Totals}
}

func newDashboardPage(d *dashboard.Dashboard) dashboardPage {
	recent := d.Records
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}
	return dashboardPage{
		page:            page{Title: "Dashboard"},
		Totals:          d.Totals,
		MonthlyInflow:   bars(d.MonthlyInflow),
		MonthlyOutflow:  bars(d.MonthlyOutflow),
		CategoryInflow:  newPie(d.CategoryInflow),
		CategoryOutflow: newPie(d.CategoryOutflow),
		Recent:          recent,
		Rejected:        len(d.Rejections),
		GeneratedAt:     d.GeneratedAt.Format("02/01/2006 15:04"),
	}
}

// bars scales monthly totals to a percentage of the largest absolute total.
func bars(summaries []models.MonthlySummary) []bar {
	peak := decimal.Zero
	for _, s := range summaries {
		if a := s.Total.Abs(); a.GreaterThan(peak) {
			peak = a
		}
	}

	out := make([]bar, 0, len(summaries))
	for _, s := range summaries {
		width := 0.0
		if !peak.IsZero() {
			width = s.Total.Abs().Div(peak).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		out = append(out, bar{Label: s.Label, Total: s.Total, Width: width})
	}
	return out
}

// newPie builds a conic-gradient from the positive category totals.
func newPie(summaries []models.CategorySummary) pie {
	whole := decimal.Zero
	for _, s := range summaries {
		if s.Total.IsPositive() {
			whole = whole.Add(s.Total)
		}
	}

	p := pie{Slices: make([]pieSlice, 0, len(summaries))}
	if whole.IsZero() {
		for _, s := range summaries {
			p.Slices = append(p.Slices, pieSlice{Label: s.Label, Total: s.Total, Color: s.Color, Percent: "0%"})
		}
		return p
	}

	var stops []string
	start := decimal.Zero
	for _, s := range summaries {
		share := decimal.Zero
		if s.Total.IsPositive() {
			share = s.Total.Div(whole).Mul(decimal.NewFromInt(100))
		}
		end := start.Add(share)
		if share.IsPositive() {
			stops = append(stops, fmt.Sprintf("%s %s%% %s%%", s.Color, start.StringFixed(2), end.StringFixed(2)))
		}
		start = end
		p.Slices = append(p.Slices, pieSlice{
			Label:   s.Label,
			Total:   s.Total,
			Color:   s.Color,
			Percent: format.Percent(s.Total, whole),
		})
	}
	p.Gradient = template.CSS("conic-gradient(" + strings.Join(stops, ", ") + ")")
	return p
}
