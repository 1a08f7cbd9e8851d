package report

import (
	"github.com/yurifrl/transparencia/pkg/dashboard"
	"github.com/yurifrl/transparencia/pkg/models"
)

// Serializable shapes of a dashboard. Field names follow the ones the public
// dashboard has always served.

type Record struct {
	ID          string  `json:"id" yaml:"id"`
	Date        string  `json:"data" yaml:"data"`
	Description string  `json:"descricao" yaml:"descricao"`
	Kind        string  `json:"tipo" yaml:"tipo"`
	Amount      float64 `json:"valor" yaml:"valor"`
	Category    string  `json:"categoria" yaml:"categoria"`
}

type Month struct {
	Month string  `json:"mes" yaml:"mes"`
	Total float64 `json:"valor" yaml:"valor"`
}

type Category struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color" yaml:"color"`
}

type Summary struct {
	Balance      float64 `json:"saldoAtual" yaml:"saldoAtual"`
	Outflow      float64 `json:"totalGasto" yaml:"totalGasto"`
	Inflow       float64 `json:"totalArrecadado" yaml:"totalArrecadado"`
	OutflowCount int     `json:"numeroDespesas" yaml:"numeroDespesas"`
	InflowCount  int     `json:"numeroEntradas" yaml:"numeroEntradas"`
}

type Rejection struct {
	Row   int    `json:"linha" yaml:"linha"`
	Field string `json:"campo" yaml:"campo"`
	Value string `json:"valor" yaml:"valor"`
	Error string `json:"erro" yaml:"erro"`
}

type Dashboard struct {
	Records         []Record    `json:"initialData" yaml:"initialData"`
	MonthlyInflow   []Month     `json:"entradasMensais" yaml:"entradasMensais"`
	MonthlyOutflow  []Month     `json:"despesasMensais" yaml:"despesasMensais"`
	CategoryInflow  []Category  `json:"entradasPorCategoria" yaml:"entradasPorCategoria"`
	CategoryOutflow []Category  `json:"despesasPorCategoria" yaml:"despesasPorCategoria"`
	Summary         Summary     `json:"resumo" yaml:"resumo"`
	Rejections      []Rejection `json:"linhasRejeitadas" yaml:"linhasRejeitadas"`
}

func Records(records []models.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, Record{
			ID:          r.ID,
			Date:        r.DateText,
			Description: r.Description,
			Kind:        string(r.Kind),
			Amount:      r.Amount.InexactFloat64(),
			Category:    r.Category,
		})
	}
	return out
}

func Months(summaries []models.MonthlySummary) []Month {
	out := make([]Month, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, Month{Month: s.Label, Total: s.Total.InexactFloat64()})
	}
	return out
}

func Categories(summaries []models.CategorySummary) []Category {
	out := make([]Category, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, Category{Name: s.Label, Value: s.Total.InexactFloat64(), Color: s.Color})
	}
	return out
}

func NewSummary(t models.Totals) Summary {
	return Summary{
		Balance:      t.Balance.InexactFloat64(),
		Outflow:      t.Outflow.InexactFloat64(),
		Inflow:       t.Inflow.InexactFloat64(),
		OutflowCount: t.OutflowCount,
		InflowCount:  t.InflowCount,
	}
}

// NewDashboard converts a built dashboard into its serializable form.
func NewDashboard(d *dashboard.Dashboard) Dashboard {
	rejections := make([]Rejection, 0, len(d.Rejections))
	for _, r := range d.Rejections {
		rejections = append(rejections, Rejection{Row: r.Position, Field: r.Field, Value: r.Raw, Error: r.Err.Error()})
	}
	return Dashboard{
		Records:         Records(d.Records),
		MonthlyInflow:   Months(d.MonthlyInflow),
		MonthlyOutflow:  Months(d.MonthlyOutflow),
		CategoryInflow:  Categories(d.CategoryInflow),
		CategoryOutflow: Categories(d.CategoryOutflow),
		Summary:         NewSummary(d.Totals),
		Rejections:      rejections,
	}
}
