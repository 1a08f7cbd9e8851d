package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/yurifrl/transparencia/pkg/dashboard"
	"github.com/yurifrl/transparencia/pkg/format"
	"github.com/yurifrl/transparencia/pkg/models"
)

// Output selects how a dashboard is written.
type Output string

const (
	Table Output = "table"
	JSON  Output = "json"
	YAML  Output = "yaml"
)

// ParseOutput validates an output name.
func ParseOutput(s string) (Output, error) {
	switch o := Output(strings.ToLower(strings.TrimSpace(s))); o {
	case Table, JSON, YAML:
		return o, nil
	case "":
		return Table, nil
	default:
		return "", fmt.Errorf("unsupported output %q (want table, json or yaml)", s)
	}
}

// Write renders d to w in the requested output.
func Write(w io.Writer, d *dashboard.Dashboard, out Output) error {
	switch out {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(NewDashboard(d))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDashboard(d)); err != nil {
			return err
		}
		return enc.Close()
	case Table, "":
		_, err := io.WriteString(w, Render(d))
		return err
	default:
		return fmt.Errorf("unsupported output %q", out)
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	labelStyle = lipgloss.NewStyle().Width(22)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	inStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	outStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

// Render draws the dashboard for a terminal.
func Render(d *dashboard.Dashboard) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Resumo"))
	b.WriteString("\n")
	balanceStyle := inStyle
	if d.Totals.Balance.IsNegative() {
		balanceStyle = outStyle
	}
	fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Saldo atual"), balanceStyle.Render(format.BRL(d.Totals.Balance)))
	fmt.Fprintf(&b, "%s%s %s\n", labelStyle.Render("Total arrecadado"), inStyle.Render(format.BRL(d.Totals.Inflow)),
		mutedStyle.Render(fmt.Sprintf("(%d entradas)", d.Totals.InflowCount)))
	fmt.Fprintf(&b, "%s%s %s\n", labelStyle.Render("Total gasto"), outStyle.Render(format.BRL(d.Totals.Outflow)),
		mutedStyle.Render(fmt.Sprintf("(%d despesas)", d.Totals.OutflowCount)))

	writeMonths(&b, "Entradas por mês", d.MonthlyInflow, inStyle)
	writeMonths(&b, "Despesas por mês", d.MonthlyOutflow, outStyle)
	writeCategories(&b, "Entradas por categoria", d.CategoryInflow)
	writeCategories(&b, "Despesas por categoria", d.CategoryOutflow)

	if len(d.Rejections) > 0 {
		b.WriteString(titleStyle.Render("Linhas ignoradas"))
		b.WriteString("\n")
		for _, r := range d.Rejections {
			b.WriteString(mutedStyle.Render("- " + r.Error()))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeMonths(b *strings.Builder, title string, months []models.MonthlySummary, style lipgloss.Style) {
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if len(months) == 0 {
		b.WriteString(mutedStyle.Render("nenhum lançamento"))
		b.WriteString("\n")
		return
	}
	for _, m := range months {
		fmt.Fprintf(b, "%s%s\n", labelStyle.Render(m.Label), style.Render(format.BRL(m.Total)))
	}
}

func writeCategories(b *strings.Builder, title string, categories []models.CategorySummary) {
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if len(categories) == 0 {
		b.WriteString(mutedStyle.Render("nenhum lançamento"))
		b.WriteString("\n")
		return
	}
	for _, c := range categories {
		label := c.Label
		if label == "" {
			label = "(sem categoria)"
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■")
		fmt.Fprintf(b, "%s %s%s\n", swatch, labelStyle.Render(label), format.BRL(c.Total))
	}
}
