package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/yurifrl/transparencia/pkg/models"
)

const sheet = `Data,Descrição,Tipo,Valor,Categoria
01/03/2025,Bolo,Entrada,100,Venda
15/03/2025,Brigadeiro,Entrada,50,Venda
05/03/2025,Papel,Saída,20,Material
07/04/2025,Som,Saída,45.5,Evento
31/02/2025,Data ruim,Entrada,999,Venda
`

func writeSheet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "financas.csv")
	if err := os.WriteFile(path, []byte(sheet), 0o644); err != nil {
		t.Fatalf("failed to write sheet: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(resetFlags)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(resetFlags)
	}
	cliFilters = filters{}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out.String()
}

func TestExport(t *testing.T) {
	path := writeSheet(t)

	out := run(t, "export", "--file", path, "--kind", "Saída")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", out)
	}
	if lines[0] != "Data,Descrição,Tipo,Valor,Categoria" || lines[2] != "07/04/2025,Som,Saída,45.50,Evento" {
		t.Errorf("unexpected export %q", out)
	}
}

func TestExportZeroMax(t *testing.T) {
	path := writeSheet(t)

	out := run(t, "export", "--file", path, "--max", "0")
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 1 {
		t.Errorf("expected only the header for --max 0, got %q", out)
	}
}

func TestSummaryJSON(t *testing.T) {
	path := writeSheet(t)

	out := run(t, "summary", "--file", path, "--output", "json")
	for _, want := range []string{`"saldoAtual": 84.5`, `"mes": "mar/2025"`, `"linha": 4`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output\n%s", want, out)
		}
	}
}

func TestFilterFunc(t *testing.T) {
	rec := models.Record{
		Date:        time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Venda de Bolo",
		Kind:        models.Inflow,
		Amount:      decimal.NewFromInt(50),
		Category:    "Venda",
	}

	tests := []struct {
		name string
		f    filters
		want bool
	}{
		{"no filters", filters{}, true},
		{"inside range", filters{startDate: "01/03/2025", endDate: "31/03/2025"}, true},
		{"before start", filters{startDate: "16/03/2025"}, false},
		{"after end", filters{endDate: "14/03/2025"}, false},
		{"below min", filters{minAmount: 60, hasMin: true}, false},
		{"above max", filters{maxAmount: 40, hasMax: true}, false},
		{"zero max set", filters{hasMax: true}, false},
		{"zero min set", filters{hasMin: true}, true},
		{"unset bounds", filters{minAmount: 60, maxAmount: 40}, true},
		{"description", filters{description: "bolo"}, true},
		{"description miss", filters{description: "rifa"}, false},
		{"category", filters{category: "venda"}, true},
		{"kind", filters{kind: "Saída"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.toFilterFunc()(rec); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFiltersValidate(t *testing.T) {
	if err := (&filters{startDate: "2025-03-01"}).prepare(nil); err == nil {
		t.Error("expected error for malformed date")
	}
	if err := (&filters{startDate: "01/03/2025"}).prepare(nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
