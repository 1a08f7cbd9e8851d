package csv

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yurifrl/transparencia/pkg/models"
)

func TestDecode(t *testing.T) {
	content := "\xef\xbb\xbfData,Descrição,Tipo,Valor,Categoria,Obs\n" +
		"01/03/2025,Venda de bolo,Entrada,100.50,Venda,\n" +
		",,,,,\n" +
		"02/04/2025,\"Compra, papel\",Saída,30\n"

	rows, err := Decode([]byte(content))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if rows[0]["Data"] != "01/03/2025" || rows[0]["Valor"] != "100.50" || rows[0]["Categoria"] != "Venda" {
		t.Errorf("unexpected first row %v", rows[0])
	}
	if rows[1]["Descrição"] != "Compra, papel" {
		t.Errorf("quoted field not preserved: %q", rows[1]["Descrição"])
	}
	if v, ok := rows[1]["Categoria"]; !ok || v != "" {
		t.Errorf("missing trailing cell should read as empty, got %q (%v)", v, ok)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Error("expected error for empty csv")
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	rows, err := Decode([]byte("Data,Descrição,Tipo,Valor,Categoria\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestCreate(t *testing.T) {
	records := []models.Record{
		{DateText: "01/03/2025", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "Bolo, chocolate", Kind: models.Inflow, Amount: decimal.RequireFromString("100.5"), Category: "Venda"},
		{DateText: "02/03/2025", Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Description: "Papel", Kind: models.Outflow, Amount: decimal.RequireFromString("30"), Category: "Material"},
	}

	out := string(Create(records, func(r models.Record) bool { return r.Kind == models.Inflow }))
	want := "Data,Descrição,Tipo,Valor,Categoria\n01/03/2025,\"Bolo, chocolate\",Entrada,100.50,Venda\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}

	all := string(Create(records, nil))
	if !strings.Contains(all, "Saída,30.00,Material") {
		t.Errorf("expected outflow row, got %q", all)
	}
}
