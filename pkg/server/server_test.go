package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/transparencia/pkg/aggregate"
	"github.com/yurifrl/transparencia/pkg/dashboard"
	"github.com/yurifrl/transparencia/pkg/models"
	"github.com/yurifrl/transparencia/pkg/report"
	"github.com/yurifrl/transparencia/pkg/source"
)

func row(date, desc, kind, amount, category string) models.RawRow {
	return models.RawRow{"Data": date, "Descrição": desc, "Tipo": kind, "Valor": amount, "Categoria": category}
}

var sampleRows = source.Static{
	row("01/03/2025", "Bolo", "Entrada", "100", "Venda"),
	row("15/03/2025", "Brigadeiro", "Entrada", "50", "Venda"),
	row("02/04/2025", "Doação", "Entrada", "30", "Doação"),
	row("05/03/2025", "Papel", "Saída", "20", "Material"),
	row("07/04/2025", "Som", "Saída", "45.5", "Evento"),
	row("xx/04/2025", "Sem data", "Saída", "1", "Evento"),
}

type failingSource struct{ err error }

func (s failingSource) Fetch(context.Context) ([]models.RawRow, error) {
	return nil, s.err
}

func newTestServer(src source.Source) *Server {
	logger := log.New(io.Discard)
	svc := dashboard.NewService(src, aggregate.PortugueseMonths, aggregate.DefaultPalette, logger)
	return New(svc, logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPages(t *testing.T) {
	s := newTestServer(sampleRows)

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{"Saldo atual", "Total arrecadado", "3 entradas", "2 despesas"}},
		{"/dashboard", []string{"mar/2025", "abr/2025", "Brigadeiro", "conic-gradient", "1 linhas ignoradas"}},
		{"/rifas", []string{"Rifas"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("unexpected content type %q", ct)
			}
			body := rec.Body.String()
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("expected body to contain %q", w)
				}
			}
		})
	}
}

func TestPageFetchError(t *testing.T) {
	s := newTestServer(failingSource{err: errors.New("connection refused")})

	for _, path := range []string{"/", "/dashboard"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("%s: expected 502, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Não foi possível carregar os dados") {
			t.Errorf("%s: expected error page", path)
		}
	}
}

func TestFinances(t *testing.T) {
	rec := get(t, newTestServer(sampleRows), "/api/finances")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var records []report.Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	first := records[0]
	if first.Date != "01/03/2025" || first.Kind != "Entrada" || first.Amount != 100 || first.ID != "01/03/2025-Bolo-0" {
		t.Errorf("unexpected first record %+v", first)
	}
}

func TestDashboardJSON(t *testing.T) {
	rec := get(t, newTestServer(sampleRows), "/api/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var view report.Dashboard
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(view.MonthlyInflow) != 2 || view.MonthlyInflow[0].Month != "mar/2025" || view.MonthlyInflow[0].Total != 150 {
		t.Errorf("unexpected monthly inflow %+v", view.MonthlyInflow)
	}
	if len(view.CategoryOutflow) != 2 || view.CategoryOutflow[1].Name != "Evento" || view.CategoryOutflow[1].Color != aggregate.DefaultPalette[1] {
		t.Errorf("unexpected category outflow %+v", view.CategoryOutflow)
	}
	if view.Summary.Balance != 114.5 || len(view.Rejections) != 1 {
		t.Errorf("unexpected summary %+v rejected=%d", view.Summary, len(view.Rejections))
	}
}

func TestSummary(t *testing.T) {
	rec := get(t, newTestServer(sampleRows), "/api/summary")

	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := map[string]any{
		"saldoAtual":      114.5,
		"totalArrecadado": 180.0,
		"totalGasto":      65.5,
		"numeroEntradas":  3.0,
		"numeroDespesas":  2.0,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, got[k])
		}
	}
}

func TestRecordsCSV(t *testing.T) {
	s := newTestServer(sampleRows)

	rec := get(t, s, "/api/records.csv")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header plus 5 rows, got %d lines", len(lines))
	}

	rec = get(t, s, "/api/records.csv?tipo=Sa%C3%ADda")
	lines = strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[2], "45.50") {
		t.Errorf("unexpected filtered csv %q", rec.Body.String())
	}
}

func TestAPIFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("dial tcp: refused"), http.StatusBadGateway},
		{"not found", fmt.Errorf("wrapped: %w", &source.StatusError{URL: "http://x", StatusCode: 404, Status: "404 Not Found"}), http.StatusNotFound},
		{"timeout", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(failingSource{err: tt.err}), "/api/finances")
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body["status"] != "error" || body["details"] == "" {
				t.Errorf("unexpected error body %v", body)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(sampleRows)

	rec := get(t, s, "/api/summary")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected propagated request id, got %q", got)
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(failingSource{err: errors.New("down")}), "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	if rec := get(t, newTestServer(sampleRows), "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestNewPie(t *testing.T) {
	p := newPie([]models.CategorySummary{
		{Label: "A", Total: decimal.NewFromInt(75), Color: "#111111"},
		{Label: "B", Total: decimal.NewFromInt(25), Color: "#222222"},
	})
	want := "conic-gradient(#111111 0.00% 75.00%, #222222 75.00% 100.00%)"
	if string(p.Gradient) != want {
		t.Errorf("expected %q, got %q", want, p.Gradient)
	}

	empty := newPie([]models.CategorySummary{{Label: "A", Total: decimal.Zero, Color: "#111111"}})
	if empty.Gradient != "" || len(empty.Slices) != 1 {
		t.Errorf("unexpected empty pie %+v", empty)
	}
}

func TestBars(t *testing.T) {
	got := bars([]models.MonthlySummary{
		{Label: "mar/2025", Total: decimal.NewFromInt(50)},
		{Label: "abr/2025", Total: decimal.NewFromInt(200)},
	})
	if got[0].Width != 25 || got[1].Width != 100 {
		t.Errorf("unexpected widths %+v", got)
	}
}

func TestRenderFailureWritesSingleResponse(t *testing.T) {
	s := newTestServer(sampleRows)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.render(rec, req, http.StatusOK, "missing.html", page{Title: "x"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("expected a clean json body: %v", err)
	}
	if body["error"] != "failed to render page" {
		t.Errorf("unexpected body %v", body)
	}
}
