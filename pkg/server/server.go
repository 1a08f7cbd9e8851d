package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yurifrl/transparencia/pkg/csv"
	"github.com/yurifrl/transparencia/pkg/dashboard"
	"github.com/yurifrl/transparencia/pkg/format"
	"github.com/yurifrl/transparencia/pkg/models"
	"github.com/yurifrl/transparencia/pkg/report"
	"github.com/yurifrl/transparencia/pkg/source"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server renders the finance dashboard and its JSON API.
type Server struct {
	dashboard *dashboard.Service
	logger    *log.Logger
	router    chi.Router
	templates *template.Template
}

// New creates a new HTTP server
func New(svc *dashboard.Service, logger *log.Logger) *Server {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"brl":     format.BRL,
		"percent": format.Percent,
	}).ParseFS(templateFS, "templates/*.html"))

	s := &Server{
		dashboard: svc,
		logger:    logger,
		router:    chi.NewRouter(),
		templates: tmpl,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupRoutes() {
	// pages
	s.router.Get("/", s.withLogging(s.handleHome))
	s.router.Get("/dashboard", s.withLogging(s.handleDashboard))
	s.router.Get("/rifas", s.withLogging(s.handleRaffles))

	// api
	s.router.Get("/api/finances", s.withLogging(s.handleFinances))
	s.router.Get("/api/dashboard", s.withLogging(s.handleDashboardJSON))
	s.router.Get("/api/summary", s.withLogging(s.handleSummary))
	s.router.Get("/api/records.csv", s.withLogging(s.handleRecordsCSV))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// ---------------- pages ----------------

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "home.html", newHomePage(d))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", newDashboardPage(d))
}

func (s *Server) handleRaffles(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "rifas.html", page{Title: "Rifas"})
}

// ---------------- api ----------------

func (s *Server) handleFinances(w http.ResponseWriter, r *http.Request) {
	batch, err := s.dashboard.Records(r.Context())
	if err != nil {
		s.respondError(w, r, upstreamStatus(err), "failed to fetch financial data", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, report.Records(batch.Records)); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context())
	if err != nil {
		s.respondError(w, r, upstreamStatus(err), "failed to fetch financial data", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, report.NewDashboard(d)); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context())
	if err != nil {
		s.respondError(w, r, upstreamStatus(err), "failed to fetch financial data", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, report.NewSummary(d.Totals)); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleRecordsCSV serves the normalized records, optionally filtered with
// ?tipo=Entrada or ?tipo=Saída.
func (s *Server) handleRecordsCSV(w http.ResponseWriter, r *http.Request) {
	batch, err := s.dashboard.Records(r.Context())
	if err != nil {
		s.respondError(w, r, upstreamStatus(err), "failed to fetch financial data", err)
		return
	}

	var filter csv.FilterFunc
	if kind := r.URL.Query().Get("tipo"); kind != "" {
		filter = func(rec models.Record) bool { return rec.Kind == models.Kind(kind) }
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"financas.csv\"")
	if _, err := w.Write(csv.Create(batch.Records, filter)); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

// upstreamStatus maps a fetch failure onto the status returned to clients.
func upstreamStatus(err error) int {
	var statusErr *source.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to render page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write page", "template", name, "err", err, "path", r.URL.Path)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("failed to build dashboard", "err", err, "method", r.Method, "path", r.URL.Path)
	s.render(w, r, upstreamStatus(err), "error.html", page{Title: "Erro", Error: err.Error()})
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return jsonEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	body := map[string]string{
		"status": "error",
		"error":  message,
	}
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
		body["details"] = err.Error()
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, body)
}

// withLogging wraps a handler to tag the request with an id, log it and
// recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr, "request_id", id)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path, "request_id", id)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
				return
			}
			s.logger.Debug("http response", "path", r.URL.Path, "request_id", id, "took", time.Since(start))
		}()
		next(w, r)
	}
}
