package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/transparencia/pkg/models"
)

// maxBodyBytes caps the size of a downloaded spreadsheet.
const maxBodyBytes = 32 << 20

// StatusError reports a non 2xx answer from the spreadsheet host.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
}

// HTTP fetches a published spreadsheet export over HTTP.
type HTTP struct {
	url    string
	format Format
	client *http.Client
	logger *log.Logger

	maxBytes int64
}

// NewHTTP creates a source for url. An empty format is detected from the URL.
func NewHTTP(url string, format Format, timeout time.Duration, logger *log.Logger) *HTTP {
	if format == "" {
		format = detectURLType(url)
	}
	return &HTTP{
		url:    url,
		format: format,
		client: &http.Client{Timeout: timeout},
		logger: logger,

		maxBytes: maxBodyBytes,
	}
}

func (s *HTTP) Fetch(ctx context.Context) ([]models.RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: s.url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("spreadsheet exceeds %d bytes", s.maxBytes)
	}

	rows, err := Decode(data, s.format)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched spreadsheet", "url", s.url, "format", s.format, "bytes", len(data), "rows", len(rows), "took", time.Since(start))
	return rows, nil
}
