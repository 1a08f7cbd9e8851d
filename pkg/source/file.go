package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/transparencia/pkg/models"
)

// File reads a spreadsheet exported to disk (.csv, .xlsx or .xls).
type File struct {
	path   string
	format Format
	logger *log.Logger
}

// NewFile creates a source for path. An empty format is detected from the
// extension.
func NewFile(path string, format Format, logger *log.Logger) *File {
	if format == "" {
		format = detectFileType(path)
	}
	return &File{path: path, format: format, logger: logger}
}

func (s *File) Fetch(ctx context.Context) ([]models.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rows, err := Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("failed to process file %s: %w", filepath.Base(s.path), err)
	}

	s.logger.Debug("read spreadsheet file", "path", s.path, "format", s.format, "rows", len(rows))
	return rows, nil
}

// Static serves a fixed set of rows.
type Static []models.RawRow

func (s Static) Fetch(ctx context.Context) ([]models.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.RawRow, len(s))
	copy(out, s)
	return out, nil
}
