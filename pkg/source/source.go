// Package source fetches the finance spreadsheet and decodes it into raw
// rows. Nothing is cached: every Fetch reads the whole sheet again.
package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/yurifrl/transparencia/pkg/csv"
	"github.com/yurifrl/transparencia/pkg/models"
)

// Source yields the rows of the finance spreadsheet.
type Source interface {
	Fetch(ctx context.Context) ([]models.RawRow, error)
}

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	XLS  Format = "xls"
)

// maxXLSRows bounds how many rows are read from legacy .xls workbooks.
const maxXLSRows = 10000

// ParseFormat accepts "csv", "xlsx", "xls" or "" (auto).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", CSV, XLSX, XLS:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// detectFileType guesses the format from a file name extension.
func detectFileType(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return XLSX
	case ".xls":
		return XLS
	default:
		return CSV
	}
}

// detectURLType honours the output parameter of published Google Sheets
// links (pub?output=csv / output=xlsx).
func detectURLType(rawURL string) Format {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CSV
	}
	if out := strings.ToLower(u.Query().Get("output")); out == string(XLSX) {
		return XLSX
	}
	return detectFileType(u.Path)
}

// Decode turns spreadsheet bytes of the given format into raw rows.
func Decode(data []byte, format Format) ([]models.RawRow, error) {
	switch format {
	case CSV, "":
		return csv.Decode(data)
	case XLSX:
		return decodeXLSX(data)
	case XLS:
		return decodeXLS(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func decodeXLSX(data []byte) ([]models.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheets[0], err)
	}
	return fromCells(rows)
}

func decodeXLS(data []byte) ([]models.RawRow, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}
	return fromCells(workbook.ReadAllCells(maxXLSRows))
}

// fromCells uses the first non blank row as header.
func fromCells(rows [][]string) ([]models.RawRow, error) {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return csv.FromTable(row, rows[i+1:]), nil
			}
		}
	}
	return nil, fmt.Errorf("no data found in sheet")
}
