package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yurifrl/transparencia/pkg/models"
)

type FilterFunc func(models.Record) bool

var exportHeader = []string{"Data", "Descrição", "Tipo", "Valor", "Categoria"}

// Create writes records back in the spreadsheet layout.
func Create(records []models.Record, filter FilterFunc) []byte {
	var buf bytes.Buffer
	w := stdcsv.NewWriter(&buf)
	_ = w.Write(exportHeader)
	for _, r := range records {
		if filter == nil || filter(r) {
			_ = w.Write([]string{
				r.DateText,
				r.Description,
				string(r.Kind),
				r.Amount.StringFixed(2),
				r.Category,
			})
		}
	}
	w.Flush()
	return buf.Bytes()
}

// Decode reads a header-keyed CSV, as produced by a published spreadsheet,
// into raw rows.
func Decode(data []byte) ([]models.RawRow, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := stdcsv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // allow variable columns
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	return FromTable(records[0], records[1:]), nil
}

// FromTable keys every row by the header. Blank rows are skipped, missing
// trailing cells read as empty strings and cells without a header are dropped.
func FromTable(header []string, rows [][]string) []models.RawRow {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.TrimSpace(h)
	}

	out := make([]models.RawRow, 0, len(rows))
	for _, rec := range rows {
		if isBlank(rec) {
			continue
		}
		row := make(models.RawRow, len(keys))
		for i, key := range keys {
			if key == "" {
				continue
			}
			if i < len(rec) {
				row[key] = rec[i]
			} else {
				row[key] = ""
			}
		}
		out = append(out, row)
	}
	return out
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
