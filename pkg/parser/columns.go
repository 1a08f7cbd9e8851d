package parser

import (
	"sort"
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yurifrl/transparencia/pkg/models"
)

// Column headers of the published spreadsheet.
const (
	ColumnDate        = "Data"
	ColumnDescription = "Descrição"
	ColumnKind        = "Tipo"
	ColumnAmount      = "Valor"
	ColumnCategory    = "Categoria"
)

// Columns maps each canonical column to the header key used by the sheet.
type Columns struct {
	Date        string
	Description string
	Kind        string
	Amount      string
	Category    string
}

// ResolveColumns matches the canonical columns against the given headers.
// An exact match wins; otherwise headers are compared ignoring case, accents
// and surrounding spaces. Unmatched columns keep their canonical name, so
// lookups on them read as empty, and are returned in missing.
func ResolveColumns(headers []string) (Columns, []string) {
	folded := make(map[string]string, len(headers))
	exact := make(map[string]bool, len(headers))
	for _, h := range headers {
		exact[h] = true
		key := foldHeader(h)
		if _, ok := folded[key]; !ok {
			folded[key] = h
		}
	}

	var missing []string
	resolve := func(name string) string {
		if exact[name] {
			return name
		}
		if h, ok := folded[foldHeader(name)]; ok {
			return h
		}
		missing = append(missing, name)
		return name
	}

	cols := Columns{
		Date:        resolve(ColumnDate),
		Description: resolve(ColumnDescription),
		Kind:        resolve(ColumnKind),
		Amount:      resolve(ColumnAmount),
		Category:    resolve(ColumnCategory),
	}
	return cols, missing
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldHeader(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// suggestHeader returns the header closest to name, or "" when there are no
// headers to pick from.
func suggestHeader(name string, headers []string) string {
	if len(headers) == 0 {
		return ""
	}
	cm := closestmatch.New(headers, []int{2, 3})
	return cm.Closest(name)
}

func rowHeaders(row models.RawRow) []string {
	headers := make([]string, 0, len(row))
	for k := range row {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

func batchHeaders(rows []models.RawRow) []string {
	seen := make(map[string]struct{})
	headers := make([]string, 0)
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}
	sort.Strings(headers)
	return headers
}
