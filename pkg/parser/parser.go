package parser

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/transparencia/pkg/models"
)

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Batch is the outcome of normalizing every row of one fetch.
type Batch struct {
	Records    []models.Record
	Rejections []*RowError
}

// Normalize converts one raw row into a record. position is the zero based
// index of the row within its batch and takes part in the record ID.
func (p *Parser) Normalize(row models.RawRow, position int) (models.Record, error) {
	cols, _ := ResolveColumns(rowHeaders(row))
	return p.normalize(row, position, cols)
}

// NormalizeAll normalizes a batch. Rejected rows are logged and collected;
// they never abort the batch.
func (p *Parser) NormalizeAll(rows []models.RawRow) Batch {
	headers := batchHeaders(rows)
	cols, missing := ResolveColumns(headers)
	for _, name := range missing {
		if hint := suggestHeader(name, headers); hint != "" {
			p.logger.Warn("column not found", "column", name, "closest", hint)
		} else {
			p.logger.Warn("column not found", "column", name)
		}
	}

	batch := Batch{Records: make([]models.Record, 0, len(rows))}
	for i, row := range rows {
		rec, err := p.normalize(row, i, cols)
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				batch.Rejections = append(batch.Rejections, rowErr)
			}
			continue
		}
		batch.Records = append(batch.Records, rec)
	}

	p.logger.Debug("normalization complete", "rows", len(rows), "records", len(batch.Records), "rejected", len(batch.Rejections))
	return batch
}

func (p *Parser) normalize(row models.RawRow, position int, cols Columns) (models.Record, error) {
	dateText := row[cols.Date]
	date, err := parseDate(dateText)
	if err != nil {
		p.logger.Warn("invalid date, skipping row", "row", position, "date", dateText)
		return models.Record{}, &RowError{Position: position, Field: ColumnDate, Raw: dateText, Err: err}
	}

	amountText := row[cols.Amount]
	amount, err := parseAmount(amountText)
	if err != nil {
		p.logger.Warn("invalid amount, skipping row", "row", position, "amount", amountText)
		return models.Record{}, &RowError{Position: position, Field: ColumnAmount, Raw: amountText, Err: err}
	}

	description := row[cols.Description]
	kind := models.Kind(row[cols.Kind])
	if !kind.Valid() {
		p.logger.Debug("unknown kind", "row", position, "kind", kind)
	}

	return models.Record{
		ID:          recordID(dateText, description, position),
		Date:        date,
		DateText:    dateText,
		Description: description,
		Kind:        kind,
		Amount:      amount,
		Category:    row[cols.Category],
	}, nil
}
