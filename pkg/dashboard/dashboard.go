package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/yurifrl/transparencia/pkg/aggregate"
	"github.com/yurifrl/transparencia/pkg/models"
	"github.com/yurifrl/transparencia/pkg/parser"
	"github.com/yurifrl/transparencia/pkg/source"
)

// Dashboard is everything a page render needs, computed from one fetch.
type Dashboard struct {
	Records    []models.Record
	Inflows    []models.Record
	Outflows   []models.Record
	Rejections []*parser.RowError

	MonthlyInflow   []models.MonthlySummary
	MonthlyOutflow  []models.MonthlySummary
	CategoryInflow  []models.CategorySummary
	CategoryOutflow []models.CategorySummary
	Totals          models.Totals
	GeneratedAt     time.Time
}

type Service struct {
	source  source.Source
	parser  *parser.Parser
	months  aggregate.MonthNames
	palette aggregate.Palette
	logger  *log.Logger
}

func NewService(src source.Source, months aggregate.MonthNames, palette aggregate.Palette, logger *log.Logger) *Service {
	return &Service{
		source:  src,
		parser:  parser.New(logger),
		months:  months,
		palette: palette,
		logger:  logger,
	}
}

// Records fetches and normalizes the spreadsheet without aggregating it.
func (s *Service) Records(ctx context.Context) (parser.Batch, error) {
	rows, err := s.source.Fetch(ctx)
	if err != nil {
		return parser.Batch{}, fmt.Errorf("error fetching spreadsheet: %w", err)
	}
	return s.parser.NormalizeAll(rows), nil
}

// Build runs the whole pipeline from scratch.
func (s *Service) Build(ctx context.Context) (*Dashboard, error) {
	batch, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return s.Assemble(ctx, batch)
}

// Assemble aggregates an already normalized batch. Inflow and outflow
// summaries are independent and computed concurrently; a cancelled ctx
// aborts the aggregation.
func (s *Service) Assemble(ctx context.Context, batch parser.Batch) (*Dashboard, error) {
	d := &Dashboard{
		Records:     batch.Records,
		Inflows:     models.FilterKind(batch.Records, models.Inflow),
		Outflows:    models.FilterKind(batch.Records, models.Outflow),
		Rejections:  batch.Rejections,
		Totals:      aggregate.Summarize(batch.Records),
		GeneratedAt: time.Now(),
	}

	g, gctx := errgroup.WithContext(ctx)
	aggregateInto := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}
	aggregateInto(func() { d.MonthlyInflow = aggregate.ByMonth(d.Inflows, s.months) })
	aggregateInto(func() { d.MonthlyOutflow = aggregate.ByMonth(d.Outflows, s.months) })
	aggregateInto(func() { d.CategoryInflow = aggregate.ByCategory(d.Inflows, s.palette) })
	aggregateInto(func() { d.CategoryOutflow = aggregate.ByCategory(d.Outflows, s.palette) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregation cancelled: %w", err)
	}

	s.logger.Info("dashboard built",
		"records", len(d.Records),
		"rejected", len(d.Rejections),
		"inflows", len(d.Inflows),
		"outflows", len(d.Outflows),
		"balance", d.Totals.Balance.StringFixed(2))
	return d, nil
}
