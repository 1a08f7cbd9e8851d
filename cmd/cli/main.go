package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/transparencia/pkg/config"
	"github.com/yurifrl/transparencia/pkg/csv"
	"github.com/yurifrl/transparencia/pkg/dashboard"
	"github.com/yurifrl/transparencia/pkg/report"
)

var (
	cliFilters filters
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "transparencia-cli",
	Short: "Finance transparency command-line interface",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print totals and monthly and category aggregates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")
		out, err := report.ParseOutput(output)
		if err != nil {
			return err
		}

		svc, logger, err := newService(cmd)
		if err != nil {
			return err
		}
		if err := cliFilters.prepare(cmd.Flags()); err != nil {
			return err
		}

		batch, err := svc.Records(cmd.Context())
		if err != nil {
			return err
		}
		batch.Records = apply(batch.Records, cliFilters.toFilterFunc())
		d, err := svc.Assemble(cmd.Context(), batch)
		if err != nil {
			return err
		}

		logger.Debug("rendering summary", "output", out, "records", len(d.Records))
		return report.Write(cmd.OutOrStdout(), d, out)
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Dump normalized records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, err := newService(cmd)
		if err != nil {
			return err
		}
		if err := cliFilters.prepare(cmd.Flags()); err != nil {
			return err
		}

		batch, err := svc.Records(cmd.Context())
		if err != nil {
			return err
		}

		printer := pp.New()
		printer.SetOutput(cmd.OutOrStdout())

		if rejections, _ := cmd.Flags().GetBool("rejections"); rejections {
			d, err := svc.Assemble(cmd.Context(), batch)
			if err != nil {
				return err
			}
			_, err = printer.Println(report.NewDashboard(d).Rejections)
			return err
		}

		_, err = printer.Println(report.Records(apply(batch.Records, cliFilters.toFilterFunc())))
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export normalized records as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, logger, err := newService(cmd)
		if err != nil {
			return err
		}
		if err := cliFilters.prepare(cmd.Flags()); err != nil {
			return err
		}

		batch, err := svc.Records(cmd.Context())
		if err != nil {
			return err
		}
		data := csv.Create(batch.Records, cliFilters.toFilterFunc())

		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("records exported", "file", path, "rejected", len(batch.Rejections))
		return nil
	},
}

// newService loads configuration and wires the pipeline for a command.
func newService(cmd *cobra.Command) (*dashboard.Service, *log.Logger, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "transparencia-cli",
		Level:           cfg.LogLevel(),
	})

	src, err := cfg.NewSource(logger)
	if err != nil {
		return nil, nil, err
	}
	return dashboard.NewService(src, cfg.MonthNames(), cfg.ColorPalette(), logger), logger, nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("source", "", "Published spreadsheet URL")
	rootCmd.PersistentFlags().String("file", "", "Local spreadsheet file, takes precedence over --source")
	rootCmd.PersistentFlags().String("format", "", "Spreadsheet format (csv, xlsx, xls)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Spreadsheet fetch timeout")
	rootCmd.PersistentFlags().String("locale", "", "Locale of the month labels")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date (DD/MM/YYYY)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date (DD/MM/YYYY)")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
	rootCmd.PersistentFlags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
	rootCmd.PersistentFlags().StringVar(&cliFilters.description, "description", "", "Filter by description (case insensitive)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.category, "category", "", "Filter by category")
	rootCmd.PersistentFlags().StringVar(&cliFilters.kind, "kind", "", "Filter by kind (Entrada or Saída)")

	summaryCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
	recordsCmd.Flags().Bool("rejections", false, "Dump rejected rows instead of records")
	exportCmd.Flags().String("out", "", "Write to file instead of stdout")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
