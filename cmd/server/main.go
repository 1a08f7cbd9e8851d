package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/transparencia/pkg/config"
	"github.com/yurifrl/transparencia/pkg/dashboard"
	"github.com/yurifrl/transparencia/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "transparencia",
	})

	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "Config file (default is config.yaml)")
	flags.String("source", "", "Published spreadsheet URL")
	flags.String("file", "", "Local spreadsheet file, takes precedence over --source")
	flags.String("format", "", "Spreadsheet format (csv, xlsx, xls)")
	flags.Duration("timeout", 0, "Spreadsheet fetch timeout")
	flags.String("locale", "", "Locale of the month labels")
	flags.IntP("port", "p", 0, "Server port")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(cfg.LogLevel())

	src, err := cfg.NewSource(logger)
	if err != nil {
		logger.Fatal("invalid source", "err", err)
	}

	svc := dashboard.NewService(src, cfg.MonthNames(), cfg.ColorPalette(), logger)
	srv := server.New(svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Addr()
	logger.Info("starting server", "addr", addr, "locale", cfg.Locale)
	if err := srv.Start(ctx, addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
