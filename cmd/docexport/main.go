package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/export"
	"github.com/obielum/doctrack/internal/repository"
)

func main() {
	var (
		fromStr = flag.String("from", "", "start date (YYYY-MM-DD)")
		toStr   = flag.String("to", "", "end date (YYYY-MM-DD)")
		outPath = flag.String("out", "documents.xlsx", "output path")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	from, err := parseDate(*fromStr)
	if err != nil {
		logger.Error("invalid -from date", "value", *fromStr, "error", err)
		os.Exit(2)
	}
	to, err := parseDate(*toStr)
	if err != nil {
		logger.Error("invalid -to date", "value", *toStr, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		MaxConns:    cfg.Database.MaxConns,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	docRepo := repository.NewDocumentRepository(db, logger)
	if err := docRepo.Migrate(ctx); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	svc := export.NewService(docRepo, logger)
	data, err := svc.ExportDocumentsXLSX(ctx, from, to)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logger.Error("write output", "path", *outPath, "error", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *outPath, len(data))
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
