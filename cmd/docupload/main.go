package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/docs"
	"github.com/obielum/doctrack/internal/repository"
	"github.com/obielum/doctrack/internal/tracker"
	"github.com/obielum/doctrack/internal/transport"
	"github.com/obielum/doctrack/internal/upload"
)

func main() {
	var (
		autoProcess = flag.Bool("process", true, "start processing after upload")
		wait        = flag.Bool("wait", true, "wait for processing to finish")
		waitTimeout = flag.Duration("timeout", 5*time.Minute, "maximum time to wait for processing")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: docupload [flags] <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *waitTimeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, uuid.New().String())

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

	client := transport.NewClient(cfg.Upload.BaseURL, cfg.Upload.RequestTimeout, logger)
	trk := tracker.New(client, docRepo, logger,
		tracker.WithPollInterval(cfg.Tracker.PollInterval),
		tracker.WithGracePeriod(cfg.Tracker.GracePeriod),
		tracker.WithQueryTimeout(cfg.Tracker.QueryTimeout),
	)
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		trk.Shutdown(sctx)
	}()

	initiator := upload.NewInitiator(client, cfg.Upload.MaxFileBytes, logger)
	svc := docs.NewService(initiator, docRepo, trk, logger)

	out, err := svc.UploadFile(ctx, docs.UploadRequest{
		Path:        path,
		AutoProcess: *autoProcess,
		Process:     transport.ProcessRequest{GenerateSummary: true},
		OnProgress: func(pct int) {
			fmt.Printf("\rupload: %3d%%", pct)
			if pct == 100 {
				fmt.Println()
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("document %s (%s)", out.Document.ID, out.Document.Filename)
	if out.Deduplicated {
		fmt.Println(" - already uploaded")
		return
	}
	fmt.Println()

	if !out.JobStarted || !*wait {
		return
	}

	// The tracker polls in the background; this loop just reads the registry
	// until the job reaches a terminal state or is pruned.
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "timed out waiting for processing")
			os.Exit(1)
		case <-time.After(cfg.Tracker.PollInterval):
		}

		job := svc.JobStatus(out.Document.ID)
		if job == nil {
			// Pruned after its grace period; the document row has the result.
			doc, err := svc.GetDocument(ctx, out.Document.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
				os.Exit(1)
			}
			printDocument(doc.Processed, doc.Summary)
			return
		}
		if job.Terminal() {
			if job.ErrorMessage != nil {
				fmt.Fprintf(os.Stderr, "processing failed: %s\n", *job.ErrorMessage)
				os.Exit(1)
			}
			doc, err := svc.GetDocument(ctx, out.Document.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
				os.Exit(1)
			}
			printDocument(doc.Processed, doc.Summary)
			return
		}
		fmt.Printf("\rprocessing: %3d%%", job.Progress)
	}
}

func printDocument(processed bool, summary *string) {
	fmt.Printf("\rprocessed: %v\n", processed)
	if summary != nil {
		fmt.Printf("summary: %s\n", *summary)
	}
}
