package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/obielum/doctrack/internal/common"
	"github.com/obielum/doctrack/internal/docs"
	"github.com/obielum/doctrack/internal/repository"
	"github.com/obielum/doctrack/internal/tracker"
	"github.com/obielum/doctrack/internal/transport"
	"github.com/obielum/doctrack/internal/upload"
	"github.com/obielum/doctrack/internal/watch"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	if err := repository.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

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
		tracker.WithMaxConcurrency(cfg.Tracker.MaxConcurrency),
	)

	initiator := upload.NewInitiator(client, cfg.Upload.MaxFileBytes, logger)
	svc := docs.NewService(initiator, docRepo, trk, logger)

	// Optional directory watcher: new files in WATCH_DIRS are uploaded and
	// auto-processed.
	if len(cfg.Watch.Roots) > 0 {
		evCh, errCh, err := watch.Start(ctx, watch.Config{
			Roots:    cfg.Watch.Roots,
			Debounce: cfg.Watch.Debounce,
		}, logger)
		if err != nil {
			logger.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		go func() {
			for path := range evCh {
				out, err := svc.UploadFile(ctx, docs.UploadRequest{
					Path:        path,
					AutoProcess: true,
					Process:     transport.ProcessRequest{GenerateSummary: true},
				})
				if err != nil {
					logger.Error("watched upload failed", "path", path, "error", err)
					continue
				}
				logger.Info("watched upload",
					"path", path,
					"document_id", out.Document.ID,
					"deduplicated", out.Deduplicated,
					"job_started", out.JobStarted,
				)
			}
		}()
		go func() {
			for err := range errCh {
				logger.Warn("watcher error", "error", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		trk.Shutdown(shutdownCtx)
	}()

	logger.Info("doctrackd listening", "addr", cfg.Server.GRPCAddr)
	if err := grpcServer.Serve(lis); err != nil {
		logger.Error("grpc serve failed", "error", err)
		os.Exit(1)
	}
}
