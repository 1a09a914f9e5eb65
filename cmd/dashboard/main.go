package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core"
	"github.com/joseph-ayodele/business-dashboard/internal/core/async"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
	"github.com/joseph-ayodele/business-dashboard/internal/core/textextract"
	"github.com/joseph-ayodele/business-dashboard/internal/metrics"
	repo "github.com/joseph-ayodele/business-dashboard/internal/repository"
	"github.com/joseph-ayodele/business-dashboard/internal/server"
	"github.com/joseph-ayodele/business-dashboard/internal/services/ingest"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time and level attributes, keep message and other variables
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("dashboard stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer server.CloseDB(client)

	// Ping DB to ensure connectivity
	if err := server.PingDB(ctx, client, 5*time.Second); err != nil {
		return err
	}

	recordsRepo := repo.NewRecordRepository(client, logger)
	documentsRepo := repo.NewDocumentRepository(client, logger)
	m := metrics.New()

	texts := textextract.NewExtractor(textextract.ConfigFrom(cfg.Extract), logger)
	engine := extract.NewExtractor(nil, logger)
	processor := core.NewProcessor(logger, texts, engine, recordsRepo, documentsRepo, m)

	// One worker keeps a single writer on the store.
	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(1),
		async.WithQueueSize(256),
		async.WithProcessTimeout(cfg.Extract.Timeout),
	)

	ping := func(ctx context.Context) error { return client.HealthCheck(ctx, time.Second) }
	srv, err := server.New(cfg.Server, server.Deps{
		Records:   recordsRepo,
		Documents: documentsRepo,
		Engine:    engine,
		Processor: processor,
		Queue:     queue,
		Metrics:   m,
		Ping:      ping,
	}, logger)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		return err
	}
	healthServer := server.NewHealthServer(ping, logger)

	var inbox *ingest.Inbox
	if cfg.Inbox.Enabled() {
		ingestor := ingest.NewFSIngestor(documentsRepo, logger)
		inbox = ingest.NewInbox(ingest.NewService(ingestor, queue, logger), cfg.Inbox.Dir, cfg.Inbox.Schedule, logger)
		if err := inbox.Start(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(cfg.Server.HTTPAddr) })
	g.Go(func() error {
		if err := healthServer.Serve(lis); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		healthServer.Watch(gctx, 15*time.Second)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if inbox != nil {
			select {
			case <-inbox.Stop().Done():
			case <-shutdownCtx.Done():
			}
		}
		err := srv.Shutdown(shutdownCtx)
		healthServer.Stop()
		queue.Shutdown(shutdownCtx)
		return err
	})

	return g.Wait()
}
