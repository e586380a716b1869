package main

import (
	"context"
	"dm-lab/auth"
	grpcserver "dm-lab/infrastructure/grpc/server"
	httpserver "dm-lab/infrastructure/http/server"
	"dm-lab/infrastructure/search"
	"dm-lab/infrastructure/storage"
	"dm-lab/internal"
	"dm-lab/observability"
	"dm-lab/runtime"
	"dm-lab/runtime/workers"
	"dm-lab/services"
	"dm-lab/sink"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Messaging server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the stack, serves until a signal or a fatal error, then shuts
// everything down in reverse order. Deferred closes always run.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB) and search index (Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messageRepository, err := storage.NewMessageRepository(db, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("message sequences: %w", err)
	}
	defer func() { _ = messageRepository.Close() }()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()
	index := search.NewMessageIndex(blugeWriter, logger)

	// 3. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	// 4. Realtime fan-out
	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(logger, workers.NewSupervisor(logger, config.RestartInterval), registry,
		config.BufferSize, config.SinkTimeout, config.MetricInterval, metrics)
	orchestrator.Add(sink.NewSearchSink(index, logger))

	service := services.NewMessagingService(logger, services.Stores{
		Conversations: storage.NewConversationRepository(db, logger),
		Memberships:   storage.NewMembershipRepository(db, logger),
		Messages:      messageRepository,
		Attachments:   storage.NewAttachmentRepository(db, logger),
		Profiles:      storage.NewProfileRepository(db, logger),
	}, index, orchestrator.Registry(), orchestrator.Notifier(), config.AttachmentPolicy(), metrics)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	orchestrator.Start(ctx)
	defer orchestrator.Stop()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		debugServer := internal.StartDebugServer(logger, db, config.DebugPort, endpoint, func() map[string]any {
			return map[string]any{"live_subscriptions": registry.Count()}
		})
		defer func() { _ = debugServer.Close() }()
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
	}

	errChan := make(chan error, 2)

	// 6. gRPC health
	healthListener, err := net.Listen("tcp", config.HealthAddress())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.HealthAddress(), err)
	}
	healthServer := grpcserver.NewHealthServer(logger)
	go func() {
		if err := healthServer.Serve(healthListener); err != nil {
			errChan <- err
		}
	}()

	// 7. HTTP gateway
	issuer := auth.NewTokenIssuer(config.JWTSecret, config.JWTIssuer)
	gateway := httpserver.NewMessagingServer(logger, service, issuer, metrics, reg, httpserver.Options{
		DefaultMessageLimit:  config.DefaultMessageLimit,
		MaxAttachmentBytes:   config.MaxAttachmentBytes,
		ConnectionBufferSize: config.ConnectionBufferSize,
		AllowedOrigins:       config.Origins(),
	})
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           gateway.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting HTTP gateway", "address", config.Address(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	healthServer.SetServing(true)

	// 8. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 9. Graceful shutdown: stop advertising, drain requests, then workers.
	logger.Info("Shutting down gracefully...")
	healthServer.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	healthServer.Shutdown()
	logger.Info("Program stopped cleanly")
	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}
