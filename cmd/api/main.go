// cmd/api/main.go

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"playerpulse/internal/app"
	"playerpulse/internal/config"
	"playerpulse/internal/logging"
	"playerpulse/internal/server"
	"playerpulse/internal/server/handlers"
	"playerpulse/internal/service/resolution"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Requests cannot answer an interactive prompt, so oracle candidates are accepted
	pipeline, err := app.New(ctx, cfg, resolution.AcceptAll, logger)
	if err != nil {
		logger.Error("Failed to initialize pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	defer pipeline.Close()

	opts := server.Options{
		EventsSubject: cfg.NATS.EventsTopic + ".completed",
		DefaultLimit:  cfg.Analyze.DefaultLimit,
		Logger:        logger,
	}
	if pipeline.NATS != nil {
		var events handlers.EventSubscriber = pipeline.NATS
		opts.Events = events
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, pipeline.Analyzer, opts)

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", slog.String("host", cfg.Server.Host), slog.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", slog.Any("error", err))
			shutdown <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", slog.Any("error", err))
	}

	if err := pipeline.Close(); err != nil {
		logger.Error("Failed to release resources", slog.Any("error", err))
	}

	logger.Info("Shutdown complete")
}
