package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetmcp/internal/cli"
	"budgetmcp/internal/config"
	"budgetmcp/internal/engine"
	"budgetmcp/internal/events"
	"budgetmcp/internal/mcp"
	"budgetmcp/internal/tools"
)

const serverVersion = "0.1.0"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	opener := cli.NewOpener(logger, cfg)

	// Mutation event publishing is optional; without an AMQP URL the
	// registry simply skips it.
	var sink tools.EventSink
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		var err error
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		sink = publisher
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	}

	factory := func() (*engine.Session, *tools.Registry) {
		session := engine.NewSession(opener, cfg.BudgetID, logger)
		registry := tools.NewRegistry(session, logger,
			tools.WithReadOnly(cfg.ReadOnly),
			tools.WithEvents(sink))
		return session, registry
	}
	server := mcp.NewServer(factory, "budgetmcp", serverVersion, logger)

	switch cfg.Transport {
	case "http":
		runHTTP(logger, cfg, server)
	default:
		runStdio(logger, cfg, server)
	}
}

func runStdio(logger *slog.Logger, cfg *config.Config, server *mcp.Server) {
	logger.Info("Starting budgetmcp on stdio",
		"budget_id", cfg.BudgetID, "read_only", cfg.ReadOnly)

	ctx, _ := cli.GracefulShutdown(logger, 10*time.Second, nil)
	if err := server.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Stdio transport failed", "error", err)
		os.Exit(1)
	}
}

func runHTTP(logger *slog.Logger, cfg *config.Config, server *mcp.Server) {
	httpSrv := mcp.NewHTTPServer(":"+cfg.Port, cfg.BearerToken, server)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budgetmcp on http",
			"port", cfg.Port, "budget_id", cfg.BudgetID,
			"read_only", cfg.ReadOnly, "auth", cfg.BearerToken != "")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
