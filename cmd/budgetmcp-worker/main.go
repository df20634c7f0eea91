package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetmcp/internal/cli"
	"budgetmcp/internal/events"
	"budgetmcp/internal/export"
	gsheet "budgetmcp/internal/export/google"
	mem "budgetmcp/internal/export/memory"
	"budgetmcp/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting budgetmcp-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	// Audit sink: Google Sheets when configured, memory otherwise so
	// the worker can run locally without credentials.
	var sink export.AuditWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(),
			cfg.GoogleSpreadsheetID, cfg.GoogleSheetName,
			cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets audit sink initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		sink = mem.New()
		logger.Info("Google Sheets disabled - audit entries stay in memory")
	}

	consumer, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	auditWorker := worker.NewAuditWorker(sink, cfg.AuditBatchSize, cfg.AuditInterval)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	go auditWorker.Run(ctx)

	logger.Info("Consuming mutation events",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue,
		"batch_size", cfg.AuditBatchSize, "flush_interval", cfg.AuditInterval)
	if err := consumer.ConsumeMutations(ctx, auditWorker.HandleMutationEvent); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
