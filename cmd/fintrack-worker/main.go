// Command fintrack-worker keeps rolling backups of the ledger files. It takes
// one on a fixed interval and, when AMQP is configured, another shortly after
// ledger changes are announced.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

const version = "1.0.0"

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", log.ComponentWorker, os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, log.ComponentWorker, os.Stdout)

	flush := cli.SetupSentry(logger, cfg.SentryDSN, "fintrack-worker@"+version)
	defer flush()

	logger.Info("Starting fintrack-worker",
		"backup_dir", cfg.BackupDir,
		"interval", cfg.BackupInterval,
		"retention", cfg.BackupRetention)

	paths := cfg.Paths()
	manager := &backup.Manager{
		Sources:   []string{paths.LedgerFile, paths.BudgetFile},
		Dir:       paths.BackupDir,
		Prefix:    cfg.BackupPrefix,
		Retention: cfg.BackupRetention,
	}
	backupWorker := worker.NewBackupWorker(manager)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(context.Background(), logger, "Failed to initialize AMQP client", err)
		}
	} else {
		logger.Info("AMQP_URL not set, event-driven backups disabled")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(log.WithLogger(ctx, logger))
	g.Go(func() error {
		return backupWorker.RunPeriodic(gctx, cfg.BackupInterval)
	})
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeLedgerEvents(gctx, backupWorker.HandleEvent)
		})
	}

	err := g.Wait()
	if amqpClient != nil {
		if cerr := amqpClient.Close(); cerr != nil {
			logger.Warn("Failed to close AMQP client", "error", cerr)
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		cli.ReportError(ctx, err, "fintrack-worker")
		flush()
		os.Exit(1)
	}

	<-done
	logger.Info("Worker shutdown complete")
}
