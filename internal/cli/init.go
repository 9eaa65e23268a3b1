// Package cli provides common initialization shared by cmd/fintrack and
// cmd/fintrack-worker.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

// SetupLogger builds the process logger at the given level and sets it as
// the slog default. Logs go to out so that command output on stdout stays
// clean.
func SetupLogger(level string, component string, out io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Component = component
	cfg.Output = out

	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// SetupSentry initializes error reporting when dsn is set. The returned
// function flushes pending events and must be deferred by main.
func SetupSentry(logger *log.Logger, dsn, release string) func() {
	if dsn == "" {
		return func() {}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Release:     release,
		Environment: getEnvironment(),
	})
	if err != nil {
		logger.Error("Failed to initialize Sentry", "error", err)
		return func() {}
	}

	logger.Info("Sentry error reporting enabled")
	return func() { sentry.Flush(2 * time.Second) }
}

// ReportError sends err to Sentry if it is configured. It is a no-op
// otherwise.
func ReportError(ctx context.Context, err error, operation string) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("operation", operation)
		hub.CaptureException(err)
	})
}

func getEnvironment() string {
	if env := os.Getenv("FINTRACK_ENV"); env != "" {
		return env
	}
	return "production"
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once, after the signal and before cancellation, bounded by timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}

		cancel()
		close(done)
	}()

	return ctx, done
}

// Fatal logs err, reports it and exits with status 1.
func Fatal(ctx context.Context, logger *log.Logger, msg string, err error) {
	logger.ErrorContext(ctx, msg, "error", err)
	ReportError(ctx, err, msg)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}
