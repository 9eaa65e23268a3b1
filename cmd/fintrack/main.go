// Command fintrack is the personal finance ledger command-line interface.
//
// Commands:
//
//	add                  Record an income or expense
//	list                 List transactions
//	edit | delete        Change or remove a transaction
//	balance              Show all-time and monthly balance
//	summary              Monthly summary, breakdown, alerts and advice
//	health               Financial health score
//	budget set|delete|list
//	export csv|json|report|sqlite|sheets
//	import <file.csv>    Import transactions from CSV
//	backup create|list|restore
//	check                Validate the data files
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
	"fintrack/internal/budget"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const version = "1.0.0"

// errUsage marks errors caused by bad arguments; main exits 2 on them.
var errUsage = errors.New("usage error")

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", log.ComponentApp, os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, log.ComponentApp, os.Stderr)

	flush := cli.SetupSentry(logger, cfg.SentryDSN, "fintrack@"+version)

	ctx := context.Background()
	a, closeApp := newApp(ctx, cfg, logger, os.Stdout, os.Stderr)

	err := a.run(ctx, os.Args[1:])
	closeApp()

	code := 0
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp), err == errUsage:
		code = 2
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code = 2
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cli.ReportError(ctx, err, "fintrack")
		code = 1
	}
	flush()
	os.Exit(code)
}

type app struct {
	cfg     *config.Config
	logger  *log.Logger
	svc     *services.LedgerService
	backups *backup.Manager
	stdout  io.Writer
	stderr  io.Writer
	now     func() time.Time
}

// newApp wires the stores from cfg. AMQP is optional: when the broker is
// unreachable the commands still work and events are skipped.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger, stdout, stderr io.Writer) (*app, func()) {
	paths := cfg.Paths()

	enc, err := ledger.ParseEncoding(cfg.LedgerEncoding)
	if err != nil {
		enc = ledger.EncodingJSON
	}
	store := ledger.NewStore(paths.LedgerFile, ledger.WithEncoding(enc))
	registry := budget.NewRegistry(paths.BudgetFile)

	var (
		publisher services.EventPublisher
		client    *amqp.Client
	)
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WarnContext(ctx, "AMQP unavailable, ledger events disabled", "error", err)
		} else {
			publisher = client
		}
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		svc:    services.NewLedgerService(store, registry, publisher),
		backups: &backup.Manager{
			Sources:   []string{paths.LedgerFile, paths.BudgetFile},
			Dir:       paths.BackupDir,
			Prefix:    cfg.BackupPrefix,
			Retention: cfg.BackupRetention,
		},
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}

	closeFn := func() {
		if client != nil {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
	}
	return a, closeFn
}

func (a *app) run(ctx context.Context, args []string) error {
	ctx = log.WithLogger(ctx, a.logger)
	if len(args) == 0 {
		a.printUsage()
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		return a.cmdAdd(ctx, rest)
	case "list":
		return a.cmdList(ctx, rest)
	case "edit":
		return a.cmdEdit(ctx, rest)
	case "delete":
		return a.cmdDelete(ctx, rest)
	case "balance":
		return a.cmdBalance(ctx, rest)
	case "summary":
		return a.cmdSummary(ctx, rest)
	case "health":
		return a.cmdHealth(ctx, rest)
	case "budget":
		return a.cmdBudget(ctx, rest)
	case "export":
		return a.cmdExport(ctx, rest)
	case "import":
		return a.cmdImport(ctx, rest)
	case "backup":
		return a.cmdBackup(ctx, rest)
	case "check":
		return a.cmdCheck(ctx, rest)
	case "version":
		fmt.Fprintf(a.stdout, "fintrack v%s\n", version)
		return nil
	case "help", "-h", "--help":
		a.printUsage()
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n\n", cmd)
		a.printUsage()
		return errUsage
	}
}

func (a *app) printUsage() {
	w := a.stderr
	fmt.Fprintln(w, "fintrack v"+version)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  fintrack <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add -type expense|income -category C -amount 12.34 [-date D] [-desc T]")
	fmt.Fprintln(w, "  list [-days N] [-type expense|income]")
	fmt.Fprintln(w, "  edit (-id ID | -pos N) [-date D] [-type T] [-category C] [-desc T] [-amount A]")
	fmt.Fprintln(w, "  delete (-id ID | -pos N)")
	fmt.Fprintln(w, "  balance [-month YYYY-MM]")
	fmt.Fprintln(w, "  summary [-month YYYY-MM]")
	fmt.Fprintln(w, "  health [-month YYYY-MM]")
	fmt.Fprintln(w, "  budget set -category C -limit 500.00")
	fmt.Fprintln(w, "  budget delete -category C")
	fmt.Fprintln(w, "  budget list [-month YYYY-MM]")
	fmt.Fprintln(w, "  export csv|json -out FILE")
	fmt.Fprintln(w, "  export report -out FILE [-month YYYY-MM]")
	fmt.Fprintln(w, "  export sqlite -out FILE.db")
	fmt.Fprintln(w, "  export sheets")
	fmt.Fprintln(w, "  import [-dry-run] FILE.csv")
	fmt.Fprintln(w, "  backup create | backup list | backup restore -yes [-dest DIR] ARCHIVE")
	fmt.Fprintln(w, "  check")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  FINTRACK_DATA_DIR, FINTRACK_LEDGER_FILE, FINTRACK_BUDGET_FILE, FINTRACK_LEDGER_ENCODING")
	fmt.Fprintln(w, "  FINTRACK_BACKUP_DIR, FINTRACK_BACKUP_PREFIX, FINTRACK_BACKUP_RETENTION")
	fmt.Fprintln(w, "  AMQP_URL, GOOGLE_SPREADSHEET_ID, GOOGLE_SERVICE_ACCOUNT_JSON|FILE, SENTRY_DSN, LOG_LEVEL")
}
