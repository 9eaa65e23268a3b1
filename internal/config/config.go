package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	EncodingJSON   = "json"
	EncodingLegacy = "legacy"
)

type Config struct {
	// Ledger files
	DataDir        string
	LedgerFile     string
	BudgetFile     string
	LedgerEncoding string

	// Backups
	BackupDir       string
	BackupPrefix    string
	BackupRetention int
	BackupInterval  time.Duration

	// Logging
	LogLevel string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Error reporting (optional)
	SentryDSN string
}

// Paths is the explicit file layout handed to each store.
type Paths struct {
	DataDir    string
	LedgerFile string
	BudgetFile string
	BackupDir  string
}

func Load() *Config {
	cfg := &Config{
		DataDir:        getEnv("FINTRACK_DATA_DIR", "./database"),
		LedgerFile:     getEnv("FINTRACK_LEDGER_FILE", "transactions.txt"),
		BudgetFile:     getEnv("FINTRACK_BUDGET_FILE", "budgets.txt"),
		LedgerEncoding: getEnv("FINTRACK_LEDGER_ENCODING", EncodingJSON),

		BackupDir:       getEnv("FINTRACK_BACKUP_DIR", "./backups"),
		BackupPrefix:    getEnv("FINTRACK_BACKUP_PREFIX", "finance_tracker_backup"),
		BackupRetention: getEnvInt("FINTRACK_BACKUP_RETENTION", 10),
		BackupInterval:  getEnvDuration("FINTRACK_BACKUP_INTERVAL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	return cfg
}

// Paths resolves the ledger and budget file names against the data directory.
func (c *Config) Paths() Paths {
	return Paths{
		DataDir:    c.DataDir,
		LedgerFile: resolve(c.DataDir, c.LedgerFile),
		BudgetFile: resolve(c.DataDir, c.BudgetFile),
		BackupDir:  c.BackupDir,
	}
}

// SheetsEnabled reports whether a spreadsheet export target is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DataDir) == "" {
		problems = append(problems, "data directory cannot be empty")
	}
	if strings.TrimSpace(c.LedgerFile) == "" {
		problems = append(problems, "ledger file name cannot be empty")
	}
	if strings.TrimSpace(c.BudgetFile) == "" {
		problems = append(problems, "budget file name cannot be empty")
	}
	if c.LedgerFile != "" && c.LedgerFile == c.BudgetFile {
		problems = append(problems, fmt.Sprintf("ledger and budget files must differ, both are '%s'", c.LedgerFile))
	}

	if c.LedgerEncoding != EncodingJSON && c.LedgerEncoding != EncodingLegacy {
		problems = append(problems, fmt.Sprintf("invalid ledger encoding '%s': must be one of [%s %s]", c.LedgerEncoding, EncodingJSON, EncodingLegacy))
	}

	if strings.TrimSpace(c.BackupDir) == "" {
		problems = append(problems, "backup directory cannot be empty")
	}
	if strings.TrimSpace(c.BackupPrefix) == "" {
		problems = append(problems, "backup prefix cannot be empty")
	} else if strings.ContainsAny(c.BackupPrefix, `/\`) {
		problems = append(problems, fmt.Sprintf("invalid backup prefix '%s': must not contain path separators", c.BackupPrefix))
	}
	if c.BackupRetention < 1 {
		problems = append(problems, fmt.Sprintf("invalid backup retention %d: must be at least 1", c.BackupRetention))
	}
	if c.BackupInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid backup interval %v: must be at least 1 minute", c.BackupInterval))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	// AMQP is optional; an empty URL disables events.
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			problems = append(problems, "Google Sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			problems = append(problems, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
