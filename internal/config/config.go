package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
	"github.com/fixtureboard/fixtureboard/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

var spreadsheetURL = regexp.MustCompile(`^https://docs\.google\.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// Config stores runtime configuration for the application.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	SpreadsheetID         string
	SheetRange            string
	SheetsAPIKey          string
	SheetsCredentialsFile string
	SheetsTimeout         time.Duration
	SheetsMaxRetries      int
	SheetsCircuit         resilience.CircuitBreakerConfig
	ReadyTimeout          time.Duration

	GoogleClientID string
	AdminEmails    []string

	StateDir      string
	WatchInterval time.Duration

	UptraceEnabled bool
	UptraceDSN     string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	spreadsheetID, err := parseSpreadsheet(getEnv("SHEETS_SPREADSHEET", ""))
	if err != nil {
		return Config{}, err
	}

	sheetRange := strings.TrimSpace(getEnv("SHEETS_RANGE", "Sheet1!A:G"))
	if !strings.Contains(sheetRange, "!") {
		return Config{}, fmt.Errorf("invalid SHEETS_RANGE %q: expected <sheet>!<cells>", sheetRange)
	}

	sheetsTimeout, err := time.ParseDuration(getEnv("SHEETS_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_TIMEOUT: %w", err)
	}
	if sheetsTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEETS_TIMEOUT must be > 0")
	}

	sheetsMaxRetries, err := getEnvAsInt("SHEETS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_MAX_RETRIES: %w", err)
	}
	if sheetsMaxRetries < 0 {
		return Config{}, fmt.Errorf("SHEETS_MAX_RETRIES must be >= 0")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("SHEETS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("SHEETS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("SHEETS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("SHEETS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	readyTimeout, err := time.ParseDuration(getEnv("SHEETS_READY_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_READY_TIMEOUT: %w", err)
	}
	if readyTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEETS_READY_TIMEOUT must be > 0")
	}

	adminEmails := splitCSV(getEnv("ADMIN_EMAILS", ""))
	if len(adminEmails) == 0 {
		return Config{}, fmt.Errorf("ADMIN_EMAILS is required")
	}

	stateDir := strings.TrimSpace(getEnv("STATE_DIR", ""))
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory for STATE_DIR: %w", err)
		}
		stateDir = filepath.Join(home, ".fixtureboard")
	}

	watchInterval, err := time.ParseDuration(getEnv("WATCH_INTERVAL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WATCH_INTERVAL: %w", err)
	}
	if watchInterval <= 0 {
		return Config{}, fmt.Errorf("WATCH_INTERVAL must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	return Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "fixtureboard"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		SpreadsheetID:         spreadsheetID,
		SheetRange:            sheetRange,
		SheetsAPIKey:          strings.TrimSpace(getEnv("SHEETS_API_KEY", "")),
		SheetsCredentialsFile: strings.TrimSpace(getEnv("GOOGLE_CREDENTIALS", "")),
		SheetsTimeout:         sheetsTimeout,
		SheetsMaxRetries:      sheetsMaxRetries,
		SheetsCircuit: resilience.CircuitBreakerConfig{
			Enabled:          circuitEnabled,
			FailureThreshold: circuitFailureCount,
			OpenTimeout:      circuitOpenTimeout,
			HalfOpenMaxReq:   circuitHalfOpenMaxReq,
		},
		ReadyTimeout: readyTimeout,

		GoogleClientID: strings.TrimSpace(getEnv("GOOGLE_CLIENT_ID", "")),
		AdminEmails:    adminEmails,

		StateDir:      stateDir,
		WatchInterval: watchInterval,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,
	}, nil
}

// parseSpreadsheet accepts either a bare spreadsheet id or a full
// docs.google.com URL and returns the id.
func parseSpreadsheet(v string) (string, error) {
	value := strings.TrimSpace(v)
	if value == "" {
		return "", fmt.Errorf("SHEETS_SPREADSHEET is required")
	}

	if match := spreadsheetURL.FindStringSubmatch(value); match != nil {
		if strings.TrimSpace(match[1]) == "" {
			return "", fmt.Errorf("invalid SHEETS_SPREADSHEET URL %q: missing spreadsheet id", v)
		}
		return match[1], nil
	}
	if strings.ContainsAny(value, "/ ") {
		return "", fmt.Errorf("invalid SHEETS_SPREADSHEET %q: expected an id or a docs.google.com URL", v)
	}
	return value, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
