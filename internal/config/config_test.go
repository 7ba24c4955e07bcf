package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SHEETS_SPREADSHEET", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
	t.Setenv("ADMIN_EMAILS", "admin@example.com")
	t.Setenv("STATE_DIR", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected dev environment, got %q", cfg.AppEnv)
	}
	if cfg.ServiceName != "fixtureboard" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	if cfg.SheetRange != "Sheet1!A:G" {
		t.Fatalf("unexpected sheet range %q", cfg.SheetRange)
	}
	if cfg.ReadyTimeout != 30*time.Second {
		t.Fatalf("unexpected ready timeout %s", cfg.ReadyTimeout)
	}
	if !cfg.SheetsCircuit.Enabled || cfg.SheetsCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected circuit config %+v", cfg.SheetsCircuit)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_SpreadsheetFromURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHEETS_SPREADSHEET", "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SpreadsheetID != "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" {
		t.Fatalf("unexpected spreadsheet id %q", cfg.SpreadsheetID)
	}
}

func TestLoad_SpreadsheetRequired(t *testing.T) {
	t.Setenv("SHEETS_SPREADSHEET", "")
	t.Setenv("ADMIN_EMAILS", "admin@example.com")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing SHEETS_SPREADSHEET")
	}
}

func TestLoad_AdminEmailsRequired(t *testing.T) {
	t.Setenv("SHEETS_SPREADSHEET", "sheet-id")
	t.Setenv("ADMIN_EMAILS", " , ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for empty ADMIN_EMAILS")
	}
}

func TestLoad_SheetRangeValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHEETS_RANGE", "A:G")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for range without sheet name")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}
