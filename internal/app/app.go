package app

import (
	"context"
	"fmt"

	"github.com/fixtureboard/fixtureboard/internal/config"
	"github.com/fixtureboard/fixtureboard/internal/domain/session"
	identity "github.com/fixtureboard/fixtureboard/internal/infrastructure/identity/google"
	"github.com/fixtureboard/fixtureboard/internal/infrastructure/sheets"
	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
	"github.com/fixtureboard/fixtureboard/internal/platform/store"
	"github.com/fixtureboard/fixtureboard/internal/usecase"
)

// App wires configuration into the gateway, the identity bridge and the
// services the CLI talks to. Bridge is nil when no Google client id is
// configured; the editor then rejects every write.
type App struct {
	Config config.Config
	Logger *logging.Logger

	Store   *store.Store
	Gateway *sheets.Gateway
	Bridge  *identity.Bridge

	Dashboard *usecase.DashboardService
	Editor    *usecase.EditorService
	Theme     *usecase.ThemeService
}

type noSessions struct{}

func (noSessions) CurrentSession() *session.Session { return nil }

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	st, err := store.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	values, err := sheets.NewValuesService(ctx, sheets.ClientConfig{
		APIKey:          cfg.SheetsAPIKey,
		CredentialsFile: cfg.SheetsCredentialsFile,
		TokensDir:       cfg.StateDir,
		Timeout:         cfg.SheetsTimeout,
		MaxRetries:      cfg.SheetsMaxRetries,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build sheets client: %w", err)
	}

	gateway, err := sheets.NewGateway(values, sheets.GatewayConfig{
		SpreadsheetID:  cfg.SpreadsheetID,
		Range:          cfg.SheetRange,
		ReadyTimeout:   cfg.ReadyTimeout,
		CircuitBreaker: cfg.SheetsCircuit,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build fixtures gateway: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Store:     st,
		Gateway:   gateway,
		Dashboard: usecase.NewDashboardService(gateway),
		Theme:     usecase.NewThemeService(st, logger),
	}

	var sessions usecase.SessionSource = noSessions{}
	if cfg.GoogleClientID != "" {
		bridge, err := identity.NewBridge(identity.NewHeadlessProvider(), identity.BridgeConfig{
			ClientID:  cfg.GoogleClientID,
			Allowlist: session.NewAllowlist(cfg.AdminEmails),
			Store:     st,
			Verifier:  identity.VerifyWithGoogle,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build identity bridge: %w", err)
		}
		a.Bridge = bridge
		sessions = bridge
	}
	a.Editor = usecase.NewEditorService(gateway, sessions, logger)

	return a, nil
}
