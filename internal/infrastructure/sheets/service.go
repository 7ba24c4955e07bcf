package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const writeScope = "https://www.googleapis.com/auth/spreadsheets"

type ClientConfig struct {
	// APIKey enables read-only access without user consent.
	APIKey string
	// CredentialsFile is an OAuth client secret JSON; when set the service is
	// authorized with the spreadsheets write scope and APIKey is ignored.
	CredentialsFile string
	// TokensDir caches the OAuth token between runs.
	TokensDir  string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

// ValuesService is the production ValuesAPI over the Google Sheets values
// collection. Retryable statuses are retried with linear backoff and marked
// transient for the gateway's circuit breaker.
type ValuesService struct {
	svc        *sheets.Service
	maxRetries int
	logger     *logging.Logger
}

func NewValuesService(ctx context.Context, cfg ClientConfig) (*ValuesService, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		base := &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		}
		client, err := authorize(context.WithValue(ctx, oauth2.HTTPClient, base), cfg.CredentialsFile, writeScope, cfg.TokensDir)
		if err != nil {
			return nil, fmt.Errorf("authorize sheets client: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(client))
	case strings.TrimSpace(cfg.APIKey) != "":
		opts = append(opts, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	default:
		return nil, fmt.Errorf("either an API key or a credentials file is required")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &ValuesService{
		svc:        svc,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
	}, nil
}

func (s *ValuesService) Get(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	var grid [][]string
	err := s.call(ctx, func() error {
		response, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
		if err != nil {
			return err
		}
		grid = fromValueGrid(response.Values)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", readRange, err)
	}
	return grid, nil
}

func (s *ValuesService) Update(ctx context.Context, spreadsheetID, writeRange string, values [][]string) error {
	rq := &sheets.ValueRange{Values: toValueGrid(values)}
	err := s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, rq).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", writeRange, err)
	}
	return nil
}

func (s *ValuesService) Append(ctx context.Context, spreadsheetID, appendRange string, values [][]string) error {
	rq := &sheets.ValueRange{Values: toValueGrid(values)}
	err := s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.Append(spreadsheetID, appendRange, rq).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append %s: %w", appendRange, err)
	}
	return nil
}

func (s *ValuesService) call(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}
		lastErr = fmt.Errorf("%w: %v", errSheetsTransient, err)

		if attempt == s.maxRetries {
			break
		}
		s.logger.WarnContext(ctx, "sheets request failed, retrying",
			"attempt", attempt+1,
			"max_retries", s.maxRetries,
			"error", err,
		)
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("sheets request failed")
	}
	return lastErr
}

func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if crerr.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	// Transport-level failures carry no status.
	return true
}

func toValueGrid(values [][]string) [][]any {
	out := make([][]any, 0, len(values))
	for _, row := range values {
		cells := make([]any, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		out = append(out, cells)
	}
	return out
}

func fromValueGrid(values [][]any) [][]string {
	out := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			if cell == nil {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, fmt.Sprint(cell))
		}
		out = append(out, cells)
	}
	return out
}
