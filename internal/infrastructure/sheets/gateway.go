package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
	"github.com/fixtureboard/fixtureboard/internal/platform/resilience"
	"github.com/fixtureboard/fixtureboard/internal/platform/stream"
	"github.com/fixtureboard/fixtureboard/internal/usecase"
)

// ValuesAPI is the narrow surface of the remote tabular store the gateway
// needs. The production implementation wraps the Google Sheets values
// collection; tests substitute an in-memory grid.
type ValuesAPI interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
	Update(ctx context.Context, spreadsheetID, writeRange string, values [][]string) error
	Append(ctx context.Context, spreadsheetID, appendRange string, values [][]string) error
}

var errSheetsTransient = crerr.New("sheets transient failure")

type state int32

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	stateFailed
)

type GatewayConfig struct {
	SpreadsheetID  string
	Range          string
	ReadyTimeout   time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Gateway synchronizes an in-memory fixture collection with one spreadsheet
// range. The collection is only ever replaced wholesale, never edited in
// place; every successful write is followed by a full reload.
//
// Lifecycle: Uninitialized -> Initializing -> Ready on success, or -> Failed
// terminally. After Failed every data operation reports not-initialized.
type Gateway struct {
	api            ValuesAPI
	spreadsheetID  string
	area           string
	sheet          string
	readyTimeout   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[[]fixture.Fixture]

	state    atomic.Int32
	readyCh  chan struct{}
	failedCh chan struct{}
	initErr  atomic.Pointer[error]
	fixtures *stream.Stream[[]fixture.Fixture]
	ready    *stream.Stream[bool]
}

func NewGateway(api ValuesAPI, cfg GatewayConfig) (*Gateway, error) {
	if api == nil {
		return nil, fmt.Errorf("values api is required")
	}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	area := strings.TrimSpace(cfg.Range)
	if area == "" {
		area = "Sheet1!A:G"
	}
	sheet, _, ok := strings.Cut(area, "!")
	if !ok || sheet == "" {
		return nil, fmt.Errorf("invalid range %q: expected '<sheet>!<cells>'", area)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	readyTimeout := cfg.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = 30 * time.Second
	}

	return &Gateway{
		api:            api,
		spreadsheetID:  cfg.SpreadsheetID,
		area:           area,
		sheet:          sheet,
		readyTimeout:   readyTimeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		readyCh:        make(chan struct{}),
		failedCh:       make(chan struct{}),
		fixtures:       stream.New[[]fixture.Fixture](nil),
		ready:          stream.New(false),
	}, nil
}

// Initialize performs the first full load and transitions the gateway to
// Ready. A failure is terminal: the gateway stays Failed, the error is kept
// for later callers, and no automatic retry is attempted.
func (g *Gateway) Initialize(ctx context.Context) error {
	if !g.state.CompareAndSwap(int32(stateUninitialized), int32(stateInitializing)) {
		switch state(g.state.Load()) {
		case stateReady:
			return nil
		case stateFailed:
			return g.failure()
		default:
			return g.AwaitReady(ctx)
		}
	}

	if _, err := g.load(ctx); err != nil {
		wrapped := fmt.Errorf("%w: initialize fixtures gateway: %v", usecase.ErrNotInitialized, err)
		g.initErr.Store(&wrapped)
		g.state.Store(int32(stateFailed))
		close(g.failedCh)
		g.ready.Publish(false)
		g.logger.ErrorContext(ctx, "fixtures gateway initialization failed", "error", err)
		return wrapped
	}

	g.state.Store(int32(stateReady))
	close(g.readyCh)
	g.ready.Publish(true)
	g.logger.InfoContext(ctx, "fixtures gateway ready",
		"spreadsheet_id", g.spreadsheetID,
		"range", g.area,
	)
	return nil
}

// AwaitReady blocks until the gateway is Ready, initialization fails
// terminally, the configured readiness timeout elapses, or ctx is done. A
// terminal failure is signalled immediately, the timeout is the fallback for
// an initialization that never completes.
func (g *Gateway) AwaitReady(ctx context.Context) error {
	timer := time.NewTimer(g.readyTimeout)
	defer timer.Stop()

	select {
	case <-g.readyCh:
		return nil
	case <-g.failedCh:
		return g.failure()
	case <-ctx.Done():
		if err := g.failure(); err != nil {
			return err
		}
		return ctx.Err()
	case <-timer.C:
		if err := g.failure(); err != nil {
			return err
		}
		return fmt.Errorf("%w: not ready after %s", usecase.ErrNotInitialized, g.readyTimeout)
	}
}

func (g *Gateway) IsReady() bool {
	return state(g.state.Load()) == stateReady
}

// Ready is the reactive readiness signal; it replays the current state to
// late subscribers.
func (g *Gateway) Ready() *stream.Stream[bool] {
	return g.ready
}

// Fixtures is the reactive fixture collection; a published slice is complete
// and must not be mutated by consumers.
func (g *Gateway) Fixtures() *stream.Stream[[]fixture.Fixture] {
	return g.fixtures
}

// Load fetches the whole range, rebuilds the collection and publishes it.
func (g *Gateway) Load(ctx context.Context) ([]fixture.Fixture, error) {
	if err := g.requireReady(); err != nil {
		return nil, err
	}
	return g.load(ctx)
}

// Refresh is Load with the caller not needing the collection back.
func (g *Gateway) Refresh(ctx context.Context) error {
	_, err := g.Load(ctx)
	return err
}

// UpdateResult overwrites the result cell of the fixture with the given id
// and reloads. The remote row is addressed as id+1 to account for the header
// row; this assumes ids are dense and match row order, which holds for sheets
// maintained through Append but is not re-derived from a fresh lookup.
func (g *Gateway) UpdateResult(ctx context.Context, id int, result string) error {
	if err := g.requireReady(); err != nil {
		return err
	}

	if _, ok := g.find(id); !ok {
		return fmt.Errorf("%w: fixture %d", usecase.ErrNotFound, id)
	}

	writeRange := fmt.Sprintf("%s!G%d", g.sheet, id+1)
	err := g.remote(ctx, "update", func(ctx context.Context) error {
		return g.api.Update(ctx, g.spreadsheetID, writeRange, [][]string{{result}})
	})
	if err != nil {
		return err
	}

	if _, err := g.load(ctx); err != nil {
		return fmt.Errorf("reload after update: %w", err)
	}
	return nil
}

// Append adds the fixture's seven serialized fields as a new row and reloads.
func (g *Gateway) Append(ctx context.Context, f fixture.Fixture) error {
	if err := g.requireReady(); err != nil {
		return err
	}

	row := fixture.FixtureToRow(f)
	err := g.remote(ctx, "append", func(ctx context.Context) error {
		return g.api.Append(ctx, g.spreadsheetID, g.area, [][]string{row})
	})
	if err != nil {
		return err
	}

	if _, err := g.load(ctx); err != nil {
		return fmt.Errorf("reload after append: %w", err)
	}
	return nil
}

// ByRound filters the current collection; it never touches the remote store.
func (g *Gateway) ByRound(round int) []fixture.Fixture {
	return g.filter(func(f fixture.Fixture) bool { return f.Round == round })
}

func (g *Gateway) Finished() []fixture.Fixture {
	return g.filter(func(f fixture.Fixture) bool { return f.Status == fixture.StatusFinished })
}

func (g *Gateway) Upcoming() []fixture.Fixture {
	return g.filter(func(f fixture.Fixture) bool { return f.Status == fixture.StatusScheduled })
}

func (g *Gateway) Collection() []fixture.Fixture {
	return g.fixtures.Latest()
}

// load runs the fetch-parse-publish cycle. Concurrent loads collapse into a
// single remote fetch.
func (g *Gateway) load(ctx context.Context) ([]fixture.Fixture, error) {
	collection, _, err := g.flight.Do("load", func() ([]fixture.Fixture, error) {
		var grid [][]string
		err := g.remote(ctx, "get", func(ctx context.Context) error {
			var getErr error
			grid, getErr = g.api.Get(ctx, g.spreadsheetID, g.area)
			return getErr
		})
		if err != nil {
			return nil, err
		}
		return g.parseGrid(ctx, grid), nil
	})
	if err != nil {
		return nil, err
	}

	g.fixtures.Publish(collection)
	return collection, nil
}

// parseGrid maps data rows to fixtures, skipping the header row. A grid with
// only a header, or nothing at all, is an empty collection.
func (g *Gateway) parseGrid(ctx context.Context, grid [][]string) []fixture.Fixture {
	if len(grid) <= 1 {
		return []fixture.Fixture{}
	}

	rows := grid[1:]
	out := make([]fixture.Fixture, 0, len(rows))
	for index, row := range rows {
		if len(row) > 2 {
			if _, err := fixture.NormalizeDate(row[2]); err != nil {
				g.logger.WarnContext(ctx, "unparseable fixture date, keeping raw value",
					"row", index+2,
					"error", err,
				)
			}
		}
		out = append(out, fixture.RowToFixture(row, index))
	}
	return out
}

func (g *Gateway) requireReady() error {
	if state(g.state.Load()) != stateReady {
		if err := g.failure(); err != nil {
			return err
		}
		return usecase.ErrNotInitialized
	}
	return nil
}

func (g *Gateway) failure() error {
	if err := g.initErr.Load(); err != nil {
		return *err
	}
	return nil
}

// remote runs one call against the tabular store behind the circuit breaker
// and normalizes the failure surface.
func (g *Gateway) remote(ctx context.Context, op string, fn func(context.Context) error) error {
	if g.circuitEnabled {
		if err := g.breaker.Allow(); err != nil {
			g.logger.WarnContext(ctx, "sheets circuit breaker rejected request",
				"op", op,
				"state", g.breaker.State(),
			)
			return fmt.Errorf("%w: tabular store is temporarily unavailable", usecase.ErrRemoteFailure)
		}
	}

	err := fn(ctx)
	if g.circuitEnabled {
		if err != nil && crerr.Is(err, errSheetsTransient) {
			g.breaker.RecordFailure()
		} else {
			g.breaker.RecordSuccess()
		}
	}
	if err != nil {
		g.logger.WarnContext(ctx, "sheets request failed", "op", op, "error", err)
		return fmt.Errorf("%w: %s: %v", usecase.ErrRemoteFailure, op, err)
	}
	return nil
}

func (g *Gateway) find(id int) (fixture.Fixture, bool) {
	for _, f := range g.fixtures.Latest() {
		if f.ID == id {
			return f, true
		}
	}
	return fixture.Fixture{}, false
}

func (g *Gateway) filter(keep func(fixture.Fixture) bool) []fixture.Fixture {
	collection := g.fixtures.Latest()
	out := make([]fixture.Fixture, 0, len(collection))
	for _, f := range collection {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
