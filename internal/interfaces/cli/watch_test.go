package cli

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/platform/stream"
	"github.com/fixtureboard/fixtureboard/internal/usecase"
)

type watchSource struct {
	fixtures *stream.Stream[[]fixture.Fixture]
}

func (s *watchSource) Get(context.Context) (usecase.Dashboard, error) {
	collection := s.fixtures.Latest()
	return usecase.Dashboard{
		CurrentRound: 1,
		Rounds:       []usecase.RoundGroup{{Round: 1, Fixtures: collection}},
	}, nil
}

func (s *watchSource) Refresh(context.Context) error { return nil }

func (s *watchSource) Fixtures() *stream.Stream[[]fixture.Fixture] { return s.fixtures }

type syncWriter struct {
	mu sync.Mutex
	b  strings.Builder
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func waitForRenders(t *testing.T, out *syncWriter, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if strings.Count(out.String(), "Round 1 (current)") >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("never reached %d renders:\n%s", want, out.String())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWatchRendersOnceFromReplay(t *testing.T) {
	source := &watchSource{fixtures: stream.New([]fixture.Fixture{
		{ID: 1, Round: 1, HomeTeam: "A", AwayTeam: "B", Status: fixture.StatusScheduled},
	})}
	out := &syncWriter{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, source, NewRenderer(out), time.Hour) }()

	// The replayed collection produces exactly one render, not an initial
	// render plus a replay render.
	waitForRenders(t, out, 1)
	time.Sleep(50 * time.Millisecond)
	if got := strings.Count(out.String(), "Round 1 (current)"); got != 1 {
		t.Fatalf("expected a single initial render, got %d:\n%s", got, out.String())
	}

	source.fixtures.Publish([]fixture.Fixture{
		{ID: 1, Round: 1, HomeTeam: "A", AwayTeam: "B", Status: fixture.StatusFinished, Result: "1-0"},
	})
	waitForRenders(t, out, 2)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected watch result: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watch did not stop on cancellation")
	}
}
