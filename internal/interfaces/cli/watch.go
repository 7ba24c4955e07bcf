package cli

import (
	"context"
	"time"

	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/platform/stream"
	"github.com/fixtureboard/fixtureboard/internal/usecase"
)

// DashboardSource is the dashboard service surface the watch loop needs.
type DashboardSource interface {
	Get(ctx context.Context) (usecase.Dashboard, error)
	Refresh(ctx context.Context) error
	Fixtures() *stream.Stream[[]fixture.Fixture]
}

// Watch re-renders the dashboard on every collection change and triggers a
// refresh on the given interval. The subscription replays the current
// collection, so the first render happens right away; callers should not
// render beforehand. Returns when ctx is done.
func Watch(ctx context.Context, source DashboardSource, renderer *Renderer, interval time.Duration) error {
	updates := source.Fixtures().Subscribe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := source.Refresh(ctx); err != nil {
				return err
			}
		case <-updates:
			d, err := source.Get(ctx)
			if err != nil {
				return err
			}
			if err := renderer.RenderDashboard(d); err != nil {
				return err
			}
		}
	}
}
