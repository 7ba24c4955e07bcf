package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/platform/stream"
)

const fixtureDateLayout = "2006-01-02 15:04:05"

// FixtureSource is the read side of the fixture gateway as the dashboard
// needs it.
type FixtureSource interface {
	Collection() []fixture.Fixture
	Fixtures() *stream.Stream[[]fixture.Fixture]
	Refresh(ctx context.Context) error
}

type RoundGroup struct {
	Round    int
	Fixtures []fixture.Fixture
}

type Dashboard struct {
	CurrentRound int
	Rounds       []RoundGroup
	Finished     []fixture.Fixture
	Upcoming     []fixture.Fixture
}

// DashboardService aggregates the fixture collection into the read-only
// views the dashboard renders. It never writes.
type DashboardService struct {
	source FixtureSource
	now    func() time.Time
}

func NewDashboardService(source FixtureSource) *DashboardService {
	return &DashboardService{
		source: source,
		now:    time.Now,
	}
}

func (s *DashboardService) Get(ctx context.Context) (Dashboard, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	collection := s.source.Collection()

	return Dashboard{
		CurrentRound: resolveCurrentRound(collection, s.now().UTC()),
		Rounds:       groupByRound(collection),
		Finished:     filterStatus(collection, fixture.StatusFinished),
		Upcoming:     filterStatus(collection, fixture.StatusScheduled),
	}, nil
}

// Round returns the fixtures of a single round.
func (s *DashboardService) Round(ctx context.Context, round int) ([]fixture.Fixture, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DashboardService.Round")
	defer span.End()

	if round < fixture.MinRound || round > fixture.MaxRound {
		return nil, fmt.Errorf("%w: round %d is out of range", ErrInvalidInput, round)
	}

	out := []fixture.Fixture{}
	for _, f := range s.source.Collection() {
		if f.Round == round {
			out = append(out, f)
		}
	}
	return out, nil
}

// Refresh re-reads the remote collection; subscribers of Fixtures see the
// result.
func (s *DashboardService) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Refresh")
	defer span.End()

	return s.source.Refresh(ctx)
}

func (s *DashboardService) Fixtures() *stream.Stream[[]fixture.Fixture] {
	return s.source.Fixtures()
}

// resolveCurrentRound picks the round the dashboard should open on: the
// lowest round with a live fixture, else the lowest round with a fixture
// still to play, else the last round seen, else the first round.
func resolveCurrentRound(collection []fixture.Fixture, now time.Time) int {
	if len(collection) == 0 {
		return fixture.MinRound
	}

	liveMin := 0
	upcomingMin := 0
	lastKnown := 0

	for _, f := range collection {
		if f.Round <= 0 {
			continue
		}
		if f.Round > lastKnown {
			lastKnown = f.Round
		}

		switch f.Status {
		case fixture.StatusLive:
			if liveMin == 0 || f.Round < liveMin {
				liveMin = f.Round
			}
			continue
		case fixture.StatusFinished:
			continue
		}

		kickoff, err := time.Parse(fixtureDateLayout, f.Date)
		if err == nil && kickoff.Before(now) {
			// In the past without a result; treat the round as active.
			if liveMin == 0 || f.Round < liveMin {
				liveMin = f.Round
			}
			continue
		}
		if upcomingMin == 0 || f.Round < upcomingMin {
			upcomingMin = f.Round
		}
	}

	if liveMin > 0 {
		return liveMin
	}
	if upcomingMin > 0 {
		return upcomingMin
	}
	if lastKnown > 0 {
		return lastKnown
	}
	return fixture.MinRound
}

func groupByRound(collection []fixture.Fixture) []RoundGroup {
	byRound := map[int][]fixture.Fixture{}
	for _, f := range collection {
		byRound[f.Round] = append(byRound[f.Round], f)
	}

	rounds := make([]int, 0, len(byRound))
	for round := range byRound {
		rounds = append(rounds, round)
	}
	sort.Ints(rounds)

	out := make([]RoundGroup, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, RoundGroup{Round: round, Fixtures: byRound[round]})
	}
	return out
}

func filterStatus(collection []fixture.Fixture, status string) []fixture.Fixture {
	out := []fixture.Fixture{}
	for _, f := range collection {
		if f.Status == status {
			out = append(out, f)
		}
	}
	return out
}
