package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/domain/session"
	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
	"github.com/fixtureboard/fixtureboard/internal/platform/store"
)

func newTestStore(t *testing.T, dir string) *store.Store {
	t.Helper()

	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return st
}

type fakeEditor struct {
	collection []fixture.Fixture
	updates    map[int]string
	appended   []fixture.Fixture
}

func (f *fakeEditor) Collection() []fixture.Fixture { return f.collection }

func (f *fakeEditor) UpdateResult(_ context.Context, id int, result string) error {
	if f.updates == nil {
		f.updates = map[int]string{}
	}
	f.updates[id] = result
	return nil
}

func (f *fakeEditor) Append(_ context.Context, fx fixture.Fixture) error {
	f.appended = append(f.appended, fx)
	return nil
}

type fakeSessions struct {
	active *session.Session
}

func (f *fakeSessions) CurrentSession() *session.Session { return f.active }

func admin() *session.Session {
	return &session.Session{Subject: "sub-1", Email: "admin@example.com"}
}

func TestEditorRequiresSession(t *testing.T) {
	editor := &fakeEditor{}
	svc := NewEditorService(editor, &fakeSessions{}, logging.NewNop())

	if err := svc.UpdateResult(context.Background(), 1, "1-0"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.Append(context.Background(), fixture.Fixture{HomeTeam: "A", AwayTeam: "B"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(editor.updates) != 0 || len(editor.appended) != 0 {
		t.Fatal("unauthorized calls must not reach the gateway")
	}
}

func TestEditorUpdateResult(t *testing.T) {
	editor := &fakeEditor{}
	svc := NewEditorService(editor, &fakeSessions{active: admin()}, logging.NewNop())

	if err := svc.UpdateResult(context.Background(), 2, " 3-0 "); err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}
	if got := editor.updates[2]; got != "3-0" {
		t.Fatalf("expected trimmed result, got %q", got)
	}

	if err := svc.UpdateResult(context.Background(), 0, "1-0"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEditorAppend(t *testing.T) {
	editor := &fakeEditor{collection: []fixture.Fixture{{ID: 1}, {ID: 2}}}
	svc := NewEditorService(editor, &fakeSessions{active: admin()}, logging.NewNop())

	err := svc.Append(context.Background(), fixture.Fixture{
		Round:    2,
		Date:     "2025-10-01 21:00:00",
		HomeTeam: "Home FC",
		AwayTeam: "Away FC",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(editor.appended) != 1 {
		t.Fatalf("expected one appended fixture, got %d", len(editor.appended))
	}
	if got := editor.appended[0].ID; got != 3 {
		t.Fatalf("expected next id 3, got %d", got)
	}
}

func TestEditorAppendValidation(t *testing.T) {
	svc := NewEditorService(&fakeEditor{}, &fakeSessions{active: admin()}, logging.NewNop())

	t.Run("round out of range", func(t *testing.T) {
		err := svc.Append(context.Background(), fixture.Fixture{Round: 9, HomeTeam: "A", AwayTeam: "B"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("missing teams", func(t *testing.T) {
		err := svc.Append(context.Background(), fixture.Fixture{Round: 1, HomeTeam: " ", AwayTeam: "B"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestThemePersistence(t *testing.T) {
	// ThemeService shares the state directory with the session bridge.
	dir := t.TempDir()
	st := newTestStore(t, dir)

	svc := NewThemeService(st, logging.NewNop())
	if !svc.Dark() {
		t.Fatal("expected dark default")
	}

	if err := svc.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if svc.Dark() {
		t.Fatal("expected light after toggle")
	}

	// Preference survives a restart.
	if again := NewThemeService(newTestStore(t, dir), logging.NewNop()); again.Dark() {
		t.Fatal("expected persisted light preference")
	}
}
