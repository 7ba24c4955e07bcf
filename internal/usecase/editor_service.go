package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/domain/session"
	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
)

// FixtureEditor is the write side of the fixture gateway.
type FixtureEditor interface {
	Collection() []fixture.Fixture
	UpdateResult(ctx context.Context, id int, result string) error
	Append(ctx context.Context, f fixture.Fixture) error
}

// SessionSource resolves the active session, nil when logged out.
type SessionSource interface {
	CurrentSession() *session.Session
}

// EditorService guards every mutating operation behind an active session.
type EditorService struct {
	editor   FixtureEditor
	sessions SessionSource
	validate *validator.Validate
	logger   *logging.Logger
}

func NewEditorService(editor FixtureEditor, sessions SessionSource, logger *logging.Logger) *EditorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EditorService{
		editor:   editor,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger,
	}
}

// UpdateResult stores a result for the identified fixture. An empty result
// clears the cell and the fixture reverts to scheduled.
func (s *EditorService) UpdateResult(ctx context.Context, id int, result string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EditorService.UpdateResult")
	defer span.End()

	active, err := s.requireSession("update result")
	if err != nil {
		return err
	}
	if id < 1 {
		return fmt.Errorf("%w: fixture id must be positive", ErrInvalidInput)
	}

	if err := s.editor.UpdateResult(ctx, id, strings.TrimSpace(result)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "result updated", "fixture_id", id, "editor", active.Email)
	return nil
}

// Append adds a new fixture. A zero id is assigned the next position in the
// collection so ids keep matching row order.
func (s *EditorService) Append(ctx context.Context, f fixture.Fixture) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EditorService.Append")
	defer span.End()

	active, err := s.requireSession("append fixture")
	if err != nil {
		return err
	}

	if f.ID == 0 {
		f.ID = len(s.editor.Collection()) + 1
	}
	if f.Round == 0 {
		f.Round = fixture.MinRound
	}
	if err := s.validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(f.HomeTeam) == "" || strings.TrimSpace(f.AwayTeam) == "" {
		return fmt.Errorf("%w: both teams are required", ErrInvalidInput)
	}

	if err := s.editor.Append(ctx, f); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "fixture appended",
		"fixture_id", f.ID,
		"round", f.Round,
		"editor", active.Email,
	)
	return nil
}

func (s *EditorService) requireSession(op string) (*session.Session, error) {
	active := s.sessions.CurrentSession()
	if active == nil || !active.HasPermission(op) {
		return nil, fmt.Errorf("%w: %s requires an admin session", ErrUnauthorized, op)
	}
	return active, nil
}
