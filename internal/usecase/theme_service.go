package usecase

import (
	"fmt"

	"github.com/fixtureboard/fixtureboard/internal/platform/logging"
	"github.com/fixtureboard/fixtureboard/internal/platform/store"
	"github.com/fixtureboard/fixtureboard/internal/platform/stream"
)

const (
	themeKey   = "theme"
	themeDark  = "dark"
	themeLight = "light"
)

// ThemeService keeps the dark/light preference durable across runs and
// publishes changes to subscribers. Dark is the default.
type ThemeService struct {
	store  *store.Store
	dark   *stream.Stream[bool]
	logger *logging.Logger
}

func NewThemeService(st *store.Store, logger *logging.Logger) *ThemeService {
	if logger == nil {
		logger = logging.Default()
	}

	dark := true
	if value, ok, err := st.Get(themeKey); err == nil && ok {
		dark = value != themeLight
	}

	return &ThemeService{
		store:  st,
		dark:   stream.New(dark),
		logger: logger,
	}
}

func (s *ThemeService) Dark() bool {
	return s.dark.Latest()
}

func (s *ThemeService) Theme() *stream.Stream[bool] {
	return s.dark
}

func (s *ThemeService) Toggle() error {
	return s.SetDark(!s.dark.Latest())
}

func (s *ThemeService) SetDark(dark bool) error {
	value := themeLight
	if dark {
		value = themeDark
	}
	if err := s.store.Set(themeKey, value); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	s.dark.Publish(dark)
	return nil
}
