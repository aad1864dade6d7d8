package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

// defaultTheme is returned when no theme row is active yet.
const defaultTheme = "default"

type themeRepository interface {
	List(ctx context.Context) ([]models.ThemeSetting, error)
	ActiveName(ctx context.Context) (string, error)
	Activate(ctx context.Context, themeName string) error
}

// ThemeService manages the school-wide UI theme.
type ThemeService struct {
	repo   themeRepository
	logger *zap.Logger
}

// NewThemeService constructs a ThemeService.
func NewThemeService(repo themeRepository, logger *zap.Logger) *ThemeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThemeService{repo: repo, logger: logger}
}

// List returns every known theme with its active flag.
func (s *ThemeService) List(ctx context.Context) ([]models.ThemeSetting, error) {
	themes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list themes")
	}
	if themes == nil {
		themes = []models.ThemeSetting{}
	}
	return themes, nil
}

// Active returns the active theme name, falling back to the default when no
// row is active.
func (s *ThemeService) Active(ctx context.Context) (string, error) {
	name, err := s.repo.ActiveName(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultTheme, nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active theme")
	}
	return name, nil
}

// Switch activates the named theme. An unknown name leaves the current theme
// untouched.
func (s *ThemeService) Switch(ctx context.Context, themeName string) error {
	if themeName == "" {
		return appErrors.Clone(appErrors.ErrValidation, "theme name is required")
	}
	if err := s.repo.Activate(ctx, themeName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "theme not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to switch theme")
	}
	s.logger.Info("theme switched", zap.String("theme", themeName))
	return nil
}
