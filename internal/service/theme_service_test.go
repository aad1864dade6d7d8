package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

type mockThemeRepo struct {
	themes      []models.ThemeSetting
	activeName  string
	activeErr   error
	activated   []string
	activateErr error
}

func (m *mockThemeRepo) List(ctx context.Context) ([]models.ThemeSetting, error) {
	return m.themes, nil
}

func (m *mockThemeRepo) ActiveName(ctx context.Context) (string, error) {
	if m.activeErr != nil {
		return "", m.activeErr
	}
	return m.activeName, nil
}

func (m *mockThemeRepo) Activate(ctx context.Context, themeName string) error {
	if m.activateErr != nil {
		return m.activateErr
	}
	m.activated = append(m.activated, themeName)
	return nil
}

func TestThemeServiceActiveFallsBackToDefault(t *testing.T) {
	svc := NewThemeService(&mockThemeRepo{activeErr: sql.ErrNoRows}, zap.NewNop())

	name, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", name)
}

func TestThemeServiceActive(t *testing.T) {
	svc := NewThemeService(&mockThemeRepo{activeName: "ramadan"}, zap.NewNop())

	name, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ramadan", name)
}

func TestThemeServiceSwitch(t *testing.T) {
	repo := &mockThemeRepo{}
	svc := NewThemeService(repo, zap.NewNop())

	require.NoError(t, svc.Switch(context.Background(), "national-day"))
	assert.Equal(t, []string{"national-day"}, repo.activated)
}

func TestThemeServiceSwitchUnknownTheme(t *testing.T) {
	repo := &mockThemeRepo{activateErr: sql.ErrNoRows}
	svc := NewThemeService(repo, zap.NewNop())

	err := svc.Switch(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestThemeServiceSwitchEmptyName(t *testing.T) {
	svc := NewThemeService(&mockThemeRepo{}, zap.NewNop())

	err := svc.Switch(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
