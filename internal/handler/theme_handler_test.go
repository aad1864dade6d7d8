package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/internal/service"
)

type themeRepoStub struct {
	themes      []models.ThemeSetting
	activeName  string
	activeErr   error
	activateErr error
}

func (s *themeRepoStub) List(ctx context.Context) ([]models.ThemeSetting, error) {
	return s.themes, nil
}

func (s *themeRepoStub) ActiveName(ctx context.Context) (string, error) {
	if s.activeErr != nil {
		return "", s.activeErr
	}
	return s.activeName, nil
}

func (s *themeRepoStub) Activate(ctx context.Context, themeName string) error {
	return s.activateErr
}

func themeTestContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestThemeHandlerActiveFallback(t *testing.T) {
	h := NewThemeHandler(service.NewThemeService(&themeRepoStub{activeErr: sql.ErrNoRows}, zap.NewNop()))
	c, w := themeTestContext(t, http.MethodGet, "/theme/active", nil)

	h.Active(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"theme_name":"default"`)
}

func TestThemeHandlerSwitch(t *testing.T) {
	h := NewThemeHandler(service.NewThemeService(&themeRepoStub{}, zap.NewNop()))
	c, w := themeTestContext(t, http.MethodPut, "/admin/theme", []byte(`{"theme_name":"ramadan"}`))

	h.Switch(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestThemeHandlerSwitchMissingName(t *testing.T) {
	h := NewThemeHandler(service.NewThemeService(&themeRepoStub{}, zap.NewNop()))
	c, w := themeTestContext(t, http.MethodPut, "/admin/theme", []byte(`{}`))

	h.Switch(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThemeHandlerSwitchUnknownTheme(t *testing.T) {
	h := NewThemeHandler(service.NewThemeService(&themeRepoStub{activateErr: sql.ErrNoRows}, zap.NewNop()))
	c, w := themeTestContext(t, http.MethodPut, "/admin/theme", []byte(`{"theme_name":"missing"}`))

	h.Switch(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
