package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// ThemeHandler manages the school-wide UI theme.
type ThemeHandler struct {
	service *service.ThemeService
}

// NewThemeHandler creates a new handler.
func NewThemeHandler(svc *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{service: svc}
}

// List godoc
// @Summary List themes
// @Tags Theme
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /theme [get]
func (h *ThemeHandler) List(c *gin.Context) {
	themes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, themes, nil)
}

// Active godoc
// @Summary Get active theme
// @Tags Theme
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /theme/active [get]
func (h *ThemeHandler) Active(c *gin.Context) {
	name, err := h.service.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"theme_name": name}, nil)
}

// Switch godoc
// @Summary Switch active theme
// @Description Switch the school-wide theme; unknown names leave the current theme untouched
// @Tags Theme
// @Accept json
// @Produce json
// @Param payload body object true "theme_name"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/theme [put]
func (h *ThemeHandler) Switch(c *gin.Context) {
	var payload struct {
		ThemeName string `json:"theme_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "theme name required"))
		return
	}

	if err := h.service.Switch(c.Request.Context(), payload.ThemeName); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
