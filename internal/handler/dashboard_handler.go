package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// DashboardHandler serves the per-role landing pages.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// AdminStats godoc
// @Summary Admin dashboard stats
// @Description Headline counts for the administrator dashboard, cached briefly
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	stats, err := h.service.AdminStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Parent godoc
// @Summary Parent dashboard
// @Description Linked children, unread count and ticker for the parent landing page
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/parent [get]
func (h *DashboardHandler) Parent(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dashboard, err := h.service.ForParent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Teacher godoc
// @Summary Teacher dashboard
// @Description Assigned grade levels, unread count and ticker for the teacher landing page
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dashboard, err := h.service.ForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
