package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/service"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// ApprovalHandler exposes the pending account queue to administrators.
type ApprovalHandler struct {
	service   *service.ApprovalService
	dashboard *service.DashboardService
}

// NewApprovalHandler creates a new handler.
func NewApprovalHandler(svc *service.ApprovalService, dashboard *service.DashboardService) *ApprovalHandler {
	return &ApprovalHandler{service: svc, dashboard: dashboard}
}

// ListPending godoc
// @Summary List pending accounts
// @Description List accounts awaiting administrator approval, oldest first
// @Tags Approvals
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/approvals [get]
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	accounts, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, accounts, nil)
}

// Approve godoc
// @Summary Approve account
// @Description Approve a pending account; approving twice is a no-op
// @Tags Approvals
// @Produce json
// @Param id path string true "User ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/approvals/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	if err := h.service.Approve(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.InvalidateAdminStats(c.Request.Context())
	}
	response.NoContent(c)
}

// Reject godoc
// @Summary Reject account
// @Description Reject and delete a pending account with its role assignments and links
// @Tags Approvals
// @Produce json
// @Param id path string true "User ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/approvals/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	if err := h.service.Reject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.InvalidateAdminStats(c.Request.Context())
	}
	response.NoContent(c)
}
