package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// TickerHandler manages the news ticker.
type TickerHandler struct {
	service *service.TickerService
}

// NewTickerHandler creates a new handler.
func NewTickerHandler(svc *service.TickerService) *TickerHandler {
	return &TickerHandler{service: svc}
}

// ListActive godoc
// @Summary List active ticker items
// @Description List the headlines currently rotating on the dashboards
// @Tags Ticker
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ticker [get]
func (h *TickerHandler) ListActive(c *gin.Context) {
	items, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListAll godoc
// @Summary List all ticker items
// @Tags Ticker
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/ticker [get]
func (h *TickerHandler) ListAll(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create ticker item
// @Tags Ticker
// @Accept json
// @Produce json
// @Param payload body service.TickerItemRequest true "Ticker item"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/ticker [post]
func (h *TickerHandler) Create(c *gin.Context) {
	var req service.TickerItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ticker payload"))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update ticker item
// @Tags Ticker
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body service.TickerItemRequest true "Ticker item"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/ticker/{id} [put]
func (h *TickerHandler) Update(c *gin.Context) {
	var req service.TickerItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ticker payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete ticker item
// @Tags Ticker
// @Produce json
// @Param id path string true "Item ID"
// @Success 204 {object} response.Envelope
// @Router /admin/ticker/{id} [delete]
func (h *TickerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
