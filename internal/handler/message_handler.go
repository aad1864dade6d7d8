package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// MessageHandler exposes messaging endpoints.
type MessageHandler struct {
	service *service.MessageService
	metrics *service.MetricsService
}

// NewMessageHandler creates a new handler.
func NewMessageHandler(svc *service.MessageService, metrics *service.MetricsService) *MessageHandler {
	return &MessageHandler{service: svc, metrics: metrics}
}

// Send godoc
// @Summary Send message
// @Description Send an individual message to one recipient
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body service.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.service.Send(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountMessageSent("direct", 1)
	response.Created(c, message)
}

// SendGroup godoc
// @Summary Send group message
// @Description Fan a message out to an explicit list or a resolved audience (by grade level or student)
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body service.SendGroupRequest true "Group message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages/group [post]
func (h *MessageHandler) SendGroup(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SendGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group message payload"))
		return
	}

	result, err := h.service.SendGroup(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountMessageSent("group", result.Sent)
	response.Created(c, result)
}

// Inbox godoc
// @Summary List inbox
// @Description List received messages, newest first, with unread count
// @Tags Messages
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	inbox, pagination, err := h.service.ListForRecipient(c.Request.Context(), claims.UserID, queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inbox, pagination)
}

// MarkRead godoc
// @Summary Mark message read
// @Description Mark a received message as read; only the recipient may do so
// @Tags Messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
