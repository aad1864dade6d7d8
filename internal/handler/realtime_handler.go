package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/realtime"
	"github.com/madrasati-app/madrasati-api/internal/service"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
	"github.com/madrasati-app/madrasati-api/pkg/response"
)

// RealtimeHandler upgrades authenticated requests into websocket sessions.
type RealtimeHandler struct {
	sessions *realtime.SessionManager
	hub      *realtime.Hub
	metrics  *service.MetricsService
}

// NewRealtimeHandler creates a new handler.
func NewRealtimeHandler(sessions *realtime.SessionManager, hub *realtime.Hub, metrics *service.MetricsService) *RealtimeHandler {
	return &RealtimeHandler{sessions: sessions, hub: hub, metrics: metrics}
}

// Connect godoc
// @Summary Open realtime connection
// @Description Upgrade to a websocket subscribed to the user's message topic and announcements
// @Tags Realtime
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} response.Envelope
// @Router /realtime [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.sessions.Serve(c.Writer, c.Request, claims.UserID)
	h.metrics.SetRealtimeSubscriptions(h.hub.SubscriptionCount())
}
