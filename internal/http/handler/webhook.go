package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saapai/jarvis-sub001/internal/http/dto"
)

// InboundPlanner is the pipeline behind the webhook. It always returns a
// reply, degrading internally on failure.
type InboundPlanner interface {
	HandleInbound(ctx context.Context, sender, body string, spaceID *int64) string
}

type WebhookHandler struct {
	planner InboundPlanner
	token   string
}

func NewWebhookHandler(planner InboundPlanner, token string) *WebhookHandler {
	return &WebhookHandler{planner: planner, token: token}
}

// HandleInbound receives one text message from the provider and returns the
// reply to deliver. Processing is synchronous: providers retry on non-2xx,
// so the only error statuses are auth and malformed payloads.
func (h *WebhookHandler) HandleInbound(c *gin.Context) {
	if h.token != "" {
		given := c.GetHeader("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}
	}

	var req dto.InboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	reply := h.planner.HandleInbound(c.Request.Context(), req.From, req.Body, req.SpaceID)
	c.JSON(http.StatusOK, dto.InboundMessageResponse{Reply: reply})
}
