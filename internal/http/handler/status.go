package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saapai/jarvis-sub001/internal/http/dto"
	"github.com/saapai/jarvis-sub001/internal/store"
)

type StatusHandler struct {
	members store.MemberStore
	polls   store.PollStore
}

func NewStatusHandler(members store.MemberStore, polls store.PollStore) *StatusHandler {
	return &StatusHandler{members: members, polls: polls}
}

// HandleStatus serves the operator diagnostic snapshot: member count and
// the active poll, if any.
func (h *StatusHandler) HandleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.members.Count(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "status: counting members failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status unavailable"})
		return
	}

	resp := dto.StatusResponse{
		Status:      "ok",
		MemberCount: count,
	}

	poll, err := h.polls.GetActive(ctx, nil)
	if err == nil {
		resp.ActivePoll = &dto.PollStatus{
			Question:  poll.Question,
			CreatedAt: poll.CreatedAt.Format(time.RFC3339),
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "status: loading active poll failed", "error", err)
	}

	c.JSON(http.StatusOK, resp)
}
