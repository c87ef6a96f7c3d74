package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saapai/jarvis-sub001/internal/http/dto"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/store"
)

type AdminHandler struct {
	messages  store.MessageStore
	polls     store.PollStore
	responses store.PollResponseStore
	token     string
}

func NewAdminHandler(messages store.MessageStore, polls store.PollStore, responses store.PollResponseStore, token string) *AdminHandler {
	return &AdminHandler{messages: messages, polls: polls, responses: responses, token: token}
}

// authorized gates every admin route. An unset token disables the whole
// surface rather than opening it.
func (h *AdminHandler) authorized(c *gin.Context) bool {
	given := c.GetHeader("X-Webhook-Token")
	if h.token == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return false
	}
	return true
}

// HandleDeleteBroadcast removes the fanned-out copies of a sent broadcast
// by content match. The drafted original and its audit trail stay; only the
// per-recipient log rows go.
func (h *AdminHandler) HandleDeleteBroadcast(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	var req dto.DeleteBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	deleted, err := h.messages.DeleteBroadcast(c.Request.Context(), req.SpaceID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deletion failed"})
		return
	}

	c.JSON(http.StatusOK, dto.DeleteBroadcastResponse{Deleted: deleted})
}

// HandlePollResults tallies every recorded answer for one poll. Works for
// retired polls too, so results stay readable after a new poll supersedes.
func (h *AdminHandler) HandlePollResults(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	pollID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	poll, err := h.polls.GetByID(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	answers, err := h.responses.ListByPoll(c.Request.Context(), pollID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	resp := dto.PollResultsResponse{
		Question:  poll.Question,
		Active:    poll.Active,
		Responses: make([]dto.PollResultEntry, 0, len(answers)),
	}
	for _, a := range answers {
		switch a.Verdict {
		case model.VerdictYes:
			resp.Yes++
		case model.VerdictNo:
			resp.No++
		case model.VerdictMaybe:
			resp.Maybe++
		}
		resp.Responses = append(resp.Responses, dto.PollResultEntry{
			Recipient: a.Recipient,
			Verdict:   string(a.Verdict),
			Note:      a.Note,
		})
	}

	c.JSON(http.StatusOK, resp)
}
