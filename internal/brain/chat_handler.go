package brain

import (
	"context"
	"log/slog"

	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/model"
)

// ChatHandler is the catch-all: free-form conversation via the personality
// model, with a canned reply when the model is down.
type ChatHandler struct {
	llm llm.Client
}

func NewChatHandler(client llm.Client) *ChatHandler {
	return &ChatHandler{llm: client}
}

func (h *ChatHandler) Handle(ctx context.Context, req Request) (Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.chat",
	})

	reply, err := h.llm.Complete(ctx, chatSystemPrompt, req.Message)
	if err != nil || reply == "" {
		slog.WarnContext(ctx, "chat completion failed, sending canned reply", "error", err)
		reply = "I'm having a moment, sorry. Ask me about upcoming events or the current poll!"
	}

	return Response{
		Reply:    reply,
		Metadata: &model.MessageMetadata{Action: model.ActionChat},
	}, nil
}
