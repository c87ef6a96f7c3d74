package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/search"
	"github.com/saapai/jarvis-sub001/internal/store"
)

// EventUpdateHandler rewrites an already-announced fact when an admin
// changes its details ("move Friday's dinner to 8pm").
type EventUpdateHandler struct {
	facts    store.FactStore
	llm      llm.Client
	embedder llm.Embedder
}

func NewEventUpdateHandler(facts store.FactStore, client llm.Client, embedder llm.Embedder) *EventUpdateHandler {
	return &EventUpdateHandler{facts: facts, llm: client, embedder: embedder}
}

func (h *EventUpdateHandler) Handle(ctx context.Context, req Request) (Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.event",
	})

	fact, err := h.findTarget(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if fact == nil {
		return Response{Reply: "I couldn't find which event you mean. Which announcement should I update?"}, nil
	}

	var updated factExtractResponse
	_, err = h.llm.Chat(ctx, llm.Request{
		SystemPrompt: factExtractSystemPrompt,
		UserPrompt: fmt.Sprintf("CURRENT FACT: %s (%s)\nADMIN UPDATE: %s\nProduce the fact with the update applied.",
			fact.Content, fact.TimeRef, req.Message),
		SchemaName:  "fact_extract_response",
		Schema:      factExtractSchema,
		Temperature: llm.Temp(0),
	}, &updated)
	if err != nil || updated.Content == "" {
		slog.WarnContext(ctx, "event update derivation failed", "error", err)
		return Response{Reply: fmt.Sprintf(
			"I found \"%s\" but couldn't work out the change. Can you spell it out?", fact.Title)}, nil
	}

	fact.Content = updated.Content
	fact.TimeRef = updated.TimeRef
	if updated.Title != "" {
		fact.Title = updated.Title
	}
	if embedding, err := h.embedder.Embed(ctx, fact.Content); err == nil {
		fact.Embedding = embedding
	} else {
		slog.WarnContext(ctx, "event re-embedding failed, keeping old vector", "error", err)
	}

	if err := h.facts.Update(ctx, fact); err != nil {
		return Response{}, fmt.Errorf("updating event fact: %w", err)
	}

	slog.InfoContext(ctx, "event updated", "fact_id", fact.ID, "title", fact.Title)

	return Response{
		Reply: fmt.Sprintf("Updated. \"%s\" is now: %s", fact.Title, fact.Content),
		Metadata: &model.MessageMetadata{
			Action: model.ActionEventUpdate,
			Event: &model.EventUpdateMeta{
				FactID: fact.ID,
				Title:  fact.Title,
			},
			Pending: &model.PendingConfirmation{
				Kind:   model.PendingKindEventUpdate,
				Detail: fact.Title,
			},
		},
	}, nil
}

// findTarget resolves the fact the message refers to. A pending event_update
// confirmation pins the target from the previous turn; otherwise the message's
// keywords are tried against fact titles, most specific term first.
func (h *EventUpdateHandler) findTarget(ctx context.Context, req Request) (*model.Fact, error) {
	if req.Pending != nil && req.Pending.Kind == model.PendingKindEventUpdate {
		fact, err := h.facts.FindByTitleLike(ctx, req.SpaceID, req.Pending.Detail)
		if err == nil {
			return fact, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("resolving pending event target: %w", err)
		}
	}

	for _, term := range search.Keywords(req.Message) {
		fact, err := h.facts.FindByTitleLike(ctx, req.SpaceID, term)
		if err == nil {
			return fact, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("searching event by title: %w", err)
		}
	}
	return nil, nil
}
