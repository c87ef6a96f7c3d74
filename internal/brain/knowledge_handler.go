package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saapai/jarvis-sub001/common/id"
	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/store"
)

var factExtractSchema = llm.GenerateSchema[factExtractResponse]()

// KnowledgeHandler turns "remember that ..." messages into corpus facts.
type KnowledgeHandler struct {
	facts    store.FactStore
	llm      llm.Client
	embedder llm.Embedder
}

func NewKnowledgeHandler(facts store.FactStore, client llm.Client, embedder llm.Embedder) *KnowledgeHandler {
	return &KnowledgeHandler{facts: facts, llm: client, embedder: embedder}
}

func (h *KnowledgeHandler) Handle(ctx context.Context, req Request) (Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.knowledge",
	})

	extracted := h.extract(ctx, req.Message)

	// Embedding is a ranking signal, not a requirement to store.
	embedding, err := h.embedder.Embed(ctx, extracted.Content)
	if err != nil {
		slog.WarnContext(ctx, "fact embedding failed, storing without", "error", err)
		embedding = nil
	}

	fact := &model.Fact{
		ID:          id.New(),
		Title:       extracted.Title,
		Category:    extracted.Category,
		Subcategory: extracted.Subcategory,
		Content:     extracted.Content,
		TimeRef:     extracted.TimeRef,
		SpaceID:     req.SpaceID,
		Embedding:   embedding,
	}
	if err := h.facts.Create(ctx, fact); err != nil {
		return Response{}, fmt.Errorf("storing fact: %w", err)
	}

	slog.InfoContext(ctx, "fact stored",
		"fact_id", fact.ID,
		"category", fact.Category,
		"has_embedding", embedding != nil)

	return Response{
		Reply:    fmt.Sprintf("Got it, I'll remember that: %s", fact.Content),
		Metadata: &model.MessageMetadata{Action: model.ActionKnowledgeUpload},
	}, nil
}

// extract structures the raw message. On model failure the message is stored
// verbatim; losing structure beats losing the fact.
func (h *KnowledgeHandler) extract(ctx context.Context, message string) factExtractResponse {
	var extracted factExtractResponse
	_, err := h.llm.Chat(ctx, llm.Request{
		SystemPrompt: factExtractSystemPrompt,
		UserPrompt:   message,
		SchemaName:   "fact_extract_response",
		Schema:       factExtractSchema,
		Temperature:  llm.Temp(0),
	}, &extracted)
	if err == nil && extracted.Content != "" {
		return extracted
	}
	if err != nil {
		slog.WarnContext(ctx, "fact extraction failed, storing raw", "error", err)
	}
	return factExtractResponse{
		Title:    rawFactTitle(message),
		Category: "other",
		Content:  message,
	}
}

func rawFactTitle(message string) string {
	words := strings.Fields(message)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}
