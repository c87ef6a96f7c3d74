package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/model"
)

// Searcher answers content queries over the fact corpus.
type Searcher interface {
	Search(ctx context.Context, query string, spaceID *int64) ([]model.ContentResult, error)
}

// ContentHandler answers "what's happening" style questions from the
// hybrid search router.
type ContentHandler struct {
	searcher Searcher
}

func NewContentHandler(searcher Searcher) *ContentHandler {
	return &ContentHandler{searcher: searcher}
}

func (h *ContentHandler) Handle(ctx context.Context, req Request) (Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.content",
	})

	results, err := h.searcher.Search(ctx, req.Message, req.SpaceID)
	if err != nil {
		return Response{}, fmt.Errorf("searching content: %w", err)
	}

	slog.DebugContext(ctx, "content query answered", "results", len(results))

	if len(results) == 0 {
		return Response{
			Reply:    "I couldn't find anything about that. Try asking differently, or check with an organizer.",
			Metadata: &model.MessageMetadata{Action: model.ActionContentQuery},
		}, nil
	}

	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for _, r := range results {
		b.WriteString(fmt.Sprintf("\n- %s: %s", r.Fact.Title, r.Fact.Content))
		if r.Fact.TimeRef != "" {
			b.WriteString(fmt.Sprintf(" (%s)", r.Fact.TimeRef))
		}
	}

	return Response{
		Reply:    b.String(),
		Metadata: &model.MessageMetadata{Action: model.ActionContentQuery},
	}, nil
}
