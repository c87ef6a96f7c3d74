package search

import (
	"context"
	"log/slog"

	"github.com/saapai/jarvis-sub001/common/llm"
)

// cachedEmbedder puts a VectorCache in front of an llm.Embedder.
type cachedEmbedder struct {
	inner llm.Embedder
	cache VectorCache
}

func NewCachedEmbedder(inner llm.Embedder, cache VectorCache) llm.Embedder {
	return &cachedEmbedder{inner: inner, cache: cache}
}

func (e *cachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if vec, ok := e.cache.Get(ctx, text); ok {
		return vec, nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(ctx, text, vec)
	slog.DebugContext(ctx, "embedding cached", "dims", len(vec))
	return vec, nil
}
