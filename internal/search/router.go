// Package search merges vector-similarity and keyword search over the fact
// corpus into one ranked result list.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/store"
)

// Router runs both search strategies against the same corpus and merges.
type Router struct {
	facts    store.FactStore
	embedder llm.Embedder
	limit    int
}

func NewRouter(facts store.FactStore, embedder llm.Embedder, limit int) *Router {
	if limit <= 0 {
		limit = 5
	}
	return &Router{facts: facts, embedder: embedder, limit: limit}
}

// Search returns up to limit ranked snippets for a query. Embedding failure
// degrades to keyword-only results; it never fails the request.
func (r *Router) Search(ctx context.Context, query string, spaceID *int64) ([]model.ContentResult, error) {
	start := time.Now()

	facts, err := r.facts.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("loading fact corpus: %w", err)
	}
	if len(facts) == 0 {
		return nil, nil
	}

	// Each side over-fetches so the merge has candidates to dedupe.
	keywordResults := KeywordSearch(facts, query, 2*r.limit)
	vectorResults := r.vectorSearch(ctx, facts, query, 2*r.limit)

	merged := merge(vectorResults, keywordResults, r.limit)

	// Recall over precision: if the merge produced nothing but keyword
	// search had candidates, surface those instead of an empty list.
	if len(merged) == 0 && len(keywordResults) > 0 {
		merged = keywordResults
		if len(merged) > r.limit {
			merged = merged[:r.limit]
		}
	}

	slog.DebugContext(ctx, "content search completed",
		"query", query,
		"vector_hits", len(vectorResults),
		"keyword_hits", len(keywordResults),
		"returned", len(merged),
		"duration_ms", time.Since(start).Milliseconds())

	return merged, nil
}

func (r *Router) vectorSearch(ctx context.Context, facts []model.Fact, query string, limit int) []model.ContentResult {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		// No semantic signal; the keyword side still answers.
		slog.WarnContext(ctx, "query embedding failed, keyword-only search", "error", err)
		return nil
	}

	var results []model.ContentResult
	for _, fact := range facts {
		if len(fact.Embedding) == 0 {
			continue
		}
		score := llm.CosineSimilarity(queryVec, fact.Embedding)
		if score <= 0 {
			continue
		}
		results = append(results, model.ContentResult{
			Fact:   fact,
			Score:  score,
			Source: "vector",
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

type dedupeKey struct {
	title string
	date  string
}

func keyFor(fact model.Fact) dedupeKey {
	k := dedupeKey{title: fact.Title}
	if fact.Date != nil {
		k.date = fact.Date.Format("2006-01-02")
	}
	return k
}

// merge deduplicates by (title, date), preferring the vector entry when both
// sides found the same fact, and keeps keyword-only hits vector search
// missed. Sorted by score descending, truncated to limit.
func merge(vector, keyword []model.ContentResult, limit int) []model.ContentResult {
	seen := make(map[dedupeKey]bool, len(vector)+len(keyword))
	merged := make([]model.ContentResult, 0, len(vector)+len(keyword))

	for _, res := range vector {
		k := keyFor(res.Fact)
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, res)
	}
	for _, res := range keyword {
		k := keyFor(res.Fact)
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, res)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
