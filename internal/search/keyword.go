package search

import (
	"sort"
	"strings"

	"github.com/saapai/jarvis-sub001/internal/model"
)

// Heuristic keyword scores. Keyword search exists because recurring,
// low-embedding-signal facts get under-ranked by vector search.
const (
	scoreExactSubcategory = 10
	scoreInSubcategory    = 5
	scoreInContent        = 3
	scoreInTimeRef        = 2
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "at": true, "be": true,
	"for": true, "in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "when": true, "what": true,
	"whats": true, "where": true, "who": true,
}

// Keywords tokenizes a query into lowercase search terms.
func Keywords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// ScoreFact computes the heuristic keyword score of one fact for a term set.
func ScoreFact(fact model.Fact, terms []string) float64 {
	subcategory := strings.ToLower(fact.Subcategory)
	content := strings.ToLower(fact.Content)
	timeRef := strings.ToLower(fact.TimeRef)

	var score float64
	for _, term := range terms {
		if subcategory == term {
			score += scoreExactSubcategory
		} else if strings.Contains(subcategory, term) {
			score += scoreInSubcategory
		}
		if strings.Contains(content, term) {
			score += scoreInContent
		}
		if strings.Contains(timeRef, term) {
			score += scoreInTimeRef
		}
	}
	return score
}

// KeywordSearch scores the corpus against a query and returns up to limit
// positive-score results, best first.
func KeywordSearch(facts []model.Fact, query string, limit int) []model.ContentResult {
	terms := Keywords(query)
	if len(terms) == 0 {
		return nil
	}

	var results []model.ContentResult
	for _, fact := range facts {
		if score := ScoreFact(fact, terms); score > 0 {
			results = append(results, model.ContentResult{
				Fact:   fact,
				Score:  score,
				Source: "keyword",
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
