package search_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/search"
)

func fact(title, subcategory, content, timeRef string, embedding []float64) model.Fact {
	return model.Fact{
		Title:       title,
		Category:    "event",
		Subcategory: subcategory,
		Content:     content,
		TimeRef:     timeRef,
		Embedding:   embedding,
	}
}

var _ = Describe("KeywordSearch", func() {
	facts := []model.Fact{
		fact("Chapter Meeting", "meeting", "weekly chapter meeting in the lounge", "monday 7pm", nil),
		fact("Formal", "formal", "spring formal at the ballroom", "friday", nil),
		fact("Dues Reminder", "dues", "pay your dues by the end of the month", "", nil),
	}

	It("scores exact subcategory matches highest", func() {
		results := search.KeywordSearch(facts, "when is the meeting", 5)

		Expect(results).NotTo(BeEmpty())
		Expect(results[0].Fact.Title).To(Equal("Chapter Meeting"))
		// exact subcategory (+10) plus content hit (+3)
		Expect(results[0].Score).To(Equal(13.0))
	})

	It("adds time-reference hits", func() {
		results := search.KeywordSearch(facts, "friday plans", 5)

		Expect(results).To(HaveLen(1))
		Expect(results[0].Fact.Title).To(Equal("Formal"))
		Expect(results[0].Score).To(Equal(2.0))
	})

	It("returns nothing for stopword-only queries", func() {
		Expect(search.KeywordSearch(facts, "when is the", 5)).To(BeEmpty())
	})

	It("returns nothing when no fact matches", func() {
		Expect(search.KeywordSearch(facts, "philanthropy hours", 5)).To(BeEmpty())
	})
})

var _ = Describe("Router", func() {
	var (
		ctx      context.Context
		store    *mockFactStore
		embedder *mockEmbedder
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = &mockFactStore{}
		embedder = &mockEmbedder{}
	})

	It("returns an empty list, not an error, when nothing matches anywhere", func() {
		store.facts = []model.Fact{
			fact("Formal", "formal", "spring formal", "friday", nil),
		}
		embedder.embedFn = func(ctx context.Context, text string) ([]float64, error) {
			return nil, errors.New("embedding down")
		}

		router := search.NewRouter(store, embedder, 5)
		results, err := router.Search(ctx, "zzz qqq", nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("still returns keyword hits when embedding search returns nothing", func() {
		store.facts = []model.Fact{
			fact("Chapter Meeting", "meeting", "weekly chapter meeting", "monday", nil),
		}
		embedder.embedFn = func(ctx context.Context, text string) ([]float64, error) {
			return nil, errors.New("embedding down")
		}

		router := search.NewRouter(store, embedder, 5)
		results, err := router.Search(ctx, "meeting", nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Source).To(Equal("keyword"))
	})

	It("prefers the vector entry when both sides find the same fact", func() {
		shared := fact("Chapter Meeting", "meeting", "weekly chapter meeting", "monday", []float64{1, 0})
		store.facts = []model.Fact{shared}
		embedder.embedFn = func(ctx context.Context, text string) ([]float64, error) {
			return []float64{1, 0}, nil
		}

		router := search.NewRouter(store, embedder, 5)
		results, err := router.Search(ctx, "meeting", nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Source).To(Equal("vector"))
	})

	It("keeps keyword-only hits that vector search missed", func() {
		withVec := fact("Formal", "formal", "spring formal", "friday", []float64{1, 0})
		noVec := fact("Chapter Meeting", "meeting", "weekly chapter meeting", "monday", nil)
		store.facts = []model.Fact{withVec, noVec}
		embedder.embedFn = func(ctx context.Context, text string) ([]float64, error) {
			return []float64{1, 0}, nil
		}

		router := search.NewRouter(store, embedder, 5)
		results, err := router.Search(ctx, "meeting formal", nil)

		Expect(err).NotTo(HaveOccurred())

		titles := make([]string, len(results))
		for i, r := range results {
			titles[i] = r.Fact.Title
		}
		Expect(titles).To(ContainElements("Formal", "Chapter Meeting"))
	})

	It("truncates to the configured limit", func() {
		for i := 0; i < 10; i++ {
			store.facts = append(store.facts,
				fact("Meeting "+string(rune('A'+i)), "meeting", "chapter meeting", "", nil))
		}
		embedder.embedFn = func(ctx context.Context, text string) ([]float64, error) {
			return nil, errors.New("no signal")
		}

		router := search.NewRouter(store, embedder, 3)
		results, err := router.Search(ctx, "meeting", nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
	})

	It("propagates corpus load failures", func() {
		store.err = errors.New("db down")

		router := search.NewRouter(store, embedder, 5)
		_, err := router.Search(ctx, "meeting", nil)

		Expect(err).To(HaveOccurred())
	})
})
