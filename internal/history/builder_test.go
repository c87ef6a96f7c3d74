package history_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saapai/jarvis-sub001/internal/history"
	"github.com/saapai/jarvis-sub001/internal/model"
)

func window(directions ...model.Direction) []model.Message {
	msgs := make([]model.Message, len(directions))
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, d := range directions {
		msgs[i] = model.Message{
			Sender:    "+15550001111",
			Direction: d,
			Body:      fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return msgs
}

var _ = Describe("Build", func() {
	It("weights five messages [0.2 0.4 0.6 0.8 1.0] oldest to newest", func() {
		msgs := window(
			model.DirectionInbound,
			model.DirectionOutbound,
			model.DirectionInbound,
			model.DirectionOutbound,
			model.DirectionInbound,
		)

		turns := history.Build(msgs)

		Expect(turns).To(HaveLen(5))
		expected := []float64{0.2, 0.4, 0.6, 0.8, 1.0}
		for i, t := range turns {
			Expect(t.Weight).To(BeNumerically("~", expected[i], 1e-9))
		}
	})

	It("derives roles from direction", func() {
		turns := history.Build(window(model.DirectionInbound, model.DirectionOutbound))

		Expect(turns[0].Role).To(Equal(history.RoleUser))
		Expect(turns[1].Role).To(Equal(history.RoleAssistant))
	})

	It("preserves order and content", func() {
		msgs := window(model.DirectionInbound, model.DirectionInbound, model.DirectionInbound)

		turns := history.Build(msgs)

		for i, turn := range turns {
			Expect(turn.Content).To(Equal(msgs[i].Body))
			Expect(turn.Timestamp).To(Equal(msgs[i].CreatedAt))
		}
	})

	It("floors weights for windows longer than five", func() {
		msgs := window(
			model.DirectionInbound, model.DirectionInbound, model.DirectionInbound,
			model.DirectionInbound, model.DirectionInbound, model.DirectionInbound,
			model.DirectionInbound,
		)

		turns := history.Build(msgs)

		Expect(turns[0].Weight).To(Equal(0.2))
		Expect(turns[1].Weight).To(Equal(0.2))
		Expect(turns[len(turns)-1].Weight).To(Equal(1.0))
	})

	DescribeTable("every window has non-decreasing weights ending at 1.0",
		func(size int) {
			dirs := make([]model.Direction, size)
			for i := range dirs {
				dirs[i] = model.DirectionInbound
			}
			turns := history.Build(window(dirs...))

			Expect(turns).To(HaveLen(size))
			for i := 1; i < len(turns); i++ {
				Expect(turns[i].Weight).To(BeNumerically(">=", turns[i-1].Weight))
			}
			Expect(turns[len(turns)-1].Weight).To(Equal(1.0))
		},
		Entry("one message", 1),
		Entry("two messages", 2),
		Entry("three messages", 3),
		Entry("four messages", 4),
		Entry("five messages", 5),
	)

	It("returns an empty slice for an empty window", func() {
		Expect(history.Build(nil)).To(BeEmpty())
	})
})
