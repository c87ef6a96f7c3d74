package brain_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/model"
)

var _ = Describe("DraftHandler", func() {
	var (
		client      *mockLLMClient
		drafts      *mockDraftStore
		polls       *mockPollStore
		facts       *mockFactStore
		embedder    *mockEmbedder
		broadcaster *mockBroadcaster
		txRunner    *mockTxRunner
		handler     *brain.DraftHandler
		ctx         context.Context
	)

	BeforeEach(func() {
		client = &mockLLMClient{}
		drafts = &mockDraftStore{}
		polls = &mockPollStore{}
		facts = &mockFactStore{}
		embedder = &mockEmbedder{vec: []float64{0.1, 0.2}}
		broadcaster = &mockBroadcaster{result: brain.BroadcastResult{Sent: 7, Failed: 3}}
		txRunner = &mockTxRunner{drafts: drafts, polls: polls}
		handler = brain.NewDraftHandler(drafts, polls, facts, client, embedder, broadcaster, txRunner)
		ctx = context.Background()
	})

	adminReq := func(message string, draft *model.Draft) brain.Request {
		return brain.Request{
			Sender:  "+15550001",
			Message: message,
			Member:  &model.Member{Phone: "+15550001", Role: model.RoleAdmin},
			Draft:   draft,
		}
	}

	Describe("Write", func() {
		It("creates a new draft when none is in progress", func() {
			client.chatJSON = `{"content":"Dinner friday 7pm at the house","complete":true,"type":"announcement","requires_reason":false,"links":[],"looks_like_new_one":false}`

			resp, err := handler.Write(ctx, adminReq("tell everyone dinner is friday 7pm", nil))
			Expect(err).NotTo(HaveOccurred())

			Expect(drafts.created).To(HaveLen(1))
			created := drafts.created[0]
			Expect(created.Content).To(Equal("Dinner friday 7pm at the house"))
			Expect(created.Type).To(Equal(model.DraftTypeAnnouncement))
			Expect(created.Status).To(Equal(model.DraftStatusReady))
			Expect(resp.Reply).To(ContainSubstring("Dinner friday 7pm at the house"))
			Expect(resp.Metadata.Action).To(Equal(model.ActionDraftWrite))
		})

		It("edits the existing draft in place, keeping the single-draft invariant", func() {
			existing := &model.Draft{
				ID:      42,
				Owner:   "+15550001",
				Type:    model.DraftTypeAnnouncement,
				Content: "Dinner friday",
				Status:  model.DraftStatusDrafting,
			}
			drafts.inProgress = existing
			client.chatJSON = `{"content":"Dinner friday 7pm, bring a friend","complete":true,"type":"announcement","requires_reason":false,"links":[],"looks_like_new_one":false}`

			_, err := handler.Write(ctx, adminReq("add: 7pm, bring a friend", existing))
			Expect(err).NotTo(HaveOccurred())

			Expect(drafts.created).To(BeEmpty())
			Expect(drafts.updated).To(HaveLen(1))
			Expect(drafts.updated[0].ID).To(Equal(int64(42)))
			Expect(drafts.updated[0].Content).To(Equal("Dinner friday 7pm, bring a friend"))
			Expect(drafts.updated[0].Status).To(Equal(model.DraftStatusReady))
		})

		It("asks before replacing the draft with an unrelated announcement", func() {
			existing := &model.Draft{
				ID:      42,
				Owner:   "+15550001",
				Type:    model.DraftTypeAnnouncement,
				Content: "Dinner friday 7pm",
				Status:  model.DraftStatusReady,
			}
			drafts.inProgress = existing
			client.chatJSON = `{"content":"Car wash saturday","complete":false,"type":"announcement","requires_reason":false,"links":[],"looks_like_new_one":true}`

			resp, err := handler.Write(ctx, adminReq("also announce the car wash saturday", existing))
			Expect(err).NotTo(HaveOccurred())

			Expect(drafts.created).To(BeEmpty())
			Expect(drafts.updated).To(HaveLen(1))
			Expect(drafts.updated[0].Payload.AwaitingSplitConfirm).To(BeTrue())
			Expect(resp.Metadata.Pending).NotTo(BeNil())
			Expect(resp.Metadata.Pending.Kind).To(Equal(model.PendingKindSecondAnnouncement))
			Expect(resp.Metadata.Pending.Detail).To(ContainSubstring("car wash"))
		})

		It("starts the stashed announcement fresh after the admin confirms", func() {
			existing := &model.Draft{
				ID:      42,
				Owner:   "+15550001",
				Type:    model.DraftTypeAnnouncement,
				Content: "Dinner friday 7pm",
				Status:  model.DraftStatusReady,
				Payload: model.DraftPayload{AwaitingSplitConfirm: true},
			}
			drafts.inProgress = existing
			client.chatJSON = `{"content":"Car wash saturday 10am","complete":true,"type":"announcement","requires_reason":false,"links":[],"looks_like_new_one":false}`

			req := adminReq("yes", existing)
			req.Pending = &model.PendingConfirmation{
				Kind:   model.PendingKindSecondAnnouncement,
				Detail: "also announce the car wash saturday",
			}

			_, err := handler.Write(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			Expect(drafts.abandoned).To(Equal(1))
			Expect(drafts.created).To(HaveLen(1))
			Expect(drafts.created[0].Content).To(Equal("Car wash saturday 10am"))
		})

		It("replies with a clarification instead of failing when the model is down", func() {
			client.chatErr = errBoom

			resp, err := handler.Write(ctx, adminReq("tell everyone dinner is friday", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Reply).NotTo(BeEmpty())
			Expect(drafts.created).To(BeEmpty())
		})
	})

	Describe("Send", func() {
		It("rejects a send with no draft in progress", func() {
			resp, err := handler.Send(ctx, adminReq("send", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Reply).To(ContainSubstring("no draft"))
			Expect(broadcaster.calls).To(BeZero())
		})

		It("rejects a send while the draft is still drafting", func() {
			draft := &model.Draft{
				ID:      42,
				Owner:   "+15550001",
				Type:    model.DraftTypeAnnouncement,
				Content: "Dinner",
				Status:  model.DraftStatusDrafting,
			}

			resp, err := handler.Send(ctx, adminReq("send it", draft))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Reply).To(ContainSubstring("unfinished"))
			Expect(drafts.sentIDs).To(BeEmpty())
			Expect(broadcaster.calls).To(BeZero())
		})

		It("broadcasts a ready announcement and reports partial failure", func() {
			draft := &model.Draft{
				ID:      42,
				Owner:   "+15550001",
				Type:    model.DraftTypeAnnouncement,
				Content: "Dinner friday 7pm",
				Status:  model.DraftStatusReady,
			}
			drafts.inProgress = draft

			resp, err := handler.Send(ctx, adminReq("send", draft))
			Expect(err).NotTo(HaveOccurred())

			Expect(drafts.sentIDs).To(ConsistOf(int64(42)))
			Expect(broadcaster.calls).To(Equal(1))
			Expect(resp.Metadata.DraftSend).NotTo(BeNil())
			Expect(resp.Metadata.DraftSend.Sent).To(Equal(7))
			Expect(resp.Metadata.DraftSend.Failed).To(Equal(3))
			Expect(resp.Reply).To(ContainSubstring("7"))
		})

		It("records the announcement as a searchable fact", func() {
			draft := &model.Draft{
				ID:      42,
				Owner:   "+15550001",
				Type:    model.DraftTypeAnnouncement,
				Content: "Dinner friday 7pm",
				Status:  model.DraftStatusReady,
			}
			drafts.inProgress = draft

			_, err := handler.Send(ctx, adminReq("send", draft))
			Expect(err).NotTo(HaveOccurred())

			Expect(facts.facts).To(HaveLen(1))
			Expect(facts.facts[0].Content).To(Equal("Dinner friday 7pm"))
			Expect(facts.facts[0].Embedding).To(Equal([]float64{0.1, 0.2}))
		})

		It("activates exactly one poll when sending a poll draft", func() {
			polls.active = &model.Poll{ID: 7, Question: "old poll", Active: true}
			draft := &model.Draft{
				ID:      43,
				Owner:   "+15550001",
				Type:    model.DraftTypePoll,
				Content: "Coming to dinner friday?",
				Status:  model.DraftStatusReady,
				Payload: model.DraftPayload{RequiresReason: true},
			}
			drafts.inProgress = draft

			resp, err := handler.Send(ctx, adminReq("send", draft))
			Expect(err).NotTo(HaveOccurred())

			Expect(polls.deactivated).To(Equal(1))
			Expect(polls.created).To(HaveLen(1))
			Expect(polls.created[0].Question).To(Equal("Coming to dinner friday?"))
			Expect(polls.created[0].RequiresReason).To(BeTrue())
			Expect(polls.created[0].Active).To(BeTrue())
			Expect(resp.Metadata.DraftSend.PollID).NotTo(BeNil())
		})

		It("finalizes the draft and activates the poll through one transaction", func() {
			txDrafts := &mockDraftStore{}
			txPolls := &mockPollStore{}
			txRunner = &mockTxRunner{drafts: txDrafts, polls: txPolls}
			handler = brain.NewDraftHandler(drafts, polls, facts, client, embedder, broadcaster, txRunner)

			draft := &model.Draft{
				ID:      44,
				Owner:   "+15550001",
				Type:    model.DraftTypePoll,
				Content: "Coming to dinner friday?",
				Status:  model.DraftStatusReady,
			}

			_, err := handler.Send(ctx, adminReq("send", draft))
			Expect(err).NotTo(HaveOccurred())

			Expect(txRunner.calls).To(Equal(1))
			Expect(txDrafts.sentIDs).To(ConsistOf(int64(44)))
			Expect(txPolls.created).To(HaveLen(1))
			// The handler's direct stores stay untouched during finalize.
			Expect(drafts.sentIDs).To(BeEmpty())
			Expect(polls.created).To(BeEmpty())
		})

		It("surfaces a rolled-back finalize as an error", func() {
			failing := &failingDraftStore{err: errBoom}
			txRunner = &mockTxRunner{drafts: failing, polls: polls}
			handler = brain.NewDraftHandler(drafts, polls, facts, client, embedder, broadcaster, txRunner)

			draft := &model.Draft{
				ID:      45,
				Owner:   "+15550001",
				Type:    model.DraftTypeAnnouncement,
				Content: "Dinner friday 7pm",
				Status:  model.DraftStatusReady,
			}

			_, err := handler.Send(ctx, adminReq("send", draft))
			Expect(err).To(HaveOccurred())
			Expect(broadcaster.calls).To(BeZero())
		})
	})
})
