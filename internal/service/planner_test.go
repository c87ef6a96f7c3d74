package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saapai/jarvis-sub001/core/config"
	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/service"
)

var _ = Describe("Planner", func() {
	var (
		messages   *mockMessageStore
		members    *mockMemberStore
		drafts     *mockDraftStore
		polls      *mockPollStore
		responses  *mockPollResponseStore
		classifier *stubClassifier
		dispatcher *stubDispatcher
		planner    *service.Planner
		ctx        context.Context
	)

	cfg := config.PlannerConfig{
		HistoryWindow: 5,
		DraftMaxAge:   2 * time.Hour,
	}

	BeforeEach(func() {
		messages = &mockMessageStore{}
		members = newMockMemberStore()
		drafts = &mockDraftStore{}
		polls = &mockPollStore{}
		responses = &mockPollResponseStore{}
		classifier = &stubClassifier{result: model.Classification{Action: model.ActionChat, Confidence: 0.8}}
		dispatcher = &stubDispatcher{response: brain.Response{
			Reply:    "hey!",
			Metadata: &model.MessageMetadata{Action: model.ActionChat},
		}}
		planner = service.NewPlanner(
			service.PlannerStores{
				Messages:      messages,
				Drafts:        drafts,
				Polls:         polls,
				PollResponses: responses,
				Members:       members,
			},
			classifier,
			dispatcher,
			brain.NewPersonality(nil, 0),
			[]string{"+15559999"},
			cfg,
		)
		ctx = context.Background()
	})

	It("replies and logs both sides of the exchange", func() {
		reply := planner.HandleInbound(ctx, "+15550002", "hello", nil)

		Expect(reply).To(Equal("hey!"))
		Expect(messages.messages).To(HaveLen(2))
		Expect(messages.messages[0].Direction).To(Equal(model.DirectionInbound))
		Expect(messages.messages[0].Body).To(Equal("hello"))
		Expect(messages.messages[1].Direction).To(Equal(model.DirectionOutbound))
		Expect(messages.messages[1].Body).To(Equal("hey!"))
	})

	It("creates an implicit member on first contact", func() {
		planner.HandleInbound(ctx, "+15550002", "hello", nil)

		member, ok := members.members["+15550002"]
		Expect(ok).To(BeTrue())
		Expect(member.Role).To(Equal(model.RoleMember))
		Expect(member.OptedIn).To(BeTrue())
	})

	It("upgrades a global admin's effective role", func() {
		planner.HandleInbound(ctx, "+15559999", "tell everyone dinner is friday", nil)

		Expect(classifier.lastConvo.AskerRole).To(Equal(model.RoleAdmin))
		Expect(dispatcher.lastReq.Member.Role).To(Equal(model.RoleAdmin))
	})

	It("feeds only prior turns to the classifier, weighted", func() {
		planner.HandleInbound(ctx, "+15550002", "first", nil)
		planner.HandleInbound(ctx, "+15550002", "second", nil)

		// At the time "second" was classified the window held the first
		// exchange, not "second" itself.
		history := classifier.lastConvo.History
		Expect(history).To(HaveLen(2))
		Expect(history[0].Content).To(Equal("first"))
		Expect(history[1].Weight).To(Equal(1.0))
		for _, turn := range history {
			Expect(turn.Content).NotTo(Equal("second"))
		}
	})

	It("loads the active draft for admins only", func() {
		drafts.inProgress = &model.Draft{ID: 1, Owner: "+15559999", Status: model.DraftStatusReady}

		planner.HandleInbound(ctx, "+15550002", "hello", nil)
		Expect(classifier.lastConvo.ActiveDraft).To(BeNil())

		planner.HandleInbound(ctx, "+15559999", "send", nil)
		Expect(classifier.lastConvo.ActiveDraft).NotTo(BeNil())
	})

	It("marks the pending excuse when a bare No owes a reason", func() {
		polls.active = &model.Poll{ID: 7, Question: "coming?", RequiresReason: true, Active: true}
		responses.response = &model.PollResponse{PollID: 7, Recipient: "+15550002", Verdict: model.VerdictNo}

		planner.HandleInbound(ctx, "+15550002", "i have work", nil)

		Expect(classifier.lastConvo.ActivePoll).To(BeTrue())
		Expect(classifier.lastConvo.PendingExcuse).To(BeTrue())
		Expect(dispatcher.lastReq.PendingExcuse).To(BeTrue())
	})

	It("recovers the pending confirmation from the last outbound message", func() {
		planner.HandleInbound(ctx, "+15550002", "hello", nil)

		dispatcher.response = brain.Response{
			Reply: "Start the new one instead?",
			Metadata: &model.MessageMetadata{
				Action: model.ActionDraftWrite,
				Pending: &model.PendingConfirmation{
					Kind:   model.PendingKindSecondAnnouncement,
					Detail: "car wash saturday",
				},
			},
		}
		planner.HandleInbound(ctx, "+15550002", "also announce the car wash", nil)

		planner.HandleInbound(ctx, "+15550002", "yes", nil)
		Expect(dispatcher.lastReq.Pending).NotTo(BeNil())
		Expect(dispatcher.lastReq.Pending.Detail).To(Equal("car wash saturday"))
	})

	It("turns a handler error into an apology, not a dropped message", func() {
		dispatcher.err = errBoomService

		reply := planner.HandleInbound(ctx, "+15550002", "hello", nil)

		Expect(reply).To(ContainSubstring("went wrong"))
		Expect(messages.messages).To(HaveLen(2))
	})

	It("turns a handler panic into an apology", func() {
		dispatcher.panics = true

		reply := planner.HandleInbound(ctx, "+15550002", "hello", nil)
		Expect(reply).NotTo(BeEmpty())
		Expect(reply).To(ContainSubstring("snag"))
	})
})
