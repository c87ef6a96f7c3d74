package brain_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/model"
)

var _ = Describe("IntentClassifier", func() {
	var (
		client *mockLLMClient
		ctx    context.Context
	)

	BeforeEach(func() {
		client = &mockLLMClient{}
		ctx = context.Background()
	})

	newClassifier := func() brain.Classifier {
		return brain.NewIntentClassifier(client, 5*time.Second, 512)
	}

	activeDraft := &model.Draft{
		ID:      1,
		Owner:   "+15550001",
		Type:    model.DraftTypeAnnouncement,
		Content: "Dinner friday 7pm",
		Status:  model.DraftStatusReady,
	}

	Describe("the send-phrase fast path", func() {
		DescribeTable("an admin's short confirmation with an active draft resolves deterministically",
			func(message string) {
				result := newClassifier().Classify(ctx, brain.ConversationContext{
					Message:     message,
					ActiveDraft: activeDraft,
					AskerRole:   model.RoleAdmin,
				})

				Expect(result.Action).To(Equal(model.ActionDraftSend))
				Expect(result.Confidence).To(BeNumerically(">", 0.9))
				Expect(client.chatCalls).To(BeZero())
			},
			Entry("send", "send"),
			Entry("send it", "Send it"),
			Entry("go ahead", "go ahead"),
			Entry("yes with punctuation", "yes!"),
			Entry("ship it", "ship it"),
		)

		It("does not fire without an active draft", func() {
			client.chatJSON = `{"action":"chat","subtype":"none","confidence":0.7,"reasoning":"greeting"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:   "send",
				AskerRole: model.RoleAdmin,
			})

			Expect(result.Action).To(Equal(model.ActionChat))
			Expect(client.chatCalls).To(Equal(1))
		})

		It("defers to the model while a confirmation is pending", func() {
			client.chatJSON = `{"action":"draft_write","subtype":"announcement","confidence":0.85,"reasoning":"answering the split question"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:     "yes",
				ActiveDraft: activeDraft,
				AskerRole:   model.RoleAdmin,
				Pending: &model.PendingConfirmation{
					Kind:   model.PendingKindSecondAnnouncement,
					Detail: "car wash saturday",
				},
			})

			Expect(result.Action).To(Equal(model.ActionDraftWrite))
			Expect(client.chatCalls).To(Equal(1))
		})

		It("does not fire for a non-admin", func() {
			client.chatJSON = `{"action":"chat","subtype":"none","confidence":0.6,"reasoning":"member chatter"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:     "send",
				ActiveDraft: activeDraft,
				AskerRole:   model.RoleMember,
			})

			Expect(result.Action).To(Equal(model.ActionChat))
		})
	})

	Describe("model-backed classification", func() {
		It("classifies an announcement instruction as draft_write with subtype announcement", func() {
			client.chatJSON = `{"action":"draft_write","subtype":"announcement","confidence":0.92,"reasoning":"admin is composing"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:   "tell everyone dinner is friday at 7",
				AskerRole: model.RoleAdmin,
			})

			Expect(result.Action).To(Equal(model.ActionDraftWrite))
			Expect(result.Subtype).NotTo(BeNil())
			Expect(*result.Subtype).To(Equal("announcement"))
		})

		It("degrades to chat with zero confidence when the model fails", func() {
			client.chatErr = errBoom

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:   "tell everyone dinner is friday",
				AskerRole: model.RoleAdmin,
			})

			Expect(result.Action).To(Equal(model.ActionChat))
			Expect(result.Confidence).To(BeZero())
		})

		It("retries once after a transient failure and keeps the result", func() {
			client.chatErrOnce = errBoom
			client.chatJSON = `{"action":"content_query","subtype":"none","confidence":0.88,"reasoning":"asking about an event"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:   "when is dinner?",
				AskerRole: model.RoleMember,
			})

			Expect(result.Action).To(Equal(model.ActionContentQuery))
			Expect(client.chatCalls).To(Equal(2))
		})

		It("does not retry when the context is already done", func() {
			client.chatErr = context.Canceled

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:   "when is dinner?",
				AskerRole: model.RoleMember,
			})

			Expect(result.Action).To(Equal(model.ActionChat))
			Expect(client.chatCalls).To(Equal(1))
		})

		It("degrades an unknown action to chat", func() {
			client.chatJSON = `{"action":"launch_rockets","subtype":"none","confidence":0.99,"reasoning":"?"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:   "hi",
				AskerRole: model.RoleMember,
			})

			Expect(result.Action).To(Equal(model.ActionChat))
		})

		It("downgrades an admin-only action for a non-admin", func() {
			client.chatJSON = `{"action":"draft_write","subtype":"announcement","confidence":0.9,"reasoning":"composing"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:   "tell everyone dinner is friday",
				AskerRole: model.RoleMember,
			})

			Expect(result.Action).To(Equal(model.ActionChat))
		})
	})

	Describe("the pending-excuse bias", func() {
		It("redirects low-confidence chat to poll_response", func() {
			client.chatJSON = `{"action":"chat","subtype":"none","confidence":0.3,"reasoning":"unclear"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:       "i have a work thing",
				AskerRole:     model.RoleMember,
				ActivePoll:    true,
				PendingExcuse: true,
			})

			Expect(result.Action).To(Equal(model.ActionPollResponse))
			Expect(result.Confidence).To(BeNumerically(">=", 0.5))
		})

		It("leaves confident chat alone", func() {
			client.chatJSON = `{"action":"chat","subtype":"none","confidence":0.8,"reasoning":"clearly chatting"}`

			result := newClassifier().Classify(ctx, brain.ConversationContext{
				Message:       "lol nice",
				AskerRole:     model.RoleMember,
				PendingExcuse: true,
			})

			Expect(result.Action).To(Equal(model.ActionChat))
		})
	})
})
