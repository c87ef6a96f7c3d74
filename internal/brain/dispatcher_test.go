package brain_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/model"
)

var _ = Describe("Dispatcher", func() {
	var (
		client   *mockLLMClient
		searcher *mockSearcher
		facts    *mockFactStore
		d        *brain.Dispatcher
		ctx      context.Context
	)

	BeforeEach(func() {
		client = &mockLLMClient{}
		searcher = &mockSearcher{}
		facts = &mockFactStore{}
		embedder := &mockEmbedder{vec: []float64{0.5}}
		d = brain.NewDispatcher(
			brain.NewDraftHandler(&mockDraftStore{}, &mockPollStore{}, facts, client, embedder, &mockBroadcaster{}, &mockTxRunner{drafts: &mockDraftStore{}, polls: &mockPollStore{}}),
			brain.NewPollHandler(newMockPollResponseStore(), client),
			brain.NewContentHandler(searcher),
			brain.NewCapabilityHandler(),
			brain.NewKnowledgeHandler(facts, client, embedder),
			brain.NewEventUpdateHandler(facts, client, embedder),
			brain.NewChatHandler(client),
		)
		ctx = context.Background()
	})

	dispatch := func(action model.ActionType, message string, member *model.Member) (brain.Response, error) {
		return d.Dispatch(ctx, brain.Request{
			Sender:         "+15550002",
			Message:        message,
			Member:         member,
			Classification: model.Classification{Action: action, Confidence: 0.9},
		})
	}

	member := &model.Member{Phone: "+15550002", Name: "Sam", Role: model.RoleMember}
	admin := &model.Member{Phone: "+15550001", Name: "Alex", Role: model.RoleAdmin}

	It("routes content queries through the searcher", func() {
		searcher.results = []model.ContentResult{
			{Fact: model.Fact{Title: "Dinner", Content: "Friday 7pm at the house", TimeRef: "friday 7pm"}, Score: 12, Source: "vector"},
		}

		resp, err := dispatch(model.ActionContentQuery, "when is dinner?", member)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Reply).To(ContainSubstring("Friday 7pm at the house"))
		Expect(resp.Metadata.Action).To(Equal(model.ActionContentQuery))
	})

	It("admits not finding anything rather than inventing content", func() {
		resp, err := dispatch(model.ActionContentQuery, "when is the regatta?", member)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Reply).To(ContainSubstring("couldn't find"))
	})

	It("answers capability queries by role", func() {
		memberResp, err := dispatch(model.ActionCapabilityQuery, "what can you do?", member)
		Expect(err).NotTo(HaveOccurred())
		adminResp, err := dispatch(model.ActionCapabilityQuery, "what can you do?", admin)
		Expect(err).NotTo(HaveOccurred())

		Expect(memberResp.Reply).NotTo(ContainSubstring("organizer"))
		Expect(adminResp.Reply).To(ContainSubstring("organizer"))
	})

	It("stores a knowledge upload as a fact", func() {
		client.chatJSON = `{"title":"Dues","category":"logistics","subcategory":"dues","content":"Dues are $40 this semester","time_ref":""}`

		resp, err := dispatch(model.ActionKnowledgeUpload, "remember dues are $40 this semester", admin)
		Expect(err).NotTo(HaveOccurred())

		Expect(facts.facts).To(HaveLen(1))
		Expect(facts.facts[0].Category).To(Equal("logistics"))
		Expect(resp.Reply).To(ContainSubstring("$40"))
	})

	It("stores the raw message when fact extraction fails", func() {
		client.chatErr = errBoom

		_, err := dispatch(model.ActionKnowledgeUpload, "remember dues are $40 this semester", admin)
		Expect(err).NotTo(HaveOccurred())

		Expect(facts.facts).To(HaveLen(1))
		Expect(facts.facts[0].Content).To(Equal("remember dues are $40 this semester"))
		Expect(facts.facts[0].Category).To(Equal("other"))
	})

	It("updates a matching event fact in place", func() {
		facts.facts = append(facts.facts, &model.Fact{
			ID: 9, Title: "Dinner friday", Content: "Dinner friday 7pm", TimeRef: "friday 7pm",
		})
		client.chatJSON = `{"title":"Dinner friday","category":"event","subcategory":"dinner","content":"Dinner friday 8pm","time_ref":"friday 8pm"}`

		resp, err := dispatch(model.ActionEventUpdate, "move the dinner to 8pm", admin)
		Expect(err).NotTo(HaveOccurred())

		Expect(facts.updated).To(HaveLen(1))
		Expect(facts.updated[0].Content).To(Equal("Dinner friday 8pm"))
		Expect(resp.Metadata.Event).NotTo(BeNil())
		Expect(resp.Metadata.Event.FactID).To(Equal(int64(9)))
	})

	It("asks which event when nothing matches the update", func() {
		client.chatJSON = `{"title":"","category":"event","subcategory":"","content":"x","time_ref":""}`

		resp, err := dispatch(model.ActionEventUpdate, "move the regatta to 8pm", admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Reply).To(ContainSubstring("Which announcement"))
		Expect(facts.updated).To(BeEmpty())
	})

	It("defaults everything else to chat", func() {
		client.completeFn = func(_ context.Context, _, _ string) (string, error) {
			return "hey!", nil
		}

		resp, err := dispatch(model.ActionChat, "hello", member)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Reply).To(Equal("hey!"))
		Expect(resp.Metadata.Action).To(Equal(model.ActionChat))
	})

	It("keeps chatting with a canned line when the model is down", func() {
		client.completeFn = func(_ context.Context, _, _ string) (string, error) {
			return "", errBoom
		}

		resp, err := dispatch(model.ActionChat, "hello", member)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Reply).NotTo(BeEmpty())
	})
})
