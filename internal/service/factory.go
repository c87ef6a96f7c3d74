package service

import (
	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/core/config"
	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/search"
	"github.com/saapai/jarvis-sub001/internal/store"
)

// Services is the factory wiring stores, models and the brain into the
// pipeline handed to the HTTP layer.
type Services struct {
	Planner   *Planner
	Broadcast *BroadcastService
	Retention *RetentionJob
	stores    *store.Stores
}

type Deps struct {
	Stores         *store.Stores
	Tx             brain.TxRunner
	ClassifierLLM  llm.Client
	PersonalityLLM llm.Client
	Embedder       llm.Embedder
	Sender         OutboundSender
}

func New(cfg config.Config, deps Deps) *Services {
	broadcast := NewBroadcastService(
		deps.Stores.Members(),
		deps.Stores.Messages(),
		deps.Sender,
		cfg.Planner.BroadcastWorkers,
	)

	searcher := search.NewRouter(deps.Stores.Facts(), deps.Embedder, cfg.Planner.SearchLimit)

	dispatcher := brain.NewDispatcher(
		brain.NewDraftHandler(
			deps.Stores.Drafts(),
			deps.Stores.Polls(),
			deps.Stores.Facts(),
			deps.ClassifierLLM,
			deps.Embedder,
			broadcast,
			deps.Tx,
		),
		brain.NewPollHandler(deps.Stores.PollResponses(), deps.ClassifierLLM),
		brain.NewContentHandler(searcher),
		brain.NewCapabilityHandler(),
		brain.NewKnowledgeHandler(deps.Stores.Facts(), deps.ClassifierLLM, deps.Embedder),
		brain.NewEventUpdateHandler(deps.Stores.Facts(), deps.ClassifierLLM, deps.Embedder),
		brain.NewChatHandler(deps.PersonalityLLM),
	)

	classifier := brain.NewIntentClassifier(
		deps.ClassifierLLM,
		cfg.ClassifierLLM.Timeout,
		cfg.ClassifierLLM.MaxTokens,
	)
	personality := brain.NewPersonality(deps.PersonalityLLM, cfg.PersonalityLLM.Timeout)

	planner := NewPlanner(
		PlannerStores{
			Messages:      deps.Stores.Messages(),
			Drafts:        deps.Stores.Drafts(),
			Polls:         deps.Stores.Polls(),
			PollResponses: deps.Stores.PollResponses(),
			Members:       deps.Stores.Members(),
		},
		classifier,
		dispatcher,
		personality,
		cfg.Admin.GlobalAdmins,
		cfg.Planner,
	)

	return &Services{
		Planner:   planner,
		Broadcast: broadcast,
		Retention: NewRetentionJob(deps.Stores.Messages(), cfg.Planner.MessageRetention, 0),
		stores:    deps.Stores,
	}
}

// Stores exposes the repositories for the HTTP status handler.
func (s *Services) Stores() *store.Stores {
	return s.stores
}
