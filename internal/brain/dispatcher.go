package brain

import (
	"context"

	"github.com/saapai/jarvis-sub001/internal/model"
)

// Handler is one route of the dispatcher.
type Handler interface {
	Handle(ctx context.Context, req Request) (Response, error)
}

// Dispatcher routes a classified message to its handler. A flat switch:
// every action maps to exactly one handler, chat is the default.
type Dispatcher struct {
	drafts     *DraftHandler
	polls      *PollHandler
	content    *ContentHandler
	capability *CapabilityHandler
	knowledge  *KnowledgeHandler
	events     *EventUpdateHandler
	chat       *ChatHandler
}

func NewDispatcher(
	drafts *DraftHandler,
	polls *PollHandler,
	content *ContentHandler,
	capability *CapabilityHandler,
	knowledge *KnowledgeHandler,
	events *EventUpdateHandler,
	chat *ChatHandler,
) *Dispatcher {
	return &Dispatcher{
		drafts:     drafts,
		polls:      polls,
		content:    content,
		capability: capability,
		knowledge:  knowledge,
		events:     events,
		chat:       chat,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Response, error) {
	switch req.Classification.Action {
	case model.ActionDraftWrite:
		return d.drafts.Write(ctx, req)
	case model.ActionDraftSend:
		return d.drafts.Send(ctx, req)
	case model.ActionContentQuery:
		return d.content.Handle(ctx, req)
	case model.ActionPollResponse:
		return d.polls.Handle(ctx, req)
	case model.ActionCapabilityQuery:
		return d.capability.Handle(ctx, req)
	case model.ActionKnowledgeUpload:
		return d.knowledge.Handle(ctx, req)
	case model.ActionEventUpdate:
		return d.events.Handle(ctx, req)
	default:
		return d.chat.Handle(ctx, req)
	}
}
