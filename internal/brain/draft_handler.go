package brain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saapai/jarvis-sub001/common/id"
	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/store"
)

// BroadcastResult is the per-recipient accounting of one fan-out.
type BroadcastResult struct {
	Sent   int
	Failed int
}

// Broadcaster fans a draft's content out to every opted-in recipient.
// Partial failure is normal; the result carries both counts.
type Broadcaster interface {
	Broadcast(ctx context.Context, draft *model.Draft, spaceID *int64) (BroadcastResult, error)
}

// TxStores is the slice of the store layer a transactional finalize needs.
type TxStores interface {
	Drafts() store.DraftStore
	Polls() store.PollStore
}

// TxRunner runs a function with stores bound to one database transaction.
// Declared here rather than in the service layer so dependencies keep
// flowing service -> brain, not back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores TxStores) error) error
}

var draftWriteSchema = llm.GenerateSchema[draftWriteResponse]()

// DraftHandler owns the draft lifecycle: drafting -> ready -> sent.
type DraftHandler struct {
	drafts      store.DraftStore
	polls       store.PollStore
	facts       store.FactStore
	llm         llm.Client
	embedder    llm.Embedder
	broadcaster Broadcaster
	tx          TxRunner
}

func NewDraftHandler(
	drafts store.DraftStore,
	polls store.PollStore,
	facts store.FactStore,
	client llm.Client,
	embedder llm.Embedder,
	broadcaster Broadcaster,
	tx TxRunner,
) *DraftHandler {
	return &DraftHandler{
		drafts:      drafts,
		polls:       polls,
		facts:       facts,
		llm:         client,
		embedder:    embedder,
		broadcaster: broadcaster,
		tx:          tx,
	}
}

// Write creates the owner's draft or edits it in place. Content is
// re-derived by the model from the prior content plus the new instruction,
// not appended mechanically.
func (h *DraftHandler) Write(ctx context.Context, req Request) (Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.draft",
	})

	instruction := req.Message
	prior := ""
	if req.Draft != nil {
		prior = req.Draft.Content

		// The admin was asked whether their last message starts a new,
		// unrelated announcement. A yes means: retire this draft and
		// compose the stashed instruction fresh.
		if req.Draft.Payload.AwaitingSplitConfirm && req.Pending != nil &&
			req.Pending.Kind == model.PendingKindSecondAnnouncement && isSendPhrase(req.Message) {
			if err := h.drafts.AbandonInProgress(ctx, req.Sender, req.SpaceID); err != nil {
				return Response{}, fmt.Errorf("abandoning superseded draft: %w", err)
			}
			instruction = req.Pending.Detail
			prior = ""
			req.Draft = nil
		}
	}

	var derived draftWriteResponse
	_, err := h.llm.Chat(ctx, llm.Request{
		SystemPrompt: draftWriteSystemPrompt,
		UserPrompt:   buildDraftWritePrompt(prior, instruction),
		SchemaName:   "draft_write_response",
		Schema:       draftWriteSchema,
		Temperature:  llm.Temp(0.2),
	}, &derived)
	if err != nil {
		slog.WarnContext(ctx, "draft derivation failed", "error", err)
		return Response{Reply: "I couldn't quite work that into the draft. Can you say it again?"}, nil
	}

	// An unrelated second announcement needs an explicit go-ahead before
	// the in-flight draft is thrown away.
	if req.Draft != nil && derived.LooksLikeNewOne && !req.Draft.Payload.AwaitingSplitConfirm {
		req.Draft.Payload.AwaitingSplitConfirm = true
		if err := h.drafts.Update(ctx, req.Draft); err != nil {
			return Response{}, fmt.Errorf("flagging draft for split confirm: %w", err)
		}
		return Response{
			Reply: "That sounds like a new announcement. Want me to drop the current draft and start this one instead? (Say yes to start fresh.)",
			Metadata: &model.MessageMetadata{
				Action: model.ActionDraftWrite,
				Pending: &model.PendingConfirmation{
					Kind:   model.PendingKindSecondAnnouncement,
					Detail: instruction,
				},
			},
		}, nil
	}

	status := model.DraftStatusDrafting
	if derived.Complete {
		status = model.DraftStatusReady
	}

	draft := req.Draft
	if draft == nil {
		draft = &model.Draft{
			ID:      id.New(),
			Owner:   req.Sender,
			SpaceID: req.SpaceID,
			Type:    model.DraftType(derived.Type),
			Content: derived.Content,
			Status:  status,
			Payload: model.DraftPayload{
				Links:          derived.Links,
				RequiresReason: derived.RequiresReason,
			},
		}
		if err := h.drafts.Create(ctx, draft); err != nil {
			return Response{}, fmt.Errorf("creating draft: %w", err)
		}
	} else {
		draft.Type = model.DraftType(derived.Type)
		draft.Content = derived.Content
		// A ready draft stays ready unless the model says it regressed.
		if status == model.DraftStatusReady || draft.Status == model.DraftStatusDrafting {
			draft.Status = status
		}
		draft.Payload.Links = derived.Links
		draft.Payload.RequiresReason = derived.RequiresReason
		draft.Payload.AwaitingSplitConfirm = false
		if err := h.drafts.Update(ctx, draft); err != nil {
			return Response{}, fmt.Errorf("updating draft: %w", err)
		}
	}

	slog.InfoContext(ctx, "draft written",
		"draft_id", draft.ID,
		"type", string(draft.Type),
		"status", string(draft.Status))

	reply := fmt.Sprintf("Here's the draft so far:\n\n%s\n\n", draft.Content)
	if draft.Status == model.DraftStatusReady {
		reply += "Looks ready. Say \"send\" to broadcast it."
	} else {
		reply += "What else should it say?"
	}

	return Response{
		Reply: reply,
		Metadata: &model.MessageMetadata{
			Action: model.ActionDraftWrite,
			DraftWrite: &model.DraftWriteMeta{
				DraftID: draft.ID,
				Status:  string(draft.Status),
			},
		},
	}, nil
}

// Send finalizes a ready draft: marks it sent, instantiates a poll for
// poll-typed drafts, fans the content out, and records the accounting.
func (h *DraftHandler) Send(ctx context.Context, req Request) (Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.draft",
	})

	if req.Draft == nil {
		return Response{Reply: "There's no draft in progress. Tell me what to announce first."}, nil
	}
	if req.Draft.Status != model.DraftStatusReady {
		// Invalid state transition: surfaced as a clarifying reply,
		// never as a system error.
		return Response{Reply: fmt.Sprintf(
			"The draft still looks unfinished:\n\n%s\n\nFinish it and I'll send it.", req.Draft.Content)}, nil
	}

	// Finalize commits atomically: the draft is never consumed without
	// its replacement poll going live.
	var pollID *int64
	err := h.tx.WithTx(ctx, func(stores TxStores) error {
		if err := stores.Drafts().MarkSent(ctx, req.Draft.ID); err != nil {
			return fmt.Errorf("finalizing draft: %w", err)
		}
		if req.Draft.Type != model.DraftTypePoll {
			return nil
		}
		// One active poll per space: the new one supersedes, history stays.
		if err := stores.Polls().DeactivateActive(ctx, req.SpaceID); err != nil {
			return fmt.Errorf("deactivating prior poll: %w", err)
		}
		poll := &model.Poll{
			ID:             id.New(),
			Question:       req.Draft.Content,
			Creator:        req.Sender,
			RequiresReason: req.Draft.Payload.RequiresReason,
			Active:         true,
			SpaceID:        req.SpaceID,
		}
		if err := stores.Polls().Create(ctx, poll); err != nil {
			return fmt.Errorf("creating poll: %w", err)
		}
		pollID = &poll.ID
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	if pollID != nil {
		slog.InfoContext(ctx, "poll activated", "poll_id", *pollID)
	}

	result, err := h.broadcaster.Broadcast(ctx, req.Draft, req.SpaceID)
	if err != nil {
		return Response{}, fmt.Errorf("broadcasting draft: %w", err)
	}

	if req.Draft.Type == model.DraftTypeAnnouncement {
		h.recordAnnouncementFact(ctx, req.Draft)
	}

	slog.InfoContext(ctx, "draft sent",
		"draft_id", req.Draft.ID,
		"sent", result.Sent,
		"failed", result.Failed)

	reply := fmt.Sprintf("Sent to %d people.", result.Sent)
	if result.Failed > 0 {
		reply = fmt.Sprintf("Sent to %d people (%d didn't go through).", result.Sent, result.Failed)
	}

	return Response{
		Reply: reply,
		Metadata: &model.MessageMetadata{
			Action: model.ActionDraftSend,
			DraftSend: &model.DraftSendMeta{
				DraftID: req.Draft.ID,
				PollID:  pollID,
				Sent:    result.Sent,
				Failed:  result.Failed,
			},
		},
	}, nil
}

// recordAnnouncementFact makes the announcement findable by content_query
// later. Best-effort: a failure here never fails the send.
func (h *DraftHandler) recordAnnouncementFact(ctx context.Context, draft *model.Draft) {
	embedding, err := h.embedder.Embed(ctx, draft.Content)
	if err != nil {
		slog.WarnContext(ctx, "announcement embedding failed", "error", err)
		embedding = nil
	}

	fact := &model.Fact{
		ID:          id.New(),
		Title:       factTitle(draft.Content),
		Category:    "event",
		Subcategory: "announcement",
		Content:     draft.Content,
		SpaceID:     draft.SpaceID,
		Embedding:   embedding,
	}
	if err := h.facts.Create(ctx, fact); err != nil {
		slog.WarnContext(ctx, "recording announcement fact failed", "error", err)
	}
}

func factTitle(content string) string {
	const maxTitle = 60
	if len(content) <= maxTitle {
		return content
	}
	return content[:maxTitle]
}
