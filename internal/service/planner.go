package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/saapai/jarvis-sub001/common/id"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/core/config"
	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/history"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/store"
)

// Replies used when the pipeline itself breaks. Users see these, never a
// stack trace or a raw error string.
const (
	systemErrorReply = "Something went wrong on my end. Give me a minute and try again."
	panicReply       = "I hit a snag there, sorry. Try that again?"
)

// PlannerStores is the slice of repositories the pipeline reads and writes.
// Interfaces, so the pipeline tests run against in-memory fakes.
type PlannerStores struct {
	Messages      store.MessageStore
	Drafts        store.DraftStore
	Polls         store.PollStore
	PollResponses store.PollResponseStore
	Members       store.MemberStore
}

// Dispatcher routes a classified request to its handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, req brain.Request) (brain.Response, error)
}

// Planner is the inbound pipeline: load state, classify, dispatch, apply
// personality, log both sides of the exchange, reply.
type Planner struct {
	stores       PlannerStores
	classifier   brain.Classifier
	dispatcher   Dispatcher
	personality  *brain.Personality
	globalAdmins []string
	plannerCfg   config.PlannerConfig
}

func NewPlanner(
	stores PlannerStores,
	classifier brain.Classifier,
	dispatcher Dispatcher,
	personality *brain.Personality,
	globalAdmins []string,
	plannerCfg config.PlannerConfig,
) *Planner {
	return &Planner{
		stores:       stores,
		classifier:   classifier,
		dispatcher:   dispatcher,
		personality:  personality,
		globalAdmins: globalAdmins,
		plannerCfg:   plannerCfg,
	}
}

// HandleInbound processes one inbound message end to end and returns the
// reply text. It never returns an empty reply: every failure path degrades
// to an apology so the channel stays alive.
func (p *Planner) HandleInbound(ctx context.Context, sender, body string, spaceID *int64) (reply string) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Sender:    logger.Ptr(sender),
		SpaceID:   spaceID,
		Component: "jarvis.service.planner",
	})

	// A panic anywhere below turns into an apology, not a dropped message.
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in inbound pipeline", "panic", r)
			reply = panicReply
		}
	}()

	member, err := p.resolveMember(ctx, sender, spaceID)
	if err != nil {
		slog.ErrorContext(ctx, "resolving member failed", "error", err)
		return systemErrorReply
	}

	// History is read before this message is logged so the window holds
	// only prior turns.
	convo, req := p.loadState(ctx, member, body, spaceID)

	classification := p.classifier.Classify(ctx, convo)
	req.Classification = classification
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Action: logger.Ptr(string(classification.Action)),
	})

	resp, err := p.dispatcher.Dispatch(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "handler failed", "error", err)
		resp = brain.Response{Reply: systemErrorReply}
	}

	final := p.personality.Rewrite(ctx, resp.Reply)

	p.logExchange(ctx, sender, body, final, spaceID, classification, resp.Metadata)
	return final
}

// resolveMember loads the sender's member row, creating an implicit one on
// first contact. The legacy global admin allowlist upgrades the effective
// role for space-less conversations.
func (p *Planner) resolveMember(ctx context.Context, sender string, spaceID *int64) (*model.Member, error) {
	member, err := p.stores.Members.GetByPhone(ctx, sender, spaceID)
	if errors.Is(err, store.ErrNotFound) {
		member = &model.Member{
			ID:      id.New(),
			Phone:   sender,
			Role:    model.RoleMember,
			SpaceID: spaceID,
			OptedIn: true,
		}
		if err := p.stores.Members.Create(ctx, member); err != nil {
			return nil, fmt.Errorf("creating implicit member: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("loading member: %w", err)
	}

	if member.Role != model.RoleAdmin && slices.Contains(p.globalAdmins, sender) {
		member.Role = model.RoleAdmin
	}
	return member, nil
}

// loadState assembles everything the classifier and handlers see. Loads are
// individually best-effort where the pipeline can proceed without them.
func (p *Planner) loadState(ctx context.Context, member *model.Member, body string, spaceID *int64) (brain.ConversationContext, brain.Request) {
	recent, err := p.stores.Messages.ListRecentBySender(ctx, member.Phone, spaceID, int32(p.plannerCfg.HistoryWindow))
	if err != nil {
		slog.WarnContext(ctx, "loading history failed, classifying without", "error", err)
		recent = nil
	}

	var pending *model.PendingConfirmation
	if last, err := p.stores.Messages.LastOutbound(ctx, member.Phone, spaceID); err == nil && last.Metadata != nil {
		pending = last.Metadata.Pending
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "loading last outbound failed", "error", err)
	}

	var draft *model.Draft
	if member.Role == model.RoleAdmin {
		d, err := p.stores.Drafts.GetInProgress(ctx, member.Phone, spaceID, p.plannerCfg.DraftMaxAge)
		if err == nil {
			draft = d
		} else if !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "loading draft failed", "error", err)
		}
	}

	var poll *model.Poll
	if pl, err := p.stores.Polls.GetActive(ctx, spaceID); err == nil {
		poll = pl
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "loading active poll failed", "error", err)
	}

	pendingExcuse := false
	if poll != nil {
		if resp, err := p.stores.PollResponses.GetByPollAndRecipient(ctx, poll.ID, member.Phone); err == nil {
			pendingExcuse = resp.NeedsExcuse(poll)
		} else if !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "loading poll response failed", "error", err)
		}
	}

	convo := brain.ConversationContext{
		Message:       body,
		History:       history.Build(recent),
		ActiveDraft:   draft,
		ActivePoll:    poll != nil,
		PendingExcuse: pendingExcuse,
		AskerRole:     member.Role,
		AskerName:     member.Name,
		Pending:       pending,
	}
	req := brain.Request{
		Sender:        member.Phone,
		SpaceID:       spaceID,
		Member:        member,
		Message:       body,
		Draft:         draft,
		Poll:          poll,
		PendingExcuse: pendingExcuse,
		Pending:       pending,
	}
	return convo, req
}

// logExchange appends both sides of the turn to the message log.
// Best-effort: the user already has their reply.
func (p *Planner) logExchange(
	ctx context.Context,
	sender, inbound, outbound string,
	spaceID *int64,
	classification model.Classification,
	metadata *model.MessageMetadata,
) {
	inMeta := &model.MessageMetadata{
		Action:     classification.Action,
		Confidence: logger.Ptr(classification.Confidence),
	}
	if err := p.stores.Messages.Create(ctx, &model.Message{
		ID:        id.New(),
		Sender:    sender,
		Direction: model.DirectionInbound,
		Body:      inbound,
		Metadata:  inMeta,
		SpaceID:   spaceID,
	}); err != nil {
		slog.WarnContext(ctx, "logging inbound message failed", "error", err)
	}

	if metadata == nil {
		metadata = &model.MessageMetadata{Action: classification.Action}
	}
	if err := p.stores.Messages.Create(ctx, &model.Message{
		ID:        id.New(),
		Sender:    sender,
		Direction: model.DirectionOutbound,
		Body:      outbound,
		Metadata:  metadata,
		SpaceID:   spaceID,
	}); err != nil {
		slog.WarnContext(ctx, "logging outbound message failed", "error", err)
	}
}
