package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/saapai/jarvis-sub001/common/id"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/store"
)

// BroadcastService fans a draft out to every opted-in member with bounded
// parallelism. Per-recipient failures are counted, never fatal: one dead
// number must not stop the other ninety-nine.
type BroadcastService struct {
	members  store.MemberStore
	messages store.MessageStore
	sender   OutboundSender
	workers  int
}

func NewBroadcastService(members store.MemberStore, messages store.MessageStore, sender OutboundSender, workers int) *BroadcastService {
	if workers <= 0 {
		workers = 8
	}
	return &BroadcastService{
		members:  members,
		messages: messages,
		sender:   sender,
		workers:  workers,
	}
}

func (s *BroadcastService) Broadcast(ctx context.Context, draft *model.Draft, spaceID *int64) (brain.BroadcastResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.service.broadcast",
		DraftID:   logger.Ptr(draft.ID),
	})

	recipients, err := s.members.ListOptedIn(ctx, spaceID)
	if err != nil {
		return brain.BroadcastResult{}, fmt.Errorf("listing broadcast recipients: %w", err)
	}
	if len(recipients) == 0 {
		slog.WarnContext(ctx, "broadcast with no opted-in recipients")
		return brain.BroadcastResult{}, nil
	}

	var (
		sent   atomic.Int64
		failed atomic.Int64
		wg     sync.WaitGroup
		sem    = make(chan struct{}, s.workers)
	)

	for _, recipient := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.sender.Send(ctx, recipient.Phone, draft.Content); err != nil {
				failed.Add(1)
				slog.WarnContext(ctx, "broadcast send failed",
					"recipient", recipient.Phone,
					"error", err)
				return
			}
			sent.Add(1)
			s.logOutbound(ctx, draft, recipient.Phone, spaceID)
		}()
	}
	wg.Wait()

	result := brain.BroadcastResult{Sent: int(sent.Load()), Failed: int(failed.Load())}
	slog.InfoContext(ctx, "broadcast complete",
		"recipients", len(recipients),
		"sent", result.Sent,
		"failed", result.Failed)
	return result, nil
}

// logOutbound records the fanned-out copy so the broadcast can be found and
// deleted by content match later. Best-effort: the text already went out.
func (s *BroadcastService) logOutbound(ctx context.Context, draft *model.Draft, recipient string, spaceID *int64) {
	msg := &model.Message{
		ID:        id.New(),
		Sender:    recipient,
		Direction: model.DirectionOutbound,
		Body:      draft.Content,
		SpaceID:   spaceID,
		Metadata: &model.MessageMetadata{
			Action: model.ActionDraftSend,
			Broadcast: &model.BroadcastMeta{
				DraftID: draft.ID,
				Content: draft.Content,
			},
		},
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		slog.WarnContext(ctx, "logging broadcast copy failed",
			"recipient", recipient,
			"error", err)
	}
}
