package store

import (
	"context"
	"errors"
	"time"

	"github.com/saapai/jarvis-sub001/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// MessageStore defines the contract for the append-only message log
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListRecentBySender returns up to limit messages for a sender,
	// oldest first, ready for the weighted history builder.
	ListRecentBySender(ctx context.Context, sender string, spaceID *int64, limit int32) ([]model.Message, error)
	// LastOutbound returns the most recent outbound message to a sender,
	// used to recover pending-confirmation short-term memory.
	LastOutbound(ctx context.Context, sender string, spaceID *int64) (*model.Message, error)
	// DeleteBroadcast removes the fanned-out copies of a broadcast by
	// content match within a space (admin-side deletion).
	DeleteBroadcast(ctx context.Context, spaceID *int64, content string) (int64, error)
	// DeleteOlderThan is the bulk retention cleanup path.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DraftStore defines the contract for in-progress broadcast drafts
type DraftStore interface {
	// GetInProgress returns the owner's single non-finalized draft, or
	// ErrNotFound. Drafts idle past maxAge are treated as abandoned and
	// not returned.
	GetInProgress(ctx context.Context, owner string, spaceID *int64, maxAge time.Duration) (*model.Draft, error)
	Create(ctx context.Context, draft *model.Draft) error
	Update(ctx context.Context, draft *model.Draft) error
	// MarkSent finalizes the draft, freeing the owner's slot.
	MarkSent(ctx context.Context, id int64) error
	// AbandonInProgress finalizes any prior in-progress drafts for an
	// owner without sending them. Used when a new draft supersedes.
	AbandonInProgress(ctx context.Context, owner string, spaceID *int64) error
}

// PollStore defines the contract for broadcast polls
type PollStore interface {
	GetByID(ctx context.Context, id int64) (*model.Poll, error)
	// GetActive returns the single active poll for a space, or ErrNotFound.
	GetActive(ctx context.Context, spaceID *int64) (*model.Poll, error)
	Create(ctx context.Context, poll *model.Poll) error
	// DeactivateActive retires the currently active poll for a space
	// non-destructively. No-op when none is active.
	DeactivateActive(ctx context.Context, spaceID *int64) error
}

// PollResponseStore defines the contract for per-recipient poll answers
type PollResponseStore interface {
	// Upsert inserts or replaces the (poll, recipient) response.
	Upsert(ctx context.Context, resp *model.PollResponse) error
	GetByPollAndRecipient(ctx context.Context, pollID int64, recipient string) (*model.PollResponse, error)
	ListByPoll(ctx context.Context, pollID int64) ([]model.PollResponse, error)
}

// MemberStore defines the contract for the member directory
type MemberStore interface {
	GetByPhone(ctx context.Context, phone string, spaceID *int64) (*model.Member, error)
	Create(ctx context.Context, member *model.Member) error
	ListOptedIn(ctx context.Context, spaceID *int64) ([]model.Member, error)
	Count(ctx context.Context, spaceID *int64) (int64, error)
}

// FactStore defines the contract for the content corpus
type FactStore interface {
	Create(ctx context.Context, fact *model.Fact) error
	Update(ctx context.Context, fact *model.Fact) error
	// ListBySpace returns the whole corpus for a space; the search router
	// scores it in memory.
	ListBySpace(ctx context.Context, spaceID *int64) ([]model.Fact, error)
	// FindByTitleLike returns the most recently updated fact whose title
	// matches the fragment, or ErrNotFound.
	FindByTitleLike(ctx context.Context, spaceID *int64, fragment string) (*model.Fact, error)
}
