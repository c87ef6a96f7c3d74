package model

import "time"

type DraftType string

const (
	DraftTypeAnnouncement DraftType = "announcement"
	DraftTypePoll         DraftType = "poll"
)

type DraftStatus string

const (
	// DraftStatusDrafting means the content is not yet confirmed complete.
	DraftStatusDrafting DraftStatus = "drafting"
	// DraftStatusReady means the content is finalized, awaiting send.
	DraftStatusReady DraftStatus = "ready"
	// DraftStatusSent is terminal; the row no longer occupies the
	// one-in-progress slot for its owner.
	DraftStatusSent DraftStatus = "sent"
)

// Draft is an admin's in-progress broadcast. At most one non-finalized draft
// exists per (owner, space) at any time.
type Draft struct {
	ID        int64
	Owner     string // phone-equivalent of the composing admin
	SpaceID   *int64
	Type      DraftType
	Content   string
	Status    DraftStatus
	Payload   DraftPayload
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DraftPayload carries the structured extras alongside the draft text.
type DraftPayload struct {
	Links []string `json:"links,omitempty"`
	// RequiresReason marks a poll whose "No" answers must carry a reason.
	RequiresReason bool `json:"requires_reason,omitempty"`
	// AwaitingSplitConfirm is set when the latest write looked like a
	// second, unrelated announcement and we asked the admin whether to
	// start fresh instead of editing.
	AwaitingSplitConfirm bool `json:"awaiting_split_confirm,omitempty"`
}

// InProgress reports whether the draft still occupies its owner's slot.
func (d *Draft) InProgress() bool {
	return d.Status == DraftStatusDrafting || d.Status == DraftStatusReady
}

// Expired reports whether the draft should be treated as abandoned.
func (d *Draft) Expired(maxAge time.Duration, now time.Time) bool {
	return now.Sub(d.UpdatedAt) > maxAge
}
