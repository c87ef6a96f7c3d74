package model

import "time"

// Poll is a broadcast question. At most one poll is active per space;
// creating a new one deactivates the prior active poll non-destructively.
type Poll struct {
	ID             int64
	Question       string
	Creator        string
	RequiresReason bool // "No" answers must carry a reason
	Active         bool
	SpaceID        *int64
	CreatedAt      time.Time
}

// Verdict is the normalized outcome of parsing a poll reply.
type Verdict string

const (
	VerdictYes     Verdict = "yes"
	VerdictNo      Verdict = "no"
	VerdictMaybe   Verdict = "maybe"
	VerdictUnknown Verdict = "unknown"
)

// PollResponse is one recipient's answer to one poll, unique per
// (poll, recipient) and upserted on every reply while the poll is active.
type PollResponse struct {
	ID        int64
	PollID    int64
	Recipient string
	Verdict   Verdict
	Note      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NeedsExcuse reports whether this response leaves the conversation in the
// pending-excuse sub-state: a "No" with no reason on a reason-requiring poll.
func (r *PollResponse) NeedsExcuse(poll *Poll) bool {
	return poll != nil && poll.RequiresReason &&
		r.Verdict == VerdictNo && (r.Note == nil || *r.Note == "")
}
