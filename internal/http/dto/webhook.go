package dto

// InboundMessageRequest is the provider's webhook payload for one received
// text message.
type InboundMessageRequest struct {
	From    string `json:"from" binding:"required"`
	Body    string `json:"body" binding:"required"`
	SpaceID *int64 `json:"space_id,omitempty"`
}

// InboundMessageResponse carries the reply text back to the provider, which
// delivers it to the sender.
type InboundMessageResponse struct {
	Reply string `json:"reply"`
}

// StatusResponse is the diagnostic snapshot served to operators.
type StatusResponse struct {
	Status       string      `json:"status"`
	MemberCount  int64       `json:"member_count"`
	ActivePoll   *PollStatus `json:"active_poll,omitempty"`
}

type PollStatus struct {
	Question  string `json:"question"`
	CreatedAt string `json:"created_at"`
}

// DeleteBroadcastRequest identifies a sent broadcast by its content within
// a space. Matches the metadata stamped on every fanned-out copy.
type DeleteBroadcastRequest struct {
	Content string `json:"content" binding:"required"`
	SpaceID *int64 `json:"space_id,omitempty"`
}

type DeleteBroadcastResponse struct {
	Deleted int64 `json:"deleted"`
}

// PollResultsResponse is the per-poll tally served to the organizer.
type PollResultsResponse struct {
	Question  string            `json:"question"`
	Active    bool              `json:"active"`
	Yes       int               `json:"yes"`
	No        int               `json:"no"`
	Maybe     int               `json:"maybe"`
	Responses []PollResultEntry `json:"responses"`
}

type PollResultEntry struct {
	Recipient string  `json:"recipient"`
	Verdict   string  `json:"verdict"`
	Note      *string `json:"note,omitempty"`
}
