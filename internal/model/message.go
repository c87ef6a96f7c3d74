package model

import "time"

// Direction of a message relative to the service.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Message is one line of the conversation. Rows are append-only: they are
// never mutated or deleted except by bulk retention cleanup.
type Message struct {
	ID        int64
	Sender    string // phone-equivalent identifier
	Direction Direction
	Body      string
	Metadata  *MessageMetadata
	SpaceID   *int64
	CreatedAt time.Time
}

// MessageMetadata is a tagged union keyed by Action. Exactly one payload
// field is populated, matching the action. Consumers switch on Action
// instead of probing optional fields.
type MessageMetadata struct {
	Action     ActionType           `json:"action"`
	Confidence *float64             `json:"confidence,omitempty"`
	DraftWrite *DraftWriteMeta      `json:"draft_write,omitempty"`
	DraftSend  *DraftSendMeta       `json:"draft_send,omitempty"`
	Poll       *PollResponseMeta    `json:"poll_response,omitempty"`
	Event      *EventUpdateMeta     `json:"event_update,omitempty"`
	Broadcast  *BroadcastMeta       `json:"broadcast,omitempty"`
	Pending    *PendingConfirmation `json:"pending,omitempty"`
}

// DraftWriteMeta links a logged message to the draft it created or edited.
type DraftWriteMeta struct {
	DraftID int64  `json:"draft_id"`
	Status  string `json:"status"`
}

// DraftSendMeta records the outcome of the broadcast triggered by a send.
type DraftSendMeta struct {
	DraftID int64  `json:"draft_id"`
	PollID  *int64 `json:"poll_id,omitempty"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

// PollResponseMeta links a logged message to the poll it answered.
type PollResponseMeta struct {
	PollID  int64  `json:"poll_id"`
	Verdict string `json:"verdict"`
}

// EventUpdateMeta names the announcement the admin updated.
type EventUpdateMeta struct {
	FactID int64  `json:"fact_id"`
	Title  string `json:"title"`
}

// BroadcastMeta is attached to every fanned-out outbound message so the
// shared content can be found (and deleted by content match) later.
type BroadcastMeta struct {
	DraftID int64  `json:"draft_id"`
	Content string `json:"content"`
}

// PendingConfirmation is short-term memory stashed on the last outbound
// message, e.g. "did you mean to update event X?". The next inbound message
// from the same sender sees it.
type PendingConfirmation struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

const (
	PendingKindSecondAnnouncement = "second_announcement"
	PendingKindEventUpdate        = "event_update"
)
