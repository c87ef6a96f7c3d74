// Package brain holds the conversational planner: the intent classifier,
// the action dispatcher and its handlers, and the personality post-processor.
package brain

import (
	"github.com/saapai/jarvis-sub001/internal/history"
	"github.com/saapai/jarvis-sub001/internal/model"
)

// ConversationContext is everything the classifier sees for one inbound
// message. It is assembled fresh per request and never persisted.
type ConversationContext struct {
	Message       string
	History       []history.WeightedTurn
	ActiveDraft   *model.Draft
	ActivePoll    bool
	PendingExcuse bool
	AskerRole     model.Role
	AskerName     string
	// Pending is short-term memory recovered from the last outbound
	// message's metadata, e.g. "did you mean to update event X?".
	Pending *model.PendingConfirmation
}

// Request is what the dispatcher hands to a handler: the classified message
// plus all loaded state.
type Request struct {
	Sender         string
	SpaceID        *int64
	Member         *model.Member
	Message        string
	Classification model.Classification
	Draft          *model.Draft
	Poll           *model.Poll
	PendingExcuse  bool
	Pending        *model.PendingConfirmation
}

// Response is a handler's raw reply plus the metadata to stash on the
// outbound message log entry.
type Response struct {
	Reply    string
	Metadata *model.MessageMetadata
}
