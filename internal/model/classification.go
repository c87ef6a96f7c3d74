package model

// ActionType enumerates the intents the classifier can produce.
type ActionType string

const (
	ActionDraftWrite      ActionType = "draft_write"
	ActionDraftSend       ActionType = "draft_send"
	ActionContentQuery    ActionType = "content_query"
	ActionPollResponse    ActionType = "poll_response"
	ActionCapabilityQuery ActionType = "capability_query"
	ActionKnowledgeUpload ActionType = "knowledge_upload"
	ActionEventUpdate     ActionType = "event_update"
	ActionChat            ActionType = "chat"
)

// ValidAction reports whether the action is one of the known enum values.
// Unknown values coming back from the model default to chat.
func ValidAction(a ActionType) bool {
	switch a {
	case ActionDraftWrite, ActionDraftSend, ActionContentQuery,
		ActionPollResponse, ActionCapabilityQuery, ActionKnowledgeUpload,
		ActionEventUpdate, ActionChat:
		return true
	}
	return false
}

// AdminOnly reports whether the action may only be produced for an admin
// asker. Non-admin messages matching these are reclassified.
func (a ActionType) AdminOnly() bool {
	switch a {
	case ActionDraftWrite, ActionDraftSend, ActionKnowledgeUpload, ActionEventUpdate:
		return true
	}
	return false
}

// Classification is the classifier's structured output. Reasoning is kept
// for observability only and never shown to the user.
type Classification struct {
	Action     ActionType
	Subtype    *string // e.g. "announcement" or "poll" for draft_write
	Confidence float64
	Reasoning  string
}
