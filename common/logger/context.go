package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Business context (sender, space_id, draft_id, ...) is set once at
// the pipeline boundary and flows into every log statement below it.
type LogFields struct {
	Sender    *string // phone-equivalent of the person we are talking to
	SpaceID   *int64  // tenant/space scoping the conversation
	DraftID   *int64  // in-progress draft being edited or sent
	PollID    *int64  // active poll the message relates to
	Action    *string // classified action for this message
	Component string  // component name, e.g. "jarvis.brain.classifier"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.Sender != nil {
		result.Sender = next.Sender
	}
	if next.SpaceID != nil {
		result.SpaceID = next.SpaceID
	}
	if next.DraftID != nil {
		result.DraftID = next.DraftID
	}
	if next.PollID != nil {
		result.PollID = next.PollID
	}
	if next.Action != nil {
		result.Action = next.Action
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{DraftID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging message bodies and prompts.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
