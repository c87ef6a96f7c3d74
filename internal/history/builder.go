// Package history turns the recent message log into the decayed-weight
// conversational context the classifier prompt is built from.
package history

import (
	"time"

	"github.com/saapai/jarvis-sub001/internal/model"
)

const (
	// weightStep is how much influence each older message loses.
	weightStep = 0.2
)

// Role of a turn as presented to the classifier.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WeightedTurn is a derived view of one message. It lives for exactly one
// classification call and is never persisted.
type WeightedTurn struct {
	Role      Role
	Content   string
	Timestamp time.Time
	Weight    float64 // in (0,1]; 1.0 for the newest message
}

// Build assigns rank-based weights to an oldest-first message window: the
// newest message gets 1.0 and every older message loses weightStep, floored
// at weightStep. Output has exactly one turn per input message, same order.
func Build(messages []model.Message) []WeightedTurn {
	turns := make([]WeightedTurn, len(messages))
	n := len(messages)
	for i, msg := range messages {
		weight := 1.0 - weightStep*float64(n-1-i)
		if weight < weightStep {
			weight = weightStep
		}

		role := RoleUser
		if msg.Direction == model.DirectionOutbound {
			role = RoleAssistant
		}

		turns[i] = WeightedTurn{
			Role:      role,
			Content:   msg.Body,
			Timestamp: msg.CreatedAt,
			Weight:    weight,
		}
	}
	return turns
}
