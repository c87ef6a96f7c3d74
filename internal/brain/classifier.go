package brain

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/model"
)

// Classifier turns a conversation context into a classification. It never
// fails: every error path degrades to chat so the user always gets a reply.
type Classifier interface {
	Classify(ctx context.Context, convo ConversationContext) model.Classification
}

type classifyResponse struct {
	Action     string  `json:"action" jsonschema:"required,enum=draft_write,enum=draft_send,enum=content_query,enum=poll_response,enum=capability_query,enum=knowledge_upload,enum=event_update,enum=chat" jsonschema_description:"The intent of the message"`
	Subtype    string  `json:"subtype" jsonschema:"required,enum=announcement,enum=poll,enum=none" jsonschema_description:"For draft_write: whether the draft is an announcement or a poll"`
	Confidence float64 `json:"confidence" jsonschema:"required" jsonschema_description:"Confidence 0.0-1.0"`
	Reasoning  string  `json:"reasoning" jsonschema:"required" jsonschema_description:"One sentence explaining the choice"`
}

var classifySchema = llm.GenerateSchema[classifyResponse]()

// Short imperatives/affirmations that, with a draft in flight, mean "send".
// Resolved locally so a flaky model can never mis-route an explicit send.
var sendPhrases = map[string]bool{
	"send":      true,
	"send it":   true,
	"go":        true,
	"go ahead":  true,
	"do it":     true,
	"ship it":   true,
	"yes":       true,
	"yep":       true,
	"yeah":      true,
	"ok":        true,
	"okay":      true,
	"sure":      true,
	"yes send":  true,
	"send now":  true,
	"fire away": true,
}

type IntentClassifier struct {
	llm       llm.Client
	timeout   time.Duration
	maxTokens int
}

func NewIntentClassifier(client llm.Client, timeout time.Duration, maxTokens int) *IntentClassifier {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &IntentClassifier{llm: client, timeout: timeout, maxTokens: maxTokens}
}

func (c *IntentClassifier) Classify(ctx context.Context, convo ConversationContext) model.Classification {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.classifier",
	})

	// Explicit send of an in-flight draft is resolved without the model.
	// Not while a confirmation is pending: there "yes" answers the
	// question we asked, it does not trigger the send.
	if convo.ActiveDraft != nil && convo.AskerRole == model.RoleAdmin &&
		convo.Pending == nil && isSendPhrase(convo.Message) {
		return model.Classification{
			Action:     model.ActionDraftSend,
			Confidence: 0.95,
			Reasoning:  "short imperative with an active draft",
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := llm.Request{
		SystemPrompt: classifierSystemPrompt,
		UserPrompt:   buildClassifierPrompt(convo),
		SchemaName:   "classify_response",
		Schema:       classifySchema,
		MaxTokens:    c.maxTokens,
		Temperature:  llm.Temp(0),
	}

	var response classifyResponse
	start := time.Now()
	_, err := c.llm.Chat(callCtx, req, &response)
	if err != nil && llm.IsRetryable(callCtx, err) {
		// One retry inside the same deadline covers rate limits and
		// transient transport failures.
		slog.WarnContext(ctx, "classifier call failed, retrying once", "error", err)
		_, err = c.llm.Chat(callCtx, req, &response)
	}
	if err != nil {
		// Timeout, malformed response, transport failure: all degrade
		// to chat so the channel never goes silent.
		slog.WarnContext(ctx, "classifier failed, defaulting to chat",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return model.Classification{Action: model.ActionChat, Confidence: 0, Reasoning: "classifier failure"}
	}

	result := model.Classification{
		Action:     model.ActionType(response.Action),
		Confidence: response.Confidence,
		Reasoning:  response.Reasoning,
	}
	if response.Subtype == string(model.DraftTypeAnnouncement) || response.Subtype == string(model.DraftTypePoll) {
		subtype := response.Subtype
		result.Subtype = &subtype
	}

	if !model.ValidAction(result.Action) {
		slog.WarnContext(ctx, "classifier returned unknown action, defaulting to chat",
			"returned_action", response.Action)
		result = model.Classification{Action: model.ActionChat, Confidence: 0, Reasoning: "unknown action"}
	}

	// Admin-only actions from a non-admin are reclassified rather than
	// rejected with an error the member can't act on.
	if result.Action.AdminOnly() && convo.AskerRole != model.RoleAdmin {
		slog.InfoContext(ctx, "non-admin message downgraded",
			"from_action", string(result.Action))
		result = model.Classification{
			Action:     model.ActionChat,
			Confidence: result.Confidence,
			Reasoning:  "admin-only action requested by non-admin",
		}
	}

	// A "No" owing a reason strongly biases the follow-up toward the poll.
	if convo.PendingExcuse && result.Action == model.ActionChat && result.Confidence < 0.5 {
		result = model.Classification{
			Action:     model.ActionPollResponse,
			Confidence: 0.6,
			Reasoning:  "pending excuse for a reason-requiring poll",
		}
	}

	slog.DebugContext(ctx, "message classified",
		"action", string(result.Action),
		"confidence", result.Confidence,
		"duration_ms", time.Since(start).Milliseconds())

	return result
}

func isSendPhrase(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.Trim(normalized, ".!")
	return sendPhrases[normalized]
}
