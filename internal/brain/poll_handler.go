package brain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saapai/jarvis-sub001/common/id"
	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/model"
	"github.com/saapai/jarvis-sub001/internal/pollparse"
	"github.com/saapai/jarvis-sub001/internal/store"
)

var pollVerdictSchema = llm.GenerateSchema[pollVerdictResponse]()

// PollHandler records answers to the active poll. The deterministic parser
// runs first; the model only sees messages the parser could not read.
type PollHandler struct {
	responses store.PollResponseStore
	llm       llm.Client
}

func NewPollHandler(responses store.PollResponseStore, client llm.Client) *PollHandler {
	return &PollHandler{responses: responses, llm: client}
}

func (h *PollHandler) Handle(ctx context.Context, req Request) (Response, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.poll",
	})

	if req.Poll == nil {
		return Response{Reply: "There's no poll running right now."}, nil
	}

	// Pending excuse: the whole message is the owed reason for the
	// recipient's earlier "No", not a fresh verdict.
	if req.PendingExcuse {
		if resp, err := h.attachExcuse(ctx, req); err != nil {
			return Response{}, err
		} else if resp != nil {
			return *resp, nil
		}
	}

	parsed := pollparse.Parse(req.Message)
	if parsed.Verdict == model.VerdictUnknown {
		parsed = h.classifyVerdict(ctx, req, parsed)
	}
	if parsed.Verdict == model.VerdictUnknown {
		return Response{Reply: fmt.Sprintf(
			"Sorry, I couldn't tell from that. For \"%s\", is that a yes, no, or maybe?",
			req.Poll.Question)}, nil
	}

	resp := &model.PollResponse{
		ID:        id.New(),
		PollID:    req.Poll.ID,
		Recipient: req.Sender,
		Verdict:   parsed.Verdict,
		Note:      parsed.Note,
	}
	if err := h.responses.Upsert(ctx, resp); err != nil {
		return Response{}, fmt.Errorf("recording poll response: %w", err)
	}

	slog.InfoContext(ctx, "poll response recorded",
		"poll_id", req.Poll.ID,
		"verdict", string(parsed.Verdict),
		"has_note", parsed.Note != nil)

	reply := verdictReply(parsed.Verdict)
	if resp.NeedsExcuse(req.Poll) {
		reply = "Got it, you're out. Mind sharing why? The organizer asked for a quick reason."
	}

	return Response{
		Reply: reply,
		Metadata: &model.MessageMetadata{
			Action: model.ActionPollResponse,
			Poll: &model.PollResponseMeta{
				PollID:  req.Poll.ID,
				Verdict: string(parsed.Verdict),
			},
		},
	}, nil
}

// attachExcuse stores the message as the note on the recipient's existing
// "No". Returns nil when there is no prior "No" to attach to, in which case
// the message falls through to normal verdict parsing.
func (h *PollHandler) attachExcuse(ctx context.Context, req Request) (*Response, error) {
	prior, err := h.responses.GetByPollAndRecipient(ctx, req.Poll.ID, req.Sender)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("loading prior poll response: %w", err)
	}
	if !prior.NeedsExcuse(req.Poll) {
		return nil, nil
	}

	// A message that itself parses to a verdict is a changed answer,
	// not an excuse.
	if parsed := pollparse.Parse(req.Message); parsed.Verdict != model.VerdictUnknown {
		return nil, nil
	}

	note := req.Message
	prior.Note = &note
	if err := h.responses.Upsert(ctx, prior); err != nil {
		return nil, fmt.Errorf("attaching excuse: %w", err)
	}

	slog.InfoContext(ctx, "excuse attached", "poll_id", req.Poll.ID)

	return &Response{
		Reply: "Thanks, I passed that along.",
		Metadata: &model.MessageMetadata{
			Action: model.ActionPollResponse,
			Poll: &model.PollResponseMeta{
				PollID:  req.Poll.ID,
				Verdict: string(prior.Verdict),
			},
		},
	}, nil
}

// classifyVerdict is the model fallback for replies the pattern parser
// could not read. Failure keeps the verdict unknown; the caller asks the
// recipient to rephrase.
func (h *PollHandler) classifyVerdict(ctx context.Context, req Request, parsed pollparse.Result) pollparse.Result {
	var response pollVerdictResponse
	_, err := h.llm.Chat(ctx, llm.Request{
		SystemPrompt: pollVerdictSystemPrompt,
		UserPrompt:   fmt.Sprintf("Question: %s\nReply: %s", req.Poll.Question, req.Message),
		SchemaName:   "poll_verdict_response",
		Schema:       pollVerdictSchema,
		Temperature:  llm.Temp(0),
	}, &response)
	if err != nil {
		slog.WarnContext(ctx, "poll verdict fallback failed", "error", err)
		return parsed
	}

	verdict := model.Verdict(response.Verdict)
	switch verdict {
	case model.VerdictYes, model.VerdictNo, model.VerdictMaybe:
		result := pollparse.Result{Verdict: verdict}
		if response.Note != "" {
			note := response.Note
			result.Note = &note
		}
		return result
	}
	return parsed
}

func verdictReply(verdict model.Verdict) string {
	switch verdict {
	case model.VerdictYes:
		return "You're in, see you there!"
	case model.VerdictNo:
		return "Got it, you're out. Thanks for letting me know."
	default:
		return "Noted as a maybe. Tell me when you know for sure."
	}
}
