package brain

import (
	"fmt"
	"strings"

	"github.com/saapai/jarvis-sub001/internal/model"
)

// Prompt texts live here as data, separate from the call sites, so they can
// be tuned without touching pipeline logic.

const classifierSystemPrompt = `You are the intent classifier for Jarvis, a text-message assistant that lets admins broadcast announcements and polls and lets members reply conversationally.

Classify the CURRENT MESSAGE into exactly one action:
- draft_write: an admin is composing or editing an announcement or poll to broadcast (subtype announcement or poll)
- draft_send: an admin wants the in-progress draft sent now
- content_query: the sender asks about stored content (events, announcements, details)
- poll_response: the sender is answering the active poll
- capability_query: the sender asks what you can do
- knowledge_upload: an admin is telling you a fact to remember
- event_update: an admin is changing details of an already-announced event
- chat: anything else

Rules:
- Weight recent history more heavily; each turn carries an explicit weight.
- If an ACTIVE DRAFT exists and the message is a short confirmation or send instruction, classify draft_send with confidence at least 0.9.
- If PENDING EXCUSE is set, the sender owes a reason for a "No" poll answer; strongly prefer poll_response.
- draft_write, draft_send, knowledge_upload and event_update are only valid for admins. For non-admins pick content_query or chat instead.
- Set subtype to none unless the action is draft_write.`

func buildClassifierPrompt(convo ConversationContext) string {
	var b strings.Builder

	b.WriteString("CONVERSATION HISTORY (oldest first, weight = influence):\n")
	if len(convo.History) == 0 {
		b.WriteString("(none)\n")
	}
	for _, turn := range convo.History {
		fmt.Fprintf(&b, "[w=%.1f] %s: %s\n", turn.Weight, turn.Role, turn.Content)
	}

	b.WriteString("\nSENDER: ")
	b.WriteString(convo.AskerName)
	if convo.AskerRole == model.RoleAdmin {
		b.WriteString(" (admin)")
	} else {
		b.WriteString(" (member)")
	}
	b.WriteString("\n")

	if convo.ActiveDraft != nil {
		fmt.Fprintf(&b, "ACTIVE DRAFT: %s in status %s: %q\n",
			convo.ActiveDraft.Type, convo.ActiveDraft.Status, convo.ActiveDraft.Content)
	} else {
		b.WriteString("ACTIVE DRAFT: none\n")
	}

	if convo.ActivePoll {
		b.WriteString("ACTIVE POLL: yes\n")
	} else {
		b.WriteString("ACTIVE POLL: no\n")
	}

	if convo.PendingExcuse {
		b.WriteString("PENDING EXCUSE: yes, the sender owes a reason for answering No\n")
	}

	if convo.Pending != nil {
		fmt.Fprintf(&b, "PENDING CONFIRMATION: %s (%s)\n", convo.Pending.Kind, convo.Pending.Detail)
	}

	b.WriteString("\nCURRENT MESSAGE: ")
	b.WriteString(convo.Message)
	return b.String()
}

const draftWriteSystemPrompt = `You help an admin compose a text-message broadcast (an announcement or a poll question).

Given the prior draft content (possibly empty) and the admin's new instruction, produce the updated broadcast text. Re-derive the whole text; do not append mechanically. Detect:
- whether the draft reads complete and ready to send
- whether it is an announcement or a poll
- for polls, whether "No" answers should require a reason
- any links contained in the text
- whether the instruction actually starts a second, unrelated announcement rather than editing this one`

type draftWriteResponse struct {
	Content          string   `json:"content" jsonschema:"required" jsonschema_description:"The full updated broadcast text"`
	Complete         bool     `json:"complete" jsonschema:"required" jsonschema_description:"Whether the text is ready to send as-is"`
	Type             string   `json:"type" jsonschema:"required,enum=announcement,enum=poll" jsonschema_description:"Kind of broadcast"`
	RequiresReason   bool     `json:"requires_reason" jsonschema:"required" jsonschema_description:"For polls: whether a No answer must carry a reason"`
	Links            []string `json:"links" jsonschema:"required" jsonschema_description:"Links found in the text, empty if none"`
	LooksLikeNewOne  bool     `json:"looks_like_new_one" jsonschema:"required" jsonschema_description:"True when the instruction starts an unrelated second announcement"`
}

func buildDraftWritePrompt(prior string, instruction string) string {
	var b strings.Builder
	if prior == "" {
		b.WriteString("PRIOR DRAFT: (none)\n")
	} else {
		fmt.Fprintf(&b, "PRIOR DRAFT: %q\n", prior)
	}
	fmt.Fprintf(&b, "ADMIN INSTRUCTION: %s", instruction)
	return b.String()
}

const pollVerdictSystemPrompt = `Interpret a reply to the poll question below as yes, no, or maybe, with any explanation kept as the note. Answer unknown only if the reply has nothing to do with attendance or the question.`

type pollVerdictResponse struct {
	Verdict string `json:"verdict" jsonschema:"required,enum=yes,enum=no,enum=maybe,enum=unknown"`
	Note    string `json:"note" jsonschema:"required" jsonschema_description:"Free-text explanation, empty if none"`
}

const chatSystemPrompt = `You are Jarvis, a friendly text-message assistant for a club. Reply to the member in one or two short sentences, conversational, no markdown. If they seem to want something you cannot do, say what you can do: answer questions about announcements and events, and take poll answers.`

const factExtractSystemPrompt = `Extract the fact an admin wants remembered from their message. Produce a short title, a category (event, logistics, contact, other), a subcategory keyword, the fact content, and any time reference mentioned (empty if none).`

type factExtractResponse struct {
	Title       string `json:"title" jsonschema:"required"`
	Category    string `json:"category" jsonschema:"required,enum=event,enum=logistics,enum=contact,enum=other"`
	Subcategory string `json:"subcategory" jsonschema:"required"`
	Content     string `json:"content" jsonschema:"required"`
	TimeRef     string `json:"time_ref" jsonschema:"required" jsonschema_description:"Time reference like 'friday 7pm', empty if none"`
}

const personalitySystemPrompt = `Rewrite the assistant reply below in Jarvis's voice: warm, brief, texting register, no emoji spam, no markdown. Keep every fact, number, name, date and link exactly as given. Return only the rewritten reply.`
