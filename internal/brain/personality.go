package brain

import (
	"context"
	"log/slog"
	"time"

	"github.com/saapai/jarvis-sub001/common/llm"
	"github.com/saapai/jarvis-sub001/common/logger"
)

// Personality rewrites a handler's functional reply into the assistant's
// voice. Strictly best-effort: any failure returns the raw reply unchanged,
// so a down personality model never blocks the pipeline.
type Personality struct {
	llm     llm.Client
	timeout time.Duration
}

func NewPersonality(client llm.Client, timeout time.Duration) *Personality {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Personality{llm: client, timeout: timeout}
}

func (p *Personality) Rewrite(ctx context.Context, raw string) string {
	if p.llm == nil || raw == "" {
		return raw
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.brain.personality",
	})
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rewritten, err := p.llm.Complete(callCtx, personalitySystemPrompt, raw)
	if err != nil || rewritten == "" {
		slog.DebugContext(ctx, "personality rewrite skipped", "error", err)
		return raw
	}
	return rewritten
}
