package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/saapai/jarvis-sub001/common/logger"
	"github.com/saapai/jarvis-sub001/internal/store"
)

// RetentionJob bulk-deletes message log rows past their retention age.
// The log is append-only everywhere else; this is the one deletion path
// besides admin-side broadcast removal.
type RetentionJob struct {
	messages store.MessageStore
	maxAge   time.Duration
	interval time.Duration
}

func NewRetentionJob(messages store.MessageStore, maxAge, interval time.Duration) *RetentionJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionJob{messages: messages, maxAge: maxAge, interval: interval}
}

// Start runs the cleanup loop until the context is cancelled. A zero maxAge
// disables retention entirely.
func (j *RetentionJob) Start(ctx context.Context) {
	if j.maxAge <= 0 {
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "jarvis.service.retention",
	})

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *RetentionJob) runOnce(ctx context.Context) {
	cutoff := time.Now().Add(-j.maxAge)
	deleted, err := j.messages.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "retention cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.InfoContext(ctx, "retention cleanup done", "deleted", deleted)
	}
}
