package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/saapai/jarvis-sub001/internal/model"
)

type draftStore struct {
	q Querier
}

func newDraftStore(q Querier) DraftStore {
	return &draftStore{q: q}
}

func (s *draftStore) GetInProgress(ctx context.Context, owner string, spaceID *int64, maxAge time.Duration) (*model.Draft, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, owner, space_id, type, content, status, payload, created_at, updated_at
		FROM drafts
		WHERE owner = $1
		  AND space_id IS NOT DISTINCT FROM $2
		  AND status IN ('drafting', 'ready')
		  AND updated_at > $3
		ORDER BY updated_at DESC
		LIMIT 1`,
		owner, spaceID, time.Now().Add(-maxAge),
	)
	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return draft, nil
}

func (s *draftStore) Create(ctx context.Context, draft *model.Draft) error {
	payload, err := json.Marshal(draft.Payload)
	if err != nil {
		return fmt.Errorf("marshaling draft payload: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO drafts (id, owner, space_id, type, content, status, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		draft.ID, draft.Owner, draft.SpaceID, string(draft.Type),
		draft.Content, string(draft.Status), payload,
	)
	if err := row.Scan(&draft.CreatedAt, &draft.UpdatedAt); err != nil {
		return fmt.Errorf("inserting draft: %w", err)
	}
	return nil
}

func (s *draftStore) Update(ctx context.Context, draft *model.Draft) error {
	payload, err := json.Marshal(draft.Payload)
	if err != nil {
		return fmt.Errorf("marshaling draft payload: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		UPDATE drafts
		SET type = $2, content = $3, status = $4, payload = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		draft.ID, string(draft.Type), draft.Content, string(draft.Status), payload,
	)
	if err := row.Scan(&draft.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("updating draft: %w", err)
	}
	return nil
}

func (s *draftStore) MarkSent(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE drafts SET status = 'sent', updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("marking draft sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *draftStore) AbandonInProgress(ctx context.Context, owner string, spaceID *int64) error {
	_, err := s.q.Exec(ctx, `
		UPDATE drafts
		SET status = 'sent', updated_at = now()
		WHERE owner = $1
		  AND space_id IS NOT DISTINCT FROM $2
		  AND status IN ('drafting', 'ready')`,
		owner, spaceID,
	)
	if err != nil {
		return fmt.Errorf("abandoning drafts: %w", err)
	}
	return nil
}

func scanDraft(row pgx.Row) (*model.Draft, error) {
	var (
		draft   model.Draft
		dtype   string
		status  string
		payload []byte
	)
	if err := row.Scan(&draft.ID, &draft.Owner, &draft.SpaceID, &dtype,
		&draft.Content, &status, &payload, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
		return nil, err
	}
	draft.Type = model.DraftType(dtype)
	draft.Status = model.DraftStatus(status)

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &draft.Payload); err != nil {
			return nil, fmt.Errorf("unmarshaling draft payload: %w", err)
		}
	}
	return &draft, nil
}
