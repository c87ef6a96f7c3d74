package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saapai/jarvis-sub001/internal/model"
)

type pollStore struct {
	q Querier
}

func newPollStore(q Querier) PollStore {
	return &pollStore{q: q}
}

func (s *pollStore) GetByID(ctx context.Context, id int64) (*model.Poll, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, question, creator, requires_reason, active, space_id, created_at
		FROM polls WHERE id = $1`,
		id,
	)
	poll, err := scanPoll(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return poll, nil
}

func (s *pollStore) GetActive(ctx context.Context, spaceID *int64) (*model.Poll, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, question, creator, requires_reason, active, space_id, created_at
		FROM polls
		WHERE active AND space_id IS NOT DISTINCT FROM $1
		ORDER BY created_at DESC
		LIMIT 1`,
		spaceID,
	)
	poll, err := scanPoll(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return poll, nil
}

func (s *pollStore) Create(ctx context.Context, poll *model.Poll) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO polls (id, question, creator, requires_reason, active, space_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		poll.ID, poll.Question, poll.Creator, poll.RequiresReason, poll.Active, poll.SpaceID,
	)
	if err := row.Scan(&poll.CreatedAt); err != nil {
		return fmt.Errorf("inserting poll: %w", err)
	}
	return nil
}

func (s *pollStore) DeactivateActive(ctx context.Context, spaceID *int64) error {
	_, err := s.q.Exec(ctx, `
		UPDATE polls SET active = false
		WHERE active AND space_id IS NOT DISTINCT FROM $1`,
		spaceID,
	)
	if err != nil {
		return fmt.Errorf("deactivating polls: %w", err)
	}
	return nil
}

func scanPoll(row pgx.Row) (*model.Poll, error) {
	var poll model.Poll
	if err := row.Scan(&poll.ID, &poll.Question, &poll.Creator,
		&poll.RequiresReason, &poll.Active, &poll.SpaceID, &poll.CreatedAt); err != nil {
		return nil, err
	}
	return &poll, nil
}
