package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saapai/jarvis-sub001/internal/model"
)

type pollResponseStore struct {
	q Querier
}

func newPollResponseStore(q Querier) PollResponseStore {
	return &pollResponseStore{q: q}
}

func (s *pollResponseStore) Upsert(ctx context.Context, resp *model.PollResponse) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO poll_responses (id, poll_id, recipient, verdict, note)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (poll_id, recipient)
		DO UPDATE SET verdict = EXCLUDED.verdict, note = EXCLUDED.note, updated_at = now()
		RETURNING id, created_at, updated_at`,
		resp.ID, resp.PollID, resp.Recipient, string(resp.Verdict), resp.Note,
	)
	if err := row.Scan(&resp.ID, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
		return fmt.Errorf("upserting poll response: %w", err)
	}
	return nil
}

func (s *pollResponseStore) GetByPollAndRecipient(ctx context.Context, pollID int64, recipient string) (*model.PollResponse, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, poll_id, recipient, verdict, note, created_at, updated_at
		FROM poll_responses
		WHERE poll_id = $1 AND recipient = $2`,
		pollID, recipient,
	)
	resp, err := scanPollResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resp, nil
}

func (s *pollResponseStore) ListByPoll(ctx context.Context, pollID int64) ([]model.PollResponse, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, poll_id, recipient, verdict, note, created_at, updated_at
		FROM poll_responses
		WHERE poll_id = $1
		ORDER BY updated_at DESC`,
		pollID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing poll responses: %w", err)
	}
	defer rows.Close()

	var resps []model.PollResponse
	for rows.Next() {
		resp, err := scanPollResponse(rows)
		if err != nil {
			return nil, err
		}
		resps = append(resps, *resp)
	}
	return resps, rows.Err()
}

func scanPollResponse(row pgx.Row) (*model.PollResponse, error) {
	var (
		resp    model.PollResponse
		verdict string
	)
	if err := row.Scan(&resp.ID, &resp.PollID, &resp.Recipient, &verdict,
		&resp.Note, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
		return nil, err
	}
	resp.Verdict = model.Verdict(verdict)
	return &resp, nil
}
