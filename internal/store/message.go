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

type messageStore struct {
	q Querier
}

func newMessageStore(q Querier) MessageStore {
	return &messageStore{q: q}
}

func (s *messageStore) Create(ctx context.Context, msg *model.Message) error {
	meta, err := marshalMetadata(msg.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling message metadata: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO messages (id, sender, direction, body, metadata, space_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		msg.ID, msg.Sender, string(msg.Direction), msg.Body, meta, msg.SpaceID,
	)
	if err := row.Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *messageStore) ListRecentBySender(ctx context.Context, sender string, spaceID *int64, limit int32) ([]model.Message, error) {
	// Grab the newest N, then flip to oldest-first for the history builder.
	rows, err := s.q.Query(ctx, `
		SELECT id, sender, direction, body, metadata, space_id, created_at
		FROM (
			SELECT id, sender, direction, body, metadata, space_id, created_at
			FROM messages
			WHERE sender = $1 AND space_id IS NOT DISTINCT FROM $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC`,
		sender, spaceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

func (s *messageStore) LastOutbound(ctx context.Context, sender string, spaceID *int64) (*model.Message, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, sender, direction, body, metadata, space_id, created_at
		FROM messages
		WHERE sender = $1 AND space_id IS NOT DISTINCT FROM $2 AND direction = 'outbound'
		ORDER BY created_at DESC
		LIMIT 1`,
		sender, spaceID,
	)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (s *messageStore) DeleteBroadcast(ctx context.Context, spaceID *int64, content string) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		DELETE FROM messages
		WHERE space_id IS NOT DISTINCT FROM $1
		  AND direction = 'outbound'
		  AND metadata -> 'broadcast' ->> 'content' = $2`,
		spaceID, content,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting broadcast messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *messageStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM messages WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention cleanup: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanMessage(row pgx.Row) (*model.Message, error) {
	var (
		msg       model.Message
		direction string
		meta      []byte
	)
	if err := row.Scan(&msg.ID, &msg.Sender, &direction, &msg.Body, &meta, &msg.SpaceID, &msg.CreatedAt); err != nil {
		return nil, err
	}
	msg.Direction = model.Direction(direction)

	if len(meta) > 0 {
		var parsed model.MessageMetadata
		if err := json.Unmarshal(meta, &parsed); err != nil {
			return nil, fmt.Errorf("unmarshaling message metadata: %w", err)
		}
		msg.Metadata = &parsed
	}
	return &msg, nil
}

func marshalMetadata(meta *model.MessageMetadata) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	return json.Marshal(meta)
}
