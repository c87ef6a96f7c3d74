package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saapai/jarvis-sub001/internal/model"
)

type memberStore struct {
	q Querier
}

func newMemberStore(q Querier) MemberStore {
	return &memberStore{q: q}
}

func (s *memberStore) GetByPhone(ctx context.Context, phone string, spaceID *int64) (*model.Member, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, phone, name, role, space_id, opted_in, created_at
		FROM members
		WHERE phone = $1 AND space_id IS NOT DISTINCT FROM $2`,
		phone, spaceID,
	)
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return member, nil
}

func (s *memberStore) Create(ctx context.Context, member *model.Member) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO members (id, phone, name, role, space_id, opted_in)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		member.ID, member.Phone, member.Name, string(member.Role), member.SpaceID, member.OptedIn,
	)
	if err := row.Scan(&member.CreatedAt); err != nil {
		return fmt.Errorf("inserting member: %w", err)
	}
	return nil
}

func (s *memberStore) ListOptedIn(ctx context.Context, spaceID *int64) ([]model.Member, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, phone, name, role, space_id, opted_in, created_at
		FROM members
		WHERE opted_in AND space_id IS NOT DISTINCT FROM $1
		ORDER BY name`,
		spaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (s *memberStore) Count(ctx context.Context, spaceID *int64) (int64, error) {
	var count int64
	row := s.q.QueryRow(ctx, `
		SELECT count(*) FROM members WHERE space_id IS NOT DISTINCT FROM $1`,
		spaceID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return count, nil
}

func scanMember(row pgx.Row) (*model.Member, error) {
	var (
		member model.Member
		role   string
	)
	if err := row.Scan(&member.ID, &member.Phone, &member.Name, &role,
		&member.SpaceID, &member.OptedIn, &member.CreatedAt); err != nil {
		return nil, err
	}
	member.Role = model.Role(role)
	return &member, nil
}
