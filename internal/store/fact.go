package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saapai/jarvis-sub001/internal/model"
)

type factStore struct {
	q Querier
}

func newFactStore(q Querier) FactStore {
	return &factStore{q: q}
}

func (s *factStore) Create(ctx context.Context, fact *model.Fact) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO facts (id, title, category, subcategory, content, time_ref, date, space_id, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		fact.ID, fact.Title, fact.Category, fact.Subcategory, fact.Content,
		fact.TimeRef, fact.Date, fact.SpaceID, fact.Embedding,
	)
	if err := row.Scan(&fact.CreatedAt, &fact.UpdatedAt); err != nil {
		return fmt.Errorf("inserting fact: %w", err)
	}
	return nil
}

func (s *factStore) Update(ctx context.Context, fact *model.Fact) error {
	row := s.q.QueryRow(ctx, `
		UPDATE facts
		SET title = $2, category = $3, subcategory = $4, content = $5,
		    time_ref = $6, date = $7, embedding = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		fact.ID, fact.Title, fact.Category, fact.Subcategory, fact.Content,
		fact.TimeRef, fact.Date, fact.Embedding,
	)
	if err := row.Scan(&fact.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("updating fact: %w", err)
	}
	return nil
}

func (s *factStore) ListBySpace(ctx context.Context, spaceID *int64) ([]model.Fact, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, title, category, subcategory, content, time_ref, date, space_id, embedding, created_at, updated_at
		FROM facts
		WHERE space_id IS NOT DISTINCT FROM $1
		ORDER BY updated_at DESC`,
		spaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing facts: %w", err)
	}
	defer rows.Close()

	var facts []model.Fact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, *fact)
	}
	return facts, rows.Err()
}

func (s *factStore) FindByTitleLike(ctx context.Context, spaceID *int64, fragment string) (*model.Fact, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, title, category, subcategory, content, time_ref, date, space_id, embedding, created_at, updated_at
		FROM facts
		WHERE space_id IS NOT DISTINCT FROM $1 AND title ILIKE '%' || $2 || '%'
		ORDER BY updated_at DESC
		LIMIT 1`,
		spaceID, fragment,
	)
	fact, err := scanFact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fact, nil
}

func scanFact(row pgx.Row) (*model.Fact, error) {
	var fact model.Fact
	if err := row.Scan(&fact.ID, &fact.Title, &fact.Category, &fact.Subcategory,
		&fact.Content, &fact.TimeRef, &fact.Date, &fact.SpaceID, &fact.Embedding,
		&fact.CreatedAt, &fact.UpdatedAt); err != nil {
		return nil, err
	}
	return &fact, nil
}
