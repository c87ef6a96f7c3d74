package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so the same store code
// runs inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores is the factory handing out typed repositories over one Querier.
type Stores struct {
	q Querier
}

func NewStores(q Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Messages() MessageStore {
	return newMessageStore(s.q)
}

func (s *Stores) Drafts() DraftStore {
	return newDraftStore(s.q)
}

func (s *Stores) Polls() PollStore {
	return newPollStore(s.q)
}

func (s *Stores) PollResponses() PollResponseStore {
	return newPollResponseStore(s.q)
}

func (s *Stores) Members() MemberStore {
	return newMemberStore(s.q)
}

func (s *Stores) Facts() FactStore {
	return newFactStore(s.q)
}
