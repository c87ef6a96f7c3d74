package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/saapai/jarvis-sub001/core/db"
	"github.com/saapai/jarvis-sub001/internal/brain"
	"github.com/saapai/jarvis-sub001/internal/store"
)

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a brain.TxRunner backed by the core DB. Stores handed
// to the callback are bound to the transaction, so a draft finalize and its
// poll activation commit together or not at all.
func NewTxRunner(database *db.DB) brain.TxRunner {
	return &dbTxRunner{db: database}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores brain.TxStores) error) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(store.NewStores(tx))
	})
}
