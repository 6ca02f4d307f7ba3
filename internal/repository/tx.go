package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"launchhub/pkg/outbox"
)

// inTx runs fn in a transaction and writes events to the outbox before
// committing.
func inTx(ctx context.Context, db *pgxpool.Pool, ob *outbox.Repository, events []*outbox.Event, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	for _, e := range events {
		if err := outbox.InsertEventInTx(ctx, tx, ob, e); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
