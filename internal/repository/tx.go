package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// lockWait bounds how long a transaction blocks on a contended account
// row before failing that single operation.
const lockWait = "3s"

// BeginLocking starts the transaction every balance mutation runs in.
// The lock timeout is transaction-local, so a contended FOR UPDATE fails
// this operation without affecting any other.
func BeginLocking(ctx context.Context, pool *pgxpool.Pool) (pgx.Tx, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", lockWait)); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	return tx, nil
}
