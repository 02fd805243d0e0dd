package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Querier is the handle components run their statements against.
// Both *sqlx.DB and *sqlx.Tx satisfy it.
type Querier = sqlx.ExtContext

// WithTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
// Errors are classified before being returned.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if err := fn(tx); err != nil {
		return Classify(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return Classify(tx.Commit())
}

// PtrToNullInt64 maps a nil id to NULL.
func PtrToNullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
