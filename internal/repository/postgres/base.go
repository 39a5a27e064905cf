package postgres

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

const pgUniqueViolation = "23505"

// withTx executes fn within a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// uniqueViolation maps a postgres unique-index violation to the given
// conflict reason; other errors pass through untouched. The partial unique
// indexes on booking item slots and bill line schedules are what close the
// double-booking and double-billing races, so the second concurrent writer
// lands here.
func uniqueViolation(err error, reason string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return apperrors.NewConflict(reason, err)
	}
	return err
}
