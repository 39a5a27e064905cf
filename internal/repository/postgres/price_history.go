package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonhq/salon-api/internal/model"
)

func (r *priceHistoryRepository) EffectiveEntry(ctx context.Context, variantID uuid.UUID, asOf time.Time) (*model.PriceHistoryEntry, error) {
	// Start is inclusive, end exclusive; the ledger invariant guarantees at
	// most one row matches.
	query := `
		SELECT id, variant_id, actual_price, offer_price, start_at, end_at, created_at
		FROM price_history
		WHERE variant_id = $1
		  AND start_at <= $2
		  AND (end_at IS NULL OR $2 < end_at)
	`
	var entry model.PriceHistoryEntry
	err := r.db.GetContext(ctx, &entry, query, variantID, asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get effective price entry: %w", err)
	}
	return &entry, nil
}

func (r *priceHistoryRepository) LatestEntry(ctx context.Context, variantID uuid.UUID) (*model.PriceHistoryEntry, error) {
	query := `
		SELECT id, variant_id, actual_price, offer_price, start_at, end_at, created_at
		FROM price_history
		WHERE variant_id = $1
		ORDER BY start_at DESC
		LIMIT 1
	`
	var entry model.PriceHistoryEntry
	err := r.db.GetContext(ctx, &entry, query, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price entry: %w", err)
	}
	return &entry, nil
}

func (r *priceHistoryRepository) ListEntries(ctx context.Context, variantID uuid.UUID) ([]*model.PriceHistoryEntry, error) {
	query := `
		SELECT id, variant_id, actual_price, offer_price, start_at, end_at, created_at
		FROM price_history
		WHERE variant_id = $1
		ORDER BY start_at ASC
	`
	var entries []*model.PriceHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, variantID); err != nil {
		return nil, fmt.Errorf("failed to list price entries: %w", err)
	}
	return entries, nil
}

func (r *priceHistoryRepository) Append(ctx context.Context, entry *model.PriceHistoryEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Closing the open entry and inserting the new one must commit
		// together, or two entries could cover the same instant.
		closeQuery := `
			UPDATE price_history
			SET end_at = $1
			WHERE variant_id = $2 AND end_at IS NULL
		`
		if _, err := tx.ExecContext(ctx, closeQuery, entry.StartAt, entry.VariantID); err != nil {
			return fmt.Errorf("failed to close open price entry: %w", err)
		}

		insertQuery := `
			INSERT INTO price_history (
				id, variant_id, actual_price, offer_price, start_at, end_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, insertQuery,
			entry.ID,
			entry.VariantID,
			entry.ActualPrice,
			entry.OfferPrice,
			entry.StartAt,
			entry.EndAt,
			entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append price entry: %w", err)
		}
		return nil
	})
}
