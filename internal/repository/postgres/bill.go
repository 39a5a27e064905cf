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
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

func (r *billRepository) CreateBill(ctx context.Context, bill *model.Bill, items []*model.BillLineItem) error {
	now := time.Now()
	bill.CreatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		billQuery := `
			INSERT INTO bills (
				id, billing_name, billing_address, voucher_code, created_at
			) VALUES ($1, $2, $3, $4, $5)
		`
		_, err := tx.ExecContext(ctx, billQuery,
			bill.ID,
			bill.BillingName,
			bill.BillingAddress,
			bill.VoucherCode,
			bill.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create bill: %w", err)
		}

		itemQuery := `
			INSERT INTO bill_line_items (
				id, bill_id, phone, category, service, variant,
				amount_before, amount_after, staff_id, scheduled_at, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		for _, item := range items {
			item.ID = uuid.New()
			item.BillID = bill.ID
			item.CreatedAt = now

			_, err := tx.ExecContext(ctx, itemQuery,
				item.ID,
				item.BillID,
				item.Phone,
				item.Category,
				item.Service,
				item.Variant,
				item.AmountBefore,
				item.AmountAfter,
				item.StaffID,
				item.ScheduledAt,
				item.CreatedAt,
			)
			if err != nil {
				return uniqueViolation(fmt.Errorf("failed to create bill line item: %w", err), apperrors.ReasonAlreadyBilled)
			}
		}
		return nil
	})
}

func (r *billRepository) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	query := `
		SELECT id, billing_name, billing_address, voucher_code, created_at
		FROM bills
		WHERE id = $1
	`
	var bill model.Bill
	err := r.db.GetContext(ctx, &bill, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("bill", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return &bill, nil
}

func (r *billRepository) ListLineItemsForDate(ctx context.Context, date time.Time) ([]*model.BillLineItem, error) {
	query := `
		SELECT id, bill_id, phone, category, service, variant,
			   amount_before, amount_after, staff_id, scheduled_at, created_at
		FROM bill_line_items
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC, bill_id ASC
	`
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var items []*model.BillLineItem
	if err := r.db.SelectContext(ctx, &items, query, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("failed to list bill line items: %w", err)
	}
	return items, nil
}

func (r *billRepository) ExistsForSchedule(ctx context.Context, staffID uuid.UUID, scheduledAt time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bill_line_items
			WHERE staff_id = $1 AND scheduled_at = $2
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, staffID, scheduledAt); err != nil {
		return false, fmt.Errorf("failed to check billed schedule: %w", err)
	}
	return exists, nil
}
