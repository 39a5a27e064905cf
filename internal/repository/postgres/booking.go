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

const bookingItemColumns = `
	id, booking_id, variant_id, staff_id, booking_date, start_minutes,
	duration_minutes, price, status, category_name, service_name, variant_name,
	created_at, updated_at
`

func (r *bookingRepository) CreateWithItems(ctx context.Context, booking *model.Booking, items []*model.BookingItem) error {
	now := time.Now()
	booking.ID = uuid.New()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		bookingQuery := `
			INSERT INTO bookings (
				id, customer_name, phone, gender, age, booking_date,
				staff_id, start_minutes, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err := tx.ExecContext(ctx, bookingQuery,
			booking.ID,
			booking.CustomerName,
			booking.Phone,
			booking.Gender,
			booking.Age,
			booking.BookingDate,
			booking.StaffID,
			booking.StartMinutes,
			booking.Status,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		itemQuery := `
			INSERT INTO booking_items (
				id, booking_id, variant_id, staff_id, booking_date, start_minutes,
				duration_minutes, price, status, category_name, service_name,
				variant_name, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		for _, item := range items {
			item.ID = uuid.New()
			item.BookingID = booking.ID
			item.CreatedAt = now
			item.UpdatedAt = now

			_, err := tx.ExecContext(ctx, itemQuery,
				item.ID,
				item.BookingID,
				item.VariantID,
				item.StaffID,
				item.BookingDate,
				item.StartMinutes,
				item.DurationMinutes,
				item.Price,
				item.Status,
				item.CategoryName,
				item.ServiceName,
				item.VariantName,
				item.CreatedAt,
				item.UpdatedAt,
			)
			if err != nil {
				return uniqueViolation(fmt.Errorf("failed to create booking item: %w", err), apperrors.ReasonSlotTaken)
			}
		}
		return nil
	})
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT id, customer_name, phone, gender, age, booking_date,
			   staff_id, start_minutes, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("booking", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.Items = items
	return booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("booking", nil)
	}
	return nil
}

func (r *bookingRepository) UpdateCustomer(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET customer_name = $1, phone = $2, gender = $3, age = $4, updated_at = $5
		WHERE id = $6
	`
	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.CustomerName,
		booking.Phone,
		booking.Gender,
		booking.Age,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("booking", nil)
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Items go with the parent via ON DELETE CASCADE.
	query := `
		DELETE FROM bookings
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("booking", nil)
	}
	return nil
}

func (r *bookingRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*model.BookingItem, error) {
	query := `SELECT ` + bookingItemColumns + ` FROM booking_items WHERE id = $1`

	var item model.BookingItem
	err := r.db.GetContext(ctx, &item, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("booking item", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking item: %w", err)
	}
	return &item, nil
}

func (r *bookingRepository) ListItems(ctx context.Context, bookingID uuid.UUID) ([]*model.BookingItem, error) {
	query := `
		SELECT ` + bookingItemColumns + `
		FROM booking_items
		WHERE booking_id = $1
		ORDER BY start_minutes ASC
	`
	var items []*model.BookingItem
	if err := r.db.SelectContext(ctx, &items, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list booking items: %w", err)
	}
	return items, nil
}

func (r *bookingRepository) ListItemsForStaffDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.BookingItem, error) {
	query := `
		SELECT ` + bookingItemColumns + `
		FROM booking_items
		WHERE staff_id = $1
		  AND booking_date = $2
		  AND status != 'cancelled'
		ORDER BY start_minutes ASC
	`
	var items []*model.BookingItem
	if err := r.db.SelectContext(ctx, &items, query, staffID, date); err != nil {
		return nil, fmt.Errorf("failed to list staff booking items: %w", err)
	}
	return items, nil
}

func (r *bookingRepository) ListItemsForDate(ctx context.Context, date time.Time) ([]*model.BookingItem, error) {
	query := `
		SELECT ` + bookingItemColumns + `
		FROM booking_items
		WHERE booking_date = $1
		  AND status != 'cancelled'
		ORDER BY start_minutes ASC
	`
	var items []*model.BookingItem
	if err := r.db.SelectContext(ctx, &items, query, date); err != nil {
		return nil, fmt.Errorf("failed to list booking items for date: %w", err)
	}
	return items, nil
}

func (r *bookingRepository) UpdateItem(ctx context.Context, item *model.BookingItem) error {
	item.UpdatedAt = time.Now()

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE booking_items
			SET staff_id = $1, start_minutes = $2, duration_minutes = $3, updated_at = $4
			WHERE id = $5
		`
		result, err := tx.ExecContext(ctx, query,
			item.StaffID,
			item.StartMinutes,
			item.DurationMinutes,
			item.UpdatedAt,
			item.ID,
		)
		if err != nil {
			return uniqueViolation(fmt.Errorf("failed to update booking item: %w", err), apperrors.ReasonSlotTaken)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NewNotFound("booking item", nil)
		}

		return refreshBookingHead(ctx, tx, item.BookingID)
	})
}

func (r *bookingRepository) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status model.ItemStatus) error {
	query := `
		UPDATE booking_items
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("failed to update booking item status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("booking item", nil)
	}
	return nil
}

func (r *bookingRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var bookingID uuid.UUID
		err := tx.GetContext(ctx, &bookingID, `SELECT booking_id FROM booking_items WHERE id = $1`, itemID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound("booking item", err)
		}
		if err != nil {
			return fmt.Errorf("failed to get booking item: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM booking_items WHERE id = $1`, itemID); err != nil {
			return fmt.Errorf("failed to delete booking item: %w", err)
		}

		return refreshBookingHead(ctx, tx, bookingID)
	})
}

// refreshBookingHead re-derives the booking's denormalized staff/start
// columns from its remaining first item, deleting the booking outright when
// no items are left.
func refreshBookingHead(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID) error {
	var head struct {
		StaffID      uuid.UUID `db:"staff_id"`
		StartMinutes int       `db:"start_minutes"`
	}
	err := tx.GetContext(ctx, &head, `
		SELECT staff_id, start_minutes
		FROM booking_items
		WHERE booking_id = $1
		ORDER BY start_minutes ASC
		LIMIT 1
	`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, bookingID); err != nil {
			return fmt.Errorf("failed to delete empty booking: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get first booking item: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET staff_id = $1, start_minutes = $2, updated_at = $3
		WHERE id = $4
	`, head.StaffID, head.StartMinutes, time.Now(), bookingID)
	if err != nil {
		return fmt.Errorf("failed to refresh booking head: %w", err)
	}
	return nil
}
