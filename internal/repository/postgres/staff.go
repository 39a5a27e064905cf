package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, name, phone, email, password_hash, role, status, created_at, updated_at
		FROM staff
		WHERE id = $1
	`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	query := `
		SELECT id, name, phone, email, password_hash, role, status, created_at, updated_at
		FROM staff
		WHERE email = $1
	`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by email: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) ListActive(ctx context.Context) ([]*model.Staff, error) {
	query := `
		SELECT id, name, phone, email, password_hash, role, status, created_at, updated_at
		FROM staff
		WHERE status = 'active'
		ORDER BY name ASC
	`
	var staff []*model.Staff
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}
