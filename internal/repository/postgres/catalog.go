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

func (r *catalogRepository) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	var category model.Category
	err := r.db.GetContext(ctx, &category, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("category", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]*model.Category, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM categories
		WHERE status = 'active'
		ORDER BY name ASC
	`
	var categories []*model.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepository) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, category_id, name, description, status, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var service model.Service
	err := r.db.GetContext(ctx, &service, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("service", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *catalogRepository) ListServices(ctx context.Context, categoryID uuid.UUID) ([]*model.Service, error) {
	query := `
		SELECT id, category_id, name, description, status, created_at, updated_at
		FROM services
		WHERE category_id = $1 AND status = 'active'
		ORDER BY name ASC
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, categoryID); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *catalogRepository) GetVariant(ctx context.Context, id uuid.UUID) (*model.ServiceVariant, error) {
	query := `
		SELECT id, service_id, name, duration_minutes, base_price, base_offer_price,
			   created_at, updated_at
		FROM service_variants
		WHERE id = $1
	`
	var variant model.ServiceVariant
	err := r.db.GetContext(ctx, &variant, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("service variant", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service variant: %w", err)
	}
	return &variant, nil
}

func (r *catalogRepository) ListVariants(ctx context.Context, serviceID uuid.UUID) ([]*model.ServiceVariant, error) {
	query := `
		SELECT id, service_id, name, duration_minutes, base_price, base_offer_price,
			   created_at, updated_at
		FROM service_variants
		WHERE service_id = $1
		ORDER BY name ASC
	`
	var variants []*model.ServiceVariant
	if err := r.db.SelectContext(ctx, &variants, query, serviceID); err != nil {
		return nil, fmt.Errorf("failed to list service variants: %w", err)
	}
	return variants, nil
}

func (r *catalogRepository) VariantNames(ctx context.Context, variantID uuid.UUID) (string, string, string, error) {
	query := `
		SELECT c.name AS category, s.name AS service, v.name AS variant
		FROM service_variants v
		JOIN services s ON s.id = v.service_id
		JOIN categories c ON c.id = s.category_id
		WHERE v.id = $1
	`
	var row struct {
		Category string `db:"category"`
		Service  string `db:"service"`
		Variant  string `db:"variant"`
	}
	err := r.db.GetContext(ctx, &row, query, variantID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", "", apperrors.NewNotFound("service variant", err)
	}
	if err != nil {
		return "", "", "", fmt.Errorf("failed to resolve variant names: %w", err)
	}
	return row.Category, row.Service, row.Variant, nil
}
