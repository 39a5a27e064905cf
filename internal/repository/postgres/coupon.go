package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, status, created_at, updated_at
		FROM coupons
		WHERE code = $1 AND status = 'active'
	`
	var coupon model.Coupon
	err := r.db.GetContext(ctx, &coupon, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("coupon", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &coupon, nil
}
