package coupon

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Service resolves voucher codes, with a short-lived in-process cache in
// front of the store. Codes are case-insensitive.
type Service struct {
	repo  repository.CouponRepository
	cache *gocache.Cache
}

func NewService(repo repository.CouponRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) Lookup(ctx context.Context, code string) (*model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperrors.NewBadRequest("voucher code must not be empty", nil)
	}

	if cached, ok := s.cache.Get(code); ok {
		return cached.(*model.Coupon), nil
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon.Status != "active" {
		return nil, apperrors.NewBadRequest("voucher is not active", nil)
	}

	s.cache.Set(code, coupon, gocache.DefaultExpiration)
	return coupon, nil
}
