package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

// Service resolves time-varying prices against the append-only per-variant
// price ledger. Resolve never consults a clock of its own: asOf is always
// supplied by the caller, so "current price" and "price as of the booking
// date" go through the same deterministic path.
type Service struct {
	priceRepo   repository.PriceHistoryRepository
	catalogRepo repository.CatalogRepository
}

func NewService(priceRepo repository.PriceHistoryRepository, catalogRepo repository.CatalogRepository) *Service {
	return &Service{
		priceRepo:   priceRepo,
		catalogRepo: catalogRepo,
	}
}

// Resolve returns the price effective for the variant at asOf. Ledger entry
// starts are inclusive, ends exclusive. When no entry covers asOf the
// variant's denormalized base price fields serve as fallback; without those
// the price is simply not found.
func (s *Service) Resolve(ctx context.Context, variantID uuid.UUID, asOf time.Time) (*model.EffectivePrice, error) {
	entry, err := s.priceRepo.EffectiveEntry(ctx, variantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve price: %w", err)
	}
	if entry != nil {
		return &model.EffectivePrice{
			Actual: entry.ActualPrice,
			Offer:  entry.OfferPrice,
		}, nil
	}

	variant, err := s.catalogRepo.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.BasePrice != nil {
		return &model.EffectivePrice{
			Actual: *variant.BasePrice,
			Offer:  variant.BaseOfferPrice,
		}, nil
	}

	return nil, apperrors.NewNotFound("price", nil)
}

// AppendPrice records a price change as a new ledger entry. The previous
// open entry is closed at the new entry's start inside the same transaction,
// so at no instant do two entries overlap.
func (s *Service) AppendPrice(ctx context.Context, variantID uuid.UUID, req *model.AppendPriceRequest) (*model.PriceHistoryEntry, error) {
	if req.ActualPrice.IsNegative() {
		return nil, apperrors.NewBadRequest("actual price must not be negative", nil)
	}
	if req.OfferPrice != nil {
		if req.OfferPrice.IsNegative() {
			return nil, apperrors.NewBadRequest("offer price must not be negative", nil)
		}
		if req.OfferPrice.GreaterThan(req.ActualPrice) {
			return nil, apperrors.NewBadRequest("offer price must not exceed actual price", nil)
		}
	}

	if _, err := s.catalogRepo.GetVariant(ctx, variantID); err != nil {
		return nil, err
	}

	startAt := time.Now()
	if req.EffectiveFrom != nil {
		startAt = *req.EffectiveFrom
	}

	latest, err := s.priceRepo.LatestEntry(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price entry: %w", err)
	}
	if latest != nil && startAt.Before(latest.StartAt) {
		return nil, apperrors.NewBadRequest("effective start must not precede the latest ledger entry", nil)
	}

	entry := &model.PriceHistoryEntry{
		VariantID:   variantID,
		ActualPrice: req.ActualPrice,
		OfferPrice:  req.OfferPrice,
		StartAt:     startAt,
	}
	if err := s.priceRepo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the variant's full ledger, ordered by start time.
func (s *Service) History(ctx context.Context, variantID uuid.UUID) ([]*model.PriceHistoryEntry, error) {
	if _, err := s.catalogRepo.GetVariant(ctx, variantID); err != nil {
		return nil, err
	}
	return s.priceRepo.ListEntries(ctx, variantID)
}

// FinalAmount is a convenience for callers that only need the chargeable
// figure at asOf.
func (s *Service) FinalAmount(ctx context.Context, variantID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	price, err := s.Resolve(ctx, variantID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return price.Final(), nil
}
