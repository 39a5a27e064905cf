package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	Base
	Name   string `db:"name" json:"name"`
	Status string `db:"status" json:"status"`
}

type Service struct {
	Base
	CategoryID  uuid.UUID `db:"category_id" json:"category_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
}

// ServiceVariant is a priced, bookable tier of a service, e.g.
// "Haircut — Women's Long". Identity is immutable; name and duration are
// edited by catalog management.
type ServiceVariant struct {
	Base
	ServiceID       uuid.UUID        `db:"service_id" json:"service_id"`
	Name            string           `db:"name" json:"name"`
	DurationMinutes int              `db:"duration_minutes" json:"duration_minutes"`
	BasePrice       *decimal.Decimal `db:"base_price" json:"base_price,omitempty"`
	BaseOfferPrice  *decimal.Decimal `db:"base_offer_price" json:"base_offer_price,omitempty"`
}

// PriceHistoryEntry is one record of a variant's append-only price ledger.
// Entries are immutable once written; a price change appends a new entry
// whose start closes the previous open entry.
type PriceHistoryEntry struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	VariantID   uuid.UUID        `db:"variant_id" json:"variant_id"`
	ActualPrice decimal.Decimal  `db:"actual_price" json:"actual_price"`
	OfferPrice  *decimal.Decimal `db:"offer_price" json:"offer_price,omitempty"`
	StartAt     time.Time        `db:"start_at" json:"start_at"`
	EndAt       *time.Time       `db:"end_at" json:"end_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// CurrentAt reports whether the entry is effective at the given instant.
// Start is inclusive, end exclusive.
func (e *PriceHistoryEntry) CurrentAt(asOf time.Time) bool {
	if asOf.Before(e.StartAt) {
		return false
	}
	return e.EndAt == nil || asOf.Before(*e.EndAt)
}

// EffectivePrice is the resolved price of a variant at some instant.
type EffectivePrice struct {
	Actual decimal.Decimal  `json:"actual_price"`
	Offer  *decimal.Decimal `json:"offer_price,omitempty"`
}

// Final returns the price to charge: the offer when present and lower than
// the actual price, the actual price otherwise.
func (p EffectivePrice) Final() decimal.Decimal {
	if p.Offer != nil && p.Offer.LessThan(p.Actual) {
		return *p.Offer
	}
	return p.Actual
}

type AppendPriceRequest struct {
	ActualPrice   decimal.Decimal  `json:"actual_price" binding:"required"`
	OfferPrice    *decimal.Decimal `json:"offer_price"`
	EffectiveFrom *time.Time       `json:"effective_from"`
}
