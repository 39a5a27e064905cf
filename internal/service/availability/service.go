package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/config"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
)

// Service computes the slot grid for a date: fixed-width candidate start
// times across business hours, each marked free or occupied against the
// existing booking items. The grid profile (hours, interval) comes from
// configuration, never from constants duplicated per call site.
type Service struct {
	bookingRepo repository.BookingRepository
	catalogRepo repository.CatalogRepository
	staffRepo   repository.StaffRepository
}

func NewService(bookingRepo repository.BookingRepository, catalogRepo repository.CatalogRepository, staffRepo repository.StaffRepository) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		catalogRepo: catalogRepo,
		staffRepo:   staffRepo,
	}
}

// Query describes one availability request. Now is the caller's clock; the
// service never reads the wall clock itself, so identical queries yield
// identical results.
type Query struct {
	Date      time.Time
	VariantID uuid.UUID
	StaffID   *uuid.UUID
	Profile   config.SlotProfile
	Now       time.Time
}

// Slots returns the grid for the query, sorted by time ascending.
//
// A candidate whose service window would run past closing time is reported
// unavailable. When no staff member is specified the view is pooled: a slot
// counts as available if at least one active staff member is free in it.
// For today's date, slots whose end has already passed are omitted.
func (s *Service) Slots(ctx context.Context, q Query) ([]model.Slot, error) {
	open, close, err := q.Profile.Bounds()
	if err != nil {
		return nil, err
	}

	variant, err := s.catalogRepo.GetVariant(ctx, q.VariantID)
	if err != nil {
		return nil, err
	}
	duration := variant.DurationMinutes

	busy, err := s.busyIntervals(ctx, q)
	if err != nil {
		return nil, err
	}

	sameDay := q.Date.Year() == q.Now.Year() && q.Date.YearDay() == q.Now.YearDay()
	nowMinutes := q.Now.Hour()*60 + q.Now.Minute()

	slots := make([]model.Slot, 0, (close-open)/q.Profile.IntervalMinutes+1)
	for start := open; start < close; start += q.Profile.IntervalMinutes {
		end := start + duration
		if sameDay && end <= nowMinutes {
			continue
		}

		slot := model.Slot{Time: model.FormatTimeOfDay(start)}
		if end <= close {
			slot.Available = s.anyStaffFree(busy, start, end)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// busyIntervals returns the non-cancelled intervals per staff member that
// the query has to avoid. Cancelled items never block a slot.
func (s *Service) busyIntervals(ctx context.Context, q Query) (map[uuid.UUID][]*model.BookingItem, error) {
	busy := make(map[uuid.UUID][]*model.BookingItem)

	if q.StaffID != nil {
		items, err := s.bookingRepo.ListItemsForStaffDate(ctx, *q.StaffID, q.Date)
		if err != nil {
			return nil, err
		}
		busy[*q.StaffID] = items
		return busy, nil
	}

	staff, err := s.staffRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return nil, fmt.Errorf("no active staff configured")
	}
	for _, st := range staff {
		busy[st.ID] = nil
	}

	items, err := s.bookingRepo.ListItemsForDate(ctx, q.Date)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, ok := busy[item.StaffID]; ok {
			busy[item.StaffID] = append(busy[item.StaffID], item)
		}
	}
	return busy, nil
}

func (s *Service) anyStaffFree(busy map[uuid.UUID][]*model.BookingItem, start, end int) bool {
	for _, items := range busy {
		if !overlapsAny(items, start, end) {
			return true
		}
	}
	return false
}

func overlapsAny(items []*model.BookingItem, start, end int) bool {
	for _, item := range items {
		if start < item.EndMinutes() && item.StartMinutes < end {
			return true
		}
	}
	return false
}
