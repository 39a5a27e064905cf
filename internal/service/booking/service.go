package booking

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// PriceResolver supplies the effective price of a variant at an explicit
// instant; used when a booking item arrives without a fixed price.
type PriceResolver interface {
	Resolve(ctx context.Context, variantID uuid.UUID, asOf time.Time) (*model.EffectivePrice, error)
}

type Service struct {
	repo        repository.BookingRepository
	billRepo    repository.BillRepository
	catalogRepo repository.CatalogRepository
	staffRepo   repository.StaffRepository
	resolver    PriceResolver

	// now feeds price resolution for items booked without a fixed price;
	// overridable in tests.
	now func() time.Time
}

func NewService(repo repository.BookingRepository, billRepo repository.BillRepository, catalogRepo repository.CatalogRepository, staffRepo repository.StaffRepository, resolver PriceResolver) *Service {
	return &Service{
		repo:        repo,
		billRepo:    billRepo,
		catalogRepo: catalogRepo,
		staffRepo:   staffRepo,
		resolver:    resolver,
		now:         time.Now,
	}
}

// CreateBooking validates and persists a booking with its items. Every item
// is guarded against overlapping an existing non-cancelled item for the same
// staff member and date; the partial unique index on the slot closes the
// race against a concurrent writer that passes the same check.
func (s *Service) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	if !phonePattern.MatchString(req.Phone) {
		return nil, apperrors.NewBadRequest("phone must be a 10-digit number", nil)
	}

	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid date, want YYYY-MM-DD", err)
	}

	items := make([]*model.BookingItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		item, err := s.buildItem(ctx, date, &itemReq)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	// Items within one request must not collide with each other either.
	for i, a := range items {
		for _, b := range items[i+1:] {
			if a.StaffID == b.StaffID && a.Overlaps(b) {
				return nil, apperrors.NewConflict(apperrors.ReasonSlotTaken, nil)
			}
		}
	}

	for _, item := range items {
		if err := s.guardSlot(ctx, item, uuid.Nil); err != nil {
			return nil, err
		}
	}

	head := items[0]
	for _, item := range items[1:] {
		if item.StartMinutes < head.StartMinutes {
			head = item
		}
	}

	booking := &model.Booking{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Age:          req.Age,
		BookingDate:  date,
		StaffID:      &head.StaffID,
		StartMinutes: &head.StartMinutes,
		Status:       model.BookingStatusPending,
	}
	for _, item := range items {
		item.Status = model.ItemStatusPending
	}

	if err := s.repo.CreateWithItems(ctx, booking, items); err != nil {
		return nil, err
	}
	booking.Items = items
	return booking, nil
}

func (s *Service) buildItem(ctx context.Context, date time.Time, req *model.CreateBookingItemRequest) (*model.BookingItem, error) {
	if _, err := s.staffRepo.Get(ctx, req.StaffID); err != nil {
		return nil, err
	}

	variant, err := s.catalogRepo.GetVariant(ctx, req.TierID)
	if err != nil {
		return nil, err
	}
	if variant.ServiceID != req.ServiceID {
		return nil, apperrors.NewBadRequest("tier does not belong to the given service", nil)
	}

	category, service, variantName, err := s.catalogRepo.VariantNames(ctx, req.TierID)
	if err != nil {
		return nil, err
	}

	start, err := model.ParseTimeOfDay(req.Start)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid start time, want HH:MM", err)
	}

	item := &model.BookingItem{
		VariantID:       req.TierID,
		StaffID:         req.StaffID,
		BookingDate:     date,
		StartMinutes:    start,
		DurationMinutes: req.DurationMinutes,
		CategoryName:    category,
		ServiceName:     service,
		VariantName:     variantName,
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperrors.NewBadRequest("price must not be negative", nil)
		}
		item.Price = *req.Price
	} else {
		price, err := s.resolver.Resolve(ctx, req.TierID, s.now())
		if err != nil {
			return nil, err
		}
		item.Price = price.Final()
	}
	return item, nil
}

// guardSlot rejects the candidate when its [start, start+duration) window
// overlaps any existing non-cancelled item for the same staff and date.
// excludeID skips the item being rescheduled.
func (s *Service) guardSlot(ctx context.Context, candidate *model.BookingItem, excludeID uuid.UUID) error {
	existing, err := s.repo.ListItemsForStaffDate(ctx, candidate.StaffID, candidate.BookingDate)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if candidate.Overlaps(other) {
			return apperrors.NewConflict(apperrors.ReasonSlotTaken,
				fmt.Errorf("staff %s busy %s-%s", candidate.StaffID,
					other.StartTime(), model.FormatTimeOfDay(other.EndMinutes())))
		}
	}
	return nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.repo.GetWithItems(ctx, id)
}

// UpdateStatus advances the booking through its lifecycle. Cancelling does
// NOT cascade to the items: each item keeps its own status, and billing of
// performed items survives a later booking cancellation.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, target model.BookingStatus) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.NewConflict(apperrors.ReasonAlreadyCancelled, nil)
	}
	if !booking.Status.CanTransition(target) {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("cannot transition booking from %s to %s", booking.Status, target), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	booking.Status = target
	return booking, nil
}

// UpdateCustomer edits the customer contact fields. A cancelled booking is
// frozen.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, name, phone string, gender *string, age *int) (*model.Booking, error) {
	if !phonePattern.MatchString(phone) {
		return nil, apperrors.NewBadRequest("phone must be a 10-digit number", nil)
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.NewConflict(apperrors.ReasonAlreadyCancelled, nil)
	}

	booking.CustomerName = name
	booking.Phone = phone
	booking.Gender = gender
	booking.Age = age
	if err := s.repo.UpdateCustomer(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteBooking removes a booking and its items. Bookings holding a billed
// item are immutable history and cannot be deleted.
func (s *Service) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return err
	}
	for _, item := range items {
		billed, err := s.isBilled(ctx, item)
		if err != nil {
			return err
		}
		if billed {
			return apperrors.NewConflict(apperrors.ReasonAlreadyBilled, nil)
		}
	}
	return s.repo.Delete(ctx, id)
}

// UpdateItem reschedules or reassigns one item. The billed check runs
// before anything else: a billed slot is settled money and its item can
// never change again, regardless of the booking's own status.
func (s *Service) UpdateItem(ctx context.Context, bookingID, itemID uuid.UUID, req *model.UpdateBookingItemRequest) (*model.BookingItem, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.BookingID != bookingID {
		return nil, apperrors.NewNotFound("booking item", nil)
	}

	billed, err := s.isBilled(ctx, item)
	if err != nil {
		return nil, err
	}
	if billed {
		return nil, apperrors.NewConflict(apperrors.ReasonAlreadyBilled, nil)
	}

	booking, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, apperrors.NewConflict(apperrors.ReasonAlreadyCancelled, nil)
	}
	if item.Status == model.ItemStatusCancelled {
		return nil, apperrors.NewConflict(apperrors.ReasonAlreadyCancelled, nil)
	}

	if req.StaffID != nil {
		if _, err := s.staffRepo.Get(ctx, *req.StaffID); err != nil {
			return nil, err
		}
		item.StaffID = *req.StaffID
	}
	if req.Start != nil {
		start, err := model.ParseTimeOfDay(*req.Start)
		if err != nil {
			return nil, apperrors.NewBadRequest("invalid start time, want HH:MM", err)
		}
		item.StartMinutes = start
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, apperrors.NewBadRequest("duration must be positive", nil)
		}
		item.DurationMinutes = *req.DurationMinutes
	}

	if err := s.guardSlot(ctx, item, item.ID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemStatus moves one item through its lifecycle. Completed and
// cancelled are terminal; a billed item never transitions again.
func (s *Service) UpdateItemStatus(ctx context.Context, bookingID, itemID uuid.UUID, target model.ItemStatus) (*model.BookingItem, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.BookingID != bookingID {
		return nil, apperrors.NewNotFound("booking item", nil)
	}

	billed, err := s.isBilled(ctx, item)
	if err != nil {
		return nil, err
	}
	if billed {
		return nil, apperrors.NewConflict(apperrors.ReasonAlreadyBilled, nil)
	}

	if !item.Status.CanTransition(target) {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("cannot transition item from %s to %s", item.Status, target), nil)
	}

	if err := s.repo.UpdateItemStatus(ctx, itemID, target); err != nil {
		return nil, err
	}
	item.Status = target
	return item, nil
}

// DeleteItem removes one item; deleting the last item deletes the booking.
// Billed items and items of cancelled bookings are frozen.
func (s *Service) DeleteItem(ctx context.Context, bookingID, itemID uuid.UUID) error {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.BookingID != bookingID {
		return apperrors.NewNotFound("booking item", nil)
	}

	billed, err := s.isBilled(ctx, item)
	if err != nil {
		return err
	}
	if billed {
		return apperrors.NewConflict(apperrors.ReasonAlreadyBilled, nil)
	}

	booking, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == model.BookingStatusCancelled {
		return apperrors.NewConflict(apperrors.ReasonAlreadyCancelled, nil)
	}

	return s.repo.DeleteItem(ctx, itemID)
}

func (s *Service) isBilled(ctx context.Context, item *model.BookingItem) (bool, error) {
	return s.billRepo.ExistsForSchedule(ctx, item.StaffID, item.ScheduledAt())
}
