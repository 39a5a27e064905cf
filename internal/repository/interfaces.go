package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
)

// All repository interfaces in one file
type (
	CatalogRepository interface {
		GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
		ListCategories(ctx context.Context) ([]*model.Category, error)
		GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
		ListServices(ctx context.Context, categoryID uuid.UUID) ([]*model.Service, error)
		GetVariant(ctx context.Context, id uuid.UUID) (*model.ServiceVariant, error)
		ListVariants(ctx context.Context, serviceID uuid.UUID) ([]*model.ServiceVariant, error)
		// VariantNames resolves the denormalized (category, service, variant)
		// name triple snapshotted onto booking items at write time.
		VariantNames(ctx context.Context, variantID uuid.UUID) (category, service, variant string, err error)
	}

	PriceHistoryRepository interface {
		// EffectiveEntry returns the ledger entry current at asOf, or
		// (nil, nil) when the variant has no entry covering that instant.
		EffectiveEntry(ctx context.Context, variantID uuid.UUID, asOf time.Time) (*model.PriceHistoryEntry, error)
		// LatestEntry returns the newest entry by start time, or (nil, nil).
		LatestEntry(ctx context.Context, variantID uuid.UUID) (*model.PriceHistoryEntry, error)
		ListEntries(ctx context.Context, variantID uuid.UUID) ([]*model.PriceHistoryEntry, error)
		// Append inserts the entry and closes the previous open entry by
		// setting its end to the new entry's start, in one transaction.
		Append(ctx context.Context, entry *model.PriceHistoryEntry) error
	}

	BookingRepository interface {
		// CreateWithItems persists a booking and its items atomically.
		// A unique-index violation on an item slot surfaces as a Conflict.
		CreateWithItems(ctx context.Context, booking *model.Booking, items []*model.BookingItem) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		GetWithItems(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
		UpdateCustomer(ctx context.Context, booking *model.Booking) error
		Delete(ctx context.Context, id uuid.UUID) error

		GetItem(ctx context.Context, itemID uuid.UUID) (*model.BookingItem, error)
		ListItems(ctx context.Context, bookingID uuid.UUID) ([]*model.BookingItem, error)
		// ListItemsForStaffDate returns non-cancelled items for one staff
		// member on one date, ordered by start time.
		ListItemsForStaffDate(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.BookingItem, error)
		// ListItemsForDate returns non-cancelled items for all staff on one
		// date, ordered by start time.
		ListItemsForDate(ctx context.Context, date time.Time) ([]*model.BookingItem, error)
		// UpdateItem rewrites the item's schedule fields and refreshes the
		// parent booking's denormalized staff/start columns, atomically.
		UpdateItem(ctx context.Context, item *model.BookingItem) error
		UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status model.ItemStatus) error
		// DeleteItem removes the item; when it was the booking's last item
		// the booking is deleted too, otherwise the booking's denormalized
		// staff/start columns are refreshed from the remaining first item.
		DeleteItem(ctx context.Context, itemID uuid.UUID) error
	}

	BillRepository interface {
		// CreateBill persists the bill and all its line items in a single
		// transaction. A unique-index violation on (staff_id, scheduled_at)
		// surfaces as an already-billed Conflict.
		CreateBill(ctx context.Context, bill *model.Bill, items []*model.BillLineItem) error
		GetBill(ctx context.Context, id string) (*model.Bill, error)
		ListLineItemsForDate(ctx context.Context, date time.Time) ([]*model.BillLineItem, error)
		// ExistsForSchedule reports whether a line item already settles the
		// (staff, scheduled instant) pair, i.e. the slot is billed.
		ExistsForSchedule(ctx context.Context, staffID uuid.UUID, scheduledAt time.Time) (bool, error)
	}

	CouponRepository interface {
		GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	}

	StaffRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		GetByEmail(ctx context.Context, email string) (*model.Staff, error)
		ListActive(ctx context.Context) ([]*model.Staff, error)
	}
)
