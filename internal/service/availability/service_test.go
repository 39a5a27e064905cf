package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/salon-api/internal/config"
	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

type fakeBookingRepo struct {
	items []*model.BookingItem
}

func (f *fakeBookingRepo) ListItemsForStaffDate(_ context.Context, staffID uuid.UUID, date time.Time) ([]*model.BookingItem, error) {
	var out []*model.BookingItem
	for _, item := range f.items {
		if item.StaffID == staffID && item.BookingDate.Equal(date) && item.Status != model.ItemStatusCancelled {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListItemsForDate(_ context.Context, date time.Time) ([]*model.BookingItem, error) {
	var out []*model.BookingItem
	for _, item := range f.items {
		if item.BookingDate.Equal(date) && item.Status != model.ItemStatusCancelled {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CreateWithItems(context.Context, *model.Booking, []*model.BookingItem) error {
	return nil
}
func (f *fakeBookingRepo) Get(context.Context, uuid.UUID) (*model.Booking, error) { return nil, nil }
func (f *fakeBookingRepo) GetWithItems(context.Context, uuid.UUID) (*model.Booking, error) {
	return nil, nil
}
func (f *fakeBookingRepo) UpdateStatus(context.Context, uuid.UUID, model.BookingStatus) error {
	return nil
}
func (f *fakeBookingRepo) UpdateCustomer(context.Context, *model.Booking) error { return nil }
func (f *fakeBookingRepo) Delete(context.Context, uuid.UUID) error              { return nil }
func (f *fakeBookingRepo) GetItem(context.Context, uuid.UUID) (*model.BookingItem, error) {
	return nil, nil
}
func (f *fakeBookingRepo) ListItems(context.Context, uuid.UUID) ([]*model.BookingItem, error) {
	return nil, nil
}
func (f *fakeBookingRepo) UpdateItem(context.Context, *model.BookingItem) error { return nil }
func (f *fakeBookingRepo) UpdateItemStatus(context.Context, uuid.UUID, model.ItemStatus) error {
	return nil
}
func (f *fakeBookingRepo) DeleteItem(context.Context, uuid.UUID) error { return nil }

type fakeCatalogRepo struct {
	variants map[uuid.UUID]*model.ServiceVariant
}

func (f *fakeCatalogRepo) GetVariant(_ context.Context, id uuid.UUID) (*model.ServiceVariant, error) {
	if v, ok := f.variants[id]; ok {
		return v, nil
	}
	return nil, apperrors.NewNotFound("service variant", nil)
}

func (f *fakeCatalogRepo) GetCategory(context.Context, uuid.UUID) (*model.Category, error) {
	return nil, nil
}
func (f *fakeCatalogRepo) ListCategories(context.Context) ([]*model.Category, error) { return nil, nil }
func (f *fakeCatalogRepo) GetService(context.Context, uuid.UUID) (*model.Service, error) {
	return nil, nil
}
func (f *fakeCatalogRepo) ListServices(context.Context, uuid.UUID) ([]*model.Service, error) {
	return nil, nil
}
func (f *fakeCatalogRepo) ListVariants(context.Context, uuid.UUID) ([]*model.ServiceVariant, error) {
	return nil, nil
}
func (f *fakeCatalogRepo) VariantNames(context.Context, uuid.UUID) (string, string, string, error) {
	return "", "", "", nil
}

type fakeStaffRepo struct {
	staff []*model.Staff
}

func (f *fakeStaffRepo) Get(context.Context, uuid.UUID) (*model.Staff, error)     { return nil, nil }
func (f *fakeStaffRepo) GetByEmail(context.Context, string) (*model.Staff, error) { return nil, nil }
func (f *fakeStaffRepo) ListActive(context.Context) ([]*model.Staff, error)       { return f.staff, nil }

var scheduledProfile = config.SlotProfile{Open: "09:00", Close: "18:00", IntervalMinutes: 60}

func mins(hhmm string) int {
	m, err := model.ParseTimeOfDay(hhmm)
	if err != nil {
		panic(err)
	}
	return m
}

func item(staffID uuid.UUID, date time.Time, start string, duration int) *model.BookingItem {
	return &model.BookingItem{
		StaffID:         staffID,
		BookingDate:     date,
		StartMinutes:    mins(start),
		DurationMinutes: duration,
		Status:          model.ItemStatusPending,
	}
}

func staffMember(id uuid.UUID) *model.Staff {
	return &model.Staff{Base: model.Base{ID: id}, Status: "active"}
}

func slotByTime(t *testing.T, slots []model.Slot, at string) model.Slot {
	t.Helper()
	for _, s := range slots {
		if s.Time == at {
			return s
		}
	}
	t.Fatalf("no slot at %s", at)
	return model.Slot{}
}

func TestSlotsMarksOverlapsUnavailable(t *testing.T) {
	staffID := uuid.New()
	variantID := uuid.New()
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	svc := NewService(
		&fakeBookingRepo{items: []*model.BookingItem{item(staffID, day, "10:00", 45)}},
		&fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{variantID: {DurationMinutes: 45}}},
		&fakeStaffRepo{staff: []*model.Staff{staffMember(staffID)}},
	)

	slots, err := svc.Slots(context.Background(), Query{
		Date:      day,
		VariantID: variantID,
		StaffID:   &staffID,
		Profile:   scheduledProfile,
		Now:       day.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	assert.False(t, slotByTime(t, slots, "10:00").Available)
	assert.True(t, slotByTime(t, slots, "11:00").Available)
	assert.True(t, slotByTime(t, slots, "09:00").Available)
}

func TestSlotsRejectsWindowPastClosing(t *testing.T) {
	staffID := uuid.New()
	variantID := uuid.New()
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	svc := NewService(
		&fakeBookingRepo{},
		&fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{variantID: {DurationMinutes: 90}}},
		&fakeStaffRepo{staff: []*model.Staff{staffMember(staffID)}},
	)

	slots, err := svc.Slots(context.Background(), Query{
		Date:      day,
		VariantID: variantID,
		StaffID:   &staffID,
		Profile:   scheduledProfile,
		Now:       day.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	// 17:00 + 90min runs past the 18:00 close.
	assert.False(t, slotByTime(t, slots, "17:00").Available)
	assert.True(t, slotByTime(t, slots, "16:00").Available)
}

func TestSlotsPooledView(t *testing.T) {
	busyStaff := uuid.New()
	freeStaff := uuid.New()
	variantID := uuid.New()
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	svc := NewService(
		&fakeBookingRepo{items: []*model.BookingItem{item(busyStaff, day, "10:00", 60)}},
		&fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{variantID: {DurationMinutes: 60}}},
		&fakeStaffRepo{staff: []*model.Staff{staffMember(busyStaff), staffMember(freeStaff)}},
	)

	slots, err := svc.Slots(context.Background(), Query{
		Date:      day,
		VariantID: variantID,
		Profile:   scheduledProfile,
		Now:       day.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	// One staff member is busy at 10:00, the other is free: pooled view
	// still reports the slot available.
	assert.True(t, slotByTime(t, slots, "10:00").Available)
}

func TestSlotsExcludesPassedSlotsToday(t *testing.T) {
	staffID := uuid.New()
	variantID := uuid.New()
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	svc := NewService(
		&fakeBookingRepo{},
		&fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{variantID: {DurationMinutes: 60}}},
		&fakeStaffRepo{staff: []*model.Staff{staffMember(staffID)}},
	)

	now := time.Date(2024, 7, 10, 12, 30, 0, 0, time.UTC)
	slots, err := svc.Slots(context.Background(), Query{
		Date:      day,
		VariantID: variantID,
		StaffID:   &staffID,
		Profile:   scheduledProfile,
		Now:       now,
	})
	require.NoError(t, err)

	// 09:00-11:00 starts have already ended by 12:30; 12:00 ends at 13:00
	// and stays.
	assert.Equal(t, "12:00", slots[0].Time)
}

func TestSlotsCancelledItemsDoNotBlock(t *testing.T) {
	staffID := uuid.New()
	variantID := uuid.New()
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	cancelled := item(staffID, day, "10:00", 60)
	cancelled.Status = model.ItemStatusCancelled

	svc := NewService(
		&fakeBookingRepo{items: []*model.BookingItem{cancelled}},
		&fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{variantID: {DurationMinutes: 60}}},
		&fakeStaffRepo{staff: []*model.Staff{staffMember(staffID)}},
	)

	slots, err := svc.Slots(context.Background(), Query{
		Date:      day,
		VariantID: variantID,
		StaffID:   &staffID,
		Profile:   scheduledProfile,
		Now:       day.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, slotByTime(t, slots, "10:00").Available)
}

func TestSlotsIdempotent(t *testing.T) {
	staffID := uuid.New()
	variantID := uuid.New()
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	svc := NewService(
		&fakeBookingRepo{items: []*model.BookingItem{item(staffID, day, "14:00", 60)}},
		&fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{variantID: {DurationMinutes: 60}}},
		&fakeStaffRepo{staff: []*model.Staff{staffMember(staffID)}},
	)

	q := Query{
		Date:      day,
		VariantID: variantID,
		StaffID:   &staffID,
		Profile:   scheduledProfile,
		Now:       day.Add(-24 * time.Hour),
	}
	first, err := svc.Slots(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.Slots(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Sorted ascending.
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Time, first[i].Time)
	}
}

func TestSlotsWalkInProfile(t *testing.T) {
	staffID := uuid.New()
	variantID := uuid.New()
	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	svc := NewService(
		&fakeBookingRepo{},
		&fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{variantID: {DurationMinutes: 30}}},
		&fakeStaffRepo{staff: []*model.Staff{staffMember(staffID)}},
	)

	walkIn := config.SlotProfile{Open: "09:00", Close: "21:00", IntervalMinutes: 15}
	slots, err := svc.Slots(context.Background(), Query{
		Date:      day,
		VariantID: variantID,
		StaffID:   &staffID,
		Profile:   walkIn,
		Now:       day.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "09:15", slots[1].Time)
	assert.Len(t, slots, (21-9)*4)
}
