package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CanTransition reports whether a booking may move from its current status
// to the target. Cancelled and completed are terminal.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	case BookingStatusConfirmed:
		return to == BookingStatusCompleted || to == BookingStatusCancelled
	default:
		return false
	}
}

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusCancelled ItemStatus = "cancelled"
)

// CanTransition reports whether an item may move to the target status.
// Completed and cancelled are both terminal.
func (s ItemStatus) CanTransition(to ItemStatus) bool {
	return s == ItemStatusPending && (to == ItemStatusCompleted || to == ItemStatusCancelled)
}

// Booking groups the line items of one customer visit. StaffID and
// StartMinutes mirror the first item for backward-compatible display;
// authoritative scheduling state lives on the items.
type Booking struct {
	Base
	CustomerName string        `db:"customer_name" json:"customer_name"`
	Phone        string        `db:"phone" json:"phone"`
	Gender       *string       `db:"gender" json:"gender,omitempty"`
	Age          *int          `db:"age" json:"age,omitempty"`
	BookingDate  time.Time     `db:"booking_date" json:"booking_date"`
	StaffID      *uuid.UUID    `db:"staff_id" json:"staff_id,omitempty"`
	StartMinutes *int          `db:"start_minutes" json:"-"`
	Status       BookingStatus `db:"status" json:"status"`

	Items []*BookingItem `db:"-" json:"items,omitempty"`
}

// BookingItem is one scheduled service occurrence: a variant performed by a
// staff member at a start time on the booking's date, with the price
// captured at creation time.
type BookingItem struct {
	Base
	BookingID       uuid.UUID       `db:"booking_id" json:"booking_id"`
	VariantID       uuid.UUID       `db:"variant_id" json:"variant_id"`
	StaffID         uuid.UUID       `db:"staff_id" json:"staff_id"`
	BookingDate     time.Time       `db:"booking_date" json:"booking_date"`
	StartMinutes    int             `db:"start_minutes" json:"-"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Status          ItemStatus      `db:"status" json:"status"`

	// Names snapshotted at booking time so later catalog renames do not
	// rewrite history.
	CategoryName string `db:"category_name" json:"category_name"`
	ServiceName  string `db:"service_name" json:"service_name"`
	VariantName  string `db:"variant_name" json:"variant_name"`
}

// EndMinutes returns the exclusive end of the item's interval.
func (i *BookingItem) EndMinutes() int {
	return i.StartMinutes + i.DurationMinutes
}

// Overlaps reports whether two items' [start, end) windows intersect.
func (i *BookingItem) Overlaps(other *BookingItem) bool {
	return i.StartMinutes < other.EndMinutes() && other.StartMinutes < i.EndMinutes()
}

// StartTime renders the item's start as "HH:MM".
func (i *BookingItem) StartTime() string {
	return FormatTimeOfDay(i.StartMinutes)
}

// ScheduledAt returns the full instant of the item's start.
func (i *BookingItem) ScheduledAt() time.Time {
	return CombineDateTime(i.BookingDate, i.StartMinutes)
}

// MarshalJSON renders times of day as "HH:MM" and the date as YYYY-MM-DD.
func (b *Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	out := &struct {
		*alias
		BookingDate string  `json:"booking_date"`
		Start       *string `json:"start,omitempty"`
	}{alias: (*alias)(b), BookingDate: b.BookingDate.Format(DateLayout)}
	if b.StartMinutes != nil {
		start := FormatTimeOfDay(*b.StartMinutes)
		out.Start = &start
	}
	return json.Marshal(out)
}

func (i *BookingItem) MarshalJSON() ([]byte, error) {
	type alias BookingItem
	return json.Marshal(&struct {
		*alias
		BookingDate string `json:"booking_date"`
		Start       string `json:"start"`
	}{
		alias:       (*alias)(i),
		BookingDate: i.BookingDate.Format(DateLayout),
		Start:       i.StartTime(),
	})
}

// Slot is one candidate start time in an availability response.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type CreateBookingRequest struct {
	CustomerName string                     `json:"customer_name" binding:"required,max=100"`
	Phone        string                     `json:"phone" binding:"required,phone10"`
	Gender       *string                    `json:"gender" binding:"omitempty,oneof=male female other"`
	Age          *int                       `json:"age" binding:"omitempty,gte=0,lte=120"`
	Date         string                     `json:"date" binding:"required"`
	Items        []CreateBookingItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateBookingItemRequest struct {
	ServiceID       uuid.UUID        `json:"service_id" binding:"required"`
	TierID          uuid.UUID        `json:"tier_id" binding:"required"`
	StaffID         uuid.UUID        `json:"staff_id" binding:"required"`
	Start           string           `json:"start" binding:"required"`
	DurationMinutes int              `json:"duration_minutes" binding:"required,gt=0"`
	Price           *decimal.Decimal `json:"price"`
}

type UpdateBookingItemRequest struct {
	StaffID         *uuid.UUID `json:"staff_id"`
	Start           *string    `json:"start"`
	DurationMinutes *int       `json:"duration_minutes"`
}

type UpdateBookingCustomerRequest struct {
	CustomerName string  `json:"customer_name" binding:"required,max=100"`
	Phone        string  `json:"phone" binding:"required,phone10"`
	Gender       *string `json:"gender" binding:"omitempty,oneof=male female other"`
	Age          *int    `json:"age" binding:"omitempty,gte=0,lte=120"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

type UpdateItemStatusRequest struct {
	Status ItemStatus `json:"status" binding:"required,oneof=pending completed cancelled"`
}
