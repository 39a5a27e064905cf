package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is a grouping key: it carries no item list of its own and is
// reconstructed by aggregating the line items tagged with its ID.
type Bill struct {
	ID             string    `db:"id" json:"id"`
	BillingName    *string   `db:"billing_name" json:"billing_name,omitempty"`
	BillingAddress *string   `db:"billing_address" json:"billing_address,omitempty"`
	VoucherCode    *string   `db:"voucher_code" json:"voucher_code,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// BillLineItem is one billed service occurrence. Category, service and
// variant names are snapshots taken at billing time. ScheduledAt ties the
// line back to the booking item whose slot it settles: once a line exists
// for a (staff, scheduled instant) pair, that item is billed and frozen.
type BillLineItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	BillID       string          `db:"bill_id" json:"bill_id"`
	Phone        *string         `db:"phone" json:"phone,omitempty"`
	Category     string          `db:"category" json:"category"`
	Service      string          `db:"service" json:"service"`
	Variant      string          `db:"variant" json:"variant"`
	AmountBefore decimal.Decimal `db:"amount_before" json:"amount_before"`
	AmountAfter  decimal.Decimal `db:"amount_after" json:"amount_after"`
	StaffID      uuid.UUID       `db:"staff_id" json:"staff_id"`
	ScheduledAt  time.Time       `db:"scheduled_at" json:"scheduled_at"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// BillSummary is the read model for one bill: its lines plus re-derived
// totals and the deduplicated customer phones.
type BillSummary struct {
	BillID      string          `json:"bill_id"`
	Items       []*BillLineItem `json:"items"`
	Phones      []string        `json:"phones"`
	TotalBefore decimal.Decimal `json:"total_before"`
	TotalAfter  decimal.Decimal `json:"total_after"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreateBillRequest struct {
	BillingName    *string                 `json:"billing_name" binding:"omitempty,max=100"`
	BillingAddress *string                 `json:"billing_address" binding:"omitempty,max=500"`
	VoucherCode    *string                 `json:"voucher_code"`
	Items          []CreateBillLineRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateBillLineRequest struct {
	Phone        *string         `json:"phone" binding:"omitempty,phone10"`
	Category     string          `json:"category" binding:"required"`
	Service      string          `json:"service" binding:"required"`
	Variant      string          `json:"variant" binding:"required"`
	AmountBefore decimal.Decimal `json:"amount_before" binding:"required"`
	StaffID      uuid.UUID       `json:"staff_id" binding:"required"`
	ScheduledAt  time.Time       `json:"scheduled_at" binding:"required"`
}
