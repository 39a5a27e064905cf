package model

import "github.com/shopspring/decimal"

type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypePercentage DiscountType = "percentage"
)

type Coupon struct {
	Base
	Code          string          `db:"code" json:"code"`
	DiscountType  DiscountType    `db:"discount_type" json:"discount_type"`
	DiscountValue decimal.Decimal `db:"discount_value" json:"discount_value"`
	Status        string          `db:"status" json:"status"`
}

// DiscountOn computes the discount this coupon grants against a subtotal.
// Fixed discounts are clamped to the subtotal so a bill never goes negative.
func (c *Coupon) DiscountOn(subtotal decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case DiscountTypeFixed:
		if c.DiscountValue.GreaterThan(subtotal) {
			return subtotal
		}
		return c.DiscountValue
	case DiscountTypePercentage:
		return subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
}
