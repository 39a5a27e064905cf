package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

// CouponLookup resolves a voucher code to its coupon. Unknown codes come
// back as a NotFound error.
type CouponLookup interface {
	Lookup(ctx context.Context, code string) (*model.Coupon, error)
}

type Service struct {
	repo    repository.BillRepository
	coupons CouponLookup
	log     *logger.Logger

	// newBillID and now are overridable in tests.
	newBillID func() string
	now       func() time.Time
}

func NewService(repo repository.BillRepository, coupons CouponLookup, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		coupons:   coupons,
		log:       log,
		newBillID: generateBillID,
		now:       time.Now,
	}
}

func generateBillID() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "BILL-" + fragment
}

// CreateBill consolidates line items from possibly several customers into
// one bill. A voucher discount is split across the lines in proportion to
// their pre-discount amounts; the rounding remainder lands on the last line
// so the line totals always add up to the discounted bill total exactly.
func (s *Service) CreateBill(ctx context.Context, req *model.CreateBillRequest) (*model.BillSummary, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.NewBadRequest("bill needs at least one item", nil)
	}

	subtotal := decimal.Zero
	for _, line := range req.Items {
		if line.AmountBefore.IsNegative() {
			return nil, apperrors.NewBadRequest("amount must not be negative", nil)
		}
		subtotal = subtotal.Add(line.AmountBefore)
	}

	discount := decimal.Zero
	if req.VoucherCode != nil && *req.VoucherCode != "" {
		coupon, err := s.coupons.Lookup(ctx, *req.VoucherCode)
		if err != nil {
			return nil, err
		}
		discount = coupon.DiscountOn(subtotal)
	}

	bill := &model.Bill{
		ID:             s.newBillID(),
		BillingName:    req.BillingName,
		BillingAddress: req.BillingAddress,
		VoucherCode:    req.VoucherCode,
		CreatedAt:      s.now().UTC(),
	}

	items := make([]*model.BillLineItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, &model.BillLineItem{
			ID:           uuid.New(),
			BillID:       bill.ID,
			Phone:        line.Phone,
			Category:     line.Category,
			Service:      line.Service,
			Variant:      line.Variant,
			AmountBefore: line.AmountBefore,
			StaffID:      line.StaffID,
			ScheduledAt:  line.ScheduledAt,
			CreatedAt:    bill.CreatedAt,
		})
	}
	applyDiscount(items, subtotal, discount)

	target := subtotal.Sub(discount)
	assigned := decimal.Zero
	for _, item := range items {
		assigned = assigned.Add(item.AmountAfter)
	}
	if !assigned.Equal(target) {
		s.log.Error(nil, "bill line totals do not reconcile",
			"bill_id", bill.ID,
			"expected", target.String(),
			"got", assigned.String())
		return nil, apperrors.NewInternal(fmt.Errorf("bill %s: line totals %s do not add up to %s", bill.ID, assigned, target))
	}

	if err := s.repo.CreateBill(ctx, bill, items); err != nil {
		return nil, err
	}
	return s.summarize(bill.ID, items), nil
}

// applyDiscount writes AmountAfter on every line. Each line carries its
// proportional share of the discount rounded to two places, and the last
// line absorbs the rounding remainder.
func applyDiscount(items []*model.BillLineItem, subtotal, discount decimal.Decimal) {
	target := subtotal.Sub(discount)

	ratio := decimal.NewFromInt(1)
	if subtotal.IsPositive() {
		ratio = target.Div(subtotal)
	}

	assigned := decimal.Zero
	for i, item := range items {
		if i == len(items)-1 {
			item.AmountAfter = target.Sub(assigned)
			break
		}
		item.AmountAfter = item.AmountBefore.Mul(ratio).Round(2)
		assigned = assigned.Add(item.AmountAfter)
	}
}

func (s *Service) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	return s.repo.GetBill(ctx, id)
}

// BillsForDate groups the day's line items by bill and rebuilds one summary
// per bill, newest first.
func (s *Service) BillsForDate(ctx context.Context, date time.Time) ([]*model.BillSummary, error) {
	lines, err := s.repo.ListLineItemsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*model.BillLineItem)
	for _, line := range lines {
		grouped[line.BillID] = append(grouped[line.BillID], line)
	}

	summaries := make([]*model.BillSummary, 0, len(grouped))
	for billID, items := range grouped {
		summaries = append(summaries, s.summarize(billID, items))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].BillID < summaries[j].BillID
	})
	return summaries, nil
}

func (s *Service) summarize(billID string, items []*model.BillLineItem) *model.BillSummary {
	summary := &model.BillSummary{
		BillID:      billID,
		Items:       items,
		TotalBefore: decimal.Zero,
		TotalAfter:  decimal.Zero,
	}

	seen := make(map[string]bool)
	for _, item := range items {
		summary.TotalBefore = summary.TotalBefore.Add(item.AmountBefore)
		summary.TotalAfter = summary.TotalAfter.Add(item.AmountAfter)
		if item.CreatedAt.After(summary.CreatedAt) {
			summary.CreatedAt = item.CreatedAt
		}
		if item.Phone != nil && !seen[*item.Phone] {
			seen[*item.Phone] = true
			summary.Phones = append(summary.Phones, *item.Phone)
		}
	}
	sort.Strings(summary.Phones)

	if summary.TotalAfter.GreaterThan(summary.TotalBefore) {
		s.log.Warn("bill total after discount exceeds total before",
			"bill_id", billID,
			"total_before", summary.TotalBefore.String(),
			"total_after", summary.TotalAfter.String())
	}
	return summary
}
