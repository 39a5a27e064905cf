package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

type fakeBillRepo struct {
	bills map[string]*model.Bill
	lines []*model.BillLineItem
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[string]*model.Bill)}
}

func (f *fakeBillRepo) CreateBill(_ context.Context, bill *model.Bill, items []*model.BillLineItem) error {
	for _, item := range items {
		for _, existing := range f.lines {
			if existing.StaffID == item.StaffID && existing.ScheduledAt.Equal(item.ScheduledAt) {
				return apperrors.NewConflict(apperrors.ReasonAlreadyBilled, nil)
			}
		}
	}
	f.bills[bill.ID] = bill
	f.lines = append(f.lines, items...)
	return nil
}

func (f *fakeBillRepo) GetBill(_ context.Context, id string) (*model.Bill, error) {
	if b, ok := f.bills[id]; ok {
		return b, nil
	}
	return nil, apperrors.NewNotFound("bill", nil)
}

func (f *fakeBillRepo) ListLineItemsForDate(_ context.Context, date time.Time) ([]*model.BillLineItem, error) {
	var out []*model.BillLineItem
	for _, line := range f.lines {
		if line.CreatedAt.Year() == date.Year() && line.CreatedAt.YearDay() == date.YearDay() {
			out = append(out, line)
		}
	}
	return out, nil
}

func (f *fakeBillRepo) ExistsForSchedule(_ context.Context, staffID uuid.UUID, scheduledAt time.Time) (bool, error) {
	for _, line := range f.lines {
		if line.StaffID == staffID && line.ScheduledAt.Equal(scheduledAt) {
			return true, nil
		}
	}
	return false, nil
}

type fakeCouponLookup struct {
	coupons map[string]*model.Coupon
}

func (f *fakeCouponLookup) Lookup(_ context.Context, code string) (*model.Coupon, error) {
	if c, ok := f.coupons[code]; ok {
		return c, nil
	}
	return nil, apperrors.NewNotFound("coupon", nil)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }

func newTestService(repo *fakeBillRepo, coupons map[string]*model.Coupon) *Service {
	if repo == nil {
		repo = newFakeBillRepo()
	}
	svc := NewService(repo, &fakeCouponLookup{coupons: coupons}, logger.NewLogger(nil))
	svc.now = func() time.Time { return time.Date(2024, 7, 10, 15, 0, 0, 0, time.UTC) }
	return svc
}

func line(amount string, phone *string) model.CreateBillLineRequest {
	return model.CreateBillLineRequest{
		Phone:        phone,
		Category:     "Hair",
		Service:      "Haircut",
		Variant:      "Standard",
		AmountBefore: dec(amount),
		StaffID:      uuid.New(),
		ScheduledAt:  time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC).Add(time.Duration(len(amount)) * time.Hour),
	}
}

func TestCreateBillSplitsPercentageDiscount(t *testing.T) {
	coupons := map[string]*model.Coupon{
		"SAVE10": {Code: "SAVE10", DiscountType: model.DiscountTypePercentage, DiscountValue: dec("10")},
	}
	svc := newTestService(nil, coupons)

	a := line("300", strPtr("9876543210"))
	b := line("450", strPtr("9876543211"))
	c := line("250", strPtr("9876543212"))
	b.ScheduledAt = a.ScheduledAt.Add(time.Hour)
	c.ScheduledAt = a.ScheduledAt.Add(2 * time.Hour)

	summary, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		VoucherCode: strPtr("SAVE10"),
		Items:       []model.CreateBillLineRequest{a, b, c},
	})
	require.NoError(t, err)

	assert.True(t, dec("270").Equal(summary.Items[0].AmountAfter))
	assert.True(t, dec("405").Equal(summary.Items[1].AmountAfter))
	assert.True(t, dec("225").Equal(summary.Items[2].AmountAfter))
	assert.True(t, dec("1000").Equal(summary.TotalBefore))
	assert.True(t, dec("900").Equal(summary.TotalAfter))
}

func TestCreateBillRoundingRemainderLandsOnLastLine(t *testing.T) {
	coupons := map[string]*model.Coupon{
		"OFF10": {Code: "OFF10", DiscountType: model.DiscountTypeFixed, DiscountValue: dec("10")},
	}
	svc := newTestService(nil, coupons)

	a := line("10", nil)
	b := line("10", nil)
	c := line("10", nil)
	b.ScheduledAt = a.ScheduledAt.Add(time.Hour)
	c.ScheduledAt = a.ScheduledAt.Add(2 * time.Hour)

	summary, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		VoucherCode: strPtr("OFF10"),
		Items:       []model.CreateBillLineRequest{a, b, c},
	})
	require.NoError(t, err)

	// 10 * (20/30) rounds to 6.67 on the first two lines; the last line
	// takes 20 - 13.34 = 6.66 so the lines sum to the bill total.
	assert.True(t, dec("6.67").Equal(summary.Items[0].AmountAfter))
	assert.True(t, dec("6.67").Equal(summary.Items[1].AmountAfter))
	assert.True(t, dec("6.66").Equal(summary.Items[2].AmountAfter))

	sum := decimal.Zero
	for _, item := range summary.Items {
		sum = sum.Add(item.AmountAfter)
	}
	assert.True(t, dec("20").Equal(sum))
}

func TestCreateBillClampsFixedDiscount(t *testing.T) {
	coupons := map[string]*model.Coupon{
		"BIG": {Code: "BIG", DiscountType: model.DiscountTypeFixed, DiscountValue: dec("100")},
	}
	svc := newTestService(nil, coupons)

	summary, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		VoucherCode: strPtr("BIG"),
		Items:       []model.CreateBillLineRequest{line("50", nil)},
	})
	require.NoError(t, err)
	assert.True(t, summary.TotalAfter.IsZero())
}

func TestCreateBillWithoutVoucherKeepsAmounts(t *testing.T) {
	svc := newTestService(nil, nil)

	summary, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		Items: []model.CreateBillLineRequest{line("150", nil)},
	})
	require.NoError(t, err)
	assert.True(t, dec("150").Equal(summary.Items[0].AmountAfter))
}

func TestCreateBillUnknownVoucher(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		VoucherCode: strPtr("NOPE"),
		Items:       []model.CreateBillLineRequest{line("100", nil)},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestCreateBillZeroSubtotal(t *testing.T) {
	coupons := map[string]*model.Coupon{
		"SAVE10": {Code: "SAVE10", DiscountType: model.DiscountTypePercentage, DiscountValue: dec("10")},
	}
	svc := newTestService(nil, coupons)

	summary, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		VoucherCode: strPtr("SAVE10"),
		Items:       []model.CreateBillLineRequest{line("0", nil)},
	})
	require.NoError(t, err)
	assert.True(t, summary.Items[0].AmountAfter.IsZero())
}

func TestCreateBillRejectsDoubleBilledSlot(t *testing.T) {
	repo := newFakeBillRepo()
	svc := newTestService(repo, nil)

	first := line("100", nil)
	_, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		Items: []model.CreateBillLineRequest{first},
	})
	require.NoError(t, err)

	_, err = svc.CreateBill(context.Background(), &model.CreateBillRequest{
		Items: []model.CreateBillLineRequest{first},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err, apperrors.ReasonAlreadyBilled))
}

func TestCreateBillIDFormat(t *testing.T) {
	svc := newTestService(nil, nil)

	summary, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		Items: []model.CreateBillLineRequest{line("100", nil)},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(summary.BillID, "BILL-"))
	assert.Len(t, summary.BillID, len("BILL-")+8)
	assert.Equal(t, summary.BillID, strings.ToUpper(summary.BillID))
}

func TestBillsForDateGroupsByBill(t *testing.T) {
	repo := newFakeBillRepo()
	svc := newTestService(repo, nil)
	svc.newBillID = sequentialBillIDs("BILL-AAAA0001", "BILL-AAAA0002")

	a := line("100", strPtr("9876543210"))
	b := line("200", strPtr("9876543210"))
	b.ScheduledAt = a.ScheduledAt.Add(time.Hour)
	_, err := svc.CreateBill(context.Background(), &model.CreateBillRequest{
		Items: []model.CreateBillLineRequest{a, b},
	})
	require.NoError(t, err)

	c := line("300", strPtr("9876500000"))
	c.ScheduledAt = a.ScheduledAt.Add(3 * time.Hour)
	_, err = svc.CreateBill(context.Background(), &model.CreateBillRequest{
		Items: []model.CreateBillLineRequest{c},
	})
	require.NoError(t, err)

	summaries, err := svc.BillsForDate(context.Background(), time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := make(map[string]*model.BillSummary)
	for _, s := range summaries {
		byID[s.BillID] = s
	}
	first := byID["BILL-AAAA0001"]
	require.NotNil(t, first)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, []string{"9876543210"}, first.Phones)
	assert.True(t, dec("300").Equal(first.TotalBefore))
}

func sequentialBillIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}
