package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

type fakePriceRepo struct {
	entries []*model.PriceHistoryEntry
}

func (f *fakePriceRepo) EffectiveEntry(_ context.Context, variantID uuid.UUID, asOf time.Time) (*model.PriceHistoryEntry, error) {
	for _, e := range f.entries {
		if e.VariantID == variantID && e.CurrentAt(asOf) {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakePriceRepo) LatestEntry(_ context.Context, variantID uuid.UUID) (*model.PriceHistoryEntry, error) {
	var latest *model.PriceHistoryEntry
	for _, e := range f.entries {
		if e.VariantID != variantID {
			continue
		}
		if latest == nil || e.StartAt.After(latest.StartAt) {
			latest = e
		}
	}
	return latest, nil
}

func (f *fakePriceRepo) ListEntries(_ context.Context, variantID uuid.UUID) ([]*model.PriceHistoryEntry, error) {
	var out []*model.PriceHistoryEntry
	for _, e := range f.entries {
		if e.VariantID == variantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakePriceRepo) Append(_ context.Context, entry *model.PriceHistoryEntry) error {
	for _, e := range f.entries {
		if e.VariantID == entry.VariantID && e.EndAt == nil {
			end := entry.StartAt
			e.EndAt = &end
		}
	}
	f.entries = append(f.entries, entry)
	return nil
}

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

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestService(priceRepo *fakePriceRepo, catalogRepo *fakeCatalogRepo) *Service {
	if catalogRepo == nil {
		catalogRepo = &fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{}}
	}
	return NewService(priceRepo, catalogRepo)
}

func TestResolvePicksEntryByInterval(t *testing.T) {
	variantID := uuid.New()
	t0 := date(2024, 1, 1)
	t1 := date(2024, 3, 1)
	t2 := date(2024, 6, 1)

	repo := &fakePriceRepo{entries: []*model.PriceHistoryEntry{
		{VariantID: variantID, ActualPrice: dec("100"), StartAt: t0, EndAt: &t1},
		{VariantID: variantID, ActualPrice: dec("120"), StartAt: t1, EndAt: &t2},
		{VariantID: variantID, ActualPrice: dec("150"), StartAt: t2},
	}}
	svc := newTestService(repo, nil)

	cases := []struct {
		name string
		asOf time.Time
		want string
	}{
		{"within first entry", t0.Add(24 * time.Hour), "100"},
		{"start is inclusive", t1, "120"},
		{"end is exclusive", t2.Add(-time.Second), "120"},
		{"open-ended tail", t2.Add(365 * 24 * time.Hour), "150"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := svc.Resolve(context.Background(), variantID, tc.asOf)
			require.NoError(t, err)
			assert.True(t, dec(tc.want).Equal(price.Final()), "want %s, got %s", tc.want, price.Final())
		})
	}
}

func TestResolveBeforeFirstEntryIsNotFound(t *testing.T) {
	variantID := uuid.New()
	repo := &fakePriceRepo{entries: []*model.PriceHistoryEntry{
		{VariantID: variantID, ActualPrice: dec("100"), StartAt: date(2024, 1, 1)},
	}}
	catalog := &fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{
		variantID: {DurationMinutes: 30},
	}}
	svc := newTestService(repo, catalog)

	_, err := svc.Resolve(context.Background(), variantID, date(2023, 12, 31))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestResolveOfferWindow(t *testing.T) {
	// Haircut: actual 500 from 2024-01-01, offer 400 during June.
	variantID := uuid.New()
	juneStart := date(2024, 6, 1)
	julyStart := date(2024, 7, 1)

	repo := &fakePriceRepo{entries: []*model.PriceHistoryEntry{
		{VariantID: variantID, ActualPrice: dec("500"), StartAt: date(2024, 1, 1), EndAt: &juneStart},
		{VariantID: variantID, ActualPrice: dec("500"), OfferPrice: decPtr("400"), StartAt: juneStart, EndAt: &julyStart},
		{VariantID: variantID, ActualPrice: dec("500"), StartAt: julyStart},
	}}
	svc := newTestService(repo, nil)

	mid, err := svc.Resolve(context.Background(), variantID, date(2024, 6, 15))
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(mid.Final()))

	after, err := svc.Resolve(context.Background(), variantID, julyStart)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(after.Final()))
}

func TestResolveIgnoresHigherOffer(t *testing.T) {
	variantID := uuid.New()
	repo := &fakePriceRepo{entries: []*model.PriceHistoryEntry{
		{VariantID: variantID, ActualPrice: dec("300"), OfferPrice: decPtr("350"), StartAt: date(2024, 1, 1)},
	}}
	svc := newTestService(repo, nil)

	price, err := svc.Resolve(context.Background(), variantID, date(2024, 2, 1))
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(price.Final()))
}

func TestResolveFallsBackToVariantBasePrice(t *testing.T) {
	variantID := uuid.New()
	catalog := &fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{
		variantID: {BasePrice: decPtr("250"), BaseOfferPrice: decPtr("200")},
	}}
	svc := newTestService(&fakePriceRepo{}, catalog)

	price, err := svc.Resolve(context.Background(), variantID, date(2024, 5, 1))
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(price.Final()))
}

func TestResolveIsDeterministic(t *testing.T) {
	variantID := uuid.New()
	repo := &fakePriceRepo{entries: []*model.PriceHistoryEntry{
		{VariantID: variantID, ActualPrice: dec("180"), StartAt: date(2024, 1, 1)},
	}}
	svc := newTestService(repo, nil)

	asOf := date(2024, 4, 10)
	first, err := svc.Resolve(context.Background(), variantID, asOf)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), variantID, asOf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAppendPriceClosesPreviousEntry(t *testing.T) {
	variantID := uuid.New()
	repo := &fakePriceRepo{}
	catalog := &fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{
		variantID: {DurationMinutes: 45},
	}}
	svc := newTestService(repo, catalog)

	from1 := date(2024, 1, 1)
	_, err := svc.AppendPrice(context.Background(), variantID, &model.AppendPriceRequest{
		ActualPrice:   dec("500"),
		EffectiveFrom: &from1,
	})
	require.NoError(t, err)

	from2 := date(2024, 6, 1)
	_, err = svc.AppendPrice(context.Background(), variantID, &model.AppendPriceRequest{
		ActualPrice:   dec("550"),
		EffectiveFrom: &from2,
	})
	require.NoError(t, err)

	first := repo.entries[0]
	require.NotNil(t, first.EndAt)
	assert.True(t, first.EndAt.Equal(from2))

	// The old entry expired exactly at the boundary; the new one took over.
	price, err := svc.Resolve(context.Background(), variantID, from2)
	require.NoError(t, err)
	assert.True(t, dec("550").Equal(price.Final()))
}

func TestAppendPriceRejectsInvalidInput(t *testing.T) {
	variantID := uuid.New()
	catalog := &fakeCatalogRepo{variants: map[uuid.UUID]*model.ServiceVariant{
		variantID: {DurationMinutes: 45},
	}}
	svc := newTestService(&fakePriceRepo{}, catalog)

	_, err := svc.AppendPrice(context.Background(), variantID, &model.AppendPriceRequest{
		ActualPrice: dec("-10"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))

	_, err = svc.AppendPrice(context.Background(), variantID, &model.AppendPriceRequest{
		ActualPrice: dec("100"),
		OfferPrice:  decPtr("120"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
}
