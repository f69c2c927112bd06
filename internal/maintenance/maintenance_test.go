package maintenance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/maintenance"
	"github.com/pricepilot/dynamic-pricing/internal/mocks"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// =============================================================================
// Backfill
// =============================================================================

type fakeLegacy struct {
	rows     []schema.LegacyPriceOverwrite
	copied   map[int64]bool
	batches  [][]schema.OverwritePriceHistory
	failures int
}

func newFakeLegacy(n int) *fakeLegacy {
	f := &fakeLegacy{copied: map[int64]bool{}}
	propertyID := uuid.New()
	start := domain.MustParseDate("2024-01-01")
	for i := range n {
		f.rows = append(f.rows, schema.LegacyPriceOverwrite{
			ID:          int64(i + 1),
			PropertyID:  propertyID,
			CheckinDate: start.AddDays(i),
			Price:       decimal.NewFromInt(int64(100 + i)),
			CreatedAt:   time.Date(2023, 12, 1, 0, 0, i, 0, time.UTC),
		})
	}
	return f
}

func (f *fakeLegacy) ListLegacyOverwrites(_ context.Context, afterID int64, limit int) ([]schema.LegacyPriceOverwrite, error) {
	var page []schema.LegacyPriceOverwrite
	for _, r := range f.rows {
		if r.ID > afterID && len(page) < limit {
			page = append(page, r)
		}
	}
	return page, nil
}

func (f *fakeLegacy) BackfillOverwrites(_ context.Context, rows []schema.OverwritePriceHistory) (int64, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("deadlock detected")
	}
	f.batches = append(f.batches, rows)
	var inserted int64
	for _, r := range rows {
		key := r.AsOf.Unix()
		if !f.copied[key] {
			f.copied[key] = true
			inserted++
		}
	}
	return inserted, nil
}

func TestBackfillOverwrites(t *testing.T) {
	src := newFakeLegacy(7)

	report, err := maintenance.BackfillOverwrites(context.Background(), src, maintenance.BackfillOptions{BatchSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, report.Read)
	assert.Equal(t, int64(7), report.Inserted)
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, int64(7), report.LastID)

	require.Len(t, src.batches, 3)
	first := src.batches[0][0]
	assert.Equal(t, src.rows[0].PropertyID, first.PropertyID)
	assert.Equal(t, src.rows[0].CreatedAt, first.AsOf)
	assert.True(t, first.OverwritePrice.Valid)
	assert.True(t, decimal.NewFromInt(100).Equal(first.OverwritePrice.Decimal))

	// Re-running copies nothing new
	again, err := maintenance.BackfillOverwrites(context.Background(), src, maintenance.BackfillOptions{BatchSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, again.Read)
	assert.Zero(t, again.Inserted)
}

func TestBackfillOverwrites_LimitAndDryRun(t *testing.T) {
	src := newFakeLegacy(10)

	report, err := maintenance.BackfillOverwrites(context.Background(), src, maintenance.BackfillOptions{
		BatchSize: 4,
		Limit:     6,
		DryRun:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, report.Read)
	assert.Equal(t, 2, report.Batches)
	assert.Zero(t, report.Inserted)
	assert.Empty(t, src.batches)
}

func TestBackfillOverwrites_BatchError(t *testing.T) {
	src := newFakeLegacy(5)
	src.failures = 1

	report, err := maintenance.BackfillOverwrites(context.Background(), src, maintenance.BackfillOptions{BatchSize: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after id 0")
	assert.Zero(t, report.Read)
}

// =============================================================================
// Increments
// =============================================================================

type fakeIncrements struct {
	properties []schema.Property
	cells      map[uuid.UUID][]schema.DynamicIncrement
	seeded     map[uuid.UUID]bool
}

func (f *fakeIncrements) GetProperty(_ context.Context, id uuid.UUID) (*schema.Property, error) {
	for i := range f.properties {
		if f.properties[i].ID == id {
			return &f.properties[i], nil
		}
	}
	return nil, nil
}

func (f *fakeIncrements) ListActiveProperties(context.Context) ([]schema.Property, error) {
	return f.properties, nil
}

func (f *fakeIncrements) ListDynamicIncrements(_ context.Context, id uuid.UUID) ([]schema.DynamicIncrement, error) {
	return f.cells[id], nil
}

func (f *fakeIncrements) SeedDefaultIncrements(_ context.Context, id uuid.UUID, deleteExisting bool) (int64, error) {
	f.seeded[id] = deleteExisting
	return int64(len(domain.DefaultIncrements()) - len(f.cells[id])), nil
}

func newFakeIncrements() *fakeIncrements {
	full := schema.Property{ID: uuid.New()}
	partial := schema.Property{ID: uuid.New()}
	f := &fakeIncrements{
		properties: []schema.Property{full, partial},
		cells:      map[uuid.UUID][]schema.DynamicIncrement{},
		seeded:     map[uuid.UUID]bool{},
	}
	for _, d := range domain.DefaultIncrements() {
		cell := schema.DynamicIncrement{OccupancyCategory: d.Occupancy, LeadTimeCategory: d.LeadTime, IncrementValue: d.Value}
		f.cells[full.ID] = append(f.cells[full.ID], cell)
		if len(f.cells[partial.ID]) < 6 {
			f.cells[partial.ID] = append(f.cells[partial.ID], cell)
		}
	}
	return f
}

func TestSeedIncrements_DryRun(t *testing.T) {
	st := newFakeIncrements()
	total := int64(len(domain.DefaultIncrements()))

	report, err := maintenance.SeedIncrements(context.Background(), st, maintenance.SeedIncrementsOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Properties)
	assert.Equal(t, total-6, report.Written)
	assert.Empty(t, st.seeded)

	report, err = maintenance.SeedIncrements(context.Background(), st, maintenance.SeedIncrementsOptions{DryRun: true, DeleteExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 2*total, report.Written)
}

func TestSeedIncrements_SingleProperty(t *testing.T) {
	st := newFakeIncrements()
	target := st.properties[1].ID

	report, err := maintenance.SeedIncrements(context.Background(), st, maintenance.SeedIncrementsOptions{
		PropertyID:     &target,
		DeleteExisting: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Properties)
	assert.Equal(t, map[uuid.UUID]bool{target: true}, st.seeded)

	unknown := uuid.New()
	_, err = maintenance.SeedIncrements(context.Background(), st, maintenance.SeedIncrementsOptions{PropertyID: &unknown})
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

// =============================================================================
// Runs
// =============================================================================

type engineFunc func(ctx context.Context, property *schema.Property, days int) (*pricing.Result, error)

func (f engineFunc) Recalculate(ctx context.Context, property *schema.Property, days int) (*pricing.Result, error) {
	return f(ctx, property, days)
}

type checkerFunc func(ctx context.Context, property *schema.Property, days int) (*notification.Report, error)

func (f checkerFunc) CheckCoverage(ctx context.Context, property *schema.Property, days int) (*notification.Report, error) {
	return f(ctx, property, days)
}

func TestRecalculatePrices_ContinuesOnFailure(t *testing.T) {
	st := newFakeIncrements()
	failing := st.properties[0].ID

	engine := engineFunc(func(_ context.Context, property *schema.Property, days int) (*pricing.Result, error) {
		assert.Equal(t, 14, days)
		if property.ID == failing {
			return nil, errors.New("no base price")
		}
		return &pricing.Result{PropertyID: property.ID, Priced: 14, Changed: 3}, nil
	})

	report, err := maintenance.RecalculatePrices(context.Background(), st, engine, nil, 14)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Properties)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 3, report.Changed)
}

func TestCheckCoverage(t *testing.T) {
	st := newFakeIncrements()

	checker := checkerFunc(func(_ context.Context, property *schema.Property, days int) (*notification.Report, error) {
		return &notification.Report{
			PropertyID: property.ID,
			Gaps:       []notification.Gap{{Category: domain.NotificationOfferMissing, MissingDays: days}},
			Created:    1,
		}, nil
	})

	report, err := maintenance.CheckCoverage(context.Background(), st, checker, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Properties)
	assert.Equal(t, 2, report.Changed)
}

// =============================================================================
// Demo
// =============================================================================

type fakeDemoStore struct {
	profiles    map[string]*schema.Profile
	properties  map[uuid.UUID]*schema.Property
	deleted     []uuid.UUID
	settings    *schema.GeneralSettings
	msps        []schema.MinimumSellingPrice
	competitors []schema.Competitor
	links       []uuid.UUID
	prices      []schema.CompetitorPrice
	occupancy   []schema.DailyOccupancy
	onboarded   bool
}

func newFakeDemoStore() *fakeDemoStore {
	return &fakeDemoStore{
		profiles:   map[string]*schema.Profile{},
		properties: map[uuid.UUID]*schema.Property{},
	}
}

func (f *fakeDemoStore) GetProfileByEmail(_ context.Context, email string) (*schema.Profile, error) {
	return f.profiles[email], nil
}

func (f *fakeDemoStore) CreateProfile(_ context.Context, input store.CreateProfileInput) (*schema.Profile, error) {
	p := &schema.Profile{ID: uuid.New(), Email: input.Email, PasswordHash: input.PasswordHash, IsOnboarding: true, IsActive: true}
	f.profiles[input.Email] = p
	return p, nil
}

func (f *fakeDemoStore) CompleteOnboarding(context.Context, uuid.UUID) error {
	f.onboarded = true
	return nil
}

func (f *fakeDemoStore) GetOnboardingProperty(_ context.Context, profileID uuid.UUID) (*schema.Property, error) {
	for _, p := range f.properties {
		if p.CreatedBy == profileID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeDemoStore) DeletePropertyData(_ context.Context, id uuid.UUID) error {
	delete(f.properties, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDemoStore) UpsertPMS(_ context.Context, code domain.PMSCode, name string) (*schema.PropertyManagementSystem, error) {
	return &schema.PropertyManagementSystem{ID: 5, Code: string(code), Name: name}, nil
}

func (f *fakeDemoStore) CreatePropertyWithDefaults(_ context.Context, profileID uuid.UUID, input store.PropertyInput) (*schema.Property, error) {
	p := &schema.Property{
		ID:            uuid.New(),
		Name:          input.Name,
		PMSID:         input.PMSID,
		Country:       input.Country,
		Timezone:      input.Timezone,
		NumberOfRooms: input.NumberOfRooms,
		Currency:      input.Currency,
		IsActive:      true,
		CreatedBy:     profileID,
	}
	f.properties[p.ID] = p
	return p, nil
}

func (f *fakeDemoStore) SaveGeneralSettings(_ context.Context, settings *schema.GeneralSettings) error {
	f.settings = settings
	return nil
}

func (f *fakeDemoStore) SaveMinimumSellingPrice(_ context.Context, rule *schema.MinimumSellingPrice) error {
	f.msps = append(f.msps, *rule)
	return nil
}

func (f *fakeDemoStore) UpsertCompetitor(_ context.Context, input store.UpsertCompetitorInput) (*schema.Competitor, error) {
	c := schema.Competitor{ID: uuid.New(), ExternalHotelID: input.ExternalHotelID, Name: input.Name}
	f.competitors = append(f.competitors, c)
	return &c, nil
}

func (f *fakeDemoStore) LinkCompetitor(_ context.Context, propertyID, competitorID uuid.UUID, onlyFollow bool) (*schema.PropertyCompetitor, error) {
	f.links = append(f.links, competitorID)
	return &schema.PropertyCompetitor{PropertyID: propertyID, CompetitorID: competitorID, OnlyFollow: onlyFollow}, nil
}

func (f *fakeDemoStore) InsertCompetitorPrices(_ context.Context, rows []schema.CompetitorPrice) error {
	f.prices = append(f.prices, rows...)
	return nil
}

func (f *fakeDemoStore) InsertDailyOccupancy(_ context.Context, rows []schema.DailyOccupancy) error {
	f.occupancy = append(f.occupancy, rows...)
	return nil
}

func TestSeedDemo(t *testing.T) {
	clock := mocks.NewMockClock(gomock.NewController(t))
	clock.EXPECT().Now().Return(time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)).AnyTimes()

	st := newFakeDemoStore()
	report, err := maintenance.SeedDemo(context.Background(), st, clock, false)
	require.NoError(t, err)
	assert.False(t, report.Existing)
	assert.Equal(t, 3, report.Competitors)
	assert.Equal(t, 3*maintenance.DEMO_DAYS, report.PriceRows)
	assert.True(t, st.onboarded)

	property := st.properties[report.PropertyID]
	require.NotNil(t, property)
	assert.Equal(t, "Europe/Madrid", property.Timezone)
	require.NotNil(t, st.settings)
	assert.True(t, st.settings.IsPricingOnline)
	require.Len(t, st.msps, 1)
	assert.Equal(t, domain.MustParseDate("2025-03-03"), st.msps[0].ValidFrom)
	assert.Equal(t, domain.MustParseDate("2025-04-01"), st.msps[0].ValidUntil)
	assert.Len(t, st.occupancy, maintenance.DEMO_DAYS)
	assert.Len(t, st.links, 3)

	// 2025-03-07 is a Friday
	for _, p := range st.prices {
		if p.HotelName == "Gothic Quarter Inn" && p.CheckinDate == domain.MustParseDate("2025-03-07") {
			assert.True(t, decimal.NewFromInt(102).Equal(p.RawPrice), p.RawPrice.String())
		}
	}

	// A second run keeps the existing property
	again, err := maintenance.SeedDemo(context.Background(), st, clock, false)
	require.NoError(t, err)
	assert.True(t, again.Existing)
	assert.Equal(t, report.PropertyID, again.PropertyID)
	assert.Empty(t, st.deleted)

	// Unless asked to replace it
	replaced, err := maintenance.SeedDemo(context.Background(), st, clock, true)
	require.NoError(t, err)
	assert.NotEqual(t, report.PropertyID, replaced.PropertyID)
	assert.Equal(t, []uuid.UUID{report.PropertyID}, st.deleted)
	assert.Equal(t, report.ProfileID, replaced.ProfileID)
}
