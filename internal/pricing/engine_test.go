package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

type fakeSource struct {
	settings   *schema.GeneralSettings
	links      []schema.PropertyCompetitor
	lowest     []store.LowestCompetitorPrice
	occupancy  []schema.DailyOccupancy
	increments []schema.DynamicIncrement
	msps       []schema.MinimumSellingPrice
	offers     []schema.OfferIncrement
	losSetups  []schema.LosSetup
	reductions []schema.LosReduction
	latest     []schema.PriceChangeHistory

	requestedCompetitors []uuid.UUID
	created              []schema.PriceChangeHistory
}

func (f *fakeSource) GetGeneralSettings(context.Context, uuid.UUID) (*schema.GeneralSettings, error) {
	return f.settings, nil
}

func (f *fakeSource) ListPropertyCompetitors(context.Context, uuid.UUID) ([]schema.PropertyCompetitor, error) {
	return f.links, nil
}

func (f *fakeSource) GetLowestCompetitorPrices(_ context.Context, ids []uuid.UUID, _ domain.DateRange) ([]store.LowestCompetitorPrice, error) {
	f.requestedCompetitors = ids
	allowed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	var out []store.LowestCompetitorPrice
	for _, p := range f.lowest {
		if allowed[p.CompetitorID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) ListDailyOccupancy(context.Context, uuid.UUID, domain.DateRange) ([]schema.DailyOccupancy, error) {
	return f.occupancy, nil
}

func (f *fakeSource) ListDynamicIncrements(context.Context, uuid.UUID) ([]schema.DynamicIncrement, error) {
	return f.increments, nil
}

func (f *fakeSource) ListMinimumSellingPrices(context.Context, uuid.UUID, *domain.DateRange) ([]schema.MinimumSellingPrice, error) {
	return f.msps, nil
}

func (f *fakeSource) ListOfferIncrements(context.Context, uuid.UUID, *domain.DateRange) ([]schema.OfferIncrement, error) {
	return f.offers, nil
}

func (f *fakeSource) ListLosSetups(context.Context, uuid.UUID, *domain.DateRange) ([]schema.LosSetup, error) {
	return f.losSetups, nil
}

func (f *fakeSource) ListLosReductions(context.Context, uuid.UUID) ([]schema.LosReduction, error) {
	return f.reductions, nil
}

func (f *fakeSource) GetLatestPriceChanges(context.Context, uuid.UUID, domain.DateRange) ([]schema.PriceChangeHistory, error) {
	return f.latest, nil
}

func (f *fakeSource) CreatePriceChanges(_ context.Context, rows []schema.PriceChangeHistory) error {
	f.created = append(f.created, rows...)
	return nil
}

type fixedHolidays map[domain.Date]bool

func (h fixedHolidays) IsHoliday(_ string, date domain.Date) bool {
	return h[date]
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProperty() *schema.Property {
	return &schema.Property{
		ID:            uuid.New(),
		Name:          "Hotel Arts",
		Country:       "ES",
		Timezone:      "Europe/Madrid",
		NumberOfRooms: 40,
		IsActive:      true,
	}
}

// fixedClock stops time at now
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
func (c fixedClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
func (c fixedClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func newTestEngine(t *testing.T, source Source, now time.Time, holidays HolidayCalendar) *Engine {
	t.Helper()
	return NewEngine(source, fixedClock{now: now}, holidays)
}

func TestRecalculate_FullPipeline(t *testing.T) {
	property := testProperty()
	// 23:30 UTC is already the next day in Madrid
	now := time.Date(2026, time.March, 1, 23, 30, 0, 0, time.UTC)
	today := domain.MustParseDate("2026-03-02")
	date := today.AddDays(10)

	c1, c2, followed := uuid.New(), uuid.New(), uuid.New()
	source := &fakeSource{
		settings: &schema.GeneralSettings{
			PropertyID:     property.ID,
			PricingMode:    domain.PricingModeAvg,
			MinCompetitors: 1,
			MaxCompetitors: 10,
		},
		links: []schema.PropertyCompetitor{
			{CompetitorID: c1},
			{CompetitorID: c2},
			{CompetitorID: followed, OnlyFollow: true},
		},
		lowest: []store.LowestCompetitorPrice{
			{CompetitorID: c1, CheckinDate: date, Price: decimal.NewNullDecimal(dec("100"))},
			{CompetitorID: c2, CheckinDate: date, Price: decimal.NewNullDecimal(dec("120"))},
			{CompetitorID: followed, CheckinDate: date, Price: decimal.NewNullDecimal(dec("10"))},
			// sold out on the previous night does not count as a price
			{CompetitorID: c1, CheckinDate: date.AddDays(-1), SoldOut: true},
		},
		// 30 of 40 rooms sold is 75%, lead time 10 days
		occupancy: []schema.DailyOccupancy{{StayDate: date, RoomsSold: 30}},
		increments: []schema.DynamicIncrement{
			{OccupancyCategory: 4, LeadTimeCategory: 3, IncrementValue: dec("5")},
		},
		offers: []schema.OfferIncrement{
			{ValidFrom: date, ValidUntil: date, IncrementType: domain.AdjustmentPercentage, IncrementValue: dec("10"), IsActive: true},
			{ValidFrom: date, ValidUntil: date, IncrementType: domain.AdjustmentFixed, IncrementValue: dec("500"), IsActive: false},
		},
		msps: []schema.MinimumSellingPrice{
			{ValidFrom: today, ValidUntil: date, MSP: dec("100")},
		},
		losSetups: []schema.LosSetup{{ValidFrom: date, ValidUntil: date, MaxLOS: 3}},
		reductions: []schema.LosReduction{
			{LeadTimeDays: 7, OccupancyCategory: 4, NumNights: 2, ReductionPercent: dec("10")},
			{LeadTimeDays: 20, OccupancyCategory: 4, NumNights: 2, ReductionPercent: dec("50")},
		},
	}

	engine := newTestEngine(t, source, now, fixedHolidays{})
	result, err := engine.Recalculate(context.Background(), property, 11)
	require.NoError(t, err)

	assert.Equal(t, today, result.From)
	assert.Equal(t, date, result.Until)
	assert.ElementsMatch(t, []uuid.UUID{c1, c2}, source.requestedCompetitors)

	// dates before the target only have the MSP to go on
	assert.Equal(t, 11, result.Priced)
	require.Len(t, source.created, 11)

	row := source.created[10]
	assert.Equal(t, date, row.CheckinDate)
	// avg(100, 120) = 110, +5% = 115.5, +10% offer = 127.05
	assert.True(t, dec("127.05").Equal(row.RecommendedPrice), row.RecommendedPrice.String())
	assert.True(t, dec("110").Equal(row.CompetitorPrice.Decimal))
	assert.Equal(t, domain.OccupancyCategory(4), row.OccupancyCategory)
	assert.Equal(t, domain.LeadTimeCategory(3), row.LeadTimeCategory)
	assert.False(t, row.MSPApplied)
	assert.Equal(t, now, row.AsOf)

	los, err := DecodeLosPrices(row.LosPrices)
	require.NoError(t, err)
	assert.True(t, dec("114.35").Equal(los[2]), los[2].String())
	assert.True(t, dec("127.05").Equal(los[3]))

	first := source.created[0]
	assert.True(t, dec("100").Equal(first.RecommendedPrice))
	assert.False(t, first.CompetitorPrice.Valid)
	assert.Empty(t, first.LosPrices)
}

func TestRecalculate_AppendsOnlyOnChange(t *testing.T) {
	property := testProperty()
	now := time.Date(2026, time.June, 10, 8, 0, 0, 0, time.UTC)
	today := domain.MustParseDate("2026-06-10")

	source := &fakeSource{
		settings: &schema.GeneralSettings{
			PricingMode:    domain.PricingModeMin,
			MinCompetitors: 5,
			BasePrice:      dec("90"),
		},
		losSetups: []schema.LosSetup{{ValidFrom: today, ValidUntil: today, MaxLOS: 2}},
		latest: []schema.PriceChangeHistory{
			// jsonb reformats the stored map
			{CheckinDate: today, RecommendedPrice: dec("90.00"), LosPrices: datatypes.JSON(`{"2": "90.00"}`)},
			{CheckinDate: today.AddDays(1), RecommendedPrice: dec("85")},
		},
	}

	engine := newTestEngine(t, source, now, fixedHolidays{})
	result, err := engine.Recalculate(context.Background(), property, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Priced)
	assert.Equal(t, 1, result.Changed)
	require.Len(t, source.created, 1)
	assert.Equal(t, today.AddDays(1), source.created[0].CheckinDate)
	assert.True(t, dec("90").Equal(source.created[0].RecommendedPrice))
}

func TestRecalculate_InvalidDays(t *testing.T) {
	engine := newTestEngine(t, &fakeSource{}, time.Now(), nil)
	_, err := engine.Recalculate(context.Background(), testProperty(), 0)
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	today := domain.MustParseDate("2026-12-20")
	christmas := domain.MustParseDate("2026-12-25")

	tests := []struct {
		name       string
		rules      rules
		date       domain.Date
		wantOK     bool
		wantPrice  string
		wantMSP    bool
		wantCompet string
	}{
		{
			name: "fewer competitors than minimum falls back to base price",
			rules: rules{
				settings:   schema.GeneralSettings{PricingMode: domain.PricingModeAvg, MinCompetitors: 3, BasePrice: dec("90")},
				competitor: map[domain.Date][]decimal.Decimal{today: {dec("200"), dec("210")}},
			},
			date:      today,
			wantOK:    true,
			wantPrice: "90",
		},
		{
			name: "only the cheapest max competitors are aggregated",
			rules: rules{
				settings:   schema.GeneralSettings{PricingMode: domain.PricingModeMax, MinCompetitors: 1, MaxCompetitors: 2},
				competitor: map[domain.Date][]decimal.Decimal{today: {dec("300"), dec("100"), dec("120")}},
			},
			date:       today,
			wantOK:     true,
			wantPrice:  "120",
			wantCompet: "120",
		},
		{
			name: "median of an even count",
			rules: rules{
				settings:   schema.GeneralSettings{PricingMode: domain.PricingModeMedian, MinCompetitors: 1},
				competitor: map[domain.Date][]decimal.Decimal{today: {dec("100"), dec("90"), dec("130"), dec("110")}},
			},
			date:       today,
			wantOK:     true,
			wantPrice:  "105",
			wantCompet: "105",
		},
		{
			name: "holiday increment",
			rules: rules{
				settings: schema.GeneralSettings{MinCompetitors: 1, BasePrice: dec("100"), HolidayIncrement: dec("20")},
				holidays: fixedHolidays{christmas: true},
			},
			date:      christmas,
			wantOK:    true,
			wantPrice: "120",
		},
		{
			name: "fixed offer adds an amount",
			rules: rules{
				settings: schema.GeneralSettings{MinCompetitors: 1, BasePrice: dec("100")},
				offers: []schema.OfferIncrement{
					{ValidFrom: today, ValidUntil: christmas, IncrementType: domain.AdjustmentFixed, IncrementValue: dec("-15.5"), IsActive: true},
				},
			},
			date:      today,
			wantOK:    true,
			wantPrice: "84.5",
		},
		{
			name: "max price caps before the msp floor",
			rules: rules{
				settings:   schema.GeneralSettings{PricingMode: domain.PricingModeAvg, MinCompetitors: 1, MaxPrice: dec("200")},
				competitor: map[domain.Date][]decimal.Decimal{today: {dec("300")}},
				msps: []schema.MinimumSellingPrice{
					{ValidFrom: today, ValidUntil: today, MSP: dec("180")},
					{ValidFrom: today, ValidUntil: today, MSP: dec("250")},
				},
			},
			date:       today,
			wantOK:     true,
			wantPrice:  "250",
			wantMSP:    true,
			wantCompet: "300",
		},
		{
			name: "negative grid increment",
			rules: rules{
				settings:   schema.GeneralSettings{MinCompetitors: 1, BasePrice: dec("100")},
				increments: map[[2]int]decimal.Decimal{{0, 0}: dec("-15")},
			},
			date:      today,
			wantOK:    true,
			wantPrice: "85",
		},
		{
			name:   "nothing to price",
			rules:  rules{settings: schema.GeneralSettings{MinCompetitors: 1}},
			date:   today,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rules.today = today
			q, ok := tt.rules.quote(tt.date)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.True(t, dec(tt.wantPrice).Equal(q.Price), "got %s", q.Price)
			assert.Equal(t, tt.wantMSP, q.MSPApplied)
			if tt.wantCompet == "" {
				assert.False(t, q.CompetitorPrice.Valid)
			} else {
				assert.True(t, dec(tt.wantCompet).Equal(q.CompetitorPrice.Decimal))
			}
		})
	}
}

func TestLosPrices_CappedAtMaxNights(t *testing.T) {
	today := domain.MustParseDate("2026-05-01")
	r := rules{
		today:     today,
		settings:  schema.GeneralSettings{MinCompetitors: 1, BasePrice: dec("100")},
		losSetups: []schema.LosSetup{{ValidFrom: today, ValidUntil: today, MaxLOS: 30}},
	}
	q, ok := r.quote(today)
	require.True(t, ok)
	assert.Len(t, q.LosPrices, domain.MAX_LOS_NIGHTS-1)
}
