package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

const (
	DEMO_EMAIL    = "demo@pricepilot.dev"
	DEMO_PASSWORD = "demo-password"
	DEMO_DAYS     = 30
)

// DemoStore is the store surface used to seed demo data
type DemoStore interface {
	GetProfileByEmail(ctx context.Context, email string) (*schema.Profile, error)
	CreateProfile(ctx context.Context, input store.CreateProfileInput) (*schema.Profile, error)
	CompleteOnboarding(ctx context.Context, profileID uuid.UUID) error
	GetOnboardingProperty(ctx context.Context, profileID uuid.UUID) (*schema.Property, error)
	DeletePropertyData(ctx context.Context, propertyID uuid.UUID) error
	UpsertPMS(ctx context.Context, code domain.PMSCode, name string) (*schema.PropertyManagementSystem, error)
	CreatePropertyWithDefaults(ctx context.Context, profileID uuid.UUID, input store.PropertyInput) (*schema.Property, error)
	SaveGeneralSettings(ctx context.Context, settings *schema.GeneralSettings) error
	SaveMinimumSellingPrice(ctx context.Context, rule *schema.MinimumSellingPrice) error
	UpsertCompetitor(ctx context.Context, input store.UpsertCompetitorInput) (*schema.Competitor, error)
	LinkCompetitor(ctx context.Context, propertyID, competitorID uuid.UUID, onlyFollow bool) (*schema.PropertyCompetitor, error)
	InsertCompetitorPrices(ctx context.Context, rows []schema.CompetitorPrice) error
	InsertDailyOccupancy(ctx context.Context, rows []schema.DailyOccupancy) error
}

// DemoReport describes the seeded demo account
type DemoReport struct {
	Email       string    `json:"email"`
	ProfileID   uuid.UUID `json:"profile_id"`
	PropertyID  uuid.UUID `json:"property_id"`
	Competitors int       `json:"competitors"`
	PriceRows   int       `json:"price_rows"`
	// Existing is set when the demo property was already present and left untouched
	Existing bool `json:"existing"`
}

type demoCompetitor struct {
	name      string
	latitude  float64
	longitude float64
	stars     float64
	basePrice int64
}

var demoCompetitors = []demoCompetitor{
	{name: "Hotel Rambla Centre", latitude: 41.3809, longitude: 2.1730, stars: 4, basePrice: 110},
	{name: "Eixample Suites", latitude: 41.3917, longitude: 2.1649, stars: 4, basePrice: 125},
	{name: "Gothic Quarter Inn", latitude: 41.3833, longitude: 2.1777, stars: 3, basePrice: 85},
}

// SeedDemo creates a demo profile with one priced property, three
// competitors and DEMO_DAYS of competitor prices and occupancy
func SeedDemo(ctx context.Context, st DemoStore, clock adapter.Clock, deleteExisting bool) (*DemoReport, error) {
	report := &DemoReport{Email: DEMO_EMAIL}

	profile, err := st.GetProfileByEmail(ctx, DEMO_EMAIL)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		hash, err := auth.HashPassword(DEMO_PASSWORD)
		if err != nil {
			return nil, err
		}
		profile, err = st.CreateProfile(ctx, store.CreateProfileInput{
			Email:        DEMO_EMAIL,
			PasswordHash: hash,
			FirstName:    "Demo",
			LastName:     "Hotelier",
		})
		if err != nil {
			return nil, err
		}
	}
	report.ProfileID = profile.ID

	existing, err := st.GetOnboardingProperty(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !deleteExisting {
			report.PropertyID = existing.ID
			report.Existing = true
			return report, nil
		}
		if err := st.DeletePropertyData(ctx, existing.ID); err != nil {
			return nil, err
		}
		logger.InfoCtx(ctx, "Deleted existing demo property", zap.String("propertyID", existing.ID.String()))
	}

	pms, err := st.UpsertPMS(ctx, domain.PMSOther, "Other")
	if err != nil {
		return nil, err
	}

	lat, lng := 41.3874, 2.1686
	property, err := st.CreatePropertyWithDefaults(ctx, profile.ID, store.PropertyInput{
		Name:          "Hotel Demo Barcelona",
		PMSID:         &pms.ID,
		Address:       "Passeig de Gracia 1",
		City:          "Barcelona",
		PostalCode:    "08007",
		Country:       "ES",
		Latitude:      &lat,
		Longitude:     &lng,
		Timezone:      pricing.TimezoneFor(&lat, &lng),
		NumberOfRooms: 40,
		Currency:      "EUR",
	})
	if err != nil {
		return nil, err
	}
	report.PropertyID = property.ID

	if err := st.CompleteOnboarding(ctx, profile.ID); err != nil {
		return nil, err
	}

	settings := schema.DefaultGeneralSettings(property.ID)
	settings.BasePrice = decimal.NewFromInt(100)
	settings.MaxPrice = decimal.NewFromInt(250)
	settings.HolidayIncrement = decimal.NewFromInt(10)
	settings.IsPricingOnline = true
	if err := st.SaveGeneralSettings(ctx, settings); err != nil {
		return nil, err
	}

	today := domain.DateOf(clock.Now().UTC())
	until := today.AddDays(DEMO_DAYS - 1)
	err = st.SaveMinimumSellingPrice(ctx, &schema.MinimumSellingPrice{
		PropertyID: property.ID,
		ValidFrom:  today,
		ValidUntil: until,
		MSP:        decimal.NewFromInt(70),
	})
	if err != nil {
		return nil, err
	}

	var prices []schema.CompetitorPrice
	for _, c := range demoCompetitors {
		competitor, err := st.UpsertCompetitor(ctx, store.UpsertCompetitorInput{
			ExternalHotelID: "demo-" + ulid.Make().String(),
			Name:            c.name,
			City:            "Barcelona",
			Latitude:        &c.latitude,
			Longitude:       &c.longitude,
			Stars:           &c.stars,
		})
		if err != nil {
			return nil, err
		}
		if _, err := st.LinkCompetitor(ctx, property.ID, competitor.ID, false); err != nil {
			return nil, err
		}
		report.Competitors++

		for i := range DEMO_DAYS {
			date := today.AddDays(i)
			prices = append(prices, schema.CompetitorPrice{
				CompetitorID: competitor.ID,
				CheckinDate:  date,
				RawPrice:     demoPrice(c.basePrice, date),
				Currency:     "EUR",
				RoomName:     "Double Room",
				MaxPersons:   2,
				HotelName:    c.name,
				ScrapedAt:    clock.Now(),
			})
		}
	}
	if err := st.InsertCompetitorPrices(ctx, prices); err != nil {
		return nil, fmt.Errorf("failed to insert demo competitor prices: %w", err)
	}
	report.PriceRows = len(prices)

	occupancy := make([]schema.DailyOccupancy, 0, DEMO_DAYS)
	for i := range DEMO_DAYS {
		occupancy = append(occupancy, schema.DailyOccupancy{
			PropertyID:     property.ID,
			StayDate:       today.AddDays(i),
			RoomsSold:      demoRoomsSold(i, property.NumberOfRooms),
			RoomsAvailable: property.NumberOfRooms,
			AsOf:           clock.Now(),
		})
	}
	if err := st.InsertDailyOccupancy(ctx, occupancy); err != nil {
		return nil, fmt.Errorf("failed to insert demo occupancy: %w", err)
	}

	logger.InfoCtx(ctx, "Seeded demo data",
		zap.String("profileID", report.ProfileID.String()),
		zap.String("propertyID", report.PropertyID.String()),
		zap.Int("price_rows", report.PriceRows),
	)
	return report, nil
}

// demoPrice raises weekend prices by 20%
func demoPrice(base int64, date domain.Date) decimal.Decimal {
	price := decimal.NewFromInt(base)
	switch date.Weekday() {
	case time.Friday, time.Saturday:
		price = price.Mul(decimal.NewFromFloat(1.2))
	}
	return price.Round(2)
}

// demoRoomsSold fills up towards the near dates
func demoRoomsSold(daysAhead, rooms int) int {
	sold := rooms - daysAhead
	if sold < rooms/4 {
		sold = rooms / 4
	}
	return sold
}
