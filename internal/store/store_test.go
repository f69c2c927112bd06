package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildTestProfile(t *testing.T, store Store, email string) *schema.Profile {
	t.Helper()
	profile, err := store.CreateProfile(context.Background(), CreateProfileInput{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
	})
	require.NoError(t, err)
	return profile
}

func buildTestProperty(t *testing.T, store Store, profileID uuid.UUID, name string) *schema.Property {
	t.Helper()
	lat, lng := 41.3874, 2.1686
	property, err := store.CreatePropertyWithDefaults(context.Background(), profileID, PropertyInput{
		Name:          name,
		Address:       "Carrer de Mallorca 1",
		City:          "Barcelona",
		PostalCode:    "08008",
		Country:       "ES",
		Latitude:      &lat,
		Longitude:     &lng,
		Timezone:      "Europe/Madrid",
		NumberOfRooms: 40,
		Currency:      "EUR",
	})
	require.NoError(t, err)
	return property
}

func buildTestCompetitor(t *testing.T, store Store, externalID string) *schema.Competitor {
	t.Helper()
	competitor, err := store.UpsertCompetitor(context.Background(), UpsertCompetitorInput{
		ExternalHotelID: externalID,
		Name:            "Hotel " + externalID,
		City:            "Barcelona",
	})
	require.NoError(t, err)
	return competitor
}

func buildTestPrice(competitorID uuid.UUID, date string, price string, scrapedAt time.Time) schema.CompetitorPrice {
	return schema.CompetitorPrice{
		CompetitorID: competitorID,
		CheckinDate:  domain.MustParseDate(date),
		RawPrice:     decimal.RequireFromString(price),
		Currency:     "EUR",
		RoomName:     "Double room",
		MaxPersons:   2,
		HotelName:    "Hotel Arts",
		ScrapedAt:    scrapedAt,
	}
}

func strPtr(s string) *string {
	return &s
}

// =============================================================================
// Test: Profiles and refresh tokens
// =============================================================================

func testProfiles(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("email is normalized", func(t *testing.T) {
		profile := buildTestProfile(t, store, "  Owner@Example.COM ")
		assert.Equal(t, "owner@example.com", profile.Email)
		assert.True(t, profile.IsOnboarding)
		assert.True(t, profile.IsActive)

		found, err := store.GetProfileByEmail(ctx, "OWNER@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, profile.ID, found.ID)
	})

	t.Run("missing profile returns nil", func(t *testing.T) {
		found, err := store.GetProfileByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("complete onboarding", func(t *testing.T) {
		profile := buildTestProfile(t, store, "onboard@example.com")
		require.NoError(t, store.CompleteOnboarding(ctx, profile.ID))

		found, err := store.GetProfileByID(ctx, profile.ID)
		require.NoError(t, err)
		assert.False(t, found.IsOnboarding)
	})

	// a unique violation aborts the surrounding test transaction, so this runs last
	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.CreateProfile(ctx, CreateProfileInput{Email: "owner@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
}

func testRefreshTokens(t *testing.T, store Store) {
	ctx := context.Background()
	profile := buildTestProfile(t, store, "refresh@example.com")
	now := time.Now().UTC()

	first := &schema.RefreshToken{ProfileID: profile.ID, TokenHash: "hash-1", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.CreateRefreshToken(ctx, first))

	t.Run("rotation revokes the old token", func(t *testing.T) {
		next := &schema.RefreshToken{ProfileID: profile.ID, TokenHash: "hash-2", ExpiresAt: now.Add(time.Hour)}
		require.NoError(t, store.RotateRefreshToken(ctx, "hash-1", next, now))

		old, err := store.GetRefreshToken(ctx, "hash-1")
		require.NoError(t, err)
		require.NotNil(t, old.RevokedAt)

		current, err := store.GetRefreshToken(ctx, "hash-2")
		require.NoError(t, err)
		assert.Nil(t, current.RevokedAt)
	})

	t.Run("rotating a revoked token fails", func(t *testing.T) {
		next := &schema.RefreshToken{ProfileID: profile.ID, TokenHash: "hash-3", ExpiresAt: now.Add(time.Hour)}
		err := store.RotateRefreshToken(ctx, "hash-1", next, now)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

		missing, err := store.GetRefreshToken(ctx, "hash-3")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, store.RevokeRefreshToken(ctx, "hash-2", now))
		token, err := store.GetRefreshToken(ctx, "hash-2")
		require.NoError(t, err)
		assert.NotNil(t, token.RevokedAt)
	})
}

// =============================================================================
// Test: Properties
// =============================================================================

func testProperties(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "hotelier@example.com")
	other := buildTestProfile(t, store, "other@example.com")
	property := buildTestProperty(t, store, owner.ID, "Hotel Sol")

	t.Run("defaults are seeded with the property", func(t *testing.T) {
		settings, err := store.GetGeneralSettings(ctx, property.ID)
		require.NoError(t, err)
		require.NotNil(t, settings)
		assert.Equal(t, domain.PricingModeAvg, settings.PricingMode)
		assert.Equal(t, 1, settings.MinCompetitors)
		assert.Equal(t, 10, settings.MaxCompetitors)
		assert.True(t, settings.IsCompetitorTrackingOnline)

		cells, err := store.ListDynamicIncrements(ctx, property.ID)
		require.NoError(t, err)
		assert.Len(t, cells, domain.OccupancyCategoryCount*domain.LeadTimeCategoryCount)
	})

	t.Run("onboarding property lookup", func(t *testing.T) {
		found, err := store.GetOnboardingProperty(ctx, owner.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, property.ID, found.ID)

		none, err := store.GetOnboardingProperty(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("ensure onboarding property", func(t *testing.T) {
		existing, created, err := store.EnsureOnboardingProperty(ctx, owner.ID, PropertyInput{Name: "Ignored", NumberOfRooms: 5})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, property.ID, existing.ID)
		assert.Equal(t, property.Name, existing.Name)

		fresh := buildTestProfile(t, store, "fresh@example.com")
		first, created, err := store.EnsureOnboardingProperty(ctx, fresh.ID, PropertyInput{Name: "Casa Nova", Timezone: "Europe/Lisbon", NumberOfRooms: 8})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, fresh.ID, first.CreatedBy)

		again, created, err := store.EnsureOnboardingProperty(ctx, fresh.ID, PropertyInput{Name: "Casa Nova", NumberOfRooms: 8})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)

		settings, err := store.GetGeneralSettings(ctx, first.ID)
		require.NoError(t, err)
		assert.NotNil(t, settings)
	})

	t.Run("ownership scoping", func(t *testing.T) {
		found, err := store.GetPropertyForProfile(ctx, owner.ID, property.ID)
		require.NoError(t, err)
		require.NotNil(t, found)

		hidden, err := store.GetPropertyForProfile(ctx, other.ID, property.ID)
		require.NoError(t, err)
		assert.Nil(t, hidden)

		list, err := store.ListPropertiesForProfile(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		owners, err := store.ListPropertyOwners(ctx, property.ID)
		require.NoError(t, err)
		require.Len(t, owners, 1)
		assert.Equal(t, owner.ID, owners[0].ID)
	})

	t.Run("partial update", func(t *testing.T) {
		name := "Hotel Sol & Mar"
		rooms := 55
		updated, err := store.UpdateProperty(ctx, property.ID, PropertyUpdate{Name: &name, NumberOfRooms: &rooms})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, name, updated.Name)
		assert.Equal(t, 55, updated.NumberOfRooms)
		assert.Equal(t, "Barcelona", updated.City)

		missing, err := store.UpdateProperty(ctx, uuid.New(), PropertyUpdate{Name: &name})
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("pms upsert", func(t *testing.T) {
		pms, err := store.UpsertPMS(ctx, domain.PMSApaleo, "Apaleo")
		require.NoError(t, err)
		renamed, err := store.UpsertPMS(ctx, domain.PMSApaleo, "apaleo GmbH")
		require.NoError(t, err)
		assert.Equal(t, pms.ID, renamed.ID)
		assert.Equal(t, "apaleo GmbH", renamed.Name)
	})

	t.Run("deactivate hides the property", func(t *testing.T) {
		extra := buildTestProperty(t, store, owner.ID, "Hotel Luna")
		require.NoError(t, store.DeactivateProperty(ctx, extra.ID))

		found, err := store.GetProperty(ctx, extra.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		active, err := store.ListActiveProperties(ctx)
		require.NoError(t, err)
		for _, p := range active {
			assert.NotEqual(t, extra.ID, p.ID)
		}
	})

	t.Run("delete property data", func(t *testing.T) {
		doomed := buildTestProperty(t, store, owner.ID, "Hotel Ocaso")
		require.NoError(t, store.DeletePropertyData(ctx, doomed.ID))

		settings, err := store.GetGeneralSettings(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Nil(t, settings)

		cells, err := store.ListDynamicIncrements(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Empty(t, cells)
	})
}

// =============================================================================
// Test: Competitors
// =============================================================================

func testCompetitors(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "comp@example.com")
	property := buildTestProperty(t, store, owner.ID, "Hotel Comp")

	t.Run("upsert keeps the id", func(t *testing.T) {
		first := buildTestCompetitor(t, store, "bk-1")
		again, err := store.UpsertCompetitor(ctx, UpsertCompetitorInput{ExternalHotelID: "bk-1", Name: "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, "Renamed", again.Name)
	})

	t.Run("unlink hides the link but keeps prices", func(t *testing.T) {
		competitor := buildTestCompetitor(t, store, "bk-2")
		_, err := store.LinkCompetitor(ctx, property.ID, competitor.ID, false)
		require.NoError(t, err)

		now := time.Now().UTC()
		require.NoError(t, store.InsertCompetitorPrices(ctx, []schema.CompetitorPrice{
			buildTestPrice(competitor.ID, "2026-07-01", "120.00", now),
		}))

		removed, err := store.UnlinkCompetitor(ctx, property.ID, competitor.ID, now)
		require.NoError(t, err)
		assert.True(t, removed)

		removedAgain, err := store.UnlinkCompetitor(ctx, property.ID, competitor.ID, now)
		require.NoError(t, err)
		assert.False(t, removedAgain)

		links, err := store.ListPropertyCompetitors(ctx, property.ID)
		require.NoError(t, err)
		for _, l := range links {
			assert.NotEqual(t, competitor.ID, l.CompetitorID)
		}

		window := domain.DateRange{From: domain.MustParseDate("2026-07-01"), Until: domain.MustParseDate("2026-07-01")}
		prices, err := store.GetLowestCompetitorPrices(ctx, []uuid.UUID{competitor.ID}, window)
		require.NoError(t, err)
		assert.Len(t, prices, 1)

		revived, err := store.LinkCompetitor(ctx, property.ID, competitor.ID, true)
		require.NoError(t, err)
		assert.Nil(t, revived.DeletedAt)
		assert.True(t, revived.OnlyFollow)
		assert.Equal(t, "bk-2", revived.Competitor.ExternalHotelID)
	})

	t.Run("only follow flag", func(t *testing.T) {
		competitor := buildTestCompetitor(t, store, "bk-3")
		_, err := store.LinkCompetitor(ctx, property.ID, competitor.ID, false)
		require.NoError(t, err)

		ok, err := store.SetCompetitorOnlyFollow(ctx, property.ID, competitor.ID, true)
		require.NoError(t, err)
		assert.True(t, ok)

		link, err := store.GetPropertyCompetitor(ctx, property.ID, competitor.ID)
		require.NoError(t, err)
		assert.True(t, link.OnlyFollow)

		missing, err := store.SetCompetitorOnlyFollow(ctx, property.ID, uuid.New(), true)
		require.NoError(t, err)
		assert.False(t, missing)
	})
}

func testLowestCompetitorPrices(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()
	a := buildTestCompetitor(t, store, "low-a")
	b := buildTestCompetitor(t, store, "low-b")

	soldOut := buildTestPrice(a.ID, "2026-08-01", "0", now)
	soldOut.SoldOutMessage = strPtr("No rooms available")
	unparsable := buildTestPrice(a.ID, "2026-08-01", "10.00", now)
	unparsable.HotelName = domain.NOT_PARSABLE_HOTEL_NAME
	single := buildTestPrice(a.ID, "2026-08-01", "20.00", now)
	single.MaxPersons = 1
	onlySoldOut := buildTestPrice(b.ID, "2026-08-01", "0", now)
	onlySoldOut.SoldOutMessage = strPtr("Sold out")
	// a message on a priced row is informational, not sold out
	lastRoom := buildTestPrice(b.ID, "2026-08-02", "60.00", now)
	lastRoom.SoldOutMessage = strPtr("Only 1 room left")

	require.NoError(t, store.InsertCompetitorPrices(ctx, []schema.CompetitorPrice{
		buildTestPrice(a.ID, "2026-08-01", "50.00", now),
		buildTestPrice(a.ID, "2026-08-01", "40.00", now),
		soldOut,
		buildTestPrice(a.ID, "2026-08-01", "35.00", now),
		unparsable,
		single,
		buildTestPrice(a.ID, "2026-08-02", "0", now),
		onlySoldOut,
		lastRoom,
	}))

	window := domain.DateRange{From: domain.MustParseDate("2026-08-01"), Until: domain.MustParseDate("2026-08-02")}
	prices, err := store.GetLowestCompetitorPrices(ctx, []uuid.UUID{a.ID, b.ID}, window)
	require.NoError(t, err)

	byCompetitor := map[string]LowestCompetitorPrice{}
	for _, p := range prices {
		byCompetitor[fmt.Sprintf("%s/%s", p.CompetitorID, p.CheckinDate)] = p
	}
	require.Len(t, byCompetitor, 3, "zero price without sold out message is dropped")

	cheapest := byCompetitor[fmt.Sprintf("%s/2026-08-01", a.ID)]
	require.True(t, cheapest.Price.Valid)
	assert.True(t, decimal.RequireFromString("35").Equal(cheapest.Price.Decimal), "got %s", cheapest.Price.Decimal)
	assert.False(t, cheapest.SoldOut)

	// a competitor with only a sold out row is flagged and has no price
	sold := byCompetitor[fmt.Sprintf("%s/2026-08-01", b.ID)]
	assert.True(t, sold.SoldOut)
	assert.False(t, sold.Price.Valid)

	informational := byCompetitor[fmt.Sprintf("%s/2026-08-02", b.ID)]
	assert.False(t, informational.SoldOut)
	require.True(t, informational.Price.Valid)
	assert.True(t, decimal.RequireFromString("60").Equal(informational.Price.Decimal))

	t.Run("no competitors", func(t *testing.T) {
		prices, err := store.GetLowestCompetitorPrices(ctx, nil, window)
		require.NoError(t, err)
		assert.Empty(t, prices)
	})
}

// =============================================================================
// Test: Rules
// =============================================================================

func testDynamicIncrements(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "inc@example.com")
	property := buildTestProperty(t, store, owner.ID, "Hotel Inc")

	t.Run("seeding again writes nothing", func(t *testing.T) {
		written, err := store.SeedDefaultIncrements(ctx, property.ID, false)
		require.NoError(t, err)
		assert.Equal(t, int64(0), written)
	})

	t.Run("upsert updates the cell in place", func(t *testing.T) {
		err := store.UpsertDynamicIncrements(ctx, property.ID, []schema.DynamicIncrement{{
			OccupancyCategory: 0,
			LeadTimeCategory:  0,
			IncrementValue:    decimal.NewFromInt(-20),
		}})
		require.NoError(t, err)

		cells, err := store.ListDynamicIncrements(ctx, property.ID)
		require.NoError(t, err)
		require.Len(t, cells, 56)
		assert.True(t, decimal.NewFromInt(-20).Equal(cells[0].IncrementValue))
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		written, err := store.SeedDefaultIncrements(ctx, property.ID, true)
		require.NoError(t, err)
		assert.Equal(t, int64(56), written)

		cells, err := store.ListDynamicIncrements(ctx, property.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(-15).Equal(cells[0].IncrementValue))
		assert.True(t, decimal.NewFromInt(5).Equal(cells[55].IncrementValue))
	})
}

func testDateRangedRules(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "rules@example.com")
	property := buildTestProperty(t, store, owner.ID, "Hotel Rules")

	june := &schema.MinimumSellingPrice{
		PropertyID: property.ID,
		ValidFrom:  domain.MustParseDate("2026-06-01"),
		ValidUntil: domain.MustParseDate("2026-06-30"),
		MSP:        decimal.NewFromInt(80),
	}
	august := &schema.MinimumSellingPrice{
		PropertyID: property.ID,
		ValidFrom:  domain.MustParseDate("2026-08-01"),
		ValidUntil: domain.MustParseDate("2026-08-31"),
		MSP:        decimal.NewFromInt(120),
	}
	require.NoError(t, store.SaveMinimumSellingPrice(ctx, june))
	require.NoError(t, store.SaveMinimumSellingPrice(ctx, august))

	t.Run("window filters by overlap", func(t *testing.T) {
		window := &domain.DateRange{From: domain.MustParseDate("2026-06-20"), Until: domain.MustParseDate("2026-07-10")}
		rows, err := store.ListMinimumSellingPrices(ctx, property.ID, window)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, june.ID, rows[0].ID)

		all, err := store.ListMinimumSellingPrices(ctx, property.ID, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("update and delete", func(t *testing.T) {
		june.MSP = decimal.NewFromInt(90)
		require.NoError(t, store.SaveMinimumSellingPrice(ctx, june))

		found, err := store.GetMinimumSellingPrice(ctx, property.ID, june.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(90).Equal(found.MSP))

		deleted, err := store.DeleteMinimumSellingPrice(ctx, property.ID, june.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.DeleteMinimumSellingPrice(ctx, property.ID, june.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("rules of another property are invisible", func(t *testing.T) {
		found, err := store.GetMinimumSellingPrice(ctx, uuid.New(), august.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("inactive offers are stored as inactive", func(t *testing.T) {
		offer := &schema.OfferIncrement{
			PropertyID:     property.ID,
			Name:           "Early summer",
			ValidFrom:      domain.MustParseDate("2026-06-01"),
			ValidUntil:     domain.MustParseDate("2026-06-15"),
			IncrementType:  domain.AdjustmentFixed,
			IncrementValue: decimal.NewFromInt(-10),
			IsActive:       false,
		}
		require.NoError(t, store.SaveOfferIncrement(ctx, offer))

		found, err := store.GetOfferIncrement(ctx, property.ID, offer.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive)
	})
}

func testLosAndRoomRates(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "los@example.com")
	property := buildTestProperty(t, store, owner.ID, "Hotel Los")

	t.Run("los reductions upsert on their natural key", func(t *testing.T) {
		row := schema.LosReduction{LeadTimeDays: 7, OccupancyCategory: 2, NumNights: 3, ReductionPercent: decimal.NewFromInt(5)}
		require.NoError(t, store.UpsertLosReductions(ctx, property.ID, []schema.LosReduction{row}))
		row.ReductionPercent = decimal.NewFromInt(8)
		require.NoError(t, store.UpsertLosReductions(ctx, property.ID, []schema.LosReduction{row}))

		rows, err := store.ListLosReductions(ctx, property.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, decimal.NewFromInt(8).Equal(rows[0].ReductionPercent))
	})

	t.Run("duplicate room rate", func(t *testing.T) {
		base := &schema.RoomRate{PropertyID: property.ID, RoomTypeCode: "DBL", RatePlanCode: "BAR", Name: "Double BAR", IsBaseRate: true}
		require.NoError(t, store.SaveRoomRate(ctx, base))

		dup := &schema.RoomRate{PropertyID: property.ID, RoomTypeCode: "DBL", RatePlanCode: "BAR", Name: "Copy"}
		err := store.SaveRoomRate(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrDuplicateRule)
	})
}

// =============================================================================
// Test: History
// =============================================================================

func testPriceHistory(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "history@example.com")
	property := buildTestProperty(t, store, owner.ID, "Hotel History")
	date := domain.MustParseDate("2026-09-10")
	earlier := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Microsecond)
	later := earlier.Add(time.Hour)

	require.NoError(t, store.CreatePriceChanges(ctx, []schema.PriceChangeHistory{
		{PropertyID: property.ID, CheckinDate: date, AsOf: earlier, RecommendedPrice: decimal.NewFromInt(100)},
		{PropertyID: property.ID, CheckinDate: date, AsOf: later, RecommendedPrice: decimal.NewFromInt(110)},
		{PropertyID: property.ID, CheckinDate: date.AddDays(1), AsOf: earlier, RecommendedPrice: decimal.NewFromInt(95)},
	}))

	window := domain.DateRange{From: date, Until: date.AddDays(1)}

	t.Run("latest row per date", func(t *testing.T) {
		rows, err := store.GetLatestPriceChanges(ctx, property.ID, window)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, date, rows[0].CheckinDate)
		assert.True(t, decimal.NewFromInt(110).Equal(rows[0].RecommendedPrice))
		assert.True(t, decimal.NewFromInt(95).Equal(rows[1].RecommendedPrice))
	})

	t.Run("history newest first", func(t *testing.T) {
		rows, err := store.ListPriceChangesForDate(ctx, property.ID, date, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.True(t, rows[0].AsOf.After(rows[1].AsOf))
	})

	t.Run("clearing overwrite wins over the earlier price", func(t *testing.T) {
		require.NoError(t, store.CreateOverwrite(ctx, &schema.OverwritePriceHistory{
			PropertyID:     property.ID,
			CheckinDate:    date,
			AsOf:           earlier,
			OverwritePrice: decimal.NewNullDecimal(decimal.NewFromInt(150)),
		}))
		require.NoError(t, store.CreateOverwrite(ctx, &schema.OverwritePriceHistory{
			PropertyID:  property.ID,
			CheckinDate: date,
			AsOf:        later,
		}))

		rows, err := store.GetLatestOverwrites(ctx, property.ID, window)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.False(t, rows[0].OverwritePrice.Valid)
	})

	t.Run("backfill skips existing snapshots", func(t *testing.T) {
		rows := []schema.OverwritePriceHistory{
			{PropertyID: property.ID, CheckinDate: date, AsOf: earlier, OverwritePrice: decimal.NewNullDecimal(decimal.NewFromInt(1))},
			{PropertyID: property.ID, CheckinDate: date.AddDays(5), AsOf: earlier, OverwritePrice: decimal.NewNullDecimal(decimal.NewFromInt(130))},
		}
		inserted, err := store.BackfillOverwrites(ctx, rows)
		require.NoError(t, err)
		assert.Equal(t, int64(1), inserted)
	})
}

func testDailyOccupancy(t *testing.T, store Store) {
	ctx := context.Background()
	propertyID := uuid.New()
	date := domain.MustParseDate("2026-10-01")
	now := time.Now().UTC()

	require.NoError(t, store.InsertDailyOccupancy(ctx, []schema.DailyOccupancy{
		{PropertyID: propertyID, StayDate: date, RoomsSold: 10, RoomsAvailable: 40, AsOf: now.Add(-time.Hour)},
		{PropertyID: propertyID, StayDate: date, RoomsSold: 20, RoomsAvailable: 40, AsOf: now},
	}))

	rows, err := store.ListDailyOccupancy(ctx, propertyID, domain.DateRange{From: date, Until: date})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 20, rows[0].RoomsSold)
}

// =============================================================================
// Test: Notifications and payments
// =============================================================================

func testNotifications(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "notify@example.com")
	property := buildTestProperty(t, store, owner.ID, "Hotel Notify")
	now := time.Now().UTC()

	t.Run("cooldown suppresses duplicates", func(t *testing.T) {
		old := &schema.Notification{
			ProfileID:  owner.ID,
			PropertyID: &property.ID,
			Category:   domain.NotificationMSPMissing,
			Title:      "Missing minimum selling price",
			Message:    "3 days without MSP",
			IsNew:      true,
			CreatedAt:  now.Add(-25 * time.Hour),
		}
		require.NoError(t, store.CreateNotification(ctx, old))

		fresh := &schema.Notification{
			ProfileID:  owner.ID,
			PropertyID: &property.ID,
			Category:   domain.NotificationMSPMissing,
			Title:      "Missing minimum selling price",
			Message:    "2 days without MSP",
			IsNew:      true,
		}
		created, err := store.CreateNotificationUnlessRecent(ctx, fresh, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.True(t, created)

		dup := *fresh
		dup.ID = 0
		dup.CreatedAt = time.Time{}
		created, err = store.CreateNotificationUnlessRecent(ctx, &dup, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.False(t, created)

		other := &schema.Notification{
			ProfileID:  owner.ID,
			PropertyID: &property.ID,
			Category:   domain.NotificationOfferMissing,
			Title:      "Missing offers",
			Message:    "No offers",
			IsNew:      true,
		}
		created, err = store.CreateNotificationUnlessRecent(ctx, other, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("listing hides expired rows", func(t *testing.T) {
		expired := now.Add(-time.Minute)
		require.NoError(t, store.CreateNotification(ctx, &schema.Notification{
			ProfileID: owner.ID,
			Category:  domain.NotificationPayment,
			Title:     "Old",
			Message:   "expired",
			IsNew:     true,
			ExpiresAt: &expired,
		}))

		rows, total, err := store.ListNotifications(ctx, owner.ID, NotificationFilter{Now: now, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, rows, 3)
		assert.False(t, rows[0].CreatedAt.Before(rows[1].CreatedAt))

		unread, err := store.CountUnreadNotifications(ctx, owner.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), unread)

		deleted, err := store.DeleteExpiredNotifications(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})

	t.Run("read state", func(t *testing.T) {
		rows, _, err := store.ListNotifications(ctx, owner.ID, NotificationFilter{Now: now, Limit: 10})
		require.NoError(t, err)
		require.NotEmpty(t, rows)

		require.NoError(t, store.MarkNotificationsSeen(ctx, owner.ID, []int64{rows[0].ID}))

		ok, err := store.MarkNotificationRead(ctx, owner.ID, rows[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.MarkNotificationRead(ctx, uuid.New(), rows[0].ID)
		require.NoError(t, err)
		assert.False(t, ok)

		marked, err := store.MarkAllNotificationsRead(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), marked)

		unread, _, err := store.ListNotifications(ctx, owner.ID, NotificationFilter{Now: now, UnreadOnly: true})
		require.NoError(t, err)
		assert.Empty(t, unread)
	})
}

func testPayments(t *testing.T, store Store) {
	ctx := context.Background()
	owner := buildTestProfile(t, store, "pay@example.com")

	payment := &schema.Payment{
		ProfileID:        owner.ID,
		StripeSessionID:  "cs_test_1",
		StripeCustomerID: "cus_123",
		AmountTotal:      4900,
		Currency:         "eur",
		Status:           domain.PaymentStatusPaid,
	}
	created, err := store.RecordCheckout(ctx, payment)
	require.NoError(t, err)
	assert.True(t, created)

	found, err := store.GetProfileByID(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, found.StripeCustomerID)
	assert.Equal(t, "cus_123", *found.StripeCustomerID)

	replay := *payment
	replay.ID = 0
	created, err = store.RecordCheckout(ctx, &replay)
	require.NoError(t, err)
	assert.False(t, created)

	// a session without a customer leaves the profile untouched
	created, err = store.RecordCheckout(ctx, &schema.Payment{
		ProfileID:       owner.ID,
		StripeSessionID: "cs_test_2",
		AmountTotal:     900,
		Currency:        "eur",
		Status:          domain.PaymentStatusUnpaid,
	})
	require.NoError(t, err)
	assert.True(t, created)

	found, err = store.GetProfileByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", *found.StripeCustomerID)
}

// =============================================================================
// Test: Key-value store
// =============================================================================

func testKeyValueStore(t *testing.T, store Store) {
	ctx := context.Background()

	value, err := store.GetKeyValue(ctx, "sweeper:notifications:last_run")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetKeyValue(ctx, "sweeper:notifications:last_run", "2026-10-01T00:00:00Z"))
	require.NoError(t, store.SetKeyValue(ctx, "sweeper:notifications:last_run", "2026-10-02T00:00:00Z"))

	value, err = store.GetKeyValue(ctx, "sweeper:notifications:last_run")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-02T00:00:00Z", value)
}

// =============================================================================
// Test Runner
// =============================================================================

// RunStoreTests runs every store test against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"Profiles", testProfiles},
		{"RefreshTokens", testRefreshTokens},
		{"Properties", testProperties},
		{"Competitors", testCompetitors},
		{"LowestCompetitorPrices", testLowestCompetitorPrices},
		{"DynamicIncrements", testDynamicIncrements},
		{"DateRangedRules", testDateRangedRules},
		{"LosAndRoomRates", testLosAndRoomRates},
		{"PriceHistory", testPriceHistory},
		{"DailyOccupancy", testDailyOccupancy},
		{"Notifications", testNotifications},
		{"Payments", testPayments},
		{"KeyValueStore", testKeyValueStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
