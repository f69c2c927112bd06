package schema

// Managed returns the models whose tables this service owns and migrates
func Managed() []any {
	return []any{
		&Profile{},
		&ProfileProperty{},
		&RefreshToken{},
		&PropertyManagementSystem{},
		&Property{},
		&Competitor{},
		&PropertyCompetitor{},
		&GeneralSettings{},
		&DynamicIncrement{},
		&MinimumSellingPrice{},
		&OfferIncrement{},
		&LosSetup{},
		&LosReduction{},
		&RoomRate{},
		&PriceChangeHistory{},
		&OverwritePriceHistory{},
		&Notification{},
		&Payment{},
		&KeyValueStore{},
	}
}

// External returns the read-only models owned by other systems
func External() []any {
	return []any{
		&CompetitorPrice{},
		&DailyOccupancy{},
		&LegacyPriceOverwrite{},
	}
}
