package domain

import "github.com/shopspring/decimal"

// OccupancyCategory buckets occupancy percentage into 8 bands
type OccupancyCategory int

// LeadTimeCategory buckets days until arrival into 7 bands
type LeadTimeCategory int

const (
	OccupancyCategoryCount = 8
	LeadTimeCategoryCount  = 7
)

// Upper bounds (exclusive) of occupancy bands in percent; the last band is open ended
var occupancyUpperBounds = [OccupancyCategoryCount - 1]float64{30, 50, 65, 75, 85, 90, 95}

// Upper bounds (inclusive) of lead time bands in days; the last band is open ended
var leadTimeUpperBounds = [LeadTimeCategoryCount - 1]int{1, 3, 7, 14, 30, 60}

// Default increment percentages. Rows are occupancy bands, columns lead time bands.
var defaultIncrementGrid = [OccupancyCategoryCount][LeadTimeCategoryCount]int64{
	{-15, -12, -10, -8, -5, -5, 0},
	{-10, -8, -6, -5, -3, -2, 0},
	{-5, -4, -3, -2, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0},
	{5, 4, 3, 3, 2, 2, 0},
	{10, 8, 6, 5, 4, 3, 2},
	{15, 12, 10, 8, 6, 5, 3},
	{25, 20, 15, 12, 10, 8, 5},
}

// ClassifyOccupancy returns the occupancy band for a percentage in [0, 100]
func ClassifyOccupancy(percent float64) OccupancyCategory {
	for i, upper := range occupancyUpperBounds {
		if percent < upper {
			return OccupancyCategory(i)
		}
	}
	return OccupancyCategory(OccupancyCategoryCount - 1)
}

// ClassifyLeadTime returns the lead time band for a number of days until arrival
func ClassifyLeadTime(days int) LeadTimeCategory {
	for i, upper := range leadTimeUpperBounds {
		if days <= upper {
			return LeadTimeCategory(i)
		}
	}
	return LeadTimeCategory(LeadTimeCategoryCount - 1)
}

// IsValid reports whether c is a known occupancy band
func (c OccupancyCategory) IsValid() bool {
	return c >= 0 && c < OccupancyCategoryCount
}

// IsValid reports whether c is a known lead time band
func (c LeadTimeCategory) IsValid() bool {
	return c >= 0 && c < LeadTimeCategoryCount
}

// IncrementCell is one cell of the occupancy x lead time grid
type IncrementCell struct {
	Occupancy OccupancyCategory
	LeadTime  LeadTimeCategory
	Value     decimal.Decimal
}

// DefaultIncrements returns the 56 default cells seeded for a new property
func DefaultIncrements() []IncrementCell {
	cells := make([]IncrementCell, 0, OccupancyCategoryCount*LeadTimeCategoryCount)
	for occ := range OccupancyCategoryCount {
		for lt := range LeadTimeCategoryCount {
			cells = append(cells, IncrementCell{
				Occupancy: OccupancyCategory(occ),
				LeadTime:  LeadTimeCategory(lt),
				Value:     decimal.NewFromInt(defaultIncrementGrid[occ][lt]),
			})
		}
	}
	return cells
}
