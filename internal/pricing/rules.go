package pricing

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Quote is the recommended price computed for one check-in date
type Quote struct {
	Date              domain.Date
	Price             decimal.Decimal
	CompetitorPrice   decimal.NullDecimal
	Occupancy         float64
	OccupancyCategory domain.OccupancyCategory
	LeadTimeCategory  domain.LeadTimeCategory
	IncrementApplied  decimal.Decimal
	MSPApplied        bool
	// LosPrices maps number of nights to the per-night price
	LosPrices map[int]decimal.Decimal
}

// rules is everything loaded for one property and horizon
type rules struct {
	today      domain.Date
	country    string
	rooms      int
	settings   schema.GeneralSettings
	competitor map[domain.Date][]decimal.Decimal
	occupancy  map[domain.Date]schema.DailyOccupancy
	increments map[[2]int]decimal.Decimal
	msps       []schema.MinimumSellingPrice
	offers     []schema.OfferIncrement
	losSetups  []schema.LosSetup
	reductions []schema.LosReduction
	holidays   HolidayCalendar
}

func (r *rules) quote(date domain.Date) (Quote, bool) {
	q := Quote{Date: date}

	price, ok := r.basePrice(date, &q)
	if !ok {
		return q, false
	}

	q.Occupancy = r.occupancyPercent(date)
	q.OccupancyCategory = domain.ClassifyOccupancy(q.Occupancy)
	leadDays := date.DaysSince(r.today)
	q.LeadTimeCategory = domain.ClassifyLeadTime(leadDays)
	q.IncrementApplied = r.increments[[2]int{int(q.OccupancyCategory), int(q.LeadTimeCategory)}]
	price = domain.ApplyPercent(price, q.IncrementApplied)

	if r.settings.HolidayIncrement.IsPositive() && r.holidays != nil && r.holidays.IsHoliday(r.country, date) {
		price = domain.ApplyPercent(price, r.settings.HolidayIncrement)
	}

	for _, offer := range r.offers {
		if offer.IsActive && covers(offer.ValidFrom, offer.ValidUntil, date) {
			price = domain.ApplyAdjustment(price, offer.IncrementType, offer.IncrementValue)
		}
	}

	if r.settings.MaxPrice.IsPositive() && price.GreaterThan(r.settings.MaxPrice) {
		price = r.settings.MaxPrice
	}
	if msp, ok := r.floor(date); ok && price.LessThan(msp) {
		price = msp
		q.MSPApplied = true
	}

	q.Price = domain.RoundPrice(price)
	if !q.Price.IsPositive() {
		return q, false
	}

	q.LosPrices = r.losPrices(date, q.Price, q.OccupancyCategory, leadDays)
	return q, true
}

// basePrice aggregates the cheapest competitor prices, falling back to the
// configured base price when too few competitors have a price
func (r *rules) basePrice(date domain.Date, q *Quote) (decimal.Decimal, bool) {
	prices := domain.SortedPrices(r.competitor[date])
	if r.settings.MaxCompetitors > 0 && len(prices) > r.settings.MaxCompetitors {
		prices = prices[:r.settings.MaxCompetitors]
	}

	if len(prices) > 0 && len(prices) >= r.settings.MinCompetitors {
		aggregated, ok := domain.AggregatePrices(r.settings.PricingMode, prices)
		if ok {
			q.CompetitorPrice = decimal.NewNullDecimal(domain.RoundPrice(aggregated))
			return aggregated, true
		}
	}

	if r.settings.BasePrice.IsPositive() {
		return r.settings.BasePrice, true
	}
	if msp, ok := r.floor(date); ok {
		return msp, true
	}
	return decimal.Zero, false
}

func (r *rules) occupancyPercent(date domain.Date) float64 {
	row, ok := r.occupancy[date]
	if !ok || r.rooms <= 0 {
		return 0
	}
	percent := float64(row.RoomsSold) / float64(r.rooms) * 100
	if percent > 100 {
		return 100
	}
	return percent
}

// floor returns the highest minimum selling price covering date
func (r *rules) floor(date domain.Date) (decimal.Decimal, bool) {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, msp := range r.msps {
		if !covers(msp.ValidFrom, msp.ValidUntil, date) {
			continue
		}
		if !found || msp.MSP.GreaterThan(best) {
			best = msp.MSP
			found = true
		}
	}
	return best, found
}

func (r *rules) losPrices(date domain.Date, price decimal.Decimal, occupancy domain.OccupancyCategory, leadDays int) map[int]decimal.Decimal {
	maxLOS := 0
	for _, setup := range r.losSetups {
		if covers(setup.ValidFrom, setup.ValidUntil, date) && setup.MaxLOS > maxLOS {
			maxLOS = setup.MaxLOS
		}
	}
	if maxLOS < 2 {
		return nil
	}
	maxLOS = min(maxLOS, domain.MAX_LOS_NIGHTS)

	prices := make(map[int]decimal.Decimal, maxLOS-1)
	for nights := 2; nights <= maxLOS; nights++ {
		reduction := r.reduction(nights, occupancy, leadDays)
		prices[nights] = domain.RoundPrice(domain.ApplyPercent(price, reduction.Neg()))
	}
	return prices
}

// reduction picks the row with the largest lead time not exceeding leadDays
func (r *rules) reduction(nights int, occupancy domain.OccupancyCategory, leadDays int) decimal.Decimal {
	bestLead := -1
	value := decimal.Zero
	for _, row := range r.reductions {
		if row.NumNights != nights || row.OccupancyCategory != occupancy || row.LeadTimeDays > leadDays {
			continue
		}
		if row.LeadTimeDays > bestLead {
			bestLead = row.LeadTimeDays
			value = row.ReductionPercent
		}
	}
	return value
}

func covers(from, until, date domain.Date) bool {
	return domain.DateRange{From: from, Until: until}.Contains(date)
}

// encodeLosPrices renders the LOS map as {"2": "95.00", ...}
func encodeLosPrices(prices map[int]decimal.Decimal) ([]byte, error) {
	if len(prices) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(prices))
	for nights, price := range prices {
		out[strconv.Itoa(nights)] = price.StringFixed(domain.PRICE_SCALE)
	}
	return json.Marshal(out)
}

// DecodeLosPrices parses a stored LOS map; jsonb output is not byte-stable so
// callers compare decoded values
func DecodeLosPrices(raw []byte) (map[int]decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var in map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	out := make(map[int]decimal.Decimal, len(in))
	for key, price := range in {
		nights, err := strconv.Atoi(key)
		if err != nil {
			return nil, err
		}
		out[nights] = price
	}
	return out, nil
}

func sameLosPrices(a, b map[int]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for nights, price := range a {
		other, ok := b[nights]
		if !ok || !other.Equal(price) {
			return false
		}
	}
	return true
}
