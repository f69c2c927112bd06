package pricing

import (
	"strings"
	"sync"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/aa"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/pt"
	"github.com/rickar/cal/v2/us"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

var nationalHolidays = map[string][]*cal.Holiday{
	"ES": es.Holidays,
	"FR": fr.Holidays,
	"DE": de.Holidays,
	"IT": it.Holidays,
	"PT": pt.Holidays,
	"GB": gb.Holidays,
	"US": us.Holidays,
}

// HolidayCalendar answers whether a date is a public holiday in a country
type HolidayCalendar interface {
	IsHoliday(country string, date domain.Date) bool
}

type calHolidays struct {
	mu        sync.Mutex
	calendars map[string]*cal.BusinessCalendar
}

// NewHolidayCalendar returns a calendar of national public holidays. Countries
// without a dedicated list only observe New Year and Christmas.
func NewHolidayCalendar() HolidayCalendar {
	return &calHolidays{calendars: make(map[string]*cal.BusinessCalendar)}
}

func (h *calHolidays) IsHoliday(country string, date domain.Date) bool {
	ok, _, _ := h.calendar(country).IsHoliday(date.Time())
	return ok
}

func (h *calHolidays) calendar(country string) *cal.BusinessCalendar {
	country = strings.ToUpper(country)

	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.calendars[country]; ok {
		return c
	}

	c := cal.NewBusinessCalendar()
	if holidays, ok := nationalHolidays[country]; ok {
		c.AddHoliday(holidays...)
	} else {
		c.AddHoliday(aa.NewYear, aa.ChristmasDay)
	}
	h.calendars[country] = c
	return c
}
