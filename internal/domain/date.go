package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

var isoWeekPattern = regexp.MustCompile(`^(\d{4})-?W(\d{2})$`)

// Date is a calendar date without time of day or location
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for constants and tests
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseISOWeek parses "2024-W05" (or "2024W05") and returns its Monday and Sunday
func ParseISOWeek(s string) (Date, Date, error) {
	m := isoWeekPattern.FindStringSubmatch(s)
	if m == nil {
		return Date{}, Date{}, fmt.Errorf("%w: %q is not an ISO week", ErrInvalidDate, s)
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return Date{}, Date{}, fmt.Errorf("%w: week %d out of range", ErrInvalidDate, week)
	}

	// January 4th is always in ISO week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := DateOf(jan4.AddDate(0, 0, -offset+(week-1)*7))

	if y, w := monday.Time().ISOWeek(); y != year || w != week {
		return Date{}, Date{}, fmt.Errorf("%w: %d has no week %d", ErrInvalidDate, year, week)
	}
	return monday, monday.AddDays(6), nil
}

// Time returns midnight UTC of d
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero date
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// AddDays returns d shifted by n days
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly before other
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is strictly after other
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// DaysSince returns the number of days from other to d
func (d Date) DaysSince(other Date) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

// Weekday returns the day of week of d
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalParam lets gin bind query and uri parameters
func (d *Date) UnmarshalParam(param string) error {
	parsed, err := ParseDate(param)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer for DATE columns
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE columns
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateOf(v)
	case string:
		parsed, err := ParseDate(v[:min(len(v), len(DateLayout))])
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

// DateRange is an inclusive range of dates
type DateRange struct {
	From  Date
	Until Date
}

// Validate checks that From is not after Until
func (r DateRange) Validate() error {
	if r.From.After(r.Until) {
		return ErrInvalidDateRange
	}
	return nil
}

// Contains reports whether d falls within the range
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.Until)
}

// Days returns the number of dates in the range
func (r DateRange) Days() int {
	return r.Until.DaysSince(r.From) + 1
}

// Dates returns every date in the range in ascending order
func (r DateRange) Dates() []Date {
	if r.From.After(r.Until) {
		return nil
	}
	dates := make([]Date, 0, r.Days())
	for d := r.From; !d.After(r.Until); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}
