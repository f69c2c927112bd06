package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("2023-02-29")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("29/02/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2024-12-30")
	assert.Equal(t, "2025-01-02", d.AddDays(3).String())
	assert.Equal(t, 3, d.AddDays(3).DaysSince(d))
	assert.Equal(t, -3, d.DaysSince(d.AddDays(3)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.False(t, d.After(d))
}

func TestToday_UsesLocation(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", Today(now, nil).String())
	assert.Equal(t, "2024-06-02", Today(now, madrid).String())
}

func TestParseISOWeek(t *testing.T) {
	tests := []struct {
		input  string
		monday string
		sunday string
		err    bool
	}{
		{input: "2024-W01", monday: "2024-01-01", sunday: "2024-01-07"},
		{input: "2021-W01", monday: "2021-01-04", sunday: "2021-01-10"},
		{input: "2020W53", monday: "2020-12-28", sunday: "2021-01-03"},
		{input: "2021-W53", err: true},
		{input: "2024-W00", err: true},
		{input: "2024-05", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			monday, sunday, err := ParseISOWeek(tt.input)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.monday, monday.String())
			assert.Equal(t, tt.sunday, sunday.String())
		})
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date  Date  `json:"date"`
		Empty *Date `json:"empty"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-03-10","empty":null}`), &p))
	assert.Equal(t, "2024-03-10", p.Date.String())
	assert.Nil(t, p.Empty)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-10","empty":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"10-03-2024"}`), &p))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-06", d.String())

	require.NoError(t, d.Scan("2024-05-07T00:00:00Z"))
	assert.Equal(t, "2024-05-07", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := MustParseDate("2024-05-08").Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-08", v)
}

func TestDateRange(t *testing.T) {
	r := DateRange{From: MustParseDate("2024-01-30"), Until: MustParseDate("2024-02-02")}
	require.NoError(t, r.Validate())
	assert.Equal(t, 4, r.Days())
	assert.True(t, r.Contains(MustParseDate("2024-02-01")))
	assert.False(t, r.Contains(MustParseDate("2024-02-03")))
	assert.Len(t, r.Dates(), 4)

	reversed := DateRange{From: r.Until, Until: r.From}
	assert.ErrorIs(t, reversed.Validate(), ErrInvalidDateRange)
	assert.Nil(t, reversed.Dates())

	single := DateRange{From: r.From, Until: r.From}
	assert.NoError(t, single.Validate())
}
