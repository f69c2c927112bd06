package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOccupancy(t *testing.T) {
	tests := []struct {
		percent  float64
		expected OccupancyCategory
	}{
		{0, 0},
		{29.9, 0},
		{30, 1},
		{64.99, 2},
		{65, 3},
		{84, 4},
		{89, 5},
		{94.5, 6},
		{95, 7},
		{100, 7},
		{120, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyOccupancy(tt.percent), "percent %v", tt.percent)
	}
}

func TestClassifyLeadTime(t *testing.T) {
	tests := []struct {
		days     int
		expected LeadTimeCategory
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 1},
		{7, 2},
		{14, 3},
		{30, 4},
		{60, 5},
		{61, 6},
		{400, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyLeadTime(tt.days), "days %d", tt.days)
	}
}

func TestDefaultIncrements(t *testing.T) {
	cells := DefaultIncrements()
	assert.Len(t, cells, 56)

	seen := make(map[[2]int]bool)
	for _, c := range cells {
		assert.True(t, c.Occupancy.IsValid())
		assert.True(t, c.LeadTime.IsValid())
		key := [2]int{int(c.Occupancy), int(c.LeadTime)}
		assert.False(t, seen[key], "duplicate cell %v", key)
		seen[key] = true
	}

	assert.Equal(t, "-15", cells[0].Value.String())
	assert.Equal(t, "5", cells[len(cells)-1].Value.String())
}
