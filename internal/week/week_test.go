package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripcal/internal/model"
)

func TestMondayOf(t *testing.T) {
	// 2025-03-17 is a Monday.
	monday := model.MustParseDate("2025-03-17")

	tests := []struct {
		name string
		in   string
		want model.Date
	}{
		{"monday maps to itself", "2025-03-17", monday},
		{"tuesday", "2025-03-18", monday},
		{"friday", "2025-03-21", monday},
		{"saturday", "2025-03-22", monday},
		{"sunday wraps to previous monday", "2025-03-23", monday},
		{"next monday starts a new week", "2025-03-24", model.MustParseDate("2025-03-24")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MondayOf(model.MustParseDate(tt.in))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestFridayOf(t *testing.T) {
	assert.Equal(t, model.MustParseDate("2025-03-21"), FridayOf(model.MustParseDate("2025-03-19")))
	// Sunday still belongs to the week that ended the day before.
	assert.Equal(t, model.MustParseDate("2025-03-21"), FridayOf(model.MustParseDate("2025-03-23")))
}

func TestOverlaps(t *testing.T) {
	anchor := model.MustParseDate("2025-03-17")

	overlap := func(start, end string) bool {
		return Overlaps(model.MustParseDate(start), model.MustParseDate(end), anchor)
	}

	assert.True(t, overlap("2025-03-17", "2025-03-21"), "exact week")
	assert.True(t, overlap("2025-03-21", "2025-03-21"), "friday only")
	assert.True(t, overlap("2025-03-10", "2025-03-17"), "range ending on monday")
	assert.True(t, overlap("2025-03-01", "2025-04-01"), "enclosing range")

	assert.False(t, overlap("2025-03-22", "2025-03-23"), "weekend after friday is outside the week")
	assert.False(t, overlap("2025-03-10", "2025-03-16"), "previous week incl. its sunday")
	assert.False(t, overlap("2025-03-24", "2025-03-28"), "following week")
}

func TestQuarterMonths(t *testing.T) {
	months, err := QuarterMonths(3)
	require.NoError(t, err)
	assert.Equal(t, [3]time.Month{time.July, time.August, time.September}, months)

	for _, q := range []int{0, 5, -1} {
		_, err := QuarterMonths(q)
		assert.ErrorIs(t, err, ErrInvalidQuarter, "quarter %d", q)
	}
}

func TestMondaysInQuarter(t *testing.T) {
	mondays, err := MondaysInQuarter(3, 2025)
	require.NoError(t, err)

	assert.Len(t, mondays, 13)
	assert.Equal(t, model.MustParseDate("2025-07-07"), mondays[0])
	assert.Equal(t, model.MustParseDate("2025-09-29"), mondays[len(mondays)-1])

	for i, m := range mondays {
		assert.Equal(t, time.Monday, m.Weekday())
		if i > 0 {
			assert.True(t, mondays[i-1].Before(m), "mondays must be in increasing order")
		}
	}
}

func TestMondaysInQuarterInvalid(t *testing.T) {
	_, err := MondaysInQuarter(7, 2025)
	assert.ErrorIs(t, err, ErrInvalidQuarter)
}
