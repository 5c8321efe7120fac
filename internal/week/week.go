// Package week implements work-week (Monday through Friday) date math.
// Every overlap decision in the planner goes through Overlaps so that
// weekend days never extend a considered window past Friday.
package week

import (
	"errors"
	"time"

	"tripcal/internal/model"
)

// ErrInvalidQuarter is returned for quarter ids outside 1..4.
var ErrInvalidQuarter = errors.New("quarter must be 1, 2, 3 or 4")

// MondayOf returns the Monday of the week containing d. Weeks run
// Monday through Sunday, so a Sunday maps six days back.
func MondayOf(d model.Date) model.Date {
	switch wd := d.Weekday(); wd {
	case time.Sunday:
		return d.AddDays(-6)
	default:
		return d.AddDays(-(int(wd) - 1))
	}
}

// FridayOf returns the Friday of the week containing d.
func FridayOf(d model.Date) model.Date {
	return MondayOf(d).AddDays(4)
}

// Overlaps reports whether the inclusive day range [rangeStart,
// rangeEnd] intersects the Monday-to-Friday work week containing
// anchor. Saturday and Sunday of that week are never part of the
// window.
func Overlaps(rangeStart, rangeEnd, anchor model.Date) bool {
	return model.RangesOverlap(rangeStart, rangeEnd, MondayOf(anchor), FridayOf(anchor))
}

// QuarterMonths returns the three calendar months of quarter q (1..4).
func QuarterMonths(q int) ([3]time.Month, error) {
	if q < 1 || q > 4 {
		return [3]time.Month{}, ErrInvalidQuarter
	}
	first := time.Month((q-1)*3 + 1)
	return [3]time.Month{first, first + 1, first + 2}, nil
}

// MondaysInQuarter enumerates, in increasing date order, every Monday
// falling inside the three months of quarter q in the given year.
func MondaysInQuarter(q, year int) ([]model.Date, error) {
	months, err := QuarterMonths(q)
	if err != nil {
		return nil, err
	}

	mondays := make([]model.Date, 0, 14)
	for _, m := range months {
		first := model.Date{Year: year, Month: m, Day: 1}
		d := MondayOf(first)
		if d.Before(first) {
			d = d.AddDays(7)
		}
		for d.Month == m && d.Year == year {
			mondays = append(mondays, d)
			d = d.AddDays(7)
		}
	}
	return mondays, nil
}
