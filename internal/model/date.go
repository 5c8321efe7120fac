package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a timezone-free calendar date. The zero value is treated as
// "absent" (e.g. an Event without an end date).
//
// It exists because parsing an ISO date string through a generic
// time-parsing constructor interprets it as UTC midnight, which shifts
// the calendar day in non-UTC zones. All date math in this module goes
// through this type; the components are parsed explicitly.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses an ISO "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year in date %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return Date{}, fmt.Errorf("invalid month in date %q", s)
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil || d < 1 || d > 31 {
		return Date{}, fmt.Errorf("invalid day in date %q", s)
	}
	return Date{Year: y, Month: time.Month(m), Day: d}, nil
}

// MustParseDate is ParseDate for literals; it panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a time.Time to its calendar date in the value's own
// location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is the absent date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of d in UTC. Only used internally as a vehicle
// for calendar arithmetic; the zone never leaks into results.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of week of d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d falls strictly before o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d falls strictly after o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// RangesOverlap reports whether the inclusive day ranges [aStart, aEnd]
// and [bStart, bEnd] share at least one calendar day.
func RangesOverlap(aStart, aEnd, bStart, bEnd Date) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}

// MarshalYAML encodes the date as its ISO string.
func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.String(), nil
}

// UnmarshalYAML decodes an ISO date string; empty means absent.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes the date as an ISO string (empty when absent).
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes an ISO date string; empty means absent.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
