package model

// Event represents a planned trip. Flexible trips (no end date) are
// normalized upstream so that StartDate is always a Monday and the trip
// stands for that single Monday-to-Friday work week; fixed trips carry
// an exact inclusive date range.
type Event struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Type     string `yaml:"type" json:"type"`
	Location string `yaml:"location" json:"location"`

	StartDate Date `yaml:"start_date" json:"start_date"`
	// EndDate is inclusive. Zero means the trip has no fixed end and
	// occupies exactly the work week of StartDate.
	EndDate Date `yaml:"end_date,omitempty" json:"end_date,omitempty"`

	// DurationWeeks is informational sizing for flexible trips.
	DurationWeeks int `yaml:"duration_weeks,omitempty" json:"duration_weeks,omitempty"`

	IsFixed  bool `yaml:"is_fixed" json:"is_fixed"`
	Archived bool `yaml:"archived,omitempty" json:"archived,omitempty"`
}

// EffectiveEnd returns the last day the event occupies at day
// granularity: EndDate when set, otherwise StartDate.
func (e Event) EffectiveEnd() Date {
	if e.EndDate.IsZero() {
		return e.StartDate
	}
	return e.EndDate
}

// Constraint is an inclusive calendar-day range during which travel is
// blocked (hard-stop type) or discouraged (soft type). Severity is not
// stored here; it comes from the caller's type classification.
type Constraint struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Type  string `yaml:"type" json:"type"`

	StartDate Date `yaml:"start_date" json:"start_date"`
	// EndDate is inclusive and defaults to StartDate when absent.
	EndDate Date `yaml:"end_date,omitempty" json:"end_date,omitempty"`
}

// EffectiveEnd returns EndDate, falling back to StartDate for
// single-day constraints.
func (c Constraint) EffectiveEnd() Date {
	if c.EndDate.IsZero() {
		return c.StartDate
	}
	return c.EndDate
}

// HardStopFunc classifies a constraint/event type id as hard-stop.
// It must be total: unknown ids are expected to resolve to false.
type HardStopFunc func(typeID string) bool
