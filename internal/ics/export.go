package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"tripcal/internal/model"
)

// ExportTrips serializes trips as an ICS calendar of all-day events, so
// scheduled travel can be subscribed to from a regular calendar client.
// Flexible trips export as their Monday-to-Friday work week.
func ExportTrips(trips []model.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//tripcal//EN")

	now := time.Now().UTC()
	for _, t := range trips {
		ve := cal.AddEvent(t.ID)
		ve.SetDtStampTime(now)
		ve.SetSummary(t.Title)
		if t.Location != "" {
			ve.SetLocation(t.Location)
		}

		end := t.EndDate
		if end.IsZero() {
			// Flexible trip: one work week starting on its Monday.
			end = t.StartDate.AddDays(4)
		}

		ve.SetAllDayStartAt(t.StartDate.Time())
		// DTEND is exclusive in ICS, hence the extra day.
		ve.SetAllDayEndAt(end.AddDays(1).Time())
	}

	return cal.Serialize()
}
