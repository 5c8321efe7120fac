package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "tripcal/internal/log"
	"tripcal/internal/model"
)

// ParsedItem is the normalized, date-granular representation of a
// VEVENT. The planner only cares about calendar days, so times and
// timezones are collapsed onto local calendar dates here and nowhere
// else.
type ParsedItem struct {
	Source Source

	UID      string
	Summary  string
	Location string

	Start model.Date
	End   model.Date // inclusive; equals Start for single-day events

	// RawRRule is kept verbatim for recurrence expansion in expand.go.
	RawRRule string

	Categories []string
}

// ParseICS parses one ICS payload into date-granular items. Individual
// malformed VEVENTs are logged and skipped; the rest of the feed still
// imports.
func ParseICS(src Source, body []byte) ([]ParsedItem, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	items := make([]ParsedItem, 0)
	for _, ve := range cal.Events() {
		item, perr := parseVEvent(src, ve)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "id", src.ID, "reason", perr.Error())
			continue
		}
		items = append(items, item)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "item_count", len(items))
	return items, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedItem, error) {
	var out ParsedItem
	out.Source = src

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	// DTSTART / DTEND via the library's timezone-aware helpers; the
	// instants are immediately collapsed to calendar dates.
	start, err := ve.GetStartAt()
	if err != nil {
		return out, errors.New("missing or invalid DTSTART")
	}
	end, endErr := ve.GetEndAt()

	out.Start = model.DateOf(start)
	if endErr != nil {
		out.End = out.Start
	} else {
		out.End = inclusiveEndDate(start, end)
	}
	if out.End.Before(out.Start) {
		out.End = out.Start
	}

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	if p := ve.GetProperty("CATEGORIES"); p != nil && p.Value != "" {
		for _, c := range strings.Split(p.Value, ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				out.Categories = append(out.Categories, c)
			}
		}
	}

	return out, nil
}

// inclusiveEndDate converts an ICS DTEND instant to an inclusive
// calendar date. DTEND is exclusive, so an all-day or midnight-ending
// event actually covers through the previous day.
func inclusiveEndDate(start, end time.Time) model.Date {
	d := model.DateOf(end)
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 && d.After(model.DateOf(start)) {
		return d.AddDays(-1)
	}
	return d
}

// resolveType picks the record type for an item: the first category
// that is a known type id wins, otherwise the source's default.
func resolveType(item ParsedItem, knownType func(string) bool) string {
	for _, c := range item.Categories {
		id := strings.ToLower(strings.TrimSpace(c))
		if knownType(id) {
			return id
		}
	}
	return item.Source.DefaultType
}
