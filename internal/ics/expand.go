package ics

import (
	"fmt"

	"github.com/teambition/rrule-go"

	appLog "tripcal/internal/log"
	"tripcal/internal/model"
)

const defaultMaxOccurrencesPerItem = 500

// ImportConfig controls how parsed items become plan records.
type ImportConfig struct {
	// HorizonStart / HorizonEnd bound recurrence expansion (inclusive).
	HorizonStart model.Date
	HorizonEnd   model.Date

	// KnownType reports whether a type id exists in the configured
	// registry; categories resolve against it.
	KnownType func(string) bool

	// MaxOccurrencesPerItem caps recurrence expansion per VEVENT. Zero
	// means defaultMaxOccurrencesPerItem.
	MaxOccurrencesPerItem int
}

func (c ImportConfig) knownType(id string) bool {
	if c.KnownType == nil {
		return false
	}
	return c.KnownType(id)
}

func (c ImportConfig) maxOccurrences() int {
	if c.MaxOccurrencesPerItem <= 0 {
		return defaultMaxOccurrencesPerItem
	}
	return c.MaxOccurrencesPerItem
}

// ToTrips converts items from a trips-kind source into fixed events.
// Recurring VEVENTs are skipped: a trip is a concrete one-off by
// definition here.
func ToTrips(items []ParsedItem, cfg ImportConfig) []model.Event {
	trips := make([]model.Event, 0, len(items))
	for _, item := range items {
		if item.RawRRule != "" {
			appLog.Warn("ics recurring trip skipped", "id", item.Source.ID, "uid", item.UID)
			continue
		}
		trips = append(trips, model.Event{
			ID:        item.Source.ID + "/" + item.UID,
			Title:     item.Summary,
			Type:      resolveType(item, cfg.knownType),
			Location:  item.Location,
			StartDate: item.Start,
			EndDate:   item.End,
			IsFixed:   true,
		})
	}
	return trips
}

// ToConstraints converts items from a constraints-kind source into
// constraints, expanding RRULE-bearing items into one constraint per
// occurrence inside the horizon.
func ToConstraints(items []ParsedItem, cfg ImportConfig) []model.Constraint {
	out := make([]model.Constraint, 0, len(items))
	for _, item := range items {
		typeID := resolveType(item, cfg.knownType)

		if item.RawRRule == "" {
			out = append(out, model.Constraint{
				ID:        item.Source.ID + "/" + item.UID,
				Title:     item.Summary,
				Type:      typeID,
				StartDate: item.Start,
				EndDate:   item.End,
			})
			continue
		}

		out = append(out, expandRecurring(item, typeID, cfg)...)
	}
	return out
}

// expandRecurring turns one RRULE-bearing item into concrete
// constraints, preserving the original span in days per occurrence.
func expandRecurring(item ParsedItem, typeID string, cfg ImportConfig) []model.Constraint {
	r, err := rrule.StrToRRule(item.RawRRule)
	if err != nil {
		appLog.Error("ics rrule parse failed", err, "id", item.Source.ID, "uid", item.UID, "rrule", item.RawRRule)
		return nil
	}
	r.DTStart(item.Start.Time())

	spanDays := int(item.End.Time().Sub(item.Start.Time()).Hours() / 24)

	starts := r.Between(cfg.HorizonStart.Time(), cfg.HorizonEnd.Time(), true)
	if limit := cfg.maxOccurrences(); len(starts) > limit {
		appLog.Warn("ics rrule expansion truncated", "id", item.Source.ID, "uid", item.UID, "cap", limit)
		starts = starts[:limit]
	}

	out := make([]model.Constraint, 0, len(starts))
	for _, t := range starts {
		start := model.DateOf(t)
		out = append(out, model.Constraint{
			ID:        fmt.Sprintf("%s/%s/%s", item.Source.ID, item.UID, start),
			Title:     item.Summary,
			Type:      typeID,
			StartDate: start,
			EndDate:   start.AddDays(spanDays),
		})
	}
	return out
}
