package engine

import (
	"tripcal/internal/model"
)

// FindConsolidationOpportunities surfaces pairs of already-scheduled
// trips that share a week key and a matching location.
//
// Trips are grouped by their raw start date string, not by the Monday
// of their week. A fixed trip starting mid-week therefore never groups
// with a flexible trip of the same calendar week; this mirrors the
// behavior the rest of the product depends on and is intentionally not
// normalized here. Within a group, every matching unordered pair yields
// one opportunity, so three same-location trips produce three.
func FindConsolidationOpportunities(events []model.Event) []model.Opportunity {
	byWeek := make(map[string][]model.Event)
	order := make([]string, 0)
	for _, e := range events {
		key := e.StartDate.String()
		if _, seen := byWeek[key]; !seen {
			order = append(order, key)
		}
		byWeek[key] = append(byWeek[key], e)
	}

	opportunities := make([]model.Opportunity, 0)
	for _, key := range order {
		group := byWeek[key]
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if !locationsMatch(group[i].Location, group[j].Location) {
					continue
				}
				opportunities = append(opportunities, model.Opportunity{
					Week:     key,
					Events:   [2]model.Event{group[i], group[j]},
					Location: group[i].Location,
				})
			}
		}
	}
	return opportunities
}
