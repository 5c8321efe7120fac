package engine

import (
	"fmt"

	"tripcal/internal/model"
)

// DetectConflicts finds hard-constraint violations and double-bookings
// among the given trips. Overlap here is plain inclusive day-range
// intersection, not the Monday-to-Friday week rule: a trip running into
// a weekend still collides with a constraint covering that weekend.
//
// Soft-type constraints never produce conflicts. Each unordered trip
// pair is reported at most once. For a given trip, its hard-constraint
// conflicts precede its double-bookings; no finer ordering is promised.
func DetectConflicts(events []model.Event, constraints []model.Constraint, isHardStop model.HardStopFunc) []model.Conflict {
	conflicts := make([]model.Conflict, 0)

	for i, e := range events {
		end := e.EffectiveEnd()

		for _, c := range constraints {
			if !isHardStop(c.Type) {
				continue
			}
			if !model.RangesOverlap(e.StartDate, end, c.StartDate, c.EffectiveEnd()) {
				continue
			}
			conflicts = append(conflicts, model.Conflict{
				Kind:       model.ConflictHardConstraint,
				Event:      e,
				Constraint: &c,
				Message: fmt.Sprintf("trip %q overlaps blocked period %q (%s to %s)",
					e.Title, c.Title, c.StartDate, c.EffectiveEnd()),
			})
		}

		// Pairs with j > i only, so (a,b) and (b,a) collapse to one.
		for j := i + 1; j < len(events); j++ {
			other := events[j]
			if !model.RangesOverlap(e.StartDate, end, other.StartDate, other.EffectiveEnd()) {
				continue
			}
			conflicts = append(conflicts, model.Conflict{
				Kind:       model.ConflictDoubleBooking,
				Event:      e,
				OtherEvent: &other,
				Message: fmt.Sprintf("trip %q overlaps trip %q (%s to %s)",
					e.Title, other.Title, other.StartDate, other.EffectiveEnd()),
			})
		}
	}

	return conflicts
}
