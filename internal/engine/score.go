// Package engine holds the planning core: week scoring, quarter
// suggestions, conflict detection and consolidation analysis. Every
// function is pure and synchronous; inputs are never mutated and
// results carry no references back into caller state.
package engine

import (
	"fmt"
	"strings"

	"tripcal/internal/model"
	"tripcal/internal/week"
)

const (
	baseScore = 100

	hardStopScore    = -1000
	softPenalty      = 20
	consolidateBonus = 500
	elsewherePenalty = 1000
)

// ScoreWeek scores the work week containing anchor for a trip to
// desiredLocation, given the existing trips and constraints. Higher is
// better; the result also carries human-readable reasons in evaluation
// order (constraints, then trips) and a recommended action.
//
// A hard-stop constraint assigns the score to -1000 outright; soft
// constraints subtract 20 each. Neither is clamped afterwards, so a
// hard hit followed by a soft hit yields -1020.
func ScoreWeek(anchor model.Date, desiredLocation string, events []model.Event, constraints []model.Constraint, isHardStop model.HardStopFunc) model.ScoreResult {
	monday := week.MondayOf(anchor)

	result := model.ScoreResult{
		Score:   baseScore,
		Reasons: []string{},
		Action:  model.ActionSchedule,
	}

	for _, c := range constraints {
		if !week.Overlaps(c.StartDate, c.EffectiveEnd(), anchor) {
			continue
		}
		if isHardStop(c.Type) {
			result.Score = hardStopScore
			result.Reasons = append(result.Reasons, "Blocked: "+c.Title)
		} else {
			result.Score -= softPenalty
			result.Reasons = append(result.Reasons, "Preference: "+c.Title)
		}
	}

	for _, e := range events {
		if !eventInWeek(e, monday, anchor) {
			continue
		}
		if locationsMatch(e.Location, desiredLocation) {
			result.Score += consolidateBonus
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("Existing trip to %s (%s). Consolidate here!", e.Location, e.Title))
			result.Action = model.ActionConsolidate
		} else {
			result.Score -= elsewherePenalty
			result.Reasons = append(result.Reasons, "Already in "+e.Location)
		}
	}

	return result
}

// eventInWeek decides whether an existing trip occupies the work week
// of monday. Flexible trips sit on exactly one Monday; fixed trips use
// the Monday-to-Friday overlap rule.
func eventInWeek(e model.Event, monday, anchor model.Date) bool {
	if e.EndDate.IsZero() {
		return e.StartDate == monday
	}
	return week.Overlaps(e.StartDate, e.EndDate, anchor)
}

// locationsMatch compares two free-text locations: case-insensitive,
// whitespace-trimmed, and symmetric substring containment so that
// "London" matches "London, UK" either way round.
func locationsMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
