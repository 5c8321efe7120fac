package engine

import (
	"fmt"
	"sort"

	"tripcal/internal/model"
	"tripcal/internal/week"
)

const (
	// maxSuggestions caps how many candidate weeks a quarter query
	// returns.
	maxSuggestions = 3

	// suggestionFloor excludes candidates at or below this score;
	// anything hit by a hard stop or an elsewhere trip falls under it.
	suggestionFloor = -500
)

// SuggestionsForQuarter scores every Monday of quarter q in the given
// year for a trip to desiredLocation, drops candidates scoring at or
// below -500, and returns up to three, best first. Equal scores keep
// enumeration order, so the earliest Monday wins ties.
//
// Returns week.ErrInvalidQuarter (wrapped) for q outside 1..4.
func SuggestionsForQuarter(q, year int, desiredLocation string, events []model.Event, constraints []model.Constraint, isHardStop model.HardStopFunc) ([]model.Suggestion, error) {
	mondays, err := week.MondaysInQuarter(q, year)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}

	candidates := make([]model.Suggestion, 0, len(mondays))
	for _, monday := range mondays {
		res := ScoreWeek(monday, desiredLocation, events, constraints, isHardStop)
		if res.Score <= suggestionFloor {
			continue
		}
		candidates = append(candidates, model.Suggestion{
			Week:        monday.String(),
			ScoreResult: res,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates, nil
}
