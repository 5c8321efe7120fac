package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripcal/internal/model"
	"tripcal/internal/week"
)

func TestSuggestionsInvalidQuarter(t *testing.T) {
	for _, q := range []int{0, 5, -1, 12} {
		_, err := SuggestionsForQuarter(q, 2025, "London", nil, nil, hardVacation)
		assert.ErrorIs(t, err, week.ErrInvalidQuarter, "quarter %d", q)
	}
}

func TestSuggestionsEmptyQuarter(t *testing.T) {
	suggestions, err := SuggestionsForQuarter(1, 2025, "London", nil, nil, hardVacation)
	require.NoError(t, err)

	// All candidates score 100; ties keep enumeration order, so the
	// first three Mondays of the quarter win.
	require.Len(t, suggestions, 3)
	assert.Equal(t, "2025-01-06", suggestions[0].Week)
	assert.Equal(t, "2025-01-13", suggestions[1].Week)
	assert.Equal(t, "2025-01-20", suggestions[2].Week)
	for _, s := range suggestions {
		assert.Equal(t, 100, s.Score)
		assert.Equal(t, model.ActionSchedule, s.Action)
	}
}

func TestSuggestionsConsolidationWinsTies(t *testing.T) {
	events := []model.Event{{
		ID: "e1", Title: "Client workshop", Location: "London",
		StartDate: d("2025-02-10"),
	}}

	suggestions, err := SuggestionsForQuarter(1, 2025, "London", events, nil, hardVacation)
	require.NoError(t, err)

	require.NotEmpty(t, suggestions)
	assert.Equal(t, "2025-02-10", suggestions[0].Week)
	assert.Equal(t, 600, suggestions[0].Score)
	assert.Equal(t, model.ActionConsolidate, suggestions[0].Action)
}

func TestSuggestionsSortedNonIncreasing(t *testing.T) {
	events := []model.Event{{ID: "e1", Title: "Trip", Location: "London", StartDate: d("2025-02-10")}}
	constraints := []model.Constraint{
		{ID: "c1", Title: "Play", Type: "preference", StartDate: d("2025-01-06"), EndDate: d("2025-01-10")},
	}

	suggestions, err := SuggestionsForQuarter(1, 2025, "London", events, constraints, hardVacation)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(suggestions), 3)
	for i := 1; i < len(suggestions); i++ {
		assert.GreaterOrEqual(t, suggestions[i-1].Score, suggestions[i].Score)
	}
	for _, s := range suggestions {
		assert.Greater(t, s.Score, -500)
	}
}

func TestSuggestionsFullyBlockedQuarter(t *testing.T) {
	// Three constraints, each blanketing a full month of Q3.
	constraints := []model.Constraint{
		{ID: "c1", Title: "July block", Type: "vacation", StartDate: d("2025-07-01"), EndDate: d("2025-07-31")},
		{ID: "c2", Title: "August block", Type: "vacation", StartDate: d("2025-08-01"), EndDate: d("2025-08-31")},
		{ID: "c3", Title: "September block", Type: "vacation", StartDate: d("2025-09-01"), EndDate: d("2025-09-30")},
	}

	suggestions, err := SuggestionsForQuarter(3, 2025, "London", nil, constraints, hardVacation)
	require.NoError(t, err)
	assert.Empty(t, suggestions, "all 13 Mondays of Q3 2025 are blocked")
}

func TestSuggestionsFiltersElsewhereWeeks(t *testing.T) {
	// An elsewhere trip scores 100-1000 = -900, under the -500 floor.
	events := []model.Event{{
		ID: "e1", Title: "Paris visit", Location: "Paris",
		StartDate: d("2025-01-06"),
	}}

	suggestions, err := SuggestionsForQuarter(1, 2025, "London", events, nil, hardVacation)
	require.NoError(t, err)

	for _, s := range suggestions {
		assert.NotEqual(t, "2025-01-06", s.Week)
	}
}

func TestSuggestionsNeverMoreThanThree(t *testing.T) {
	for q := 1; q <= 4; q++ {
		suggestions, err := SuggestionsForQuarter(q, 2025, "London", nil, nil, hardVacation)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(suggestions), 3)
	}
}
