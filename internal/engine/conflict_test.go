package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripcal/internal/model"
)

func TestDetectConflictsHardConstraint(t *testing.T) {
	events := []model.Event{{
		ID: "e1", Title: "Offsite", Location: "London",
		StartDate: d("2025-03-17"), EndDate: d("2025-03-21"), IsFixed: true,
	}}
	constraints := []model.Constraint{{
		ID: "c1", Title: "Vacation", Type: "vacation",
		StartDate: d("2025-03-17"), EndDate: d("2025-03-21"),
	}}

	conflicts := DetectConflicts(events, constraints, hardVacation)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictHardConstraint, conflicts[0].Kind)
	assert.Equal(t, "e1", conflicts[0].Event.ID)
	require.NotNil(t, conflicts[0].Constraint)
	assert.Equal(t, "c1", conflicts[0].Constraint.ID)
	assert.Contains(t, conflicts[0].Message, "Offsite")
	assert.Contains(t, conflicts[0].Message, "Vacation")
}

func TestDetectConflictsSoftConstraintIgnored(t *testing.T) {
	events := []model.Event{{
		ID: "e1", Title: "Offsite",
		StartDate: d("2025-03-17"), EndDate: d("2025-03-21"), IsFixed: true,
	}}
	constraints := []model.Constraint{{
		ID: "c1", Title: "School play", Type: "preference",
		StartDate: d("2025-03-17"), EndDate: d("2025-03-21"),
	}}

	assert.Empty(t, DetectConflicts(events, constraints, hardVacation))
}

func TestDetectConflictsDayGranular(t *testing.T) {
	// A flexible trip occupies only its start day for conflict
	// purposes, unlike the Mon-Fri rule the scorer uses.
	events := []model.Event{{ID: "e1", Title: "Flexible", StartDate: d("2025-03-17")}}
	constraints := []model.Constraint{{
		ID: "c1", Title: "Midweek block", Type: "vacation",
		StartDate: d("2025-03-19"), EndDate: d("2025-03-20"),
	}}

	assert.Empty(t, DetectConflicts(events, constraints, hardVacation))

	// Move the block onto the start day and it collides.
	constraints[0].StartDate = d("2025-03-17")
	constraints[0].EndDate = d("2025-03-17")
	assert.Len(t, DetectConflicts(events, constraints, hardVacation), 1)
}

func TestDetectConflictsWeekendOverlapStillCounts(t *testing.T) {
	// Day-granular overlap includes weekends, unlike week scoring.
	events := []model.Event{{
		ID: "e1", Title: "Long trip",
		StartDate: d("2025-03-20"), EndDate: d("2025-03-23"), IsFixed: true,
	}}
	constraints := []model.Constraint{{
		ID: "c1", Title: "Weekend block", Type: "vacation",
		StartDate: d("2025-03-22"), EndDate: d("2025-03-23"),
	}}

	assert.Len(t, DetectConflicts(events, constraints, hardVacation), 1)
}

func TestDetectConflictsDoubleBookingOncePerPair(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "Trip A", StartDate: d("2025-03-17"), EndDate: d("2025-03-21"), IsFixed: true},
		{ID: "e2", Title: "Trip B", StartDate: d("2025-03-19"), EndDate: d("2025-03-25"), IsFixed: true},
	}

	conflicts := DetectConflicts(events, nil, hardVacation)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictDoubleBooking, conflicts[0].Kind)
	assert.Equal(t, "e1", conflicts[0].Event.ID)
	require.NotNil(t, conflicts[0].OtherEvent)
	assert.Equal(t, "e2", conflicts[0].OtherEvent.ID)
}

func TestDetectConflictsThreeWayOverlap(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "A", StartDate: d("2025-03-17"), EndDate: d("2025-03-21"), IsFixed: true},
		{ID: "e2", Title: "B", StartDate: d("2025-03-18"), EndDate: d("2025-03-22"), IsFixed: true},
		{ID: "e3", Title: "C", StartDate: d("2025-03-19"), EndDate: d("2025-03-23"), IsFixed: true},
	}

	conflicts := DetectConflicts(events, nil, hardVacation)

	// Three unordered pairs, each exactly once.
	assert.Len(t, conflicts, 3)
	seen := map[string]int{}
	for _, c := range conflicts {
		require.Equal(t, model.ConflictDoubleBooking, c.Kind)
		seen[c.Event.ID+"+"+c.OtherEvent.ID]++
	}
	for pair, count := range seen {
		assert.Equal(t, 1, count, "pair %s reported more than once", pair)
	}
}

func TestDetectConflictsHardBeforeDoubleBookingPerEvent(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "A", StartDate: d("2025-03-17"), EndDate: d("2025-03-21"), IsFixed: true},
		{ID: "e2", Title: "B", StartDate: d("2025-03-19"), EndDate: d("2025-03-22"), IsFixed: true},
	}
	constraints := []model.Constraint{{
		ID: "c1", Title: "Vacation", Type: "vacation",
		StartDate: d("2025-03-17"), EndDate: d("2025-03-18"),
	}}

	conflicts := DetectConflicts(events, constraints, hardVacation)

	require.Len(t, conflicts, 2)
	assert.Equal(t, model.ConflictHardConstraint, conflicts[0].Kind)
	assert.Equal(t, model.ConflictDoubleBooking, conflicts[1].Kind)
}

func TestDetectConflictsNoOverlap(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "A", StartDate: d("2025-03-17"), EndDate: d("2025-03-18"), IsFixed: true},
		{ID: "e2", Title: "B", StartDate: d("2025-03-20"), EndDate: d("2025-03-21"), IsFixed: true},
	}
	constraints := []model.Constraint{{
		ID: "c1", Title: "Vacation", Type: "vacation",
		StartDate: d("2025-04-01"), EndDate: d("2025-04-05"),
	}}

	assert.Empty(t, DetectConflicts(events, constraints, hardVacation))
}
