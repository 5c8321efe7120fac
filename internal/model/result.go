package model

// ConflictKind tags the two variants of Conflict.
type ConflictKind string

const (
	ConflictHardConstraint ConflictKind = "hard_constraint"
	ConflictDoubleBooking  ConflictKind = "double_booking"
)

// Conflict is one detected scheduling problem. For a hard-constraint
// conflict Event and Constraint are set; for a double-booking Event and
// OtherEvent are set. Conflicts are recomputed on every call and never
// persisted.
type Conflict struct {
	Kind ConflictKind `json:"kind"`

	Event      Event       `json:"event"`
	Constraint *Constraint `json:"constraint,omitempty"`
	OtherEvent *Event      `json:"other_event,omitempty"`

	Message string `json:"message"`
}

// Action is the scheduling recommendation attached to a ScoreResult.
type Action string

const (
	ActionSchedule    Action = "schedule"
	ActionConsolidate Action = "consolidate"
)

// ScoreResult is the outcome of scoring one candidate week against one
// desired location. Reasons preserve evaluation order: constraints
// first, then existing trips.
type ScoreResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
	Action  Action   `json:"action"`
}

// Suggestion is a scored candidate week, keyed by the ISO date of its
// Monday.
type Suggestion struct {
	Week string `json:"week"`
	ScoreResult
}

// Opportunity pairs two already-scheduled trips that share a week key
// and a location, so the user can consolidate travel.
type Opportunity struct {
	Week     string   `json:"week"`
	Events   [2]Event `json:"events"`
	Location string   `json:"location"`
}
