package plan

import "time"

// BusyBlock is a pre-existing commitment: a calendar event or any other
// occupied period. Title and Notes are optional display/context fields
// supplied by the caller; Notes may carry raw HTML from calendar providers
// and is only consumed (after sanitization) when building recommender
// prompts. Neither field affects interval math.
type BusyBlock struct {
	Interval
	Title string `json:"title,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// SleepSchedule bounds the waking window for a day.
type SleepSchedule struct {
	Wake TimeOfDay `json:"wake"`
	Bed  TimeOfDay `json:"bed"`
}

// EnergyWindow is a recurring daily period of peak user energy.
type EnergyWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// BufferPolicy is the user-declared minimum padding, in minutes, kept
// between a placed activity and the edges of its gap. The engine derives an
// adaptive buffer from gap size and uses whichever is larger per side.
type BufferPolicy struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Gap is a derived free-time interval within the waking window. Gaps are
// recomputed on every call and never persisted; a gap never overlaps a busy
// block and never extends outside the waking window.
type Gap struct {
	Interval
	Minutes        int  `json:"minutes"`
	InEnergyWindow bool `json:"in_energy_window"`
}

// Level classifies how packed a day is.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Intensity is the derived calendar-load classification for a day. It is
// recomputed each call and never treated as a source of truth.
type Intensity struct {
	Level              Level   `json:"level"`
	Ratio              float64 `json:"ratio"`
	BusyMinutes        int     `json:"busy_minutes"`
	TotalWakingMinutes int     `json:"total_waking_minutes"`
}

// ActivityType enumerates the micro-activity kinds the engine can place.
type ActivityType string

const (
	ActivityBreathing ActivityType = "breathing"
	ActivityMovement  ActivityType = "movement"
	ActivityMeal      ActivityType = "meal"
	ActivityWorkout   ActivityType = "workout"
)

// Priority orders candidates for validation; higher priorities are
// considered first and survive when the day fills up.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank maps a priority to a sortable weight. Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Source records which generator proposed an activity.
type Source string

const (
	SourceRecommender Source = "recommender"
	SourceRuleBased   Source = "rule-based"
)

// Candidate is a proposed activity before validation. Candidates come from
// either the recommender or the rule-based generator and pass through the
// same validator regardless of origin.
type Candidate struct {
	Type       ActivityType `json:"type"`
	Title      string       `json:"title"`
	Start      time.Time    `json:"start"`
	End        time.Time    `json:"end"`
	MicroSteps []string     `json:"micro_steps"`
	Priority   Priority     `json:"priority"`
	Source     Source       `json:"source"`
}

// Activity is an accepted, placed candidate. The ID is stamped at
// acceptance; after that the caller owns the record.
type Activity struct {
	ID              string       `json:"id"`
	Type            ActivityType `json:"type"`
	Title           string       `json:"title"`
	Start           time.Time    `json:"start"`
	End             time.Time    `json:"end"`
	DurationMinutes int          `json:"duration_minutes"`
	MicroSteps      []string     `json:"micro_steps"`
	Priority        Priority     `json:"priority"`
	Source          Source       `json:"source"`
}
