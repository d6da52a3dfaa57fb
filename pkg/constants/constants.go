// Package constants defines shared thresholds and defaults for the lull scheduling engine.
package constants

// MinGapMinutes is the smallest free interval worth reporting as a gap.
// Shorter slivers between meetings are not usable for any activity.
const MinGapMinutes = 10

// MaxAcceptedActivities caps how many activities may be placed into a single day.
const MaxAcceptedActivities = 4

// EarliestActivityHour and LatestActivityHour bound activity placement in
// local wall-clock time. Activities never start before 07:00 or end after 22:00.
const (
	EarliestActivityHour = 7
	LatestActivityHour   = 22
)

// Intensity thresholds, expressed in percent of the waking window that is
// busy. Exact boundary values resolve to the lower bucket.
const (
	HighIntensityPercent   = 70
	MediumIntensityPercent = 40
)

// HighStressLevel is the self-reported stress score (0-10 scale) at which the
// generator switches to breathing-only candidates regardless of calendar load.
const HighStressLevel = 7

// LowEnergyLevel is the self-reported energy score (0-10 scale) at or below
// which workouts are demoted to lighter movement.
const LowEnergyLevel = 3

// MaxWorkoutMinutes caps generated workout durations.
const MaxWorkoutMinutes = 60
