package rules

import (
	"fmt"

	"github.com/lulldev/lull/pkg/plan"
)

// Micro-step catalogs. Every generated activity carries 3-5 concrete
// steps; a short and a long variant per type keeps a 5-minute breathing
// break from reading like a 20-minute session.

var shortSteps = map[plan.ActivityType][]string{
	plan.ActivityBreathing: {
		"Sit upright and close your eyes",
		"Breathe in for 4 counts, hold for 4",
		"Breathe out slowly for 6 counts",
		"Repeat until the timer ends",
	},
	plan.ActivityMovement: {
		"Stand up and roll your shoulders back",
		"Stretch your arms overhead for 30 seconds",
		"Walk one lap around your space",
		"Shake out your hands and legs",
	},
	plan.ActivityMeal: {
		"Put your phone out of reach",
		"Plate something you already have ready",
		"Eat slowly, chewing each bite fully",
		"Drink a full glass of water",
	},
	plan.ActivityWorkout: {
		"Change into comfortable clothes",
		"Do 2 minutes of light warm-up",
		"Pick one circuit and keep the pace easy",
		"Stretch before you sit back down",
	},
}

var longSteps = map[plan.ActivityType][]string{
	plan.ActivityBreathing: {
		"Find a quiet spot and sit comfortably",
		"Do one minute of normal breathing to settle",
		"Switch to box breathing: 4 in, 4 hold, 4 out, 4 hold",
		"If your mind wanders, return to counting",
		"Finish with three deep sighs",
	},
	plan.ActivityMovement: {
		"Step outside if you can",
		"Walk at an easy pace for half the time",
		"Turn around and pick up the pace slightly",
		"Finish with calf and hamstring stretches",
	},
	plan.ActivityMeal: {
		"Clear your desk or move to a table",
		"Prepare a balanced plate, half vegetables",
		"Sit down and eat without screens",
		"Pause halfway and check if you are still hungry",
		"Clean up so the space is reset",
	},
	plan.ActivityWorkout: {
		"Change and fill a water bottle",
		"Warm up for 5 minutes: joints, then light cardio",
		"Main block: alternate strength and cardio sets",
		"Cool down with 5 minutes of slow movement",
		"Stretch the muscle groups you worked",
	},
}

// Steps returns the catalog steps for an activity of the given duration.
// Activities of ten minutes or less get the short variant.
func Steps(t plan.ActivityType, durationMinutes int) []string {
	catalog := longSteps
	if durationMinutes <= 10 {
		catalog = shortSteps
	}
	steps, ok := catalog[t]
	if !ok {
		steps = shortSteps[plan.ActivityBreathing]
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

func titleFor(t plan.ActivityType, durationMinutes int) string {
	switch t {
	case plan.ActivityBreathing:
		return fmt.Sprintf("%d-minute breathing reset", durationMinutes)
	case plan.ActivityMovement:
		return fmt.Sprintf("%d-minute movement break", durationMinutes)
	case plan.ActivityMeal:
		return "Unhurried meal"
	case plan.ActivityWorkout:
		return fmt.Sprintf("%d-minute workout", durationMinutes)
	default:
		return "Micro break"
	}
}
