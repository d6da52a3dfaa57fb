// Package rules is the deterministic activity generator. It proposes
// candidates from the day's gaps and intensity alone, with no external
// collaborator, and is always available as the fallback when the
// recommender fails. Its output goes through the same validator as
// recommender output.
package rules

import (
	"time"

	"github.com/lulldev/lull/pkg/constants"
	"github.com/lulldev/lull/pkg/placement"
	"github.com/lulldev/lull/pkg/plan"
)

// Generate proposes candidates for the day. The strategy is keyed on the
// intensity level, with two self-report overrides: high stress forces the
// breathing-only tier regardless of calendar load, and low energy demotes
// workouts to lighter movement.
func Generate(sc plan.Context, dayGaps []plan.Gap, in plan.Intensity) []plan.Candidate {
	if in.Level == plan.LevelHigh || sc.StressLevel >= constants.HighStressLevel {
		return breathingOnly(sc, dayGaps)
	}
	if in.Level == plan.LevelMedium {
		return mediumDay(sc, dayGaps)
	}
	return lowDay(sc, dayGaps)
}

// breathingOnly fills a packed or stressful day with short breathing
// resets: one per gap, never longer than ten minutes.
func breathingOnly(sc plan.Context, dayGaps []plan.Gap) []plan.Candidate {
	var out []plan.Candidate
	for _, g := range dayGaps {
		dur := min(g.Minutes, 10)
		if c, ok := place(sc, g, plan.ActivityBreathing, dur, plan.PriorityHigh); ok {
			out = append(out, c)
		}
	}
	return out
}

// mediumDay mixes in a proper meal where a meal-sized gap exists, movement
// in medium gaps, and breathing everywhere else.
func mediumDay(sc plan.Context, dayGaps []plan.Gap) []plan.Candidate {
	var out []plan.Candidate
	for _, g := range dayGaps {
		switch {
		case g.Minutes >= 30 && g.Minutes < 60:
			if c, ok := place(sc, g, plan.ActivityMeal, min(g.Minutes, 30), plan.PriorityHigh); ok {
				out = append(out, c)
			}
		case g.Minutes >= 15 && g.Minutes < 30:
			if c, ok := place(sc, g, plan.ActivityMovement, min(g.Minutes, 10), plan.PriorityMedium); ok {
				out = append(out, c)
			}
		default:
			if c, ok := place(sc, g, plan.ActivityBreathing, min(g.Minutes, 10), plan.PriorityLow); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// lowDay reserves the big energy-window gaps for a workout, keeps a
// meal-sized gap for an unhurried meal, and fills the rest with movement.
func lowDay(sc plan.Context, dayGaps []plan.Gap) []plan.Candidate {
	var out []plan.Candidate
	for _, g := range dayGaps {
		switch {
		case g.Minutes >= 60 && g.InEnergyWindow:
			activityType := plan.ActivityWorkout
			dur := min(g.Minutes-20, constants.MaxWorkoutMinutes)
			if sc.EnergyLevel > 0 && sc.EnergyLevel <= constants.LowEnergyLevel {
				// Low-energy day: a full workout would backfire.
				activityType = plan.ActivityMovement
				dur = min(dur, 30)
			}
			if c, ok := place(sc, g, activityType, dur, plan.PriorityHigh); ok {
				out = append(out, c)
			}
		case g.Minutes >= 45 && g.Minutes < 60:
			if c, ok := place(sc, g, plan.ActivityMeal, min(g.Minutes, 30), plan.PriorityMedium); ok {
				out = append(out, c)
			}
		case g.Minutes >= 15:
			if c, ok := place(sc, g, plan.ActivityMovement, min(g.Minutes, 15), plan.PriorityLow); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// place anchors a candidate of the given duration at the start of the
// gap's buffered usable span, clamping the duration to what actually fits.
// Gaps whose usable span is under five minutes produce nothing.
func place(sc plan.Context, g plan.Gap, t plan.ActivityType, durationMinutes int, priority plan.Priority) (plan.Candidate, bool) {
	adaptive := placement.BufferFor(g.Minutes)
	before := max(adaptive, sc.Buffer.Before)
	after := max(adaptive, sc.Buffer.After)
	usable := g.Minutes - before - after
	if usable < 5 {
		return plan.Candidate{}, false
	}
	if durationMinutes > usable {
		durationMinutes = usable
	}
	if durationMinutes < 5 {
		return plan.Candidate{}, false
	}
	start := g.Start.Add(time.Duration(before) * time.Minute)
	return plan.Candidate{
		Type:       t,
		Title:      titleFor(t, durationMinutes),
		Start:      start,
		End:        start.Add(time.Duration(durationMinutes) * time.Minute),
		MicroSteps: Steps(t, durationMinutes),
		Priority:   priority,
		Source:     plan.SourceRuleBased,
	}, true
}
