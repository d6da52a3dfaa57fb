// Package placement validates candidate activities against a day's gaps,
// existing commitments and clock bounds, accepting a bounded set.
package placement

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lulldev/lull/pkg/constants"
	"github.com/lulldev/lull/pkg/plan"
)

// Validator filters candidate activities. It is stateless apart from its
// logger; every call operates only on its inputs.
type Validator struct {
	logger *slog.Logger
}

// New returns a Validator logging to the default logger.
func New() *Validator {
	return NewWithLogger(slog.Default())
}

// NewWithLogger returns a Validator with the given logger.
func NewWithLogger(logger *slog.Logger) *Validator {
	return &Validator{logger: logger}
}

// BufferFor returns the adaptive buffer, in minutes, for a gap of the given
// size. Bigger gaps get more breathing room around commitments; tiny gaps
// keep only a token pad so they stay usable.
func BufferFor(gapMinutes int) int {
	switch {
	case gapMinutes >= 120:
		return 15
	case gapMinutes >= 60:
		return 10
	case gapMinutes >= 30:
		return 5
	default:
		return 2
	}
}

// Validate considers candidates in descending priority (stable within a
// tier) and accepts at most maxAccepted of them. A candidate is accepted
// when it sits inside the buffered span of some gap, respects the local
// clock bounds, and overlaps neither an existing event nor an already
// accepted activity. Constraint rejections are logged and skipped; only a
// malformed candidate (zero times, start >= end, empty title) makes the
// call fail.
//
// maxAccepted <= 0 selects the default.
func (v *Validator) Validate(candidates []plan.Candidate, dayGaps []plan.Gap, events []plan.BusyBlock, policy plan.BufferPolicy, loc *time.Location, maxAccepted int) ([]plan.Activity, error) {
	if maxAccepted <= 0 {
		maxAccepted = constants.MaxAcceptedActivities
	}
	if loc == nil {
		loc = time.UTC
	}

	ordered := make([]plan.Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority.Rank() > ordered[j].Priority.Rank()
	})

	accepted := make([]plan.Activity, 0, maxAccepted)
	for _, c := range ordered {
		if len(accepted) >= maxAccepted {
			break
		}
		if c.Start.IsZero() || c.End.IsZero() || c.Title == "" {
			return nil, fmt.Errorf("malformed candidate %q: start, end and title are required", c.Title)
		}
		if !c.Start.Before(c.End) {
			return nil, fmt.Errorf("malformed candidate %q: start %s is not before end %s",
				c.Title, c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339))
		}

		if reason := v.checkCandidate(c, dayGaps, events, accepted, policy, loc); reason != "" {
			v.logger.Debug("candidate rejected", "title", c.Title, "type", c.Type, "reason", reason,
				"start", c.Start.In(loc).Format("15:04"), "end", c.End.In(loc).Format("15:04"))
			continue
		}

		accepted = append(accepted, plan.Activity{
			ID:              uuid.NewString(),
			Type:            c.Type,
			Title:           c.Title,
			Start:           c.Start,
			End:             c.End,
			DurationMinutes: int(c.End.Sub(c.Start) / time.Minute),
			MicroSteps:      c.MicroSteps,
			Priority:        c.Priority,
			Source:          c.Source,
		})
		v.logger.Debug("candidate accepted", "title", c.Title, "type", c.Type,
			"start", c.Start.In(loc).Format("15:04"), "accepted_count", len(accepted))
	}
	return accepted, nil
}

// checkCandidate returns a rejection reason, or "" when the candidate passes.
func (v *Validator) checkCandidate(c plan.Candidate, dayGaps []plan.Gap, events []plan.BusyBlock, accepted []plan.Activity, policy plan.BufferPolicy, loc *time.Location) string {
	startLocal := c.Start.In(loc)
	endLocal := c.End.In(loc)
	if startLocal.Hour()*60+startLocal.Minute() < constants.EarliestActivityHour*60 {
		return "starts before earliest activity hour"
	}
	if endLocal.YearDay() != startLocal.YearDay() || endLocal.Year() != startLocal.Year() {
		return "crosses midnight"
	}
	if endLocal.Hour()*60+endLocal.Minute() > constants.LatestActivityHour*60 {
		return "ends after latest activity hour"
	}

	if !fitsAnyGap(c, dayGaps, policy) {
		return "no gap fits with buffer"
	}

	candidate := plan.Interval{Start: c.Start, End: c.End}
	for _, ev := range events {
		if candidate.Overlaps(ev.Interval) {
			return fmt.Sprintf("overlaps existing event %q", ev.Title)
		}
	}
	for _, a := range accepted {
		if candidate.Overlaps(plan.Interval{Start: a.Start, End: a.End}) {
			return fmt.Sprintf("overlaps accepted activity %q", a.Title)
		}
	}
	return ""
}

// fitsAnyGap reports whether the candidate, padded by the effective buffer,
// lies entirely inside some gap. The effective buffer per side is the larger
// of the gap's adaptive buffer and the user's declared policy.
func fitsAnyGap(c plan.Candidate, dayGaps []plan.Gap, policy plan.BufferPolicy) bool {
	for _, g := range dayGaps {
		adaptive := BufferFor(g.Minutes)
		before := max(adaptive, policy.Before)
		after := max(adaptive, policy.After)
		usableStart := g.Start.Add(time.Duration(before) * time.Minute)
		usableEnd := g.End.Add(-time.Duration(after) * time.Minute)
		if !usableStart.Before(usableEnd) {
			continue
		}
		if !c.Start.Before(usableStart) && !c.End.After(usableEnd) {
			return true
		}
	}
	return false
}
