// Package plan defines the domain types shared across the lull scheduling
// engine: intervals, busy blocks, gaps, intensity, activities and the
// per-invocation scheduling context.
package plan

import (
	"fmt"
	"sort"
	"time"
)

// Interval is a half-open span of absolute time. All instants are UTC
// internally; wall-clock conversion happens only at the waking-window and
// energy-window boundaries.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval validates that start precedes end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("invalid interval: start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Minutes returns the interval length in whole minutes.
func (iv Interval) Minutes() int {
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// Overlaps reports whether the two intervals share any time. Adjacent
// intervals (one ending exactly where the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// ClipTo intersects the interval with a window. The second return value is
// false when the intersection is empty.
func (iv Interval) ClipTo(window Interval) (Interval, bool) {
	start := iv.Start
	if start.Before(window.Start) {
		start = window.Start
	}
	end := iv.End
	if end.After(window.End) {
		end = window.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// OccupiedMinutes returns the number of minutes within window covered by the
// union of the given blocks. Overlapping and adjacent blocks are handled by a
// running cursor rather than pre-merging, so double-booked time counts once.
func OccupiedMinutes(blocks []BusyBlock, window Interval) int {
	clipped := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		if iv, ok := b.Interval.ClipTo(window); ok {
			clipped = append(clipped, iv)
		}
	}
	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Start.Before(clipped[j].Start) })

	var occupied time.Duration
	cursor := window.Start
	for _, iv := range clipped {
		start := iv.Start
		if start.Before(cursor) {
			start = cursor
		}
		if iv.End.After(start) {
			occupied += iv.End.Sub(start)
			cursor = iv.End
		}
	}
	return int(occupied / time.Minute)
}
