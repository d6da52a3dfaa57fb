// Package gaps computes usable free-time intervals within a day's waking window.
package gaps

import (
	"sort"
	"time"

	"github.com/lulldev/lull/pkg/constants"
	"github.com/lulldev/lull/pkg/plan"
)

// Find walks the waking window and returns every free interval of at least
// minGapMinutes. Busy blocks are clipped to the window first; overlapping
// and adjacent blocks are absorbed by the running cursor, so gaps never go
// negative and double-booked time is not counted twice. A gap is tagged
// InEnergyWindow when it overlaps any of the day's energy intervals.
//
// minGapMinutes <= 0 selects the default.
func Find(blocks []plan.BusyBlock, waking plan.Interval, energy []plan.Interval, minGapMinutes int) []plan.Gap {
	if minGapMinutes <= 0 {
		minGapMinutes = constants.MinGapMinutes
	}

	clipped := make([]plan.Interval, 0, len(blocks))
	for _, b := range blocks {
		if iv, ok := b.Interval.ClipTo(waking); ok {
			clipped = append(clipped, iv)
		}
	}
	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Start.Before(clipped[j].Start) })

	var found []plan.Gap
	cursor := waking.Start
	emit := func(start, end time.Time) {
		minutes := int(end.Sub(start) / time.Minute)
		if minutes < minGapMinutes {
			return
		}
		iv := plan.Interval{Start: start, End: end}
		found = append(found, plan.Gap{
			Interval:       iv,
			Minutes:        minutes,
			InEnergyWindow: overlapsAny(iv, energy),
		})
	}

	for _, b := range clipped {
		if b.Start.After(cursor) {
			emit(cursor, b.Start)
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if waking.End.After(cursor) {
		emit(cursor, waking.End)
	}
	return found
}

func overlapsAny(iv plan.Interval, windows []plan.Interval) bool {
	for _, w := range windows {
		if iv.Overlaps(w) {
			return true
		}
	}
	return false
}
