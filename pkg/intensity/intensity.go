// Package intensity classifies how packed a day's calendar is.
package intensity

import (
	"github.com/lulldev/lull/pkg/constants"
	"github.com/lulldev/lull/pkg/plan"
)

// Classify computes the busy ratio of the waking window and buckets it.
// Busy minutes are the union of the blocks clipped to the window, so a
// meeting that starts before wake time or double-books another only counts
// for its waking, uncounted portion.
//
// The threshold comparison is done in integer minutes so that exact
// boundary ratios land in the lower bucket: 70% busy is Medium, not High,
// and 40% busy is Low, not Medium.
func Classify(blocks []plan.BusyBlock, waking plan.Interval) plan.Intensity {
	busy := plan.OccupiedMinutes(blocks, waking)
	total := waking.Minutes()

	result := plan.Intensity{
		Level:              plan.LevelLow,
		BusyMinutes:        busy,
		TotalWakingMinutes: total,
	}
	if total <= 0 {
		return result
	}
	result.Ratio = float64(busy) / float64(total)

	switch {
	case busy*100 > total*constants.HighIntensityPercent:
		result.Level = plan.LevelHigh
	case busy*100 > total*constants.MediumIntensityPercent:
		result.Level = plan.LevelMedium
	default:
		result.Level = plan.LevelLow
	}
	return result
}
