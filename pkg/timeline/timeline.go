// Package timeline renders a day plan for the terminal: a half-hour strip
// of the waking window plus the accepted activity list.
package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/lulldev/lull/pkg/plan"
)

// Cell classes for the day strip.
var (
	busyColor     = color.New(color.FgRed)
	energyColor   = color.New(color.FgYellow)
	activityColor = color.New(color.FgGreen)
	freeColor     = color.New(color.FgHiBlack)
	titleColor    = color.New(color.Bold)
)

// Render draws the waking window in half-hour cells, one line per cell,
// followed by the intensity summary and the numbered activity list with
// micro-steps. Times are shown in the context's local clock.
func Render(sc plan.Context, dayGaps []plan.Gap, in plan.Intensity, activities []plan.Activity) string {
	loc := sc.Location()
	waking := sc.WakingWindow()
	energy := sc.EnergyIntervals()

	var out strings.Builder
	out.WriteString(titleColor.Sprintf("Day plan for %s\n", sc.DateKey()))
	out.WriteString(strings.Repeat("─", 50) + "\n")

	for cursor := waking.Start; cursor.Before(waking.End); cursor = cursor.Add(30 * time.Minute) {
		cellEnd := cursor.Add(30 * time.Minute)
		if cellEnd.After(waking.End) {
			cellEnd = waking.End
		}
		cell := plan.Interval{Start: cursor, End: cellEnd}

		marker := freeColor.Sprint("·")
		label := ""
		switch {
		case overlapsActivity(cell, activities):
			marker = activityColor.Sprint("●")
			if a := activityStartingIn(cell, activities); a != nil {
				label = activityColor.Sprint(a.Title)
			}
		case overlapsEvent(cell, sc.Events):
			marker = busyColor.Sprint("■")
			if ev := eventStartingIn(cell, sc.Events); ev != nil && ev.Title != "" {
				label = busyColor.Sprint(ev.Title)
			}
		case overlapsAny(cell, energy):
			marker = energyColor.Sprint("·")
		}

		line := fmt.Sprintf("%s %s", cursor.In(loc).Format("15:04"), marker)
		if label != "" {
			line += " " + label
		}
		out.WriteString(line + "\n")
	}

	out.WriteString(strings.Repeat("─", 50) + "\n")
	out.WriteString(fmt.Sprintf("%s  %s  %s  %s\n",
		busyColor.Sprint("■ busy"), activityColor.Sprint("● activity"),
		energyColor.Sprint("· peak energy"), freeColor.Sprint("· free")))
	out.WriteString(fmt.Sprintf("Intensity: %s (%d of %d waking minutes busy, ratio %.2f)\n",
		in.Level, in.BusyMinutes, in.TotalWakingMinutes, in.Ratio))

	if len(activities) == 0 {
		out.WriteString("\nNo activities placed today.\n")
		return out.String()
	}

	out.WriteString("\nActivities:\n")
	for i, a := range activities {
		out.WriteString(fmt.Sprintf("%d. %s  %s - %s (%d min, %s, via %s)\n",
			i+1, titleColor.Sprint(a.Title),
			a.Start.In(loc).Format("15:04"), a.End.In(loc).Format("15:04"),
			a.DurationMinutes, a.Type, a.Source))
		for _, step := range a.MicroSteps {
			out.WriteString("   - " + step + "\n")
		}
	}
	return out.String()
}

func overlapsActivity(cell plan.Interval, activities []plan.Activity) bool {
	for _, a := range activities {
		if cell.Overlaps(plan.Interval{Start: a.Start, End: a.End}) {
			return true
		}
	}
	return false
}

func activityStartingIn(cell plan.Interval, activities []plan.Activity) *plan.Activity {
	for i := range activities {
		if !activities[i].Start.Before(cell.Start) && activities[i].Start.Before(cell.End) {
			return &activities[i]
		}
	}
	return nil
}

func overlapsEvent(cell plan.Interval, events []plan.BusyBlock) bool {
	for _, ev := range events {
		if cell.Overlaps(ev.Interval) {
			return true
		}
	}
	return false
}

func eventStartingIn(cell plan.Interval, events []plan.BusyBlock) *plan.BusyBlock {
	for i := range events {
		if !events[i].Start.Before(cell.Start) && events[i].Start.Before(cell.End) {
			return &events[i]
		}
	}
	return nil
}

func overlapsAny(cell plan.Interval, windows []plan.Interval) bool {
	for _, w := range windows {
		if cell.Overlaps(w) {
			return true
		}
	}
	return false
}
