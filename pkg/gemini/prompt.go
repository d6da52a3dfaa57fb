package gemini

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/lulldev/lull/pkg/plan"
)

// buildPrompt renders the day for the model: the waking window, intensity,
// self-reported state, free gaps in local time, event titles with
// sanitized notes, and the placement constraints the validator will
// enforce anyway. Telling the model the constraints up front raises the
// acceptance rate; it does not replace validation.
func buildPrompt(sc plan.Context, dayGaps []plan.Gap, in plan.Intensity) string {
	loc := sc.Location()
	var b strings.Builder

	b.WriteString("You are planning short wellness micro-activities for one person's day.\n\n")

	waking := sc.WakingWindow()
	fmt.Fprintf(&b, "Waking window: %s - %s local time.\n",
		waking.Start.In(loc).Format("15:04"), waking.End.In(loc).Format("15:04"))
	fmt.Fprintf(&b, "Calendar intensity: %s (%d of %d waking minutes busy, ratio %.2f).\n",
		in.Level, in.BusyMinutes, in.TotalWakingMinutes, in.Ratio)

	if sc.MoodScore > 0 || sc.EnergyLevel > 0 || sc.StressLevel > 0 {
		b.WriteString("Self-reported state (0-10 scale, 0 = unspecified): ")
		fmt.Fprintf(&b, "mood %d, energy %d, stress %d.\n", sc.MoodScore, sc.EnergyLevel, sc.StressLevel)
	}

	b.WriteString("\nFree gaps available today (local time):\n")
	for _, g := range dayGaps {
		energyNote := ""
		if g.InEnergyWindow {
			energyNote = " (peak energy)"
		}
		fmt.Fprintf(&b, "- %s - %s, %d minutes%s\n",
			g.Start.In(loc).Format("15:04"), g.End.In(loc).Format("15:04"), g.Minutes, energyNote)
	}

	if len(sc.Events) > 0 {
		b.WriteString("\nExisting commitments (do not schedule over these):\n")
		for _, ev := range sc.Events {
			title := ev.Title
			if title == "" {
				title = "busy"
			}
			fmt.Fprintf(&b, "- %s - %s: %s\n",
				ev.Start.In(loc).Format("15:04"), ev.End.In(loc).Format("15:04"), title)
			if notes := sanitizeNotes(ev.Notes); notes != "" {
				fmt.Fprintf(&b, "  notes: %s\n", notes)
			}
		}
	}

	b.WriteString(`
Propose up to 6 activities as a JSON array. Rules:
- activity_type must be one of: breathing, movement, meal, workout
- every activity must fit entirely inside one of the free gaps above,
  leaving a few minutes of margin at each end
- nothing before 07:00 or ending after 22:00 local time
- micro_steps: 3-5 short, concrete, physical instructions
- prefer workouts in peak-energy gaps, breathing when stress is high
`)
	return b.String()
}

const maxNoteLength = 300

// sanitizeNotes converts provider-supplied HTML notes to markdown and
// flattens them to a single trimmed line.
func sanitizeNotes(notes string) string {
	if notes == "" {
		return ""
	}
	converted, err := md.ConvertString(notes)
	if err != nil {
		converted = notes
	}
	converted = strings.Join(strings.Fields(converted), " ")
	if len(converted) > maxNoteLength {
		converted = converted[:maxNoteLength] + "..."
	}
	return converted
}
