package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/lulldev/lull/pkg/plan"
)

func TestRender(t *testing.T) {
	color.NoColor = true

	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
	}
	sc := plan.Context{
		UserID: "user-1",
		Date:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Sleep:  plan.SleepSchedule{Wake: plan.TimeOfDay{Hour: 8}, Bed: plan.TimeOfDay{Hour: 22}},
		Events: []plan.BusyBlock{{
			Interval: plan.Interval{Start: at(9, 0), End: at(12, 0)},
			Title:    "Deep work",
		}},
	}
	dayGaps := []plan.Gap{{
		Interval: plan.Interval{Start: at(12, 0), End: at(13, 0)},
		Minutes:  60,
	}}
	in := plan.Intensity{Level: plan.LevelMedium, Ratio: 0.57, BusyMinutes: 480, TotalWakingMinutes: 840}
	activities := []plan.Activity{{
		ID:              "a-1",
		Type:            plan.ActivityMovement,
		Title:           "Midday walk",
		Start:           at(12, 15),
		End:             at(12, 45),
		DurationMinutes: 30,
		MicroSteps:      []string{"shoes on", "walk", "stretch"},
		Priority:        plan.PriorityHigh,
		Source:          plan.SourceRecommender,
	}}

	out := Render(sc, dayGaps, in, activities)

	for _, want := range []string{
		"Day plan for 2026-03-10",
		"Deep work",
		"Midday walk",
		"Intensity: medium",
		"480 of 840",
		"shoes on",
		"08:00",
		"21:30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered timeline missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "22:00") {
		t.Error("timeline rendered a cell at bed time")
	}
}

func TestRenderEmptyDay(t *testing.T) {
	color.NoColor = true

	sc := plan.Context{
		UserID: "user-1",
		Date:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Sleep:  plan.SleepSchedule{Wake: plan.TimeOfDay{Hour: 8}, Bed: plan.TimeOfDay{Hour: 22}},
	}
	out := Render(sc, nil, plan.Intensity{Level: plan.LevelLow, TotalWakingMinutes: 840}, nil)
	if !strings.Contains(out, "No activities placed today.") {
		t.Errorf("empty day rendering missing placeholder:\n%s", out)
	}
}
