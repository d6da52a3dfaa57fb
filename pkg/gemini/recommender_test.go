package gemini

import (
	"strings"
	"testing"
	"time"

	"github.com/lulldev/lull/pkg/plan"
)

func testContext() plan.Context {
	return plan.Context{
		UserID:   "user-1",
		Date:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Timezone: "America/New_York",
		Sleep:    plan.SleepSchedule{Wake: plan.TimeOfDay{Hour: 8}, Bed: plan.TimeOfDay{Hour: 22}},
	}
}

func TestExtractJSONArray(t *testing.T) {
	valid := `[{"activity_type":"breathing","title":"reset"}]`

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"direct array", valid, false},
		{"json fenced block", "Here is the plan:\n```json\n" + valid + "\n```", false},
		{"bare fenced block", "```\n" + valid + "\n```", false},
		{"embedded in prose", "Sure! " + valid + " Hope that helps.", false},
		{"no json at all", "I could not produce a plan.", true},
		{"object instead of array", `{"activity_type":"breathing"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONArray(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractJSONArray error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !strings.Contains(got, "breathing") {
				t.Errorf("extracted %q, want the proposal array", got)
			}
		})
	}
}

func TestToCandidatesLocalTimeComposition(t *testing.T) {
	r := New("test-key", "", nil)
	sc := testContext()

	proposals := []proposal{{
		ActivityType:    "movement",
		Title:           "Walk outside",
		StartLocal:      "12:30",
		DurationMinutes: 20,
		MicroSteps:      []string{"shoes on", "walk", "stretch"},
		Priority:        "high",
	}}
	got, err := r.toCandidates(proposals, sc)
	if err != nil {
		t.Fatalf("toCandidates: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]

	// 12:30 New York on 2026-03-10 is 16:30 UTC (EDT).
	wantStart := time.Date(2026, 3, 10, 16, 30, 0, 0, time.UTC)
	if !c.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", c.Start, wantStart)
	}
	if !c.End.Equal(wantStart.Add(20 * time.Minute)) {
		t.Errorf("end = %v, want start+20m", c.End)
	}
	if c.Type != plan.ActivityMovement || c.Priority != plan.PriorityHigh || c.Source != plan.SourceRecommender {
		t.Errorf("candidate fields wrong: %+v", c)
	}
}

func TestToCandidatesBackfillsMicroSteps(t *testing.T) {
	r := New("test-key", "", nil)
	proposals := []proposal{{
		ActivityType:    "breathing",
		Title:           "Quick reset",
		StartLocal:      "10:00",
		DurationMinutes: 5,
		MicroSteps:      []string{"breathe"}, // too few
		Priority:        "medium",
	}}
	got, err := r.toCandidates(proposals, testContext())
	if err != nil {
		t.Fatalf("toCandidates: %v", err)
	}
	if steps := got[0].MicroSteps; len(steps) < 3 {
		t.Errorf("micro steps not backfilled: %v", steps)
	}
}

func TestToCandidatesSkipsBrokenProposals(t *testing.T) {
	r := New("test-key", "", nil)
	proposals := []proposal{
		{ActivityType: "napping", Title: "nap", StartLocal: "10:00", DurationMinutes: 20},
		{ActivityType: "breathing", Title: "", StartLocal: "10:00", DurationMinutes: 5},
		{ActivityType: "breathing", Title: "ok", StartLocal: "25:99", DurationMinutes: 5},
		{ActivityType: "breathing", Title: "ok", StartLocal: "10:00", DurationMinutes: 0},
		{ActivityType: "meal", Title: "lunch", StartLocal: "12:00", DurationMinutes: 30, Priority: "low"},
	}
	got, err := r.toCandidates(proposals, testContext())
	if err != nil {
		t.Fatalf("toCandidates: %v", err)
	}
	if len(got) != 1 || got[0].Type != plan.ActivityMeal {
		t.Errorf("got %+v, want only the meal proposal", got)
	}
}

func TestToCandidatesAllBrokenIsError(t *testing.T) {
	r := New("test-key", "", nil)
	proposals := []proposal{
		{ActivityType: "napping", Title: "nap", StartLocal: "10:00", DurationMinutes: 20},
	}
	if _, err := r.toCandidates(proposals, testContext()); err == nil {
		t.Error("all-broken proposal list did not error")
	}
}

func TestBuildPromptContents(t *testing.T) {
	sc := testContext()
	sc.StressLevel = 6
	sc.Events = []plan.BusyBlock{{
		Interval: plan.Interval{
			Start: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		},
		Title: "Design review",
		Notes: "<p>Bring the <b>mockups</b></p>",
	}}
	dayGaps := []plan.Gap{{
		Interval: plan.Interval{
			Start: time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC),
		},
		Minutes:        60,
		InEnergyWindow: true,
	}}
	in := plan.Intensity{Level: plan.LevelMedium, Ratio: 0.55, BusyMinutes: 462, TotalWakingMinutes: 840}

	prompt := buildPrompt(sc, dayGaps, in)

	// The gap renders in local (New York) time with its energy flag.
	for _, want := range []string{
		"12:00 - 13:00, 60 minutes (peak energy)",
		"Design review",
		"medium",
		"stress 6",
		"mockups",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "<p>") || strings.Contains(prompt, "<b>") {
		t.Error("prompt still contains raw HTML from event notes")
	}
}

func TestSanitizeNotes(t *testing.T) {
	got := sanitizeNotes("<p>Agenda:</p><ul><li>one</li><li>two</li></ul>")
	if strings.Contains(got, "<") {
		t.Errorf("sanitized notes still contain HTML: %q", got)
	}
	if !strings.Contains(got, "one") || !strings.Contains(got, "two") {
		t.Errorf("sanitized notes lost content: %q", got)
	}
	if sanitizeNotes("") != "" {
		t.Error("empty notes should stay empty")
	}

	long := strings.Repeat("word ", 200)
	if trimmed := sanitizeNotes(long); len(trimmed) > maxNoteLength+3 {
		t.Errorf("long notes not truncated: %d chars", len(trimmed))
	}
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"googleapi: Error 503: Service Unavailable", true},
		{"rate limit exceeded", true},
		{"context deadline exceeded", true},
		{"invalid API key", false},
		{"googleapi: Error 400: bad request", false},
	}
	for _, tt := range tests {
		if got := isTransientError(errString(tt.msg)); got != tt.want {
			t.Errorf("isTransientError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
