package plan

import (
	"fmt"
	"time"
)

// Context bundles everything one scheduling invocation needs. It is
// immutable per call; the engine keeps no reference to it afterwards.
//
// Only the calendar day of Date is used (year, month, day); it is resolved
// against Timezone to build the waking window. Mood, energy and stress are
// self-reported 0-10 scores where 0 means unspecified.
type Context struct {
	UserID        string         `json:"user_id"`
	Date          time.Time      `json:"date"`
	Timezone      string         `json:"timezone,omitempty"`
	Sleep         SleepSchedule  `json:"sleep"`
	EnergyWindows []EnergyWindow `json:"energy_windows,omitempty"`
	Buffer        BufferPolicy   `json:"buffer,omitempty"`
	MoodScore     int            `json:"mood_score,omitempty"`
	EnergyLevel   int            `json:"energy_level,omitempty"`
	StressLevel   int            `json:"stress_level,omitempty"`
	Events        []BusyBlock    `json:"events,omitempty"`
}

// Validate checks the context at the call boundary. This is the only place
// the overall scheduling operation can fail; everything downstream degrades
// to a smaller activity list instead of erroring.
func (c *Context) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if c.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	if !c.Sleep.Wake.Before(c.Sleep.Bed) {
		return fmt.Errorf("wake time %s must be before bed time %s", c.Sleep.Wake, c.Sleep.Bed)
	}
	for i, ew := range c.EnergyWindows {
		if !ew.Start.Before(ew.End) {
			return fmt.Errorf("energy window %d: start %s must be before end %s", i, ew.Start, ew.End)
		}
	}
	if c.Buffer.Before < 0 || c.Buffer.After < 0 {
		return fmt.Errorf("buffer minutes must not be negative")
	}
	for _, pair := range []struct {
		name  string
		score int
	}{
		{"mood score", c.MoodScore},
		{"energy level", c.EnergyLevel},
		{"stress level", c.StressLevel},
	} {
		if pair.score < 0 || pair.score > 10 {
			return fmt.Errorf("%s %d out of range 0-10", pair.name, pair.score)
		}
	}
	for i, ev := range c.Events {
		if !ev.Start.Before(ev.End) {
			return fmt.Errorf("event %d (%q): start %s is not before end %s",
				i, ev.Title, ev.Start.Format(time.RFC3339), ev.End.Format(time.RFC3339))
		}
	}
	return nil
}

// Location resolves the context timezone, defaulting to UTC. Validate
// catches unknown zone names up front, so a load failure here falls back
// silently.
func (c *Context) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WakingWindow returns the day's waking interval as UTC instants. The
// wake/bed times are wall-clock in the context's location.
func (c *Context) WakingWindow() Interval {
	loc := c.Location()
	y, m, d := c.Date.Date()
	start := time.Date(y, m, d, c.Sleep.Wake.Hour, c.Sleep.Wake.Minute, 0, 0, loc)
	end := time.Date(y, m, d, c.Sleep.Bed.Hour, c.Sleep.Bed.Minute, 0, 0, loc)
	return Interval{Start: start.UTC(), End: end.UTC()}
}

// EnergyIntervals materializes the recurring energy windows on the
// context's date, as UTC instants.
func (c *Context) EnergyIntervals() []Interval {
	loc := c.Location()
	y, m, d := c.Date.Date()
	intervals := make([]Interval, 0, len(c.EnergyWindows))
	for _, ew := range c.EnergyWindows {
		start := time.Date(y, m, d, ew.Start.Hour, ew.Start.Minute, 0, 0, loc)
		end := time.Date(y, m, d, ew.End.Hour, ew.End.Minute, 0, 0, loc)
		if start.Before(end) {
			intervals = append(intervals, Interval{Start: start.UTC(), End: end.UTC()})
		}
	}
	return intervals
}

// DateKey is the cache-key form of the context's calendar day.
func (c *Context) DateKey() string {
	return c.Date.Format("2006-01-02")
}
