package gaps

import (
	"testing"
	"time"

	"github.com/lulldev/lull/pkg/plan"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func block(start, end time.Time) plan.BusyBlock {
	return plan.BusyBlock{Interval: plan.Interval{Start: start, End: end}}
}

func TestFindMediumDay(t *testing.T) {
	// Waking 08:00-22:00 with three meetings leaves four gaps of
	// 60/60/60/180 minutes.
	waking := plan.Interval{Start: at(8, 0), End: at(22, 0)}
	blocks := []plan.BusyBlock{
		block(at(9, 0), at(12, 0)),
		block(at(13, 0), at(17, 0)),
		block(at(18, 0), at(19, 0)),
	}

	got := Find(blocks, waking, nil, 10)

	want := []struct {
		start   time.Time
		end     time.Time
		minutes int
	}{
		{at(8, 0), at(9, 0), 60},
		{at(12, 0), at(13, 0), 60},
		{at(17, 0), at(18, 0), 60},
		{at(19, 0), at(22, 0), 180},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d gaps, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if !g.Start.Equal(w.start) || !g.End.Equal(w.end) || g.Minutes != w.minutes {
			t.Errorf("gap %d = [%v, %v] %dmin, want [%v, %v] %dmin",
				i, g.Start, g.End, g.Minutes, w.start, w.end, w.minutes)
		}
	}
}

func TestFindQuietDayWithEnergyTagging(t *testing.T) {
	// Waking 07:00-23:00 with a single lunch meeting: two big gaps, and
	// the morning gap overlaps the 09:00-12:00 energy window.
	waking := plan.Interval{Start: at(7, 0), End: at(23, 0)}
	blocks := []plan.BusyBlock{block(at(14, 0), at(15, 0))}
	energy := []plan.Interval{{Start: at(9, 0), End: at(12, 0)}}

	got := Find(blocks, waking, energy, 10)
	if len(got) != 2 {
		t.Fatalf("got %d gaps, want 2: %+v", len(got), got)
	}
	if got[0].Minutes != 420 || got[1].Minutes != 480 {
		t.Errorf("gap minutes = %d/%d, want 420/480", got[0].Minutes, got[1].Minutes)
	}
	if !got[0].InEnergyWindow {
		t.Error("morning gap should be tagged in energy window")
	}
	if got[1].InEnergyWindow {
		t.Error("evening gap should not be tagged in energy window")
	}
}

func TestFindEmptyDay(t *testing.T) {
	waking := plan.Interval{Start: at(8, 0), End: at(22, 0)}
	got := Find(nil, waking, nil, 10)
	if len(got) != 1 {
		t.Fatalf("got %d gaps, want 1", len(got))
	}
	if got[0].Minutes != 840 {
		t.Errorf("gap minutes = %d, want 840", got[0].Minutes)
	}
}

func TestFindOverlappingBlocks(t *testing.T) {
	// Overlapping and contained blocks must be absorbed by the cursor so
	// no negative or phantom gaps appear.
	waking := plan.Interval{Start: at(8, 0), End: at(22, 0)}
	blocks := []plan.BusyBlock{
		block(at(9, 0), at(12, 0)),
		block(at(10, 0), at(11, 0)),
		block(at(11, 30), at(13, 0)),
	}
	got := Find(blocks, waking, nil, 10)
	if len(got) != 2 {
		t.Fatalf("got %d gaps, want 2: %+v", len(got), got)
	}
	if !got[0].End.Equal(at(9, 0)) || !got[1].Start.Equal(at(13, 0)) {
		t.Errorf("gaps = %+v, want 08:00-09:00 and 13:00-22:00", got)
	}
}

func TestFindBlockOutsideWakingWindow(t *testing.T) {
	waking := plan.Interval{Start: at(8, 0), End: at(22, 0)}
	blocks := []plan.BusyBlock{block(at(2, 0), at(5, 0))}
	got := Find(blocks, waking, nil, 10)
	if len(got) != 1 || got[0].Minutes != 840 {
		t.Fatalf("early-morning block changed gaps: %+v", got)
	}
}

func TestFindMinGapFiltering(t *testing.T) {
	// A 9-minute sliver between meetings is unusable and must not be
	// reported.
	waking := plan.Interval{Start: at(8, 0), End: at(22, 0)}
	blocks := []plan.BusyBlock{
		block(at(8, 0), at(12, 0)),
		block(at(12, 9), at(22, 0)),
	}
	got := Find(blocks, waking, nil, 10)
	if len(got) != 0 {
		t.Errorf("got %d gaps, want 0: %+v", len(got), got)
	}

	// Widen the sliver to exactly the minimum and it appears.
	blocks[1] = block(at(12, 10), at(22, 0))
	got = Find(blocks, waking, nil, 10)
	if len(got) != 1 || got[0].Minutes != 10 {
		t.Errorf("got %+v, want a single 10-minute gap", got)
	}
}

func TestPartitionInvariant(t *testing.T) {
	// Gap minutes plus occupied minutes must always equal the waking
	// window, for any busy-block shape, when no minimum filters gaps out.
	waking := plan.Interval{Start: at(8, 0), End: at(22, 0)}
	fixtures := [][]plan.BusyBlock{
		nil,
		{block(at(9, 0), at(12, 0)), block(at(13, 0), at(17, 0)), block(at(18, 0), at(19, 0))},
		{block(at(6, 0), at(9, 30)), block(at(9, 0), at(11, 0)), block(at(21, 0), at(23, 0))},
		{block(at(8, 0), at(22, 0))},
		{block(at(10, 0), at(10, 30)), block(at(10, 15), at(10, 45)), block(at(10, 40), at(11, 0))},
	}

	for i, blocks := range fixtures {
		got := Find(blocks, waking, nil, 1)
		gapTotal := 0
		for _, g := range got {
			gapTotal += g.Minutes
		}
		busy := plan.OccupiedMinutes(blocks, waking)
		if gapTotal+busy != waking.Minutes() {
			t.Errorf("fixture %d: gaps %d + busy %d != waking %d", i, gapTotal, busy, waking.Minutes())
		}
	}
}

func TestGapsNeverOverlapBlocks(t *testing.T) {
	waking := plan.Interval{Start: at(8, 0), End: at(22, 0)}
	blocks := []plan.BusyBlock{
		block(at(7, 0), at(9, 15)),
		block(at(9, 0), at(10, 0)),
		block(at(12, 30), at(14, 0)),
		block(at(21, 0), at(23, 0)),
	}
	for _, g := range Find(blocks, waking, nil, 10) {
		for _, b := range blocks {
			if clipped, ok := b.Interval.ClipTo(waking); ok && g.Overlaps(clipped) {
				t.Errorf("gap [%v, %v] overlaps block [%v, %v]", g.Start, g.End, clipped.Start, clipped.End)
			}
		}
		if !waking.Contains(g.Interval) {
			t.Errorf("gap [%v, %v] extends outside the waking window", g.Start, g.End)
		}
	}
}
