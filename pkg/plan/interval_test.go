package plan

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestNewInterval(t *testing.T) {
	if _, err := NewInterval(at(9, 0), at(10, 0)); err != nil {
		t.Errorf("valid interval rejected: %v", err)
	}
	if _, err := NewInterval(at(10, 0), at(9, 0)); err == nil {
		t.Error("reversed interval accepted")
	}
	if _, err := NewInterval(at(9, 0), at(9, 0)); err == nil {
		t.Error("zero-length interval accepted")
	}
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{"disjoint", Interval{at(9, 0), at(10, 0)}, Interval{at(11, 0), at(12, 0)}, false},
		{"adjacent do not overlap", Interval{at(9, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"partial", Interval{at(9, 0), at(10, 30)}, Interval{at(10, 0), at(11, 0)}, true},
		{"contained", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntervalClipTo(t *testing.T) {
	window := Interval{at(8, 0), at(22, 0)}

	tests := []struct {
		name      string
		in        Interval
		wantOK    bool
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"inside unchanged", Interval{at(9, 0), at(10, 0)}, true, at(9, 0), at(10, 0)},
		{"clipped at start", Interval{at(6, 0), at(9, 0)}, true, at(8, 0), at(9, 0)},
		{"clipped at end", Interval{at(21, 0), at(23, 30)}, true, at(21, 0), at(22, 0)},
		{"fully before", Interval{at(5, 0), at(7, 0)}, false, time.Time{}, time.Time{}},
		{"fully after", Interval{at(22, 30), at(23, 0)}, false, time.Time{}, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.in.ClipTo(window)
			if ok != tt.wantOK {
				t.Fatalf("ClipTo ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("ClipTo = [%v, %v], want [%v, %v]", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestOccupiedMinutes(t *testing.T) {
	window := Interval{at(8, 0), at(22, 0)}
	block := func(s, e time.Time) BusyBlock {
		return BusyBlock{Interval: Interval{Start: s, End: e}}
	}

	tests := []struct {
		name   string
		blocks []BusyBlock
		want   int
	}{
		{"empty", nil, 0},
		{"single block", []BusyBlock{block(at(9, 0), at(10, 0))}, 60},
		{"clipped before wake", []BusyBlock{block(at(6, 0), at(9, 0))}, 60},
		{"clipped after bed", []BusyBlock{block(at(21, 0), at(23, 0))}, 60},
		{"outside window entirely", []BusyBlock{block(at(5, 0), at(7, 0))}, 0},
		{
			"overlapping blocks count once",
			[]BusyBlock{block(at(9, 0), at(11, 0)), block(at(10, 0), at(12, 0))},
			180,
		},
		{
			"adjacent blocks",
			[]BusyBlock{block(at(9, 0), at(10, 0)), block(at(10, 0), at(11, 0))},
			120,
		},
		{
			"unsorted input",
			[]BusyBlock{block(at(14, 0), at(15, 0)), block(at(9, 0), at(10, 0))},
			120,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OccupiedMinutes(tt.blocks, window); got != tt.want {
				t.Errorf("OccupiedMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}
