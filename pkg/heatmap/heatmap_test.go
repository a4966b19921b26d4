package heatmap

import (
	"testing"
	"time"

	"tableflip.dev/logbook/pkg/timeutil"
)

func TestStreaksScenarios(t *testing.T) {
	tests := map[string]struct {
		counts           []int
		current, longest int
	}{
		"gap in middle":  {counts: []int{1, 0, 1}, current: 1, longest: 1},
		"all active":     {counts: []int{1, 1, 1}, current: 3, longest: 3},
		"anchor idle":    {counts: []int{1, 1, 0}, current: 0, longest: 2},
		"all zero":       {counts: []int{0, 0, 0}, current: 0, longest: 0},
		"empty":          {counts: nil, current: 0, longest: 0},
		"longer earlier": {counts: []int{2, 3, 1, 1, 0, 4, 1}, current: 2, longest: 4},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			current, longest := Streaks(tc.counts)
			if current != tc.current || longest != tc.longest {
				t.Fatalf("got current=%d longest=%d, want %d/%d", current, longest, tc.current, tc.longest)
			}
			if current > longest || current < 0 {
				t.Fatalf("current streak longer than longest: current=%d longest=%d", current, longest)
			}
		})
	}
}

func TestBuildThreeDayWindow(t *testing.T) {
	end := timeutil.MustParseDate("2024-05-03")
	counts := map[timeutil.Date]int{
		timeutil.MustParseDate("2024-05-01"): 1,
		timeutil.MustParseDate("2024-05-03"): 1,
		// Outside the window; must be ignored.
		timeutil.MustParseDate("2024-04-30"): 9,
	}
	res := Build(counts, end, 3, time.Sunday)
	s := res.Snapshot
	if s.CurrentStreak != 1 || s.LongestStreak != 1 {
		t.Fatalf("unexpected streaks %+v", s)
	}
	if s.TotalEntries != 2 || s.ActiveDays != 2 || len(s.Days) != 3 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.Days[0].Date.String() != "2024-05-01" || s.Days[2].Date != end {
		t.Fatalf("days not ordered oldest to newest: %+v", s.Days)
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := Level(0)
	if prev != 0 {
		t.Fatalf("zero count must be level 0")
	}
	for c := 1; c < 50; c++ {
		l := Level(c)
		if l < prev || l > MaxLevel || l < 1 {
			t.Fatalf("level(%d)=%d not monotonic after %d", c, l, prev)
		}
		prev = l
	}
}

func TestShapeColumnsAreFull(t *testing.T) {
	end := timeutil.MustParseDate("2024-10-16") // Wednesday
	res := Build(map[timeutil.Date]int{end: 2}, end, DefaultWindow, time.Sunday)
	g := res.Grid
	if len(g.Columns) != Weeks {
		t.Fatalf("expected %d columns, got %d", Weeks, len(g.Columns))
	}
	filled := 0
	for i, col := range g.Columns {
		if len(col) != 7 {
			t.Fatalf("column %d has %d cells", i, len(col))
		}
		for row, d := range col {
			if d == nil {
				continue
			}
			filled++
			if got := int(d.Date.Weekday()); got != row {
				t.Fatalf("%s placed in row %d", d.Date, row)
			}
		}
	}
	if filled != DefaultWindow {
		t.Fatalf("expected %d real cells, got %d", DefaultWindow, filled)
	}
	last := g.Columns[len(g.Columns)-1]
	if last[3] == nil || last[3].Date != end || last[3].Level != 2 {
		t.Fatalf("anchor day misplaced: %+v", last[3])
	}
	if last[4] != nil {
		t.Fatalf("expected padding after the anchor")
	}
}

func TestShapeMonthLabels(t *testing.T) {
	end := timeutil.MustParseDate("2024-03-09") // Saturday
	g := Shape(Snapshot{}, end, 6*7, time.Sunday)
	want := []MonthLabel{{"Jan", 0}, {"Feb", 1}, {"Mar", 5}}
	if len(g.Labels) != len(want) {
		t.Fatalf("unexpected labels %+v", g.Labels)
	}
	for i := range want {
		if g.Labels[i] != want[i] {
			t.Fatalf("label %d: got %+v want %+v", i, g.Labels[i], want[i])
		}
	}
}

func TestShapeKeepsServerCounts(t *testing.T) {
	end := timeutil.MustParseDate("2024-05-03")
	snap := Snapshot{Days: []Day{{Date: end, Count: 7, Level: 3}}}
	g := Shape(snap, end, 1, time.Sunday)
	cell := g.Row(int(end.Weekday()))[0]
	if cell == nil || cell.Count != 7 || cell.Level != 3 {
		t.Fatalf("server data altered: %+v", cell)
	}
}
