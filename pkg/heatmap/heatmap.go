// Package heatmap turns daily activity counts into streak numbers and a
// week-column display grid.
package heatmap

import (
	"time"

	"tableflip.dev/logbook/pkg/timeutil"
)

const (
	// DefaultWindow is the trailing window, in days, fetched for the heatmap.
	DefaultWindow = 365
	// Weeks is the number of columns of a year-long display grid.
	Weeks = 53
	// MaxLevel is the highest activity band.
	MaxLevel = 4
)

// Day is one day of activity.
type Day struct {
	Date  timeutil.Date `json:"date"`
	Count int           `json:"count"`
	Level int           `json:"level"`
}

// Snapshot is the aggregate over a trailing window. It is always replaced
// wholesale, never patched.
type Snapshot struct {
	Days          []Day `json:"data"`
	TotalEntries  int   `json:"totalEntries"`
	ActiveDays    int   `json:"activeDays"`
	CurrentStreak int   `json:"currentStreak"`
	LongestStreak int   `json:"longestStreak"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Days = append([]Day(nil), s.Days...)
	return out
}

// Counts indexes the snapshot's days by date.
func (s Snapshot) Counts() map[timeutil.Date]int {
	out := make(map[timeutil.Date]int, len(s.Days))
	for _, d := range s.Days {
		out[d.Date] = d.Count
	}
	return out
}

// Level quantizes a daily count into a display band: 0 for no activity, then
// 1, 2-3, 4-5 and 6+.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	default:
		return MaxLevel
	}
}

// Streaks walks counts ordered oldest to newest; the last element is the
// anchor day. current is the run of active days ending exactly at the anchor
// and longest is the longest run anywhere in counts.
func Streaks(counts []int) (current, longest int) {
	run := 0
	for _, c := range counts {
		if c > 0 {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	for i := len(counts) - 1; i >= 0 && counts[i] > 0; i-- {
		current++
	}
	return current, longest
}

// Window returns the first and last day of a window of length days ending at
// end.
func Window(end timeutil.Date, length int) (timeutil.Date, timeutil.Date) {
	if length < 1 {
		length = 1
	}
	return end.AddDays(-(length - 1)), end
}

// Result bundles the aggregate with its display grid.
type Result struct {
	Snapshot Snapshot
	Grid     Grid
}

// Build aggregates counts over the window ending at end. Days outside the
// window are ignored and missing days count as zero.
func Build(counts map[timeutil.Date]int, end timeutil.Date, length int, weekStart time.Weekday) Result {
	start, _ := Window(end, length)
	days := timeutil.Range(start, end)

	snap := Snapshot{Days: make([]Day, 0, len(days))}
	series := make([]int, 0, len(days))
	for _, d := range days {
		c := counts[d]
		if c < 0 {
			c = 0
		}
		snap.Days = append(snap.Days, Day{Date: d, Count: c, Level: Level(c)})
		series = append(series, c)
		snap.TotalEntries += c
		if c > 0 {
			snap.ActiveDays++
		}
	}
	snap.CurrentStreak, snap.LongestStreak = Streaks(series)
	return Result{Snapshot: snap, Grid: Shape(snap, end, length, weekStart)}
}
