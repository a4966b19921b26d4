// Package calendar builds and renders month grids.
package calendar

import (
	"time"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/timeutil"
)

// Cell is one day slot of the grid.
type Cell struct {
	Date    timeutil.Date
	InMonth bool
	IsToday bool
}

// Grid is a month laid out as complete weeks.
type Grid struct {
	Month     timeutil.Date
	WeekStart time.Weekday
	Cells     []Cell
}

// Build lays out the month containing month as whole weeks starting on
// weekStart. The grid begins on the last weekStart on or before the 1st and
// ends on the last week day on or after the month's final day, so len(Cells)
// is always a multiple of 7.
func Build(month, today timeutil.Date, weekStart time.Weekday) Grid {
	first := month.FirstOfMonth()
	last := month.LastOfMonth()
	start := timeutil.StartOfWeek(first, weekStart)
	end := timeutil.EndOfWeek(last, weekStart)

	days := timeutil.Range(start, end)
	cells := make([]Cell, 0, len(days))
	for _, d := range days {
		cells = append(cells, Cell{
			Date:    d,
			InMonth: d.SameMonth(first),
			IsToday: d == today,
		})
	}
	return Grid{Month: first, WeekStart: weekStart, Cells: cells}
}

// Weeks splits the grid into rows of seven cells.
func (g Grid) Weeks() [][]Cell {
	rows := make([][]Cell, 0, len(g.Cells)/7)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		rows = append(rows, g.Cells[i:i+7])
	}
	return rows
}

// Start returns the first date covered by the grid.
func (g Grid) Start() timeutil.Date {
	if len(g.Cells) == 0 {
		return timeutil.Date{}
	}
	return g.Cells[0].Date
}

// End returns the last date covered by the grid.
func (g Grid) End() timeutil.Date {
	if len(g.Cells) == 0 {
		return timeutil.Date{}
	}
	return g.Cells[len(g.Cells)-1].Date
}

// WeekdayHeader returns two-letter day names in grid column order.
func WeekdayHeader(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = time.Weekday((int(weekStart) + i) % 7).String()[:2]
	}
	return out
}

// DaySummary condenses one day's entries into what a calendar cell shows.
type DaySummary struct {
	Count           int
	Types           []entry.Type
	GoalCompletions int
	Milestones      int
}

// Summarize returns the distinct entry types of a day in display order. Goal
// completion entries are counted separately instead of getting a type dot.
func Summarize(entries []entry.Entry) DaySummary {
	s := DaySummary{Count: len(entries)}
	present := make(map[entry.Type]bool, len(entries))
	for _, e := range entries {
		if e.Type == entry.TypeGoal {
			if e.Completed() {
				s.GoalCompletions++
			}
			continue
		}
		present[e.Type] = true
	}
	for _, t := range entry.Types() {
		if present[t] {
			s.Types = append(s.Types, t)
		}
	}
	return s
}
