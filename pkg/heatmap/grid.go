package heatmap

import (
	"time"

	"tableflip.dev/logbook/pkg/timeutil"
)

// MonthLabel marks the column where a month first appears.
type MonthLabel struct {
	Label  string
	Column int
}

// Grid is the window laid out as week columns of exactly seven cells. Padding
// cells before the window start and after its end are nil.
type Grid struct {
	Columns [][]*Day
	Labels  []MonthLabel
}

// Shape lays an authoritative snapshot out for display. Counts are taken from
// the snapshot as-is; days the snapshot does not mention are shown empty.
func Shape(snap Snapshot, end timeutil.Date, length int, weekStart time.Weekday) Grid {
	start, _ := Window(end, length)
	byDate := make(map[timeutil.Date]Day, len(snap.Days))
	for _, d := range snap.Days {
		byDate[d.Date] = d
	}

	var (
		columns [][]*Day
		column  []*Day
	)
	lead := (int(start.Weekday()) - int(weekStart) + 7) % 7
	for i := 0; i < lead; i++ {
		column = append(column, nil)
	}
	for _, date := range timeutil.Range(start, end) {
		d, ok := byDate[date]
		if !ok {
			d = Day{Date: date}
		}
		if d.Level == 0 && d.Count > 0 {
			d.Level = Level(d.Count)
		}
		day := d
		column = append(column, &day)
		if len(column) == 7 {
			columns = append(columns, column)
			column = nil
		}
	}
	if len(column) > 0 {
		for len(column) < 7 {
			column = append(column, nil)
		}
		columns = append(columns, column)
	}
	return Grid{Columns: columns, Labels: monthLabels(columns)}
}

func monthLabels(columns [][]*Day) []MonthLabel {
	var labels []MonthLabel
	last := time.Month(0)
	for i, col := range columns {
		first := firstReal(col)
		if first == nil {
			continue
		}
		if first.Date.Month != last {
			labels = append(labels, MonthLabel{Label: first.Date.Format("Jan"), Column: i})
			last = first.Date.Month
		}
	}
	return labels
}

func firstReal(col []*Day) *Day {
	for _, d := range col {
		if d != nil {
			return d
		}
	}
	return nil
}

// Row returns the cells of the grid for one weekday row (0 = weekStart).
func (g Grid) Row(i int) []*Day {
	out := make([]*Day, len(g.Columns))
	for c, col := range g.Columns {
		if i >= 0 && i < len(col) {
			out[c] = col[i]
		}
	}
	return out
}
