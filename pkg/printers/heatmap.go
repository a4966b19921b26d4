package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

var levelBlocks = []string{"·", "░", "▒", "▓", "█"}

var levelColors = []*color.Color{
	color.New(color.Faint),
	color.New(color.FgGreen, color.Faint),
	color.New(color.FgGreen),
	color.New(color.FgHiGreen),
	color.New(color.FgHiGreen, color.Bold),
}

// Heatmap prints the activity grid as seven weekday rows with month labels on
// top, followed by the totals and streaks of the snapshot.
func (pp *PrettyPrint) Heatmap(g heatmap.Grid, snap heatmap.Snapshot, weekStart time.Weekday) {
	w := pp.out()
	faint := color.New(color.Faint)

	header := []byte(strings.Repeat(" ", 2*len(g.Columns)))
	for _, l := range g.Labels {
		pos := 2 * l.Column
		if pos+len(l.Label) > len(header) {
			continue
		}
		copy(header[pos:], l.Label)
	}
	_, _ = faint.Fprintf(w, "    %s\n", strings.TrimRight(string(header), " "))

	for row := 0; row < 7; row++ {
		day := time.Weekday((int(weekStart) + row) % 7)
		label := "   "
		if row%2 == 1 {
			label = day.String()[:3]
		}
		_, _ = faint.Fprintf(w, "%s ", label)
		for _, d := range g.Row(row) {
			if d == nil {
				_, _ = fmt.Fprint(w, "  ")
				continue
			}
			lvl := min(max(d.Level, 0), heatmap.MaxLevel)
			_, _ = levelColors[lvl].Fprint(w, levelBlocks[lvl]+" ")
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = faint.Fprint(w, "\n    Less ")
	for lvl := range levelBlocks {
		_, _ = levelColors[lvl].Fprint(w, levelBlocks[lvl]+" ")
	}
	_, _ = faint.Fprintln(w, "More")
	pp.HeatmapStats(snap)
}

// HeatmapStats prints the totals of a snapshot.
func (pp *PrettyPrint) HeatmapStats(snap heatmap.Snapshot) {
	b := color.New(color.Bold)
	_, _ = fmt.Fprintln(pp.out())
	_, _ = b.Fprintf(pp.out(), "%d", snap.TotalEntries)
	_, _ = fmt.Fprintf(pp.out(), " entries on ")
	_, _ = b.Fprintf(pp.out(), "%d", snap.ActiveDays)
	_, _ = fmt.Fprintf(pp.out(), " days · current streak ")
	_, _ = b.Fprintf(pp.out(), "%s", plural(snap.CurrentStreak, "day"))
	_, _ = fmt.Fprintf(pp.out(), " · longest ")
	_, _ = b.Fprintf(pp.out(), "%s\n\n", plural(snap.LongestStreak, "day"))
}

// Window describes a heatmap range like "May 16, 2023 - May 15, 2024".
func Window(end timeutil.Date, length int) string {
	start, _ := heatmap.Window(end, length)
	return start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
