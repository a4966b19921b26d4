package printers

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/glyph"
)

// recentShown caps the recent entries printed under a summary.
const recentShown = 6

// Summary prints all-time totals, the entry type breakdown and the most
// recent entries.
func (pp *PrettyPrint) Summary(sum backend.Summary) {
	pp.Title("Stats")
	b := color.New(color.Bold)
	w := pp.out()
	_, _ = b.Fprintf(w, "%d", sum.TotalEntries)
	_, _ = fmt.Fprint(w, " entries on ")
	_, _ = b.Fprintf(w, "%d", sum.ActiveDays)
	_, _ = fmt.Fprint(w, " days · current streak ")
	_, _ = b.Fprint(w, plural(sum.CurrentStreak, "day"))
	_, _ = fmt.Fprint(w, " · longest ")
	_, _ = b.Fprintln(w, plural(sum.LongestStreak, "day"))
	pp.NewLine()

	types := make([]entry.Type, 0, len(sum.ByType))
	for t, n := range sum.ByType {
		if n > 0 {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool {
		if sum.ByType[types[i]] == sum.ByType[types[j]] {
			return types[i] < types[j]
		}
		return sum.ByType[types[i]] > sum.ByType[types[j]]
	})
	if len(types) > 0 {
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, t := range types {
			n := sum.ByType[t]
			percent := n * 100 / max(sum.TotalEntries, 1)
			tbl.AddRow(glyph.For(t).Symbol, t.Label(), n, fmt.Sprintf("%s %3d%%", ProgressBar(percent), percent))
		}
		tbl.RightAlign(2)
		_, _ = fmt.Fprintln(w, tbl)
		pp.NewLine()
	}

	recent := sum.RecentEntries
	if len(recent) > recentShown {
		recent = recent[:recentShown]
	}
	pp.Title("Recent entries")
	if len(recent) == 0 {
		pp.Entries()
		return
	}
	for _, e := range recent {
		pp.entry(e, true)
	}
	pp.NewLine()
}

// Tags prints the tag catalog with ids and colors.
func (pp *PrettyPrint) Tags(tags ...entry.Tag) {
	pp.Title("Tags")
	if len(tags) == 0 {
		pp.Entries()
		return
	}
	f := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, t := range tags {
		tbl.AddRow(fmt.Sprintf("#%d", t.ID), "#"+t.Name, f.Sprint(t.Color))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}
