package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/logbook/pkg/calendar"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/glyph"
)

const width = len("11  12  13  14  15  16  17") // an example week

// Month prints a compact month grid. Days with entries are bold, today is
// underlined and milestone or goal completions get a star.
func (pp *PrettyPrint) Month(g calendar.Grid, info calendar.Info) {
	w := pp.out()
	tf := color.New(color.FgWhite, color.Italic)

	m := g.Month.Format("January 2006")
	mid := max((width-len(m))/2, 0)
	_, _ = tf.Fprintf(w, "%s%s\n", strings.Repeat(" ", mid), m)
	_, _ = color.New(color.Faint).Fprintln(w, strings.Join(calendar.WeekdayHeader(g.WeekStart), "  "))

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)
	star := color.New(color.FgYellow)

	for _, week := range g.Weeks() {
		for i, c := range week {
			if i > 0 {
				_, _ = fmt.Fprint(w, " ")
			}
			if !c.InMonth {
				_, _ = fmt.Fprint(w, "   ")
				continue
			}
			s := info.Summaries[c.Date]
			printer := l1
			if s.Count > 0 {
				printer = l2
			}
			if c.IsToday {
				printer = color.New(color.Bold, color.Underline)
			}
			_, _ = printer.Fprintf(w, "%2d", c.Date.Day)
			if info.Milestones[c.Date] > 0 || s.GoalCompletions > 0 {
				_, _ = star.Fprint(w, "*")
			} else {
				_, _ = fmt.Fprint(w, " ")
			}
		}
		_, _ = fmt.Fprint(w, "\n")
	}
	_, _ = fmt.Fprint(w, "\n")
}

// MonthLong prints every day of the month on its own line followed by the
// glyphs of the entry types logged that day.
func (pp *PrettyPrint) MonthLong(g calendar.Grid, info calendar.Info) {
	w := pp.out()
	p := color.New()
	b := color.New(color.Bold)
	s := color.New(color.Underline)

	for _, c := range g.Cells {
		if !c.InMonth {
			continue
		}
		printer := p
		switch {
		case c.IsToday:
			printer = b
		case c.Date.Weekday() == g.WeekStart:
			printer = s
		}
		_, _ = printer.Fprintf(w, "%2d %s", c.Date.Day, c.Date.Weekday().String()[0:1])

		sum := info.Summaries[c.Date]
		if sum.Count > 0 {
			symbols := make([]string, 0, len(sum.Types))
			for _, t := range sum.Types {
				symbols = append(symbols, glyph.For(t).Symbol)
			}
			_, _ = p.Fprintf(w, "  %s", strings.Join(symbols, " "))
			_, _ = color.New(color.Faint).Fprintf(w, "  %d", sum.Count)
		}
		if n := sum.GoalCompletions + info.Milestones[c.Date]; n > 0 {
			_, _ = color.New(color.FgYellow).Fprintf(w, "  %s%d", glyph.For(entry.TypeGoal).Symbol, n)
		}
		_, _ = fmt.Fprintln(w)
	}
}
