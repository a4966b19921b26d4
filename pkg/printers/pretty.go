// Package printers renders journal data for the command line.
package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/glyph"
	"tableflip.dev/logbook/pkg/timeutil"
)

const LayoutLong = "Monday, January 2, 2006"

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

var (
	spacing = strings.Repeat(" ", len("#0000  "))
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " entry")
	default:
		_, _ = c.Fprintln(pp.out(), " entries")
	}
}

// Day prints the entries of one day under a dated title.
func (pp *PrettyPrint) Day(d timeutil.Date, entries ...entry.Entry) {
	pp.TitleWithCount(d.Format(LayoutLong), len(entries))
	pp.Entries(entries...)
}

// Entries prints one line per entry.
func (pp *PrettyPrint) Entries(entries ...entry.Entry) {
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(pp.out(), spacing)
		}
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	for _, e := range entries {
		pp.entry(e, false)
	}
	pp.NewLine()
}

// Search prints matches newest first, each with its date.
func (pp *PrettyPrint) Search(query string, entries ...entry.Entry) {
	pp.TitleWithCount(fmt.Sprintf("Search %q", query), len(entries))
	if len(entries) == 0 {
		pp.Entries()
		return
	}
	for _, e := range entries {
		pp.entry(e, true)
	}
	pp.NewLine()
}

func (pp *PrettyPrint) entry(e entry.Entry, withDate bool) {
	w := pp.out()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	f := color.New(color.Faint)
	t := color.New()

	if pp.ShowID {
		id := fmt.Sprintf("#%d", e.ID)
		_, _ = y.Fprint(w, id)
		_, _ = y.Fprint(w, strings.Repeat(" ", max(len(spacing)-len(id), 1)))
	}
	if withDate {
		_, _ = f.Fprintf(w, "%s  ", e.Date)
	}
	if p, ok := e.Event(); ok && p.Start != nil {
		span := p.Start.Kitchen()
		if p.End != nil {
			span += "-" + p.End.Kitchen()
		}
		_, _ = f.Fprintf(w, "%s ", span)
	}

	title := e.Title
	if e.Type == entry.TypeAction && e.Completed() {
		title = f.Sprint(title)
	}
	_, _ = t.Fprintf(w, "%s %s", glyph.Bullet(e), title)

	if len(e.Tags) > 0 {
		names := make([]string, 0, len(e.Tags))
		for _, tag := range e.Tags {
			names = append(names, "#"+tag.Name)
		}
		_, _ = color.New(color.FgCyan).Fprintf(w, " %s", strings.Join(names, " "))
	}
	if m := glyph.Mood(e.Mood); m != "" {
		_, _ = t.Fprintf(w, " %s", m)
	}
	if p, ok := e.Commits(); ok && len(p.Commits) > 0 {
		_, _ = f.Fprintf(w, " (%d commits in %s)", len(p.Commits), p.Repository)
	}
	_, _ = fmt.Fprintln(w)
}

// Key prints the entry type legend.
func (pp *PrettyPrint) Key() {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Glyph"), bold.Sprint("Meaning"))
	for _, g := range glyph.DefaultGlyphs() {
		tbl.AddRow(g.Symbol, g.Meaning)
	}
	tbl.AddRow(glyph.Completed.Symbol, glyph.Completed.Meaning)
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.out(), tbl)
}
