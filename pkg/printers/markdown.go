package printers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/glyph"
	"tableflip.dev/logbook/pkg/timeutil"
)

// DayMarkdown renders a day as a markdown document. Entry content is
// included verbatim since it is already markdown.
func DayMarkdown(d timeutil.Date, entries []entry.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Format(LayoutLong))
	if len(entries) == 0 {
		b.WriteString("_Nothing logged._\n")
		return b.String()
	}
	for _, e := range entries {
		check := ""
		if e.Type == entry.TypeAction {
			check = "[ ] "
			if e.Completed() {
				check = "[x] "
			}
		}
		fmt.Fprintf(&b, "## %s%s %s\n\n", check, glyph.For(e.Type).Symbol, e.Title)
		var meta []string
		meta = append(meta, "*"+e.Type.Label()+"*")
		if p, ok := e.Event(); ok && p.Start != nil {
			span := p.Start.Kitchen()
			if p.End != nil {
				span += " - " + p.End.Kitchen()
			}
			meta = append(meta, span)
		}
		for _, t := range e.Tags {
			meta = append(meta, "`#"+t.Name+"`")
		}
		if m := glyph.Mood(e.Mood); m != "" {
			meta = append(meta, m)
		}
		b.WriteString(strings.Join(meta, " · "))
		b.WriteString("\n\n")
		if c := strings.TrimSpace(e.Content); c != "" {
			b.WriteString(c)
			b.WriteString("\n\n")
		}
		if p, ok := e.Commits(); ok {
			for _, c := range p.Commits {
				fmt.Fprintf(&b, "- `%.7s` %s\n", c.SHA, firstLine(c.Message))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderMarkdown renders md for a terminal of the given width.
func RenderMarkdown(md string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 10)),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

// Markdown prints md through the terminal renderer.
func (pp *PrettyPrint) Markdown(md string, width int) error {
	out, err := RenderMarkdown(md, width)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(pp.out(), out)
	return err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
