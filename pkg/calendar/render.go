package calendar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/logbook/pkg/timeutil"
)

// Options controls calendar styling.
type Options struct {
	HeaderStyle    lipgloss.Style
	OutsideStyle   lipgloss.Style
	EmptyStyle     lipgloss.Style
	EntryStyle     lipgloss.Style
	TodayStyle     lipgloss.Style
	SelectedStyle  lipgloss.Style
	MilestoneStyle lipgloss.Style
	ShowHeader     bool
	ShowTitle      bool
}

// DefaultOptions returns the styling used for calendar rendering.
func DefaultOptions() Options {
	return Options{
		HeaderStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
		OutsideStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		EmptyStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		EntryStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		TodayStyle:     lipgloss.NewStyle().Underline(true),
		SelectedStyle:  lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0")),
		MilestoneStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		ShowHeader:     true,
		ShowTitle:      true,
	}
}

// Info carries per-day data shown in the grid.
type Info struct {
	Summaries  map[timeutil.Date]DaySummary
	Milestones map[timeutil.Date]int
	Selected   timeutil.Date
}

// Render produces a multi-line calendar string for the grid.
func Render(g Grid, info Info, opts Options) string {
	if len(g.Cells) == 0 {
		return ""
	}
	var lines []string
	if opts.ShowTitle {
		title := g.Month.Format("January 2006")
		width := 7*4 - 1
		pad := (width - len(title)) / 2
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+opts.HeaderStyle.Render(title))
	}
	if opts.ShowHeader {
		lines = append(lines, opts.HeaderStyle.Render(" "+strings.Join(WeekdayHeader(g.WeekStart), "  ")))
	}
	for _, week := range g.Weeks() {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			cells = append(cells, renderCell(c, info, opts))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func renderCell(c Cell, info Info, opts Options) string {
	text := fmt.Sprintf("%2d", c.Date.Day)
	marker := " "
	if info.Milestones[c.Date] > 0 {
		marker = opts.MilestoneStyle.Render("*")
	} else if s := info.Summaries[c.Date]; s.GoalCompletions > 0 {
		marker = opts.MilestoneStyle.Render("*")
	}

	if !c.InMonth {
		return " " + opts.OutsideStyle.Render(text)
	}

	style := opts.EmptyStyle
	if info.Summaries[c.Date].Count > 0 {
		style = opts.EntryStyle
	}
	if c.IsToday {
		style = style.Inherit(opts.TodayStyle)
	}
	if !info.Selected.IsZero() && c.Date == info.Selected {
		style = style.Inherit(opts.SelectedStyle)
	}
	return marker + style.Render(text)
}
