package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/goal"
)

const barWidth = 10

// ProgressBar renders percent as a fixed-width bar.
func ProgressBar(percent int) string {
	filled := min(max(percent, 0), 100) * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// Goals prints a table of goals with their milestone progress and deadline
// badge.
func (pp *PrettyPrint) Goals(views ...app.GoalView) {
	if len(views) == 0 {
		pp.Entries()
		return
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Goal"), bold.Sprint("Type"), bold.Sprint("Status"), bold.Sprint("Progress"), bold.Sprint("Due"))
	for _, v := range views {
		p := v.Progress
		progress := fmt.Sprintf("%s %3d%% %d/%d", ProgressBar(p.Percent), p.Percent, p.Completed, p.Total)
		tbl.AddRow(v.Goal.ID, v.Goal.Title, strings.ToLower(string(v.Goal.Type)), statusColor(v.Goal.Status).Sprint(strings.ToLower(string(v.Goal.Status))), progress, badge(p.Badge))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Goal prints one goal with its milestones.
func (pp *PrettyPrint) Goal(v app.GoalView) {
	pp.Title(v.Goal.Title)
	w := pp.out()
	f := color.New(color.Faint)
	if v.Goal.Description != "" {
		_, _ = f.Fprintln(w, v.Goal.Description)
	}
	_, _ = fmt.Fprintf(w, "%s %d%%  %s\n", ProgressBar(v.Progress.Percent), v.Progress.Percent, badge(v.Progress.Badge))
	for _, m := range v.Goal.Milestones {
		mark := "[ ]"
		title := m.Title
		if m.Completed {
			mark = "[x]"
			title = f.Sprint(title)
		}
		_, _ = fmt.Fprintf(w, "  %s #%d %s\n", mark, m.ID, title)
	}
	pp.NewLine()
}

// GoalSummary prints the counts of a summary on one line.
func (pp *PrettyPrint) GoalSummary(s goal.Summary) {
	f := color.New(color.Faint)
	_, _ = f.Fprintf(pp.out(), "%d goals · %d active · %d completed · %d archived", s.Total, s.Active, s.Completed, s.Archived)
	if s.Overdue > 0 {
		_, _ = color.New(color.FgRed).Fprintf(pp.out(), " · %d overdue", s.Overdue)
	}
	_, _ = fmt.Fprintln(pp.out())
}

func badge(b goal.Badge) string {
	switch b.Kind {
	case goal.BadgeOverdue:
		return color.New(color.FgRed, color.Bold).Sprint(b.Text)
	case goal.BadgeUrgent:
		return color.New(color.FgYellow).Sprint(b.Text)
	default:
		return b.Text
	}
}

func statusColor(s goal.Status) *color.Color {
	switch s {
	case goal.COMPLETED:
		return color.New(color.FgGreen)
	case goal.ARCHIVED:
		return color.New(color.Faint)
	default:
		return color.New()
	}
}
