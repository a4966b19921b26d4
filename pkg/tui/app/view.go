package teaui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/logbook/pkg/calendar"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/glyph"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/search"
	"tableflip.dev/logbook/pkg/timeutil"
)

const footerHelp = "←→↑↓ move · enter open · n/p month · t today · / search · H heatmap · ? help · q quit"

// View renders the composed UI.
func (m *Model) View() (string, *tea.Cursor) {
	if m.mode == modeHelp && m.help != nil {
		body := m.help.View()
		if m.width > 0 && m.height > 0 {
			body = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
		}
		return body, nil
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCalendar(), " ", m.renderSide())
	sections := []string{top}
	if m.showHeatmap {
		sections = append(sections, m.renderHeatmap())
	}
	body := lipgloss.JoinVertical(lipgloss.Left, sections...)

	bar, cursor := m.renderFooter(lipgloss.Height(body))
	return body + "\n" + bar, cursor
}

func (m *Model) renderCalendar() string {
	g := calendar.Build(m.month, m.svc.Today(), m.svc.Cache.WeekStart())
	info := calendar.Info{
		Summaries:  make(map[timeutil.Date]calendar.DaySummary),
		Milestones: m.milestones,
		Selected:   m.cursor,
	}
	for d, entries := range m.svc.Cache.Range(g.Start(), g.End()) {
		info.Summaries[d] = calendar.Summarize(entries)
	}
	frame := m.theme.Panel.Frame
	if m.mode == modeCalendar {
		frame = m.theme.Panel.FocusFrame
	}
	body := calendar.Render(g, info, m.theme.Calendar)
	if m.svc.Cache.Loading() {
		body += "\n" + m.theme.Panel.Placeholder.Render("loading…")
	}
	return frame.Render(body)
}

func (m *Model) renderSide() string {
	if m.mode == modeSearch {
		return m.renderSearch()
	}
	return m.renderDay()
}

func (m *Model) panelWidth() int {
	return max(m.width-36, 30)
}

func (m *Model) renderDay() string {
	frame := m.theme.Panel.Frame
	if m.mode == modeDay {
		frame = m.theme.Panel.FocusFrame
	}
	title := m.theme.Panel.Title.Render(m.cursor.Format("Monday, January 2"))

	entries, ok := m.svc.Cache.Day(m.cursor)
	lines := []string{title, ""}
	switch {
	case !ok:
		lines = append(lines, m.theme.Panel.Placeholder.Render("press enter to load"))
	case len(entries) == 0:
		lines = append(lines, m.theme.Panel.Placeholder.Render("nothing logged"))
	default:
		for i, e := range entries {
			lines = append(lines, m.renderEntry(e, m.mode == modeDay && i == m.dayIndex, false))
		}
	}
	return frame.Width(m.panelWidth()).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderEntry(e entry.Entry, selected, withDate bool) string {
	t := m.theme.Entry
	text := e.Title
	style := t.Normal
	if e.Type == entry.TypeAction && e.Completed() {
		style = t.Done
	}
	if selected {
		style = style.Inherit(t.Selected)
	}
	g := glyph.Bullet(e)
	parts := []string{lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render(g.Symbol), style.Render(text)}
	if withDate {
		parts = append([]string{t.Meta.Render(e.Date.String())}, parts...)
	}
	if p, ok := e.Event(); ok && p.Start != nil {
		parts = append(parts, t.Meta.Render(p.Start.Kitchen()))
	}
	for _, tag := range e.Tags {
		parts = append(parts, t.Tag.Render("#"+tag.Name))
	}
	if mood := glyph.Mood(e.Mood); mood != "" {
		parts = append(parts, mood)
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderSearch() string {
	frame := m.theme.Panel.FocusFrame
	r := m.result
	lines := []string{m.theme.Panel.Title.Render("Search"), ""}
	switch r.State {
	case search.Idle:
		lines = append(lines, m.theme.Panel.Placeholder.Render("type to search"))
	case search.Debouncing, search.Pending:
		lines = append(lines, m.theme.Panel.Placeholder.Render(fmt.Sprintf("searching %q…", r.Query)))
	case search.Failed:
		lines = append(lines, m.theme.Footer.Error.Render(describe(r.Err)))
	case search.Resolved:
		if len(r.Entries) == 0 {
			lines = append(lines, m.theme.Panel.Placeholder.Render("no matches"))
		}
		for i, e := range r.Entries {
			lines = append(lines, m.renderEntry(e, i == m.resultIndex, true))
		}
	}
	return frame.Width(m.panelWidth()).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHeatmap() string {
	ht := m.theme.Heatmap
	snap, ok := m.svc.Cache.Heatmap()
	if !ok {
		return m.theme.Panel.Frame.Render(m.theme.Panel.Placeholder.Render("heatmap loading…"))
	}
	ws := m.svc.Cache.WeekStart()
	g := heatmap.Shape(snap, m.svc.Today(), m.svc.Cache.Window(), ws)

	// Narrow terminals show the most recent weeks only.
	cols := g.Columns
	labels := g.Labels
	if fit := (m.width - 10) / 2; m.width > 0 && fit > 0 && len(cols) > fit {
		drop := len(cols) - fit
		cols = cols[drop:]
		var kept []heatmap.MonthLabel
		for _, l := range labels {
			if l.Column >= drop {
				kept = append(kept, heatmap.MonthLabel{Label: l.Label, Column: l.Column - drop})
			}
		}
		labels = kept
	}

	header := []rune(strings.Repeat(" ", 2*len(cols)))
	for _, l := range labels {
		pos := 2 * l.Column
		if pos+len(l.Label) <= len(header) {
			copy(header[pos:], []rune(l.Label))
		}
	}
	lines := []string{ht.Label.Render("    " + strings.TrimRight(string(header), " "))}
	for row := 0; row < 7; row++ {
		label := "   "
		if row%2 == 1 {
			label = time.Weekday((int(ws) + row) % 7).String()[:3]
		}
		var b strings.Builder
		b.WriteString(ht.Label.Render(label) + " ")
		for _, col := range cols {
			d := col[row]
			if d == nil {
				b.WriteString("  ")
				continue
			}
			lvl := min(max(d.Level, 0), heatmap.MaxLevel)
			b.WriteString(ht.Levels[lvl].Render("■") + " ")
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, "", fmt.Sprintf("%d entries · %d active days · streak %d (longest %d)",
		snap.TotalEntries, snap.ActiveDays, snap.CurrentStreak, snap.LongestStreak))
	return m.theme.Panel.Frame.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter(row int) (string, *tea.Cursor) {
	if m.mode == modeSearch {
		line := m.searchInput.View()
		var cursor *tea.Cursor
		if c := m.searchInput.Cursor(); c != nil {
			cp := *c
			cp.Y = row
			cursor = &cp
		}
		return line, cursor
	}
	status := m.theme.Footer.Status.Render(m.status)
	if m.err != nil {
		status = m.theme.Footer.Error.Render(describe(m.err))
	}
	return m.theme.Footer.Help.Render(footerHelp) + "  " + status, nil
}
