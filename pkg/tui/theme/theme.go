package theme

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/logbook/pkg/calendar"
	"tableflip.dev/logbook/pkg/heatmap"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer   FooterTheme
	Panel    PanelTheme
	Calendar calendar.Options
	Heatmap  HeatmapTheme
	Entry    EntryTheme
}

// FooterTheme groups styles used by the bottom status and search bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Prompt lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame       lipgloss.Style
	FocusFrame  lipgloss.Style
	Title       lipgloss.Style
	Body        lipgloss.Style
	Placeholder lipgloss.Style
}

// HeatmapTheme holds one style per activity level.
type HeatmapTheme struct {
	Levels [heatmap.MaxLevel + 1]lipgloss.Style
	Label  lipgloss.Style
}

// EntryTheme styles rows of the day panel and search results.
type EntryTheme struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Meta     lipgloss.Style
	Tag      lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
	levels := [heatmap.MaxLevel + 1]lipgloss.Style{}
	for i, c := range []string{"236", "22", "28", "34", "40"} {
		levels[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}

	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		},
		Panel: PanelTheme{
			Frame:       frame,
			FocusFrame:  frame.BorderForeground(lipgloss.Color("63")),
			Title:       lipgloss.NewStyle().Bold(true),
			Body:        lipgloss.NewStyle(),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		},
		Calendar: calendar.DefaultOptions(),
		Heatmap: HeatmapTheme{
			Levels: levels,
			Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Entry: EntryTheme{
			Normal:   lipgloss.NewStyle(),
			Selected: lipgloss.NewStyle().Reverse(true),
			Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Strikethrough(true),
			Meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Tag:      lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		},
	}
}
