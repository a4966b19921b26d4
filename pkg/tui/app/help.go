package teaui

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/logbook/pkg/printers"
)

//go:embed help.md
var helpMarkdown string

// helpModel renders the key reference inside a bordered viewport.
type helpModel struct {
	viewport viewport.Model
	width    int
	height   int
	frame    lipgloss.Style
}

func newHelp(width, height int) *helpModel {
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	h := &helpModel{
		viewport: vp,
		frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
	}
	h.SetSize(width, height)
	return h
}

func (h *helpModel) Update(msg tea.Msg) tea.Cmd {
	vp, cmd := h.viewport.Update(msg)
	h.viewport = vp
	return cmd
}

func (h *helpModel) View() string {
	return h.frame.Width(h.width).Height(h.height).Render(h.viewport.View())
}

func (h *helpModel) SetSize(width, height int) {
	h.width = max(width, 32)
	h.height = max(height, 8)
	inner := max(h.width-h.frame.GetHorizontalFrameSize(), 1)
	h.viewport.SetWidth(inner)
	h.viewport.SetHeight(max(h.height-h.frame.GetVerticalFrameSize(), 1))

	content, err := printers.RenderMarkdown(strings.TrimSpace(helpMarkdown), inner)
	if err != nil {
		content = "help unavailable: " + err.Error()
	}
	h.viewport.SetContent(content)
	h.viewport.SetYOffset(0)
}
