// Package teaui hosts the Bubble Tea program for the logbook TUI.
package teaui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/events"
	"tableflip.dev/logbook/pkg/goal"
	"tableflip.dev/logbook/pkg/search"
	"tableflip.dev/logbook/pkg/timeutil"
	"tableflip.dev/logbook/pkg/tui/theme"
)

// Model states
type mode int

const (
	modeCalendar mode = iota
	modeDay
	modeSearch
	modeHelp
)

type monthLoadedMsg struct {
	month timeutil.Date
	err   error
}

type dayLoadedMsg struct {
	date timeutil.Date
	err  error
}

type goalsLoadedMsg struct {
	milestones map[timeutil.Date]int
	err        error
}

type mutationDoneMsg struct {
	status string
	err    error
}

type followStartedMsg struct {
	ch  <-chan events.Msg
	err error
}

// Options configure the UI.
type Options struct {
	SearchDelay time.Duration
}

// Model is the root Bubble Tea model: a month calendar with a day panel, an
// optional heatmap and an incremental search bar.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	svc   *app.Service
	theme theme.Theme

	width  int
	height int

	mode        mode
	prevMode    mode
	cursor      timeutil.Date
	month       timeutil.Date
	dayIndex    int
	showHeatmap bool

	milestones map[timeutil.Date]int

	search      *search.Pipeline
	searchInput textinput.Model
	result      search.Result
	resultIndex int

	follow <-chan events.Msg
	help   *helpModel

	status string
	err    error
}

// New constructs a root model over svc.
func New(parent context.Context, svc *app.Service, opts Options) *Model {
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = search.DefaultDelay
	}
	ctx, cancel := context.WithCancel(parent)

	input := textinput.New()
	input.Placeholder = "search entries"
	input.Prompt = "/"

	today := svc.Today()
	return &Model{
		ctx:         ctx,
		cancel:      cancel,
		svc:         svc,
		theme:       theme.Default(),
		cursor:      today,
		month:       today.FirstOfMonth(),
		showHeatmap: true,
		search:      svc.NewSearch(opts.SearchDelay),
		searchInput: input,
		status:      "Ready",
	}
}

// Run launches the Bubble Tea program.
func Run(ctx context.Context, svc *app.Service, opts Options) error {
	m := New(ctx, svc, opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Close stops background work started by the model.
func (m *Model) Close() {
	m.cancel()
	m.search.Close()
	m.svc.Cache.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		events.Listen(m.svc.Cache.Events()),
		m.listenSearch(),
		m.loadMonth(m.month),
		m.refreshHeatmap(),
		m.loadGoals(),
		m.startFollow(),
	)
}

func (m *Model) listenSearch() tea.Cmd {
	ch := m.search.Results()
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return events.SearchMsg{Component: "search", Result: r}
	}
}

func (m *Model) loadMonth(month timeutil.Date) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return monthLoadedMsg{month: month, err: svc.Cache.SetMonth(ctx, month)}
	}
}

func (m *Model) refreshHeatmap() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		// Failures arrive as LoadFailedMsg on the cache stream.
		_ = svc.Cache.RefreshHeatmap(ctx)
		return nil
	}
}

func (m *Model) loadGoals() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		views, err := svc.Goals(ctx, "")
		if err != nil {
			return goalsLoadedMsg{err: err}
		}
		goals := make([]goal.Goal, 0, len(views))
		for _, v := range views {
			goals = append(goals, v.Goal)
		}
		return goalsLoadedMsg{milestones: goal.MilestoneDates(goals)}
	}
}

func (m *Model) startFollow() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		ch, err := svc.Follow(ctx)
		return followStartedMsg{ch: ch, err: err}
	}
}

func (m *Model) selectDay(d timeutil.Date) tea.Cmd {
	ctx := m.ctx
	load := m.svc.Cache.SelectDay(ctx, d)
	return func() tea.Msg {
		return dayLoadedMsg{date: d, err: load.Wait(ctx)}
	}
}

func (m *Model) mutate(status string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{status: status, err: fn(ctx)}
	}
}

// Update routes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		if m.help != nil {
			m.help.SetSize(m.helpSize())
		}
	case tea.KeyPressMsg:
		return m, m.handleKey(v)
	case monthLoadedMsg:
		if v.err != nil {
			m.setError(v.err)
		}
	case dayLoadedMsg:
		if v.err != nil {
			m.setError(v.err)
		}
	case goalsLoadedMsg:
		if v.err != nil {
			m.setError(v.err)
			break
		}
		m.milestones = v.milestones
	case mutationDoneMsg:
		if v.err != nil {
			m.setError(v.err)
			break
		}
		m.setStatus(v.status)
	case followStartedMsg:
		if v.err != nil {
			m.setError(v.err)
			break
		}
		if v.ch != nil {
			m.follow = v.ch
			cmds = append(cmds, events.Listen(v.ch))
		}
	case events.StoreChangeMsg:
		cmds = append(cmds, events.Listen(m.follow), m.loadGoals())
	case events.SearchMsg:
		m.result = v.Result
		if m.resultIndex >= len(v.Result.Entries) {
			m.resultIndex = 0
		}
		if v.Result.State == search.Failed {
			m.setError(v.Result.Err)
		}
		cmds = append(cmds, m.listenSearch())
	case events.LoadFailedMsg:
		m.setError(v.Err)
		cmds = append(cmds, events.Listen(m.svc.Cache.Events()))
	case events.Msg:
		cmds = append(cmds, events.Listen(m.svc.Cache.Events()))
	}

	if m.mode == modeSearch {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, batch(cmds...)
}

// batch drops nil commands and skips the batch wrapper for a single one.
func batch(cmds ...tea.Cmd) tea.Cmd {
	var valid []tea.Cmd
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	default:
		return tea.Batch(valid...)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.err = nil
}

func (m *Model) setError(err error) {
	m.err = err
}

func (m *Model) handleKey(k tea.KeyPressMsg) tea.Cmd {
	key := k.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	switch m.mode {
	case modeHelp:
		switch key {
		case "esc", "q", "?":
			m.mode = m.prevMode
			m.help = nil
			return nil
		}
		return m.help.Update(k)
	case modeSearch:
		return m.handleSearchKey(k)
	case modeDay:
		if cmd, ok := m.handleDayKey(key); ok {
			return cmd
		}
	}

	switch key {
	case "q":
		return tea.Quit
	case "?":
		m.prevMode = m.mode
		m.mode = modeHelp
		m.help = newHelp(m.helpSize())
		return nil
	case "/":
		m.mode = modeSearch
		m.searchInput.SetValue("")
		m.resultIndex = 0
		m.search.Clear()
		return m.searchInput.Focus()
	case "H":
		m.showHeatmap = !m.showHeatmap
		return nil
	case "left", "h":
		return m.moveCursor(-1)
	case "right", "l":
		return m.moveCursor(1)
	case "up", "k":
		if m.mode == modeCalendar {
			return m.moveCursor(-7)
		}
	case "down", "j":
		if m.mode == modeCalendar {
			return m.moveCursor(7)
		}
	case "n", "pgdown":
		return m.jumpTo(m.cursor.AddMonths(1))
	case "p", "pgup":
		return m.jumpTo(m.cursor.AddMonths(-1))
	case "t":
		return m.jumpTo(m.svc.Today())
	case "enter":
		m.mode = modeDay
		m.dayIndex = 0
		return m.selectDay(m.cursor)
	case "esc":
		if m.mode == modeDay {
			m.mode = modeCalendar
			m.svc.Cache.ClearSelection()
		}
	case "r":
		return batch(m.loadMonth(m.month), m.refreshHeatmap(), m.loadGoals())
	}
	return nil
}

func (m *Model) handleDayKey(key string) (tea.Cmd, bool) {
	entries, _ := m.svc.Cache.Day(m.cursor)
	switch key {
	case "up", "k":
		if m.dayIndex > 0 {
			m.dayIndex--
		}
		return nil, true
	case "down", "j":
		if m.dayIndex < len(entries)-1 {
			m.dayIndex++
		}
		return nil, true
	case "x", " ":
		if m.dayIndex >= len(entries) {
			return nil, true
		}
		e := entries[m.dayIndex]
		if e.Type != entry.TypeAction {
			m.setStatus("Only actions can be completed")
			return nil, true
		}
		return m.mutate("Toggled "+e.Title, func(ctx context.Context) error {
			_, err := m.svc.ToggleCompleted(ctx, e.ID, e.Date)
			return err
		}), true
	case "d":
		if m.dayIndex >= len(entries) {
			return nil, true
		}
		e := entries[m.dayIndex]
		if m.dayIndex > 0 && m.dayIndex == len(entries)-1 {
			m.dayIndex--
		}
		return m.mutate("Deleted "+e.Title, func(ctx context.Context) error {
			load, err := m.svc.DeleteEntry(ctx, e.ID, e.Date)
			if err != nil {
				return err
			}
			return load.Wait(ctx)
		}), true
	}
	return nil, false
}

func (m *Model) handleSearchKey(k tea.KeyPressMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		m.mode = modeCalendar
		m.searchInput.Blur()
		m.search.Clear()
		m.result = search.Result{}
		return nil
	case "up", "ctrl+p":
		if m.resultIndex > 0 {
			m.resultIndex--
		}
		return nil
	case "down", "ctrl+n":
		if m.resultIndex < len(m.result.Entries)-1 {
			m.resultIndex++
		}
		return nil
	case "enter":
		if m.resultIndex >= len(m.result.Entries) {
			return nil
		}
		target := m.result.Entries[m.resultIndex].Date
		m.searchInput.Blur()
		m.search.Clear()
		m.result = search.Result{}
		cmd := m.jumpTo(target)
		m.mode = modeDay
		m.dayIndex = 0
		return batch(cmd, m.selectDay(target))
	}

	prev := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(k)
	if next := m.searchInput.Value(); next != prev {
		m.resultIndex = 0
		m.search.Type(next)
	}
	return cmd
}

func (m *Model) moveCursor(days int) tea.Cmd {
	return m.jumpTo(m.cursor.AddDays(days))
}

// jumpTo moves the cursor, loading the month when it changes. An open day
// panel follows the cursor.
func (m *Model) jumpTo(d timeutil.Date) tea.Cmd {
	m.cursor = d
	m.dayIndex = 0
	var cmds []tea.Cmd
	if first := d.FirstOfMonth(); first != m.month {
		m.month = first
		cmds = append(cmds, m.loadMonth(first))
	}
	if m.mode == modeDay {
		cmds = append(cmds, m.selectDay(d))
	}
	return batch(cmds...)
}

func (m *Model) helpSize() (int, int) {
	return max(m.width*2/3, 40), max(m.height*2/3, 12)
}

func describe(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("error: %v", err)
}
