package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/logbook/pkg/search"
	"tableflip.dev/logbook/pkg/timeutil"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// Msg is implemented by every event in this package. Describe renders the
// event for logs.
type Msg interface {
	Describe() string
}

// ChangeType enumerates supported change actions across components.
type ChangeType string

const (
	// ChangeCreate indicates a new resource was created.
	ChangeCreate ChangeType = "create"
	// ChangeUpdate indicates an existing resource changed.
	ChangeUpdate ChangeType = "update"
	// ChangeDelete indicates a resource was removed.
	ChangeDelete ChangeType = "delete"
	// ChangeLoad indicates a bucket was (re)installed from the backend.
	ChangeLoad ChangeType = "load"
)

// DayChangeMsg announces that the bucket for Date changed.
type DayChangeMsg struct {
	Component ComponentID
	Action    ChangeType
	Date      timeutil.Date
	EntryID   int64
	Count     int
}

// Describe implements Msg.
func (m DayChangeMsg) Describe() string {
	return fmt.Sprintf(`action:%q date:%q entry:%d count:%d`, m.Action, m.Date, m.EntryID, m.Count)
}

// MonthLoadedMsg is emitted after a range load installed a whole month.
type MonthLoadedMsg struct {
	Component ComponentID
	Month     timeutil.Date
	Entries   int
}

// Describe implements Msg.
func (m MonthLoadedMsg) Describe() string {
	return fmt.Sprintf(`month:%q entries:%d`, m.Month.Format("2006-01"), m.Entries)
}

// SelectionMsg announces the active day. A zero Date means the selection was
// cleared.
type SelectionMsg struct {
	Component ComponentID
	Date      timeutil.Date
}

// Describe implements Msg.
func (m SelectionMsg) Describe() string {
	return fmt.Sprintf(`date:%q`, m.Date)
}

// HeatmapChangeMsg is emitted when a new heatmap snapshot replaced the old one.
type HeatmapChangeMsg struct {
	Component ComponentID
	Total     int
	Current   int
	Longest   int
}

// Describe implements Msg.
func (m HeatmapChangeMsg) Describe() string {
	return fmt.Sprintf(`total:%d current:%d longest:%d`, m.Total, m.Current, m.Longest)
}

// LoadKind names what a failed load was fetching.
type LoadKind string

const (
	LoadDay     LoadKind = "day"
	LoadRange   LoadKind = "range"
	LoadHeatmap LoadKind = "heatmap"
)

// LoadFailedMsg reports a recoverable read failure. Cached state is left as it
// was.
type LoadFailedMsg struct {
	Component ComponentID
	Kind      LoadKind
	From      timeutil.Date
	To        timeutil.Date
	Err       error
}

// Describe implements Msg.
func (m LoadFailedMsg) Describe() string {
	return fmt.Sprintf(`kind:%q from:%q to:%q err:%q`, m.Kind, m.From, m.To, m.Err)
}

// SearchMsg carries a search pipeline transition.
type SearchMsg struct {
	Component ComponentID
	Result    search.Result
}

// Describe implements Msg.
func (m SearchMsg) Describe() string {
	return fmt.Sprintf(`query:%q state:%q results:%d`, m.Result.Query, m.Result.State, len(m.Result.Entries))
}

// StoreChangeMsg is emitted when the local store reports an outside write.
type StoreChangeMsg struct {
	Component ComponentID
	Date      timeutil.Date
	All       bool
}

// Describe implements Msg.
func (m StoreChangeMsg) Describe() string {
	if m.All {
		return `scope:"all"`
	}
	return fmt.Sprintf(`scope:"day" date:%q`, m.Date)
}

// Cmd wraps msg in a tea.Cmd for callers that want to emit it as part of an
// Update result.
func Cmd(msg Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// Listen returns a command that waits for the next message on ch. It yields
// nil once ch is closed.
func Listen(ch <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
