package teaui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/cache"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/search"
	"tableflip.dev/logbook/pkg/store"
	"tableflip.dev/logbook/pkg/timeutil"
)

type dirConfig string

func (d dirConfig) BasePath() string { return string(d) }

var (
	may15 = timeutil.MustParseDate("2024-05-15")
	now   = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
)

func newTestModel(t *testing.T, reqs ...entry.CreateRequest) (*Model, *store.Store) {
	t.Helper()
	s, err := store.Open(dirConfig(t.TempDir()), store.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	for _, req := range reqs {
		if _, err := s.CreateEntry(context.Background(), req); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := app.New(s, cache.Options{Location: time.UTC, Now: func() time.Time { return now }})
	m := New(context.Background(), svc, Options{SearchDelay: time.Millisecond})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, s
}

func press(m *Model, k tea.KeyPressMsg) tea.Msg {
	_, cmd := m.Update(k)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestCursorNavigation(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, tea.KeyPressMsg{Code: tea.KeyRight})
	if want := may15.AddDays(1); m.cursor != want {
		t.Fatalf("expected cursor %s, got %s", want, m.cursor)
	}
	press(m, tea.KeyPressMsg{Code: tea.KeyDown})
	if want := may15.AddDays(8); m.cursor != want {
		t.Fatalf("expected cursor %s, got %s", want, m.cursor)
	}

	msg := press(m, key('n'))
	loaded, ok := msg.(monthLoadedMsg)
	if !ok {
		t.Fatalf("expected month load, got %T", msg)
	}
	if loaded.err != nil {
		t.Fatalf("month load: %v", loaded.err)
	}
	if m.month != timeutil.MustParseDate("2024-06-01") {
		t.Fatalf("expected June, got %s", m.month)
	}
	if m.svc.Cache.Month() != m.month {
		t.Fatalf("cache month %s, model month %s", m.svc.Cache.Month(), m.month)
	}

	press(m, key('t'))
	if m.cursor != may15 {
		t.Fatalf("expected today, got %s", m.cursor)
	}
}

func TestOpenDayShowsEntries(t *testing.T) {
	m, _ := newTestModel(t,
		entry.CreateRequest{Title: "standup notes", Type: entry.TypeNote, Date: may15},
		entry.CreateRequest{Title: "ship release", Type: entry.TypeAction, Date: may15},
	)

	msg := press(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m.Update(msg)
	if m.mode != modeDay {
		t.Fatalf("expected day mode, got %v", m.mode)
	}
	if got := m.svc.Cache.Selected(); got != may15 {
		t.Fatalf("expected %s selected, got %s", may15, got)
	}

	view, _ := m.View()
	for _, want := range []string{"standup notes", "ship release", "Wednesday, May 15"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}

	press(m, tea.KeyPressMsg{Code: tea.KeyDown})
	done := press(m, key('x'))
	if res, ok := done.(mutationDoneMsg); !ok || res.err != nil {
		t.Fatalf("toggle: %#v", done)
	}
	entries, _ := m.svc.Cache.Day(may15)
	if !entries[1].Completed() {
		t.Fatalf("expected %q completed", entries[1].Title)
	}

	press(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeCalendar {
		t.Fatalf("expected calendar mode after esc, got %v", m.mode)
	}
	if !m.svc.Cache.Selected().IsZero() {
		t.Fatal("expected selection cleared")
	}
}

func TestSearchJumpsToMatch(t *testing.T) {
	target := timeutil.MustParseDate("2024-04-02")
	m, _ := newTestModel(t,
		entry.CreateRequest{Title: "kubernetes upgrade", Type: entry.TypeNote, Date: target},
		entry.CreateRequest{Title: "lunch", Type: entry.TypeNote, Date: may15},
	)

	m.Update(key('/'))
	if m.mode != modeSearch {
		t.Fatalf("expected search mode, got %v", m.mode)
	}
	for _, r := range "kube" {
		m.Update(key(r))
	}

	deadline := time.After(2 * time.Second)
	for m.result.State != search.Resolved || m.result.Query != "kube" {
		msgCh := make(chan tea.Msg, 1)
		go func() { msgCh <- m.listenSearch()() }()
		select {
		case msg := <-msgCh:
			m.Update(msg)
		case <-deadline:
			t.Fatal("search never resolved")
		}
	}
	if m.result.Query != "kube" || len(m.result.Entries) != 1 {
		t.Fatalf("unexpected result %+v", m.result)
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.cursor != target || m.month != target.FirstOfMonth() {
		t.Fatalf("expected cursor on %s, got %s", target, m.cursor)
	}
	if m.mode != modeDay {
		t.Fatalf("expected day mode, got %v", m.mode)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, key('?'))
	if m.mode != modeHelp || m.help == nil {
		t.Fatal("expected help overlay")
	}
	view, _ := m.View()
	if !strings.Contains(view, "Calendar") {
		t.Fatalf("expected help content:\n%s", view)
	}
	press(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeCalendar {
		t.Fatalf("expected calendar mode, got %v", m.mode)
	}
}
