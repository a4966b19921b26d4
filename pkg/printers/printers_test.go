package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/calendar"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/goal"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

var may15 = timeutil.MustParseDate("2024-05-15")

func init() {
	color.NoColor = true
}

func TestEntries(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{ShowID: true, Out: &buf}
	start := entry.ClockTime{Hour: 9, Minute: 30}
	pp.Day(may15,
		entry.Entry{ID: 7, Title: "standup", Type: entry.TypeEvent, Date: may15, Payload: entry.EventPayload{Start: &start}},
		entry.Entry{ID: 8, Title: "ship", Type: entry.TypeAction, Date: may15, Mood: 5, Tags: []entry.Tag{{Name: "work"}}, Payload: entry.ActionPayload{Completed: true}},
	)
	got := buf.String()
	for _, want := range []string{"Wednesday, May 15, 2024 - 2 entries", "#7", "9:30AM ○ standup", "✘ ship #work 😄"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestEntriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Entries()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestMonth(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	g := calendar.Build(may15, may15, time.Sunday)
	pp.Month(g, calendar.Info{Milestones: map[timeutil.Date]int{may15: 1}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.Contains(lines[0], "May 2024") {
		t.Fatalf("missing title: %q", lines[0])
	}
	if lines[1] != "Su  Mo  Tu  We  Th  Fr  Sa" {
		t.Fatalf("unexpected header %q", lines[1])
	}
	if got := len(lines) - 2; got != len(g.Weeks()) {
		t.Fatalf("expected %d week rows, got %d", len(g.Weeks()), got)
	}
	if !strings.Contains(buf.String(), "15*") {
		t.Fatalf("expected milestone marker:\n%s", buf.String())
	}
}

func TestHeatmap(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	res := heatmap.Build(map[timeutil.Date]int{may15: 6}, may15, 28, time.Sunday)
	pp.Heatmap(res.Grid, res.Snapshot, time.Sunday)
	got := buf.String()
	if !strings.Contains(got, "█") {
		t.Fatalf("expected top level block:\n%s", got)
	}
	if !strings.Contains(got, "6 entries on 1 days") {
		t.Fatalf("missing stats:\n%s", got)
	}
}

func TestGoals(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	g := goal.Goal{ID: 3, Title: "Learn Go", Type: goal.SKILL, Status: goal.ACTIVE,
		Milestones: []goal.Milestone{{ID: 1, Completed: true}, {ID: 2}}}
	pp.Goals(app.GoalView{Goal: g, Progress: goal.Evaluate(g, may15)})
	got := buf.String()
	if !strings.Contains(got, "[#####-----]  50% 1/2") {
		t.Fatalf("missing progress:\n%s", got)
	}
}

func TestProgressBar(t *testing.T) {
	for p, want := range map[int]string{0: "[----------]", 100: "[##########]", 150: "[##########]", 33: "[###-------]"} {
		if got := ProgressBar(p); got != want {
			t.Fatalf("ProgressBar(%d) = %q, want %q", p, got, want)
		}
	}
}

func TestDayMarkdown(t *testing.T) {
	md := DayMarkdown(may15, []entry.Entry{
		{Title: "ship", Type: entry.TypeAction, Payload: entry.ActionPayload{}},
		{Title: "thoughts", Type: entry.TypeNote, Content: "**bold** idea"},
	})
	for _, want := range []string{"# Wednesday, May 15, 2024", "## [ ] ● ship", "**bold** idea"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if got := DayMarkdown(may15, nil); !strings.Contains(got, "Nothing logged") {
		t.Fatalf("unexpected empty day %q", got)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Summary(backend.Summary{
		TotalEntries: 4, ActiveDays: 3, CurrentStreak: 1, LongestStreak: 3,
		ByType:        map[entry.Type]int{entry.TypeNote: 3, entry.TypeAction: 1, entry.TypeSkill: 0},
		RecentEntries: []entry.Entry{{ID: 4, Title: "retro", Type: entry.TypeNote, Date: may15}},
	})
	got := buf.String()
	for _, want := range []string{"4 entries on 3 days", "current streak 1 day", "longest 3 days", "Note", "75%", "retro"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Skill") {
		t.Fatalf("empty types should be hidden:\n%s", got)
	}
	if strings.Index(got, "Note") > strings.Index(got, "Action") {
		t.Fatalf("types should be ordered by count:\n%s", got)
	}
}

func TestTags(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Tags(entry.Tag{ID: 2, Name: "deep work", Color: "#10b981"})
	got := buf.String()
	for _, want := range []string{"#2", "#deep work", "#10b981"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}
