package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/cache"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/goal"
	"tableflip.dev/logbook/pkg/store"
)

type dirConfig string

func (d dirConfig) BasePath() string { return string(d) }

var now = time.Date(2024, time.May, 15, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	clock := func() time.Time { return now }
	s, err := store.Open(dirConfig(t.TempDir()), store.WithClock(clock))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := app.New(s, cache.Options{Location: time.UTC, Now: clock})
	t.Cleanup(svc.Cache.Close)
	return NewService(svc)
}

func TestParseDate(t *testing.T) {
	svc := newService(t)
	for raw, want := range map[string]string{
		"":           "2024-05-15",
		"today":      "2024-05-15",
		"Yesterday":  "2024-05-14",
		"tomorrow":   "2024-05-16",
		"2024-02-29": "2024-02-29",
	} {
		got, err := svc.ParseDate(raw)
		if err != nil {
			t.Fatalf("ParseDate(%q) failed: %v", raw, err)
		}
		if got.String() != want {
			t.Fatalf("ParseDate(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := svc.ParseDate("2024-02-30"); err == nil {
		t.Fatalf("expected an error for an impossible date")
	}
}

func TestServiceCreateEntryDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	dto, err := svc.CreateEntry(ctx, CreateEntryOptions{Title: "  Read the paper  "})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if dto.Title != "Read the paper" {
		t.Fatalf("expected trimmed title, got %q", dto.Title)
	}
	if dto.Type != string(entry.TypeNote) {
		t.Fatalf("expected note type, got %s", dto.Type)
	}
	if dto.Date != "2024-05-15" {
		t.Fatalf("expected today, got %s", dto.Date)
	}
	if dto.ID == 0 {
		t.Fatalf("expected generated id")
	}

	day, err := svc.Day(ctx, "today")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if day.Count != 1 || day.Entries[0].ID != dto.ID {
		t.Fatalf("expected the new entry on today, got %+v", day)
	}
}

func TestServiceCreateEntryInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if _, err := svc.CreateEntry(ctx, CreateEntryOptions{Title: "x", Type: "chore"}); err == nil {
		t.Fatalf("expected unknown type to fail")
	}
	_, err := svc.CreateEntry(ctx, CreateEntryOptions{Title: "standup", Type: "note", Start: "09:00"})
	if !errors.Is(err, entry.ErrInvalid) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if _, err := svc.CreateEntry(ctx, CreateEntryOptions{Title: "standup", Type: "event", Start: "9am"}); err == nil {
		t.Fatalf("expected a bad clock time to fail")
	}
}

func TestServiceToggleEntry(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	dto, err := svc.CreateEntry(ctx, CreateEntryOptions{Title: "Finish report", Type: "action"})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	completed, err := svc.ToggleEntry(ctx, dto.ID, dto.Date)
	if err != nil {
		t.Fatalf("ToggleEntry failed: %v", err)
	}
	if !completed.IsCompleted {
		t.Fatalf("expected entry to be completed")
	}
	if completed.Symbol != "✘" {
		t.Fatalf("expected completed symbol, got %s", completed.Symbol)
	}

	reopened, err := svc.ToggleEntry(ctx, dto.ID, dto.Date)
	if err != nil {
		t.Fatalf("ToggleEntry failed: %v", err)
	}
	if reopened.IsCompleted {
		t.Fatalf("expected entry to be reopened")
	}
}

func TestServiceRangeGroupsByDay(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for _, opts := range []CreateEntryOptions{
		{Title: "a", Date: "2024-05-02"},
		{Title: "b", Date: "2024-05-10"},
		{Title: "c", Date: "2024-05-02"},
		{Title: "outside", Date: "2024-06-01"},
	} {
		if _, err := svc.CreateEntry(ctx, opts); err != nil {
			t.Fatalf("CreateEntry(%s) failed: %v", opts.Title, err)
		}
	}

	days, err := svc.Range(ctx, "2024-05-31", "2024-05-01")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	got := map[string][]string{}
	for _, d := range days {
		for _, e := range d.Entries {
			got[d.Date] = append(got[d.Date], e.Title)
		}
	}
	want := map[string][]string{
		"2024-05-02": {"a", "c"},
		"2024-05-10": {"b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected range (-want +got):\n%s", diff)
	}

	if _, err := svc.Range(ctx, "2022-01-01", "2024-01-01"); err == nil {
		t.Fatalf("expected ranges over a year to fail")
	}
}

func TestServiceSearchLimit(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for _, d := range []string{"2024-05-01", "2024-05-03", "2024-05-02"} {
		if _, err := svc.CreateEntry(ctx, CreateEntryOptions{Title: "Kubernetes notes", Date: d}); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	results, err := svc.Search(ctx, "kube", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	var dates []string
	for _, r := range results {
		dates = append(dates, r.Date)
	}
	if diff := cmp.Diff([]string{"2024-05-03", "2024-05-02"}, dates); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}

	if _, err := svc.Search(ctx, "   ", 10); err == nil {
		t.Fatalf("expected blank query to fail")
	}
}

func TestServiceHeatmap(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for _, d := range []string{"2024-05-14", "2024-05-15", "2024-05-15"} {
		if _, err := svc.CreateEntry(ctx, CreateEntryOptions{Title: "log", Date: d}); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	dto, err := svc.Heatmap(ctx, true)
	if err != nil {
		t.Fatalf("Heatmap failed: %v", err)
	}
	if dto.End != "2024-05-15" {
		t.Fatalf("expected window to end today, got %s", dto.End)
	}
	if dto.TotalEntries != 3 || dto.ActiveDays != 2 || dto.CurrentStreak != 2 {
		t.Fatalf("unexpected totals: %+v", dto)
	}
	if len(dto.Days) != 2 {
		t.Fatalf("expected only active days, got %d", len(dto.Days))
	}
}

func TestServiceMilestones(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.App.CreateGoal(ctx, goal.CreateRequest{Title: "Learn Go", Type: goal.TypeSkill})
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	id := created.Goal.ID

	g, err := svc.AddMilestone(ctx, id, "Tour of Go")
	if err != nil {
		t.Fatalf("AddMilestone failed: %v", err)
	}
	if _, err := svc.AddMilestone(ctx, id, "Write a CLI"); err != nil {
		t.Fatalf("AddMilestone failed: %v", err)
	}

	g, err = svc.ToggleMilestone(ctx, id, g.Milestones[0].ID)
	if err != nil {
		t.Fatalf("ToggleMilestone failed: %v", err)
	}
	if g.Completed != 1 || g.Total != 2 || g.Percent != 50 {
		t.Fatalf("unexpected progress: %+v", g)
	}

	goals, err := svc.Goals(ctx, "active")
	if err != nil {
		t.Fatalf("Goals failed: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != id {
		t.Fatalf("expected the new goal, got %+v", goals)
	}
	if _, err := svc.Goals(ctx, "paused"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
}

func TestServiceStatsAndTags(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	for _, opts := range []CreateEntryOptions{
		{Title: "standup", Date: "2024-05-14", Tags: []string{"work"}},
		{Title: "ship it", Type: "action", Tags: []string{"work", "release"}},
	} {
		if _, err := svc.CreateEntry(ctx, opts); err != nil {
			t.Fatalf("CreateEntry(%q) failed: %v", opts.Title, err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalEntries != 2 || stats.ActiveDays != 2 || stats.CurrentStreak != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.ByType["note"] != 1 || stats.ByType["action"] != 1 {
		t.Fatalf("unexpected type counts: %v", stats.ByType)
	}
	if len(stats.RecentEntries) != 2 {
		t.Fatalf("expected both entries as recent, got %d", len(stats.RecentEntries))
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	if diff := cmp.Diff([]string{"release", "work"}, names); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}
