package goal

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/logbook/pkg/timeutil"
)

func datePtr(s string) *timeutil.Date {
	d := timeutil.MustParseDate(s)
	return &d
}

func milestones(done ...bool) []Milestone {
	out := make([]Milestone, len(done))
	for i, c := range done {
		out[i] = Milestone{ID: int64(i + 1), Title: "m", Completed: c}
	}
	return out
}

func TestEvaluatePercent(t *testing.T) {
	today := timeutil.MustParseDate("2024-05-10")
	tests := map[string]struct {
		milestones []Milestone
		want       int
	}{
		"no milestones": {want: 0},
		"none done":     {milestones: milestones(false, false), want: 0},
		"one of three":  {milestones: milestones(true, false, false), want: 33},
		"two of three":  {milestones: milestones(true, true, false), want: 67},
		"half":          {milestones: milestones(true, false), want: 50},
		"all":           {milestones: milestones(true, true, true), want: 100},
		"one of eight":  {milestones: milestones(true, false, false, false, false, false, false, false), want: 13},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := Evaluate(Goal{Status: StatusActive, Milestones: tc.milestones}, today)
			if p.Percent != tc.want {
				t.Fatalf("Percent = %d, want %d", p.Percent, tc.want)
			}
			if p.Total != len(tc.milestones) {
				t.Fatalf("Total = %d, want %d", p.Total, len(tc.milestones))
			}
		})
	}
}

func TestEvaluateDeadline(t *testing.T) {
	today := timeutil.MustParseDate("2024-05-10")
	tests := map[string]struct {
		goal Goal
		want Progress
	}{
		"no target": {
			goal: Goal{Status: StatusActive},
			want: Progress{DaysUntilDeadline: NoDeadline, Badge: Badge{Kind: BadgeNone}},
		},
		"overdue active": {
			goal: Goal{Status: StatusActive, TargetDate: datePtr("2024-05-07")},
			want: Progress{Overdue: true, DaysUntilDeadline: -3, Badge: Badge{Kind: BadgeOverdue, Text: "3d overdue"}},
		},
		"past but completed": {
			goal: Goal{Status: StatusCompleted, TargetDate: datePtr("2024-05-07")},
			want: Progress{DaysUntilDeadline: -3, Badge: Badge{Kind: BadgeDate, Text: "May 7, 2024"}},
		},
		"past but archived": {
			goal: Goal{Status: StatusArchived, TargetDate: datePtr("2024-01-01")},
			want: Progress{DaysUntilDeadline: -130, Badge: Badge{Kind: BadgeDate, Text: "Jan 1, 2024"}},
		},
		"due today": {
			goal: Goal{Status: StatusActive, TargetDate: datePtr("2024-05-10")},
			want: Progress{DaysUntilDeadline: 0, Badge: Badge{Kind: BadgeUrgent, Text: "0d left"}},
		},
		"seven days": {
			goal: Goal{Status: StatusActive, TargetDate: datePtr("2024-05-17")},
			want: Progress{DaysUntilDeadline: 7, Badge: Badge{Kind: BadgeUrgent, Text: "7d left"}},
		},
		"eight days": {
			goal: Goal{Status: StatusActive, TargetDate: datePtr("2024-05-18")},
			want: Progress{DaysUntilDeadline: 8, Badge: Badge{Kind: BadgeDate, Text: "May 18, 2024"}},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Evaluate(tc.goal, today)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Evaluate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNoDeadlineSentinel(t *testing.T) {
	if NoDeadline != math.MaxInt {
		t.Fatalf("NoDeadline = %d", NoDeadline)
	}
	p := Evaluate(Goal{Status: StatusActive, TargetDate: &timeutil.Date{}}, timeutil.MustParseDate("2024-01-01"))
	if p.DaysUntilDeadline != NoDeadline || p.Overdue {
		t.Fatalf("zero target date should count as none, got %+v", p)
	}
}

func TestSummarize(t *testing.T) {
	today := timeutil.MustParseDate("2024-05-10")
	goals := []Goal{
		{Status: StatusActive, TargetDate: datePtr("2024-05-01"), Milestones: milestones(true, false)},
		{Status: StatusActive, Milestones: milestones(true)},
		{Status: StatusCompleted, TargetDate: datePtr("2024-05-01"), Milestones: milestones(true, true)},
		{Status: StatusArchived},
	}
	want := Summary{Total: 4, Active: 2, Completed: 1, Archived: 1, Overdue: 1, Milestones: 5, CompletedMilestones: 4}
	if diff := cmp.Diff(want, Summarize(goals, today)); diff != "" {
		t.Fatalf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestMilestoneDates(t *testing.T) {
	at := func(s string) *time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatal(err)
		}
		return &ts
	}
	goals := []Goal{{Milestones: []Milestone{
		{Completed: true, CompletedAt: at("2024-05-01T10:00:00Z")},
		{Completed: true, CompletedAt: at("2024-05-01T23:00:00Z")},
		{Completed: false, CompletedAt: at("2024-05-02T10:00:00Z")},
		{Completed: true},
	}}}
	want := map[timeutil.Date]int{timeutil.MustParseDate("2024-05-01"): 2}
	if diff := cmp.Diff(want, MilestoneDates(goals)); diff != "" {
		t.Fatalf("MilestoneDates() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{"": "", "active": StatusActive, "COMPLETED": StatusCompleted, " archived ": StatusArchived} {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseStatus(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStatus("paused"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
