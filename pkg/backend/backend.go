// Package backend declares the services the journal client consumes. Every
// call may fail independently; callers never assume success.
package backend

import (
	"context"
	"errors"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/goal"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

// ErrNotFound is returned when an entry, goal, milestone or tag does not exist.
var ErrNotFound = errors.New("backend: not found")

// EntryService reads and mutates entries.
type EntryService interface {
	EntriesByDate(ctx context.Context, d timeutil.Date) ([]entry.Entry, error)
	// EntriesByRange returns entries dated within [start, end].
	EntriesByRange(ctx context.Context, start, end timeutil.Date) ([]entry.Entry, error)
	CreateEntry(ctx context.Context, req entry.CreateRequest) (entry.Entry, error)
	UpdateEntry(ctx context.Context, id int64, patch entry.UpdateRequest) (entry.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	SearchEntries(ctx context.Context, query string) ([]entry.Entry, error)
}

// Summary is the all-time overview of the journal.
type Summary struct {
	TotalEntries  int                `json:"totalEntries"`
	ActiveDays    int                `json:"activeDays"`
	CurrentStreak int                `json:"currentStreak"`
	LongestStreak int                `json:"longestStreak"`
	ByType        map[entry.Type]int `json:"byType"`
	// RecentEntries are the most recently created entries, newest first.
	RecentEntries []entry.Entry `json:"recentEntries"`
}

// StatService serves authoritative activity statistics.
type StatService interface {
	Heatmap(ctx context.Context, start, end timeutil.Date) (heatmap.Snapshot, error)
	Summary(ctx context.Context) (Summary, error)
}

// TagService manages the tag catalog. Deleting a tag detaches it from every
// entry that carried it.
type TagService interface {
	Tags(ctx context.Context) ([]entry.Tag, error)
	CreateTag(ctx context.Context, name, color string) (entry.Tag, error)
	DeleteTag(ctx context.Context, id int64) error
}

// GoalService reads and mutates goals. Mutations return the updated goal.
type GoalService interface {
	Goals(ctx context.Context, status goal.Status) ([]goal.Goal, error)
	CreateGoal(ctx context.Context, req goal.CreateRequest) (goal.Goal, error)
	SetGoalStatus(ctx context.Context, id int64, status goal.Status) (goal.Goal, error)
	AddMilestone(ctx context.Context, goalID int64, title string) (goal.Goal, error)
	SetMilestone(ctx context.Context, goalID, milestoneID int64, completed bool) (goal.Goal, error)
	DeleteMilestone(ctx context.Context, goalID, milestoneID int64) (goal.Goal, error)
}

// Backend bundles every service.
type Backend interface {
	EntryService
	StatService
	GoalService
	TagService
}
