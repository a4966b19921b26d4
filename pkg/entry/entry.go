// Package entry models journal entries: one record per log line, pinned to the
// calendar day it was written for.
package entry

import (
	"fmt"
	"strings"
	"time"

	"tableflip.dev/logbook/pkg/timeutil"
)

// Type is the closed set of entry kinds.
type Type string

const (
	TypeNote   Type = "NOTE"
	TypeSkill  Type = "SKILL"
	TypeAction Type = "ACTION"
	TypeEvent  Type = "EVENT"
	TypeCommit Type = "COMMIT"
	TypeGoal   Type = "GOAL"
)

// Types lists every entry type in display order.
func Types() []Type {
	return []Type{TypeNote, TypeSkill, TypeAction, TypeEvent, TypeCommit, TypeGoal}
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType accepts either the wire name ("ACTION") or a lower-case alias
// ("action").
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown entry type %q", s)
	}
	return t, nil
}

// Label is the human form of the type.
func (t Type) Label() string {
	if t == "" {
		return ""
	}
	lower := strings.ToLower(string(t))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Tag is a user-defined label attached to entries.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Entry is a single log record. Date is fixed at creation; edits never move
// an entry to another day.
type Entry struct {
	ID        int64
	Title     string
	Content   string
	Type      Type
	Date      timeutil.Date
	Mood      int
	Tags      []Tag
	Payload   Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the cache key of the entry's day.
func (e Entry) Key() string {
	return e.Date.String()
}

// Completed is true only for completed action and goal entries.
func (e Entry) Completed() bool {
	switch p := e.Payload.(type) {
	case ActionPayload:
		return p.Completed
	case GoalPayload:
		return p.Completed
	default:
		return false
	}
}

// Event returns the event payload when e is an EVENT.
func (e Entry) Event() (EventPayload, bool) {
	p, ok := e.Payload.(EventPayload)
	return p, ok
}

// Commits returns the commit payload when e is a COMMIT.
func (e Entry) Commits() (CommitPayload, bool) {
	p, ok := e.Payload.(CommitPayload)
	return p, ok
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	out := e
	if e.Tags != nil {
		out.Tags = append([]Tag(nil), e.Tags...)
	}
	if e.Payload != nil {
		out.Payload = e.Payload.clone()
	}
	return out
}

func (e Entry) String() string {
	return fmt.Sprintf("#%d %s [%s] %s", e.ID, e.Date, e.Type.Label(), e.Title)
}

// Payload carries the variant-specific fields of an entry. The set of
// implementations is closed.
type Payload interface {
	Type() Type
	clone() Payload
}

// EventPayload holds wall-clock bounds for EVENT entries.
type EventPayload struct {
	Start *ClockTime
	End   *ClockTime
}

func (EventPayload) Type() Type { return TypeEvent }

func (p EventPayload) clone() Payload {
	out := EventPayload{}
	if p.Start != nil {
		s := *p.Start
		out.Start = &s
	}
	if p.End != nil {
		e := *p.End
		out.End = &e
	}
	return out
}

// ActionPayload tracks completion for ACTION entries.
type ActionPayload struct {
	Completed bool
}

func (ActionPayload) Type() Type { return TypeAction }

func (p ActionPayload) clone() Payload { return p }

// Commit is one commit ingested from an external repository.
type Commit struct {
	SHA       string    `json:"sha"`
	Message   string    `json:"message"`
	URL       string    `json:"url,omitempty"`
	Committed time.Time `json:"committedAt,omitempty"`
}

// CommitPayload is the machine-generated source metadata of COMMIT entries.
type CommitPayload struct {
	Repository string   `json:"repository,omitempty"`
	Commits    []Commit `json:"commits,omitempty"`
}

func (CommitPayload) Type() Type { return TypeCommit }

func (p CommitPayload) clone() Payload {
	out := p
	out.Commits = append([]Commit(nil), p.Commits...)
	return out
}

// GoalPayload links a GOAL completion entry back to its goal.
type GoalPayload struct {
	GoalID      int64 `json:"goalId,omitempty"`
	MilestoneID int64 `json:"milestoneId,omitempty"`
	Completed   bool  `json:"-"`
}

func (GoalPayload) Type() Type { return TypeGoal }

func (p GoalPayload) clone() Payload { return p }

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "15:04" or "15:04:05".
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid time %q, want HH:MM", s)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Kitchen renders the time as "3:04 PM".
func (c ClockTime) Kitchen() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format(time.Kitchen)
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}
