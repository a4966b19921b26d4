// Package goal models goals with milestones and derives their progress.
package goal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/logbook/pkg/timeutil"
)

// ErrInvalid is wrapped by every goal or milestone validation failure.
var ErrInvalid = errors.New("goal: invalid request")

// Status is the lifecycle state of a goal.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusArchived  Status = "ARCHIVED"
)

// ParseStatus accepts wire or lower-case names. An empty string means "any".
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case "", StatusActive, StatusCompleted, StatusArchived:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalid, s)
	}
}

// Type categorizes a goal. Unknown values from the server are kept verbatim.
type Type string

const (
	TypeSkill    Type = "SKILL"
	TypeProject  Type = "PROJECT"
	TypeHabit    Type = "HABIT"
	TypeHealth   Type = "HEALTH"
	TypeCareer   Type = "CAREER"
	TypePersonal Type = "PERSONAL"
)

// Milestone is one checkpoint of a goal.
type Milestone struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Goal is a target with ordered milestones. Progress values are derived, see
// Evaluate.
type Goal struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Type        Type           `json:"type"`
	Status      Status         `json:"status"`
	Color       string         `json:"color"`
	TargetDate  *timeutil.Date `json:"targetDate,omitempty"`
	Milestones  []Milestone    `json:"milestones"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
}

// Clone returns a deep copy of g.
func (g Goal) Clone() Goal {
	out := g
	out.Milestones = append([]Milestone(nil), g.Milestones...)
	if g.TargetDate != nil {
		td := *g.TargetDate
		out.TargetDate = &td
	}
	return out
}

// CreateRequest is the payload for a new goal.
type CreateRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Type        Type           `json:"type"`
	Color       string         `json:"color,omitempty"`
	TargetDate  *timeutil.Date `json:"targetDate,omitempty"`
}

// Validate normalizes the request and rejects a blank title.
func (r *CreateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if r.Type == "" {
		r.Type = TypePersonal
	}
	return nil
}

// ValidateMilestoneTitle trims title and rejects blanks.
func ValidateMilestoneTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: milestone title is required", ErrInvalid)
	}
	return title, nil
}
