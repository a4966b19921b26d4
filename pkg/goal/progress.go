package goal

import (
	"fmt"
	"math"

	"tableflip.dev/logbook/pkg/timeutil"
)

// NoDeadline is the DaysUntilDeadline value of goals without a target date.
const NoDeadline = math.MaxInt

// UrgentDays is the largest number of remaining days that still counts as
// urgent.
const UrgentDays = 7

// BadgeKind classifies deadline urgency.
type BadgeKind int

const (
	BadgeNone BadgeKind = iota
	BadgeOverdue
	BadgeUrgent
	BadgeDate
)

// Badge is the deadline indicator shown next to a goal.
type Badge struct {
	Kind BadgeKind
	Text string
}

// Progress is derived from a goal and the evaluation date. It is never stored.
type Progress struct {
	Completed         int
	Total             int
	Percent           int
	Overdue           bool
	DaysUntilDeadline int
	Badge             Badge
}

// Done reports whether every milestone is completed.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// Remaining returns the number of open milestones.
func (p Progress) Remaining() int {
	return p.Total - p.Completed
}

// Evaluate computes the progress of g as of today.
func Evaluate(g Goal, today timeutil.Date) Progress {
	p := Progress{Total: len(g.Milestones), DaysUntilDeadline: NoDeadline}
	for _, m := range g.Milestones {
		if m.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	if g.TargetDate != nil && !g.TargetDate.IsZero() {
		p.DaysUntilDeadline = today.DaysUntil(*g.TargetDate)
		p.Overdue = g.Status == StatusActive && g.TargetDate.Before(today)
	}
	p.Badge = deadlineBadge(g, p)
	return p
}

func deadlineBadge(g Goal, p Progress) Badge {
	switch {
	case p.DaysUntilDeadline == NoDeadline:
		return Badge{Kind: BadgeNone}
	case p.Overdue:
		return Badge{Kind: BadgeOverdue, Text: fmt.Sprintf("%dd overdue", abs(p.DaysUntilDeadline))}
	case p.DaysUntilDeadline >= 0 && p.DaysUntilDeadline <= UrgentDays:
		return Badge{Kind: BadgeUrgent, Text: fmt.Sprintf("%dd left", p.DaysUntilDeadline)}
	default:
		return Badge{Kind: BadgeDate, Text: g.TargetDate.Format("Jan 2, 2006")}
	}
}

// Summary aggregates a list of goals.
type Summary struct {
	Total     int
	Active    int
	Completed int
	Archived  int
	Overdue   int
	// Milestones counts every milestone and how many are done.
	Milestones          int
	CompletedMilestones int
}

// Summarize counts goals by status as of today.
func Summarize(goals []Goal, today timeutil.Date) Summary {
	var s Summary
	for _, g := range goals {
		s.Total++
		switch g.Status {
		case StatusActive:
			s.Active++
		case StatusCompleted:
			s.Completed++
		case StatusArchived:
			s.Archived++
		}
		p := Evaluate(g, today)
		if p.Overdue {
			s.Overdue++
		}
		s.Milestones += p.Total
		s.CompletedMilestones += p.Completed
	}
	return s
}

// MilestoneDates counts completed milestones per completion day, in the
// location the timestamps carry.
func MilestoneDates(goals []Goal) map[timeutil.Date]int {
	out := make(map[timeutil.Date]int)
	for _, g := range goals {
		for _, m := range g.Milestones {
			if m.Completed && m.CompletedAt != nil {
				out[timeutil.DateOf(*m.CompletedAt)]++
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
