package store

import (
	"context"
	"fmt"
	"sort"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/goal"
)

const defaultGoalColor = "#6366f1"

// Goals lists stored goals with status, or all of them when status is empty.
func (s *Store) Goals(ctx context.Context, status goal.Status) ([]goal.Goal, error) {
	out := make([]goal.Goal, 0)
	for _, key := range s.keys(ctx, goalPrefix+"-") {
		var g goal.Goal
		if err := s.readJSON(key, &g); err != nil {
			return nil, fmt.Errorf("store: read %s: %w", key, err)
		}
		if status != "" && g.Status != status {
			continue
		}
		out = append(out, g)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateGoal validates req and stores it as an active goal.
func (s *Store) CreateGoal(ctx context.Context, req goal.CreateRequest) (goal.Goal, error) {
	if err := req.Validate(); err != nil {
		return goal.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g := goal.Goal{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      goal.StatusActive,
		Color:       req.Color,
		TargetDate:  req.TargetDate,
		Milestones:  []goal.Milestone{},
		CreatedAt:   s.now(),
	}
	if g.Color == "" {
		g.Color = defaultGoalColor
	}
	err := s.updateIndex(func(idx *index) error {
		idx.NextGoal++
		g.ID = idx.NextGoal
		return nil
	})
	if err != nil {
		return goal.Goal{}, err
	}
	if err := s.writeJSON(goalKey(g.ID), g); err != nil {
		return goal.Goal{}, fmt.Errorf("store: write goal: %w", err)
	}
	return g, nil
}

// SetGoalStatus moves goal id to status.
func (s *Store) SetGoalStatus(ctx context.Context, id int64, status goal.Status) (goal.Goal, error) {
	if status == "" {
		return goal.Goal{}, fmt.Errorf("store: goal status required")
	}
	return s.mutateGoal(id, func(g *goal.Goal) error {
		g.Status = status
		return nil
	})
}

// AddMilestone appends an open milestone to goal goalID.
func (s *Store) AddMilestone(ctx context.Context, goalID int64, title string) (goal.Goal, error) {
	title, err := goal.ValidateMilestoneTitle(title)
	if err != nil {
		return goal.Goal{}, err
	}
	return s.mutateGoal(goalID, func(g *goal.Goal) error {
		return s.updateIndex(func(idx *index) error {
			idx.NextMilestone++
			g.Milestones = append(g.Milestones, goal.Milestone{ID: idx.NextMilestone, Title: title})
			return nil
		})
	})
}

// SetMilestone sets the completion of one milestone.
func (s *Store) SetMilestone(ctx context.Context, goalID, milestoneID int64, completed bool) (goal.Goal, error) {
	return s.mutateGoal(goalID, func(g *goal.Goal) error {
		for i := range g.Milestones {
			m := &g.Milestones[i]
			if m.ID != milestoneID {
				continue
			}
			m.Completed = completed
			m.CompletedAt = nil
			if completed {
				at := s.now()
				m.CompletedAt = &at
			}
			return nil
		}
		return fmt.Errorf("store: milestone %d: %w", milestoneID, backend.ErrNotFound)
	})
}

// DeleteMilestone removes one milestone from goal goalID.
func (s *Store) DeleteMilestone(ctx context.Context, goalID, milestoneID int64) (goal.Goal, error) {
	return s.mutateGoal(goalID, func(g *goal.Goal) error {
		for i := range g.Milestones {
			if g.Milestones[i].ID == milestoneID {
				g.Milestones = append(g.Milestones[:i], g.Milestones[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("store: milestone %d: %w", milestoneID, backend.ErrNotFound)
	})
}

func (s *Store) mutateGoal(id int64, fn func(*goal.Goal) error) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := goalKey(id)
	if !s.d.Has(key) {
		return goal.Goal{}, fmt.Errorf("store: goal %d: %w", id, backend.ErrNotFound)
	}
	var g goal.Goal
	if err := s.readJSON(key, &g); err != nil {
		return goal.Goal{}, fmt.Errorf("store: read goal %d: %w", id, err)
	}
	if err := fn(&g); err != nil {
		return goal.Goal{}, err
	}
	if err := s.writeJSON(key, g); err != nil {
		return goal.Goal{}, fmt.Errorf("store: write goal: %w", err)
	}
	return g, nil
}
