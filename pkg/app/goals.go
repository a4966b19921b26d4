package app

import (
	"context"
	"fmt"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/goal"
)

// GoalView pairs a goal with its progress as of today.
type GoalView struct {
	Goal     goal.Goal
	Progress goal.Progress
}

// Goals lists goals with the given status ("" for all).
func (s *Service) Goals(ctx context.Context, status goal.Status) ([]GoalView, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	goals, err := s.Backend.Goals(ctx, status)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalView{Goal: g, Progress: goal.Evaluate(g, today)})
	}
	return out, nil
}

// GoalSummary counts all goals by status.
func (s *Service) GoalSummary(ctx context.Context) (goal.Summary, error) {
	if err := s.ready(); err != nil {
		return goal.Summary{}, err
	}
	goals, err := s.Backend.Goals(ctx, "")
	if err != nil {
		return goal.Summary{}, err
	}
	return goal.Summarize(goals, s.Today()), nil
}

func (s *Service) view(g goal.Goal, err error) (GoalView, error) {
	if err != nil {
		return GoalView{}, err
	}
	return GoalView{Goal: g, Progress: goal.Evaluate(g, s.Today())}, nil
}

// CreateGoal validates and creates a goal.
func (s *Service) CreateGoal(ctx context.Context, req goal.CreateRequest) (GoalView, error) {
	if err := s.ready(); err != nil {
		return GoalView{}, err
	}
	if err := req.Validate(); err != nil {
		return GoalView{}, err
	}
	return s.view(s.Backend.CreateGoal(ctx, req))
}

// SetGoalStatus moves a goal to status.
func (s *Service) SetGoalStatus(ctx context.Context, id int64, status goal.Status) (GoalView, error) {
	if err := s.ready(); err != nil {
		return GoalView{}, err
	}
	if status == "" {
		return GoalView{}, fmt.Errorf("%w: status is required", goal.ErrInvalid)
	}
	return s.view(s.Backend.SetGoalStatus(ctx, id, status))
}

// AddMilestone appends a milestone to goal goalID.
func (s *Service) AddMilestone(ctx context.Context, goalID int64, title string) (GoalView, error) {
	if err := s.ready(); err != nil {
		return GoalView{}, err
	}
	title, err := goal.ValidateMilestoneTitle(title)
	if err != nil {
		return GoalView{}, err
	}
	return s.view(s.Backend.AddMilestone(ctx, goalID, title))
}

// ToggleMilestone flips the completion of a milestone.
func (s *Service) ToggleMilestone(ctx context.Context, goalID, milestoneID int64) (GoalView, error) {
	if err := s.ready(); err != nil {
		return GoalView{}, err
	}
	goals, err := s.Backend.Goals(ctx, "")
	if err != nil {
		return GoalView{}, err
	}
	for _, g := range goals {
		if g.ID != goalID {
			continue
		}
		for _, m := range g.Milestones {
			if m.ID == milestoneID {
				return s.view(s.Backend.SetMilestone(ctx, goalID, milestoneID, !m.Completed))
			}
		}
		return GoalView{}, fmt.Errorf("app: milestone %d of goal %d: %w", milestoneID, goalID, backend.ErrNotFound)
	}
	return GoalView{}, fmt.Errorf("app: goal %d: %w", goalID, backend.ErrNotFound)
}

// DeleteMilestone removes a milestone from goal goalID.
func (s *Service) DeleteMilestone(ctx context.Context, goalID, milestoneID int64) (GoalView, error) {
	if err := s.ready(); err != nil {
		return GoalView{}, err
	}
	return s.view(s.Backend.DeleteMilestone(ctx, goalID, milestoneID))
}
