package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tableflip.dev/logbook/pkg/goal"
)

// Goals lists goals, filtered by status when it is set.
func (c *Client) Goals(ctx context.Context, status goal.Status) ([]goal.Goal, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}
	var out []goal.Goal
	if err := c.do(ctx, http.MethodGet, "/api/goals", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGoal posts a new goal.
func (c *Client) CreateGoal(ctx context.Context, req goal.CreateRequest) (goal.Goal, error) {
	return c.goal(ctx, http.MethodPost, "/api/goals", req)
}

// SetGoalStatus moves goal id to status.
func (c *Client) SetGoalStatus(ctx context.Context, id int64, status goal.Status) (goal.Goal, error) {
	body := struct {
		Status goal.Status `json:"status"`
	}{status}
	return c.goal(ctx, http.MethodPatch, fmt.Sprintf("/api/goals/%d/status", id), body)
}

// AddMilestone appends a milestone to goal goalID.
func (c *Client) AddMilestone(ctx context.Context, goalID int64, title string) (goal.Goal, error) {
	body := struct {
		Title string `json:"title"`
	}{title}
	return c.goal(ctx, http.MethodPost, fmt.Sprintf("/api/goals/%d/milestones", goalID), body)
}

// SetMilestone sets the completion of one milestone.
func (c *Client) SetMilestone(ctx context.Context, goalID, milestoneID int64, completed bool) (goal.Goal, error) {
	body := struct {
		Completed bool `json:"isCompleted"`
	}{completed}
	return c.goal(ctx, http.MethodPatch, fmt.Sprintf("/api/goals/%d/milestones/%d", goalID, milestoneID), body)
}

// DeleteMilestone removes one milestone.
func (c *Client) DeleteMilestone(ctx context.Context, goalID, milestoneID int64) (goal.Goal, error) {
	return c.goal(ctx, http.MethodDelete, fmt.Sprintf("/api/goals/%d/milestones/%d", goalID, milestoneID), nil)
}

func (c *Client) goal(ctx context.Context, method, path string, body any) (goal.Goal, error) {
	var out goal.Goal
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return goal.Goal{}, err
	}
	return out, nil
}
