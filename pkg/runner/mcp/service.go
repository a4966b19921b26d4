// Package mcp exposes the journal over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/logbook/pkg/app"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/glyph"
	"tableflip.dev/logbook/pkg/goal"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

// Service adapts app.Service results into transport-friendly values.
type Service struct {
	App *app.Service
}

// NewService wraps svc.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

// EntryDTO is a transport-friendly projection of an entry.
type EntryDTO struct {
	ID          int64    `json:"id"`
	Date        string   `json:"date"`
	Type        string   `json:"type"`
	Symbol      string   `json:"symbol"`
	Title       string   `json:"title"`
	Content     string   `json:"content,omitempty"`
	Mood        int      `json:"mood,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsCompleted bool     `json:"isCompleted"`
	Start       string   `json:"startTime,omitempty"`
	End         string   `json:"endTime,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	Commits     int      `json:"commits,omitempty"`
}

// DayDTO is the entries of a single day.
type DayDTO struct {
	Date    string     `json:"date"`
	Count   int        `json:"count"`
	Entries []EntryDTO `json:"entries"`
}

// HeatmapDTO summarizes the trailing activity window.
type HeatmapDTO struct {
	Start         string        `json:"start"`
	End           string        `json:"end"`
	TotalEntries  int           `json:"totalEntries"`
	ActiveDays    int           `json:"activeDays"`
	CurrentStreak int           `json:"currentStreak"`
	LongestStreak int           `json:"longestStreak"`
	Days          []heatmap.Day `json:"days,omitempty"`
}

// StatsDTO is the all-time overview of the journal.
type StatsDTO struct {
	TotalEntries  int            `json:"totalEntries"`
	ActiveDays    int            `json:"activeDays"`
	CurrentStreak int            `json:"currentStreak"`
	LongestStreak int            `json:"longestStreak"`
	ByType        map[string]int `json:"byType"`
	RecentEntries []EntryDTO     `json:"recentEntries"`
}

// TagDTO is one catalog tag.
type TagDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// GoalDTO is a goal with its computed progress.
type GoalDTO struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	Type       string         `json:"type"`
	Status     string         `json:"status"`
	TargetDate string         `json:"targetDate,omitempty"`
	Percent    int            `json:"percent"`
	Completed  int            `json:"completedMilestones"`
	Total      int            `json:"totalMilestones"`
	Overdue    bool           `json:"overdue"`
	Badge      string         `json:"badge,omitempty"`
	Milestones []MilestoneDTO `json:"milestones"`
}

// MilestoneDTO is one milestone of a goal.
type MilestoneDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// CreateEntryOptions captures the parameters used to create a new entry.
type CreateEntryOptions struct {
	Title   string
	Content string
	Type    string
	Date    string
	Mood    int
	Tags    []string
	Start   string
	End     string
}

func (s *Service) ready() error {
	if s.App == nil {
		return errors.New("mcp: service is not configured")
	}
	return nil
}

// ParseDate accepts "today", "yesterday", "tomorrow" or YYYY-MM-DD.
func (s *Service) ParseDate(raw string) (timeutil.Date, error) {
	today := s.App.Today()
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	return timeutil.ParseDate(raw)
}

// Day returns the entries of one day.
func (s *Service) Day(ctx context.Context, raw string) (DayDTO, error) {
	if err := s.ready(); err != nil {
		return DayDTO{}, err
	}
	d, err := s.ParseDate(raw)
	if err != nil {
		return DayDTO{}, err
	}
	entries, err := s.App.Day(ctx, d)
	if err != nil {
		return DayDTO{}, err
	}
	return DayDTO{Date: d.String(), Count: len(entries), Entries: toDTOs(entries)}, nil
}

// Range returns days with entries between start and end, inclusive.
func (s *Service) Range(ctx context.Context, rawStart, rawEnd string) ([]DayDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start, err := s.ParseDate(rawStart)
	if err != nil {
		return nil, err
	}
	end, err := s.ParseDate(rawEnd)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		start, end = end, start
	}
	if start.DaysUntil(end) > 366 {
		return nil, fmt.Errorf("range %s..%s is longer than a year", start, end)
	}
	entries, err := s.App.Backend.EntriesByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	var days []DayDTO
	for _, e := range entries {
		if n := len(days); n == 0 || days[n-1].Date != e.Date.String() {
			days = append(days, DayDTO{Date: e.Date.String()})
		}
		last := &days[len(days)-1]
		last.Entries = append(last.Entries, toDTO(e))
		last.Count++
	}
	return days, nil
}

// Search returns at most limit matches, newest first.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]EntryDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}
	entries, err := s.App.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return toDTOs(entries), nil
}

// CreateEntry validates and creates an entry.
func (s *Service) CreateEntry(ctx context.Context, opts CreateEntryOptions) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	d, err := s.ParseDate(opts.Date)
	if err != nil {
		return EntryDTO{}, err
	}
	req := entry.CreateRequest{
		Title:   opts.Title,
		Content: opts.Content,
		Date:    d,
		Mood:    opts.Mood,
		Tags:    opts.Tags,
	}
	if strings.TrimSpace(opts.Type) != "" {
		if req.Type, err = entry.ParseType(opts.Type); err != nil {
			return EntryDTO{}, err
		}
	}
	if req.Start, err = parseClock(opts.Start); err != nil {
		return EntryDTO{}, err
	}
	if req.End, err = parseClock(opts.End); err != nil {
		return EntryDTO{}, err
	}
	created, _, err := s.App.CreateEntry(ctx, req)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(created), nil
}

// ToggleEntry flips completion of an action.
func (s *Service) ToggleEntry(ctx context.Context, id int64, rawDate string) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	d, err := s.ParseDate(rawDate)
	if err != nil {
		return EntryDTO{}, err
	}
	e, err := s.App.ToggleCompleted(ctx, id, d)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// UpdateEntry applies a partial update. Nil fields are left unchanged.
func (s *Service) UpdateEntry(ctx context.Context, id int64, rawDate string, patch entry.UpdateRequest) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	d, err := s.ParseDate(rawDate)
	if err != nil {
		return EntryDTO{}, err
	}
	e, err := s.App.UpdateEntry(ctx, id, d, patch)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// DeleteEntry removes an entry.
func (s *Service) DeleteEntry(ctx context.Context, id int64, rawDate string) error {
	if err := s.ready(); err != nil {
		return err
	}
	d, err := s.ParseDate(rawDate)
	if err != nil {
		return err
	}
	_, err = s.App.DeleteEntry(ctx, id, d)
	return err
}

// Heatmap returns the current activity window. Days are included only when
// withDays is set.
func (s *Service) Heatmap(ctx context.Context, withDays bool) (HeatmapDTO, error) {
	if err := s.ready(); err != nil {
		return HeatmapDTO{}, err
	}
	view, err := s.App.Heatmap(ctx)
	if err != nil {
		return HeatmapDTO{}, err
	}
	snap := view.Snapshot
	start, end := heatmap.Window(view.End, s.App.Cache.Window())
	out := HeatmapDTO{
		Start:         start.String(),
		End:           end.String(),
		TotalEntries:  snap.TotalEntries,
		ActiveDays:    snap.ActiveDays,
		CurrentStreak: snap.CurrentStreak,
		LongestStreak: snap.LongestStreak,
	}
	if withDays {
		for _, d := range snap.Days {
			if d.Count > 0 {
				out.Days = append(out.Days, d)
			}
		}
	}
	return out, nil
}

// Stats returns all-time totals, counts per entry type and the most recent
// entries.
func (s *Service) Stats(ctx context.Context) (StatsDTO, error) {
	if err := s.ready(); err != nil {
		return StatsDTO{}, err
	}
	sum, err := s.App.Summary(ctx)
	if err != nil {
		return StatsDTO{}, err
	}
	out := StatsDTO{
		TotalEntries:  sum.TotalEntries,
		ActiveDays:    sum.ActiveDays,
		CurrentStreak: sum.CurrentStreak,
		LongestStreak: sum.LongestStreak,
		ByType:        make(map[string]int, len(sum.ByType)),
		RecentEntries: toDTOs(sum.RecentEntries),
	}
	for t, n := range sum.ByType {
		out.ByType[strings.ToLower(string(t))] = n
	}
	return out, nil
}

// Tags lists the tag catalog.
func (s *Service) Tags(ctx context.Context) ([]TagDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	tags, err := s.App.Tags(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TagDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagDTO{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return out, nil
}

// Goals lists goals with the given status ("" for all).
func (s *Service) Goals(ctx context.Context, rawStatus string) ([]GoalDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	status, err := goal.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	views, err := s.App.Goals(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]GoalDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toGoalDTO(v))
	}
	return out, nil
}

// AddMilestone appends a milestone to a goal.
func (s *Service) AddMilestone(ctx context.Context, goalID int64, title string) (GoalDTO, error) {
	if err := s.ready(); err != nil {
		return GoalDTO{}, err
	}
	v, err := s.App.AddMilestone(ctx, goalID, title)
	if err != nil {
		return GoalDTO{}, err
	}
	return toGoalDTO(v), nil
}

// ToggleMilestone flips completion of a milestone.
func (s *Service) ToggleMilestone(ctx context.Context, goalID, milestoneID int64) (GoalDTO, error) {
	if err := s.ready(); err != nil {
		return GoalDTO{}, err
	}
	v, err := s.App.ToggleMilestone(ctx, goalID, milestoneID)
	if err != nil {
		return GoalDTO{}, err
	}
	return toGoalDTO(v), nil
}

func parseClock(raw string) (*entry.ClockTime, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	c, err := entry.ParseClock(raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func toDTOs(entries []entry.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDTO(e))
	}
	return out
}

func toDTO(e entry.Entry) EntryDTO {
	dto := EntryDTO{
		ID:          e.ID,
		Date:        e.Date.String(),
		Type:        string(e.Type),
		Symbol:      glyph.Bullet(e).Symbol,
		Title:       e.Title,
		Content:     e.Content,
		Mood:        e.Mood,
		IsCompleted: e.Completed(),
	}
	for _, t := range e.Tags {
		dto.Tags = append(dto.Tags, t.Name)
	}
	if p, ok := e.Event(); ok {
		if p.Start != nil {
			dto.Start = p.Start.String()
		}
		if p.End != nil {
			dto.End = p.End.String()
		}
	}
	if p, ok := e.Commits(); ok {
		dto.Repository = p.Repository
		dto.Commits = len(p.Commits)
	}
	return dto
}

func toGoalDTO(v app.GoalView) GoalDTO {
	g, p := v.Goal, v.Progress
	dto := GoalDTO{
		ID:         g.ID,
		Title:      g.Title,
		Type:       string(g.Type),
		Status:     string(g.Status),
		Percent:    p.Percent,
		Completed:  p.Completed,
		Total:      p.Total,
		Overdue:    p.Overdue,
		Badge:      p.Badge.Text,
		Milestones: make([]MilestoneDTO, 0, len(g.Milestones)),
	}
	if g.TargetDate != nil {
		dto.TargetDate = g.TargetDate.String()
	}
	for _, m := range g.Milestones {
		dto.Milestones = append(dto.Milestones, MilestoneDTO{ID: m.ID, Title: m.Title, IsCompleted: m.Completed})
	}
	return dto
}
