package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/cache"
	"tableflip.dev/logbook/pkg/calendar"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/goal"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/search"
	"tableflip.dev/logbook/pkg/timeutil"
)

// Service provides high-level journal operations. It validates requests,
// talks to the backend and keeps the cache consistent with it so UIs and CLIs
// can share logic.
type Service struct {
	Backend backend.Backend
	Cache   *cache.Cache
}

// New wires a Service and its cache to b.
func New(b backend.Backend, opts cache.Options) *Service {
	return &Service{Backend: b, Cache: cache.New(b, opts)}
}

// ErrMutationFailed is matched by every MutationError.
var ErrMutationFailed = errors.New("app: mutation failed")

// MutationError reports a create, update or delete the backend rejected. Any
// optimistic local change has already been reverted when it is returned.
type MutationError struct {
	Op  string
	ID  int64
	Err error
}

func (e *MutationError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("app: %s entry %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("app: %s entry: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrMutationFailed) match any MutationError.
func (e *MutationError) Is(target error) bool {
	return target == ErrMutationFailed
}

func (s *Service) ready() error {
	if s.Backend == nil || s.Cache == nil {
		return errors.New("app: no backend configured")
	}
	return nil
}

// Today returns the current day in the configured location.
func (s *Service) Today() timeutil.Date {
	return s.Cache.Today()
}

// Day returns the entries of d, fetching them when they are not cached.
func (s *Service) Day(ctx context.Context, d timeutil.Date) ([]entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.Cache.SelectDay(ctx, d).Wait(ctx); err != nil {
		return nil, err
	}
	entries, _ := s.Cache.Day(d)
	return entries, nil
}

// MonthView is a calendar month with its per-day summaries.
type MonthView struct {
	Grid calendar.Grid
	Info calendar.Info
}

// Month loads the month containing anchor and builds its grid. Milestone
// completions are included when goals can be read; a goal failure does not
// fail the month.
func (s *Service) Month(ctx context.Context, anchor timeutil.Date) (MonthView, error) {
	if err := s.ready(); err != nil {
		return MonthView{}, err
	}
	if err := s.Cache.SetMonth(ctx, anchor); err != nil {
		return MonthView{}, err
	}
	grid := calendar.Build(anchor, s.Today(), s.Cache.WeekStart())
	info := calendar.Info{
		Summaries: make(map[timeutil.Date]calendar.DaySummary),
		Selected:  s.Cache.Selected(),
	}
	for d, entries := range s.Cache.Range(grid.Start(), grid.End()) {
		info.Summaries[d] = calendar.Summarize(entries)
	}
	if goals, err := s.Backend.Goals(ctx, ""); err == nil {
		info.Milestones = goal.MilestoneDates(goals)
	}
	return MonthView{Grid: grid, Info: info}, nil
}

// HeatmapView is the authoritative snapshot shaped for display.
type HeatmapView struct {
	Snapshot heatmap.Snapshot
	Grid     heatmap.Grid
	End      timeutil.Date
}

// Heatmap refreshes the trailing window and shapes it into week columns.
func (s *Service) Heatmap(ctx context.Context) (HeatmapView, error) {
	if err := s.ready(); err != nil {
		return HeatmapView{}, err
	}
	if err := s.Cache.RefreshHeatmap(ctx); err != nil {
		return HeatmapView{}, err
	}
	return s.HeatmapView(), nil
}

// HeatmapView shapes the cached snapshot without fetching.
func (s *Service) HeatmapView() HeatmapView {
	snap, _ := s.Cache.Heatmap()
	end := s.Today()
	return HeatmapView{
		Snapshot: snap,
		Grid:     heatmap.Shape(snap, end, s.Cache.Window(), s.Cache.WeekStart()),
		End:      end,
	}
}

// CreateEntry validates req, creates it on the backend and adds it to the
// cache. The returned Load tracks the heatmap refresh that follows.
func (s *Service) CreateEntry(ctx context.Context, req entry.CreateRequest) (entry.Entry, *cache.Load, error) {
	if err := s.ready(); err != nil {
		return entry.Entry{}, nil, err
	}
	if err := req.Validate(); err != nil {
		return entry.Entry{}, nil, err
	}
	created, err := s.Backend.CreateEntry(ctx, req)
	if err != nil {
		return entry.Entry{}, nil, &MutationError{Op: "create", Err: err}
	}
	return created, s.Cache.ApplyCreate(created), nil
}

// lookup returns entry id of day d from the cache, syncing d once when it is
// missing.
func (s *Service) lookup(ctx context.Context, id int64, d timeutil.Date) (entry.Entry, error) {
	if e, ok := s.Cache.Entry(d, id); ok {
		return e, nil
	}
	if err := s.Cache.SyncDay(ctx, d); err != nil {
		return entry.Entry{}, err
	}
	if e, ok := s.Cache.Entry(d, id); ok {
		return e, nil
	}
	return entry.Entry{}, fmt.Errorf("app: entry %d on %s: %w", id, d, backend.ErrNotFound)
}

// UpdateEntry applies patch to entry id of day d. The cache shows the patched
// entry while the request runs and is reverted if the backend rejects it.
func (s *Service) UpdateEntry(ctx context.Context, id int64, d timeutil.Date, patch entry.UpdateRequest) (entry.Entry, error) {
	if err := s.ready(); err != nil {
		return entry.Entry{}, err
	}
	prev, err := s.lookup(ctx, id, d)
	if err != nil {
		return entry.Entry{}, err
	}
	if err := patch.Validate(prev); err != nil {
		return entry.Entry{}, err
	}
	if patch.Empty() {
		return prev, nil
	}

	s.Cache.ApplyUpdate(patch.Apply(prev))
	updated, err := s.Backend.UpdateEntry(ctx, id, patch)
	if err != nil {
		s.Cache.ApplyUpdate(prev)
		return entry.Entry{}, &MutationError{Op: "update", ID: id, Err: err}
	}

	if updated.Date != prev.Date {
		// The server moved the entry; both days are refetched.
		s.Cache.ApplyUpdate(prev)
		for _, day := range []timeutil.Date{prev.Date, updated.Date} {
			if err := s.Cache.SyncDay(ctx, day); err != nil {
				return updated, err
			}
		}
		return updated, s.Cache.RefreshHeatmap(ctx)
	}
	s.Cache.ApplyUpdate(updated)
	return updated, nil
}

// ToggleCompleted flips the completion flag of an action.
func (s *Service) ToggleCompleted(ctx context.Context, id int64, d timeutil.Date) (entry.Entry, error) {
	if err := s.ready(); err != nil {
		return entry.Entry{}, err
	}
	prev, err := s.lookup(ctx, id, d)
	if err != nil {
		return entry.Entry{}, err
	}
	done := !prev.Completed()
	return s.UpdateEntry(ctx, id, d, entry.UpdateRequest{Completed: &done})
}

// DeleteEntry removes entry id of day d from the backend, then from the cache.
func (s *Service) DeleteEntry(ctx context.Context, id int64, d timeutil.Date) (*cache.Load, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.Backend.DeleteEntry(ctx, id); err != nil {
		return nil, &MutationError{Op: "delete", ID: id, Err: err}
	}
	return s.Cache.ApplyDelete(id, d), nil
}

// Search runs query once without debouncing.
func (s *Service) Search(ctx context.Context, query string) ([]entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Backend.SearchEntries(ctx, query)
}

// NewSearch returns a debounced search pipeline over the backend.
func (s *Service) NewSearch(delay time.Duration) *search.Pipeline {
	return search.New(search.SearcherFunc(s.Backend.SearchEntries), search.Options{Delay: delay})
}
