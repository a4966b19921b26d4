package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

// firstDay and lastDay bound every storable date.
var (
	firstDay = timeutil.Date{Year: 1, Month: 1, Day: 1}
	lastDay  = timeutil.Date{Year: 9999, Month: 12, Day: 31}
)

// EntriesByDate returns every entry stored under d.
func (s *Store) EntriesByDate(ctx context.Context, d timeutil.Date) ([]entry.Entry, error) {
	return s.collect(ctx, fmt.Sprintf("%s-%s-", entryPrefix, d), func(timeutil.Date) bool { return true })
}

// EntriesByRange returns the entries of every day in [start, end].
func (s *Store) EntriesByRange(ctx context.Context, start, end timeutil.Date) ([]entry.Entry, error) {
	return s.collect(ctx, entryPrefix+"-", func(d timeutil.Date) bool {
		return !d.Before(start) && !d.After(end)
	})
}

// collect reads the entries under prefix whose day passes keep. A file that
// cannot be read fails the whole call so no short list is returned.
func (s *Store) collect(ctx context.Context, prefix string, keep func(timeutil.Date) bool) ([]entry.Entry, error) {
	out := make([]entry.Entry, 0)
	for _, key := range s.keys(ctx, prefix) {
		d, _, ok := parseEntryKey(key)
		if !ok || !keep(d) {
			continue
		}
		var e entry.Entry
		if err := s.readJSON(key, &e); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Deleted after the walk listed it.
				continue
			}
			return nil, fmt.Errorf("store: read %s: %w", key, err)
		}
		out = append(out, e)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

// CreateEntry validates req, assigns the next id and writes the entry.
func (s *Store) CreateEntry(ctx context.Context, req entry.CreateRequest) (entry.Entry, error) {
	if err := req.Validate(); err != nil {
		return entry.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := entry.Entry{
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		Date:      req.Date,
		Mood:      req.Mood,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch req.Type {
	case entry.TypeEvent:
		e.Payload = entry.EventPayload{Start: req.Start, End: req.End}
	case entry.TypeAction:
		e.Payload = entry.ActionPayload{Completed: req.Completed}
	case entry.TypeCommit:
		e.Payload = entry.CommitPayload{}
	case entry.TypeGoal:
		e.Payload = entry.GoalPayload{}
	}
	err := s.updateIndex(func(idx *index) error {
		idx.NextEntry++
		e.ID = idx.NextEntry
		e.Tags = idx.resolveTags(req.Tags)
		return nil
	})
	if err != nil {
		return entry.Entry{}, err
	}
	if err := s.writeJSON(entryKey(e.Date, e.ID), e); err != nil {
		return entry.Entry{}, fmt.Errorf("store: write entry: %w", err)
	}
	return e, nil
}

// UpdateEntry applies patch to entry id. The entry keeps its date.
func (s *Store) UpdateEntry(ctx context.Context, id int64, patch entry.UpdateRequest) (entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.findEntry(ctx, id)
	if err != nil {
		return entry.Entry{}, err
	}
	var current entry.Entry
	if err := s.readJSON(key, &current); err != nil {
		return entry.Entry{}, fmt.Errorf("store: read entry %d: %w", id, err)
	}
	if err := patch.Validate(current); err != nil {
		return entry.Entry{}, err
	}
	updated := patch.Apply(current)
	if patch.Tags != nil {
		err := s.updateIndex(func(idx *index) error {
			updated.Tags = idx.resolveTags(*patch.Tags)
			return nil
		})
		if err != nil {
			return entry.Entry{}, err
		}
	}
	updated.UpdatedAt = s.now()
	if err := s.writeJSON(key, updated); err != nil {
		return entry.Entry{}, fmt.Errorf("store: write entry: %w", err)
	}
	return updated, nil
}

// DeleteEntry erases entry id.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.findEntry(ctx, id)
	if err != nil {
		return err
	}
	return s.d.Erase(key)
}

func (s *Store) findEntry(ctx context.Context, id int64) (string, error) {
	for _, key := range s.keys(ctx, entryPrefix+"-") {
		if _, kid, ok := parseEntryKey(key); ok && kid == id {
			return key, nil
		}
	}
	return "", fmt.Errorf("store: entry %d: %w", id, backend.ErrNotFound)
}

// SearchEntries matches query case-insensitively against titles, bodies and
// tag names. Newest days come first.
func (s *Store) SearchEntries(ctx context.Context, query string) ([]entry.Entry, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	all, err := s.EntriesByRange(ctx, firstDay, lastDay)
	if err != nil {
		return nil, err
	}
	out := make([]entry.Entry, 0)
	if q == "" {
		return out, nil
	}
	for _, e := range all {
		if matches(e, q) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func matches(e entry.Entry, q string) bool {
	if strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Content), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t.Name), q) {
			return true
		}
	}
	return false
}

// Heatmap counts stored entries per day over [start, end].
func (s *Store) Heatmap(ctx context.Context, start, end timeutil.Date) (heatmap.Snapshot, error) {
	entries, err := s.EntriesByRange(ctx, start, end)
	if err != nil {
		return heatmap.Snapshot{}, err
	}
	counts := make(map[timeutil.Date]int)
	for _, e := range entries {
		counts[e.Date]++
	}
	return heatmap.Build(counts, end, start.DaysUntil(end)+1, time.Sunday).Snapshot, nil
}
