package store

import (
	"context"
	"sort"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

// recentLimit caps Summary.RecentEntries.
const recentLimit = 10

// Summary totals every stored entry. Streaks end at today; entries dated in
// the future count toward the totals only.
func (s *Store) Summary(ctx context.Context) (backend.Summary, error) {
	all, err := s.EntriesByRange(ctx, firstDay, lastDay)
	if err != nil {
		return backend.Summary{}, err
	}
	sum := backend.Summary{
		TotalEntries:  len(all),
		ByType:        make(map[entry.Type]int, len(entry.Types())),
		RecentEntries: make([]entry.Entry, 0, recentLimit),
	}
	for _, t := range entry.Types() {
		sum.ByType[t] = 0
	}
	counts := make(map[timeutil.Date]int)
	var first timeutil.Date
	for _, e := range all {
		counts[e.Date]++
		sum.ByType[e.Type]++
		if first.IsZero() || e.Date.Before(first) {
			first = e.Date
		}
	}
	sum.ActiveDays = len(counts)

	now := s.now()
	today := timeutil.Today(now, now.Location())
	if !first.IsZero() && !first.After(today) {
		days := timeutil.Range(first, today)
		series := make([]int, len(days))
		for i, d := range days {
			series[i] = counts[d]
		}
		sum.CurrentStreak, sum.LongestStreak = heatmap.Streaks(series)
	}

	recent := append([]entry.Entry(nil), all...)
	sort.SliceStable(recent, func(i, j int) bool {
		if recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].ID > recent[j].ID
		}
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	sum.RecentEntries = append(sum.RecentEntries, recent...)
	return sum, nil
}
