package app

import (
	"context"
	"sort"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/timeutil"
)

// ReportSection groups the completed entries of one day.
type ReportSection struct {
	Date    timeutil.Date
	Entries []entry.Entry
}

// ReportResult encapsulates a completed-entries report for a date window.
type ReportResult struct {
	Since    timeutil.Date
	Until    timeutil.Date
	Sections []ReportSection
	Total    int
}

// Report returns completed actions and goal completions grouped by day
// between the provided bounds, inclusive.
func (s *Service) Report(ctx context.Context, since, until timeutil.Date) (ReportResult, error) {
	if err := s.ready(); err != nil {
		return ReportResult{}, err
	}
	if since.After(until) {
		since, until = until, since
	}
	all, err := s.Backend.EntriesByRange(ctx, since, until)
	if err != nil {
		return ReportResult{}, err
	}

	byDay := make(map[timeutil.Date][]entry.Entry)
	for _, e := range all {
		if e.Completed() {
			byDay[e.Date] = append(byDay[e.Date], e)
		}
	}
	days := make([]timeutil.Date, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	result := ReportResult{Since: since, Until: until}
	for _, d := range days {
		result.Sections = append(result.Sections, ReportSection{Date: d, Entries: byDay[d]})
		result.Total += len(byDay[d])
	}
	return result, nil
}
