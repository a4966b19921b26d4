package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/events"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

var (
	may1  = timeutil.MustParseDate("2024-05-01")
	may2  = timeutil.MustParseDate("2024-05-02")
	may15 = timeutil.MustParseDate("2024-05-15")
	jun3  = timeutil.MustParseDate("2024-06-03")
	now   = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
)

// fakeSource serves entries from a map. A day listed in gates blocks after
// reading its data until the gate is closed, so tests control completion
// order.
type fakeSource struct {
	mu       sync.Mutex
	days     map[timeutil.Date][]entry.Entry
	snapshot heatmap.Snapshot

	dayErr, rangeErr, heatErr error

	gates     map[timeutil.Date]chan struct{}
	heatGates []chan struct{}
	started   chan timeutil.Date

	dayCalls, rangeCalls, heatCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		days:    make(map[timeutil.Date][]entry.Entry),
		gates:   make(map[timeutil.Date]chan struct{}),
		started: make(chan timeutil.Date, 16),
	}
}

func (s *fakeSource) set(d timeutil.Date, entries ...entry.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[d] = entries
}

func (s *fakeSource) EntriesByDate(ctx context.Context, d timeutil.Date) ([]entry.Entry, error) {
	s.mu.Lock()
	s.dayCalls++
	data := append([]entry.Entry(nil), s.days[d]...)
	err := s.dayErr
	gate := s.gates[d]
	s.mu.Unlock()
	s.started <- d
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return data, err
}

func (s *fakeSource) EntriesByRange(_ context.Context, start, end timeutil.Date) ([]entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangeCalls++
	if s.rangeErr != nil {
		return nil, s.rangeErr
	}
	var out []entry.Entry
	for _, d := range timeutil.Range(start, end) {
		out = append(out, s.days[d]...)
	}
	return out, nil
}

func (s *fakeSource) Heatmap(ctx context.Context, _, _ timeutil.Date) (heatmap.Snapshot, error) {
	s.mu.Lock()
	s.heatCalls++
	snap, err := s.snapshot, s.heatErr
	var gate chan struct{}
	if len(s.heatGates) > 0 {
		gate, s.heatGates = s.heatGates[0], s.heatGates[1:]
	}
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return heatmap.Snapshot{}, ctx.Err()
		}
	}
	return snap, err
}

func newCache(src Source) *Cache {
	return New(src, Options{Location: time.UTC, Now: func() time.Time { return now }})
}

func note(id int64, d timeutil.Date, title string) entry.Entry {
	return entry.Entry{ID: id, Title: title, Type: entry.TypeNote, Date: d}
}

func wait(t *testing.T, l *Load) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := l.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("timed out waiting for load")
	}
	return err
}

func mustDay(t *testing.T, c *Cache, d timeutil.Date) []entry.Entry {
	t.Helper()
	got, ok := c.Day(d)
	if !ok {
		t.Fatalf("no bucket for %s", d)
	}
	return got
}

func TestSelectDayFetchesMissingBucket(t *testing.T) {
	src := newFakeSource()
	src.set(may1, note(1, may1, "standup"))
	c := newCache(src)

	l := c.SelectDay(context.Background(), may1)
	if got := c.Selected(); got != may1 {
		t.Fatalf("Selected() = %s before fetch resolved", got)
	}
	if err := wait(t, l); err != nil {
		t.Fatalf("SelectDay: %v", err)
	}
	if diff := cmp.Diff([]entry.Entry{note(1, may1, "standup")}, mustDay(t, c, may1)); diff != "" {
		t.Fatalf("bucket mismatch (-want +got):\n%s", diff)
	}

	if err := wait(t, c.SelectDay(context.Background(), may1)); err != nil {
		t.Fatal(err)
	}
	if src.dayCalls != 1 {
		t.Fatalf("dayCalls = %d, want 1 for a cached day", src.dayCalls)
	}
}

func TestSelectDaySharesInFlightFetch(t *testing.T) {
	src := newFakeSource()
	gate := make(chan struct{})
	src.gates[may1] = gate
	c := newCache(src)

	first := c.SelectDay(context.Background(), may1)
	<-src.started
	second := c.SelectDay(context.Background(), may1)
	if first != second {
		t.Fatal("expected the in-flight load to be shared")
	}
	if !c.Loading() {
		t.Fatal("Loading() = false with a fetch outstanding")
	}
	close(gate)
	if err := wait(t, second); err != nil {
		t.Fatal(err)
	}
	if src.dayCalls != 1 {
		t.Fatalf("dayCalls = %d, want 1", src.dayCalls)
	}
	if c.Loading() {
		t.Fatal("Loading() = true after completion")
	}
}

// A single-day fetch issued before a range load and resolving after it must
// not overwrite the range data.
func TestRangeWinsOverStaleDayFetch(t *testing.T) {
	src := newFakeSource()
	src.set(may2, note(1, may2, "old"))
	gate := make(chan struct{})
	src.gates[may2] = gate
	c := newCache(src)

	dayLoad := c.SelectDay(context.Background(), may2)
	<-src.started

	src.set(may2, note(1, may2, "new"), note(2, may2, "added"))
	if err := c.LoadRange(context.Background(), may15); err != nil {
		t.Fatalf("LoadRange: %v", err)
	}
	close(gate)
	if err := wait(t, dayLoad); err != nil {
		t.Fatal(err)
	}

	want := []entry.Entry{note(1, may2, "new"), note(2, may2, "added")}
	if diff := cmp.Diff(want, mustDay(t, c, may2)); diff != "" {
		t.Fatalf("bucket mismatch (-want +got):\n%s", diff)
	}
	if got := c.Stats().Dropped; got != 1 {
		t.Fatalf("Dropped = %d, want 1", got)
	}
}

// Local writes landing on a day while its first fetch is in flight are layered
// over the response instead of replacing it.
func TestCreateDuringDayFetch(t *testing.T) {
	tests := []struct {
		name string
		// served is what the backend read returns for may2.
		served []entry.Entry
		local  func(c *Cache) *Load
		want   []entry.Entry
	}{{
		name:   "create missing from response",
		served: []entry.Entry{note(1, may2, "existing")},
		local:  func(c *Cache) *Load { return c.ApplyCreate(note(2, may2, "new")) },
		want:   []entry.Entry{note(1, may2, "existing"), note(2, may2, "new")},
	}, {
		name:   "create already in response",
		served: []entry.Entry{note(1, may2, "existing"), note(2, may2, "new")},
		local:  func(c *Cache) *Load { return c.ApplyCreate(note(2, may2, "new")) },
		want:   []entry.Entry{note(1, may2, "existing"), note(2, may2, "new")},
	}, {
		name:   "create then delete",
		served: []entry.Entry{note(1, may2, "existing"), note(2, may2, "new")},
		local: func(c *Cache) *Load {
			if err := c.ApplyCreate(note(2, may2, "new")).Wait(context.Background()); err != nil {
				return doneLoad(err)
			}
			return c.ApplyDelete(2, may2)
		},
		want: []entry.Entry{note(1, may2, "existing")},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			src.set(may2, tt.served...)
			gate := make(chan struct{})
			src.gates[may2] = gate
			c := newCache(src)

			dayLoad := c.SelectDay(context.Background(), may2)
			<-src.started
			if err := wait(t, tt.local(c)); err != nil {
				t.Fatal(err)
			}
			close(gate)
			if err := wait(t, dayLoad); err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.want, mustDay(t, c, may2)); diff != "" {
				t.Fatalf("bucket mismatch (-want +got):\n%s", diff)
			}
			if err := wait(t, c.SelectDay(context.Background(), may2)); err != nil {
				t.Fatal(err)
			}
			if src.dayCalls != 1 {
				t.Fatalf("dayCalls = %d, want 1 once the day is complete", src.dayCalls)
			}
		})
	}
}

func TestDayFetchAfterRangeInstalled(t *testing.T) {
	src := newFakeSource()
	src.set(may2, note(1, may2, "first"))
	c := newCache(src)
	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	src.set(may2, note(1, may2, "edited elsewhere"))
	if err := c.SyncDay(context.Background(), may2); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]entry.Entry{note(1, may2, "edited elsewhere")}, mustDay(t, c, may2)); diff != "" {
		t.Fatalf("bucket mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRangeFillsEveryDay(t *testing.T) {
	src := newFakeSource()
	src.set(may2, note(1, may2, "a"))
	src.set(jun3, note(9, jun3, "next month"))
	c := newCache(src)
	if err := c.SetMonth(context.Background(), may15); err != nil {
		t.Fatal(err)
	}
	if got := c.Month(); got != may1 {
		t.Fatalf("Month() = %s", got)
	}
	for _, d := range timeutil.Range(may1, may1.LastOfMonth()) {
		if _, ok := c.Day(d); !ok {
			t.Fatalf("no bucket for %s", d)
		}
	}
	if _, ok := c.Day(jun3); ok {
		t.Fatal("range load leaked outside the month")
	}
	if got := c.Stats().Buckets; got != 31 {
		t.Fatalf("Buckets = %d, want 31", got)
	}
}

func TestLoadRangeIdempotent(t *testing.T) {
	src := newFakeSource()
	src.set(may1, note(1, may1, "a"), note(2, may1, "b"))
	src.set(may15, note(3, may15, "c"))
	c := newCache(src)

	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	first := c.Range(may1, may1.LastOfMonth())
	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	second := c.Range(may1, may1.LastOfMonth())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second load changed buckets (-first +second):\n%s", diff)
	}
}

func TestCreateDeleteRoundTrip(t *testing.T) {
	for name, preload := range map[string]bool{"cached day": true, "uncached day": false} {
		t.Run(name, func(t *testing.T) {
			src := newFakeSource()
			src.set(may2, note(1, may2, "existing"))
			c := newCache(src)
			if preload {
				if err := c.LoadRange(context.Background(), may1); err != nil {
					t.Fatal(err)
				}
			}
			before, hadBefore := c.Day(may2)

			e := note(42, may2, "new")
			if err := wait(t, c.ApplyCreate(e)); err != nil {
				t.Fatal(err)
			}
			if got, ok := c.Entry(may2, 42); !ok || got.Title != "new" {
				t.Fatalf("Entry() = %+v, %v after create", got, ok)
			}
			if err := wait(t, c.ApplyDelete(e.ID, e.Date)); err != nil {
				t.Fatal(err)
			}

			after, hasAfter := c.Day(may2)
			if hadBefore != hasAfter {
				t.Fatalf("bucket presence changed: before %v after %v", hadBefore, hasAfter)
			}
			if diff := cmp.Diff(before, after); diff != "" {
				t.Fatalf("bucket not restored (-before +after):\n%s", diff)
			}
		})
	}
}

func TestMutationsRefreshHeatmap(t *testing.T) {
	src := newFakeSource()
	src.snapshot = heatmap.Snapshot{TotalEntries: 1, ActiveDays: 1, CurrentStreak: 1, LongestStreak: 1}
	c := newCache(src)

	if err := wait(t, c.ApplyCreate(note(1, may15, "x"))); err != nil {
		t.Fatal(err)
	}
	snap, ok := c.Heatmap()
	if !ok || snap.TotalEntries != 1 {
		t.Fatalf("Heatmap() = %+v, %v", snap, ok)
	}

	if !c.ApplyUpdate(note(1, may15, "y")) {
		t.Fatal("ApplyUpdate() = false for cached entry")
	}
	if src.heatCalls != 1 {
		t.Fatalf("heatCalls = %d, updates must not refresh", src.heatCalls)
	}

	src.mu.Lock()
	src.snapshot = heatmap.Snapshot{}
	src.mu.Unlock()
	if err := wait(t, c.ApplyDelete(1, may15)); err != nil {
		t.Fatal(err)
	}
	if snap, _ := c.Heatmap(); snap.TotalEntries != 0 {
		t.Fatalf("heatmap did not converge: %+v", snap)
	}
}

func TestApplyUpdateNeverMovesDays(t *testing.T) {
	src := newFakeSource()
	src.set(may1, note(1, may1, "a"))
	c := newCache(src)
	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	if c.ApplyUpdate(note(1, may2, "moved")) {
		t.Fatal("ApplyUpdate() moved an entry across days")
	}
	if got := mustDay(t, c, may1); got[0].Title != "a" {
		t.Fatalf("original bucket changed: %+v", got)
	}
	if got := mustDay(t, c, may2); len(got) != 0 {
		t.Fatalf("target bucket changed: %+v", got)
	}
}

func TestLocalMutationSurvivesOlderRange(t *testing.T) {
	src := newFakeSource()
	src.set(may2, note(1, may2, "server"))
	c := newCache(src)

	gate := make(chan struct{})
	blocking := &blockingRange{fakeSource: src, gate: gate, started: make(chan struct{})}
	c.src = blocking

	done := make(chan error, 1)
	go func() { done <- c.LoadRange(context.Background(), may1) }()
	<-blocking.started
	c.ApplyCreate(note(7, may2, "local"))
	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	got := mustDay(t, c, may2)
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("range overwrote a newer local mutation: %+v", got)
	}
}

type blockingRange struct {
	*fakeSource
	gate    chan struct{}
	started chan struct{}
}

func (b *blockingRange) EntriesByRange(ctx context.Context, start, end timeutil.Date) ([]entry.Entry, error) {
	out, err := b.fakeSource.EntriesByRange(ctx, start, end)
	close(b.started)
	<-b.gate
	return out, err
}

func TestFailedLoadsLeaveStateIntact(t *testing.T) {
	src := newFakeSource()
	src.set(may1, note(1, may1, "a"))
	src.snapshot = heatmap.Snapshot{TotalEntries: 5}
	c := newCache(src)
	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	if err := c.RefreshHeatmap(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := c.Range(may1, may1.LastOfMonth())

	offline := errors.New("offline")
	src.rangeErr, src.dayErr, src.heatErr = offline, offline, offline

	err := c.LoadRange(context.Background(), may1)
	if !errors.Is(err, ErrLoadFailed) || !errors.Is(err, offline) {
		t.Fatalf("LoadRange() = %v, want load failure wrapping offline", err)
	}
	if err := c.SyncDay(context.Background(), may1); !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("SyncDay() = %v", err)
	}
	if err := c.RefreshHeatmap(context.Background()); !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("RefreshHeatmap() = %v", err)
	}

	if diff := cmp.Diff(before, c.Range(may1, may1.LastOfMonth())); diff != "" {
		t.Fatalf("failed loads changed buckets (-before +after):\n%s", diff)
	}
	if snap, ok := c.Heatmap(); !ok || snap.TotalEntries != 5 {
		t.Fatalf("failed refresh replaced snapshot: %+v", snap)
	}

	var failed int
	for {
		select {
		case msg := <-c.Events():
			if _, ok := msg.(events.LoadFailedMsg); ok {
				failed++
			}
			continue
		default:
		}
		break
	}
	if failed != 3 {
		t.Fatalf("LoadFailedMsg count = %d, want 3", failed)
	}
}

func TestOlderHeatmapRefreshDropped(t *testing.T) {
	src := newFakeSource()
	slow := make(chan struct{})
	src.heatGates = []chan struct{}{slow}
	src.snapshot = heatmap.Snapshot{TotalEntries: 1}
	c := newCache(src)

	older := make(chan error, 1)
	go func() { older <- c.RefreshHeatmap(context.Background()) }()
	for {
		src.mu.Lock()
		calls := src.heatCalls
		src.mu.Unlock()
		if calls == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	src.mu.Lock()
	src.snapshot = heatmap.Snapshot{TotalEntries: 2}
	src.mu.Unlock()
	if err := c.RefreshHeatmap(context.Background()); err != nil {
		t.Fatal(err)
	}
	close(slow)
	if err := <-older; err != nil {
		t.Fatal(err)
	}
	// The older request read its snapshot before the change.
	if snap, _ := c.Heatmap(); snap.TotalEntries != 2 {
		t.Fatalf("older refresh overwrote newer: %+v", snap)
	}
}

func TestReset(t *testing.T) {
	src := newFakeSource()
	src.set(may1, note(1, may1, "a"))
	gate := make(chan struct{})
	src.gates[jun3] = gate
	c := newCache(src)
	if err := c.SetMonth(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	if err := c.RefreshHeatmap(context.Background()); err != nil {
		t.Fatal(err)
	}
	l := c.SelectDay(context.Background(), jun3)
	<-src.started

	c.Reset()
	if _, ok := c.Day(may1); ok {
		t.Fatal("bucket survived Reset")
	}
	if _, ok := c.Heatmap(); ok {
		t.Fatal("heatmap survived Reset")
	}
	if !c.Selected().IsZero() || !c.Month().IsZero() {
		t.Fatalf("selection %s / month %s survived Reset", c.Selected(), c.Month())
	}

	close(gate)
	if err := wait(t, l); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Day(jun3); ok {
		t.Fatal("fetch issued before Reset was installed")
	}
	if c.Stats().Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", c.Stats().Dropped)
	}
}

func TestClearSelection(t *testing.T) {
	src := newFakeSource()
	c := newCache(src)
	if err := wait(t, c.SelectDay(context.Background(), may1)); err != nil {
		t.Fatal(err)
	}
	c.ClearSelection()
	if !c.Selected().IsZero() {
		t.Fatalf("Selected() = %s after ClearSelection", c.Selected())
	}
}

func TestReadsAreCopies(t *testing.T) {
	src := newFakeSource()
	src.set(may1, entry.Entry{ID: 1, Date: may1, Type: entry.TypeNote, Tags: []entry.Tag{{Name: "work"}}})
	c := newCache(src)
	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	got := mustDay(t, c, may1)
	got[0].Tags[0].Name = "mutated"
	got[0].Title = "mutated"
	again := mustDay(t, c, may1)
	if again[0].Title == "mutated" || again[0].Tags[0].Name == "mutated" {
		t.Fatal("caller mutation leaked into the cache")
	}
}

func TestDayCounts(t *testing.T) {
	src := newFakeSource()
	src.set(may1, note(1, may1, "a"), note(2, may1, "b"))
	src.set(may2, note(3, may2, "c"))
	c := newCache(src)
	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}
	counts := c.DayCounts(may1, may2)
	want := map[timeutil.Date]int{may1: 2, may2: 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("DayCounts() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetachTag(t *testing.T) {
	src := newFakeSource()
	work := entry.Tag{ID: 7, Name: "work"}
	home := entry.Tag{ID: 8, Name: "home"}
	tagged := note(1, may1, "standup")
	tagged.Tags = []entry.Tag{work, home}
	other := note(2, may2, "groceries")
	other.Tags = []entry.Tag{home}
	src.set(may1, tagged)
	src.set(may2, other)
	c := newCache(src)
	if err := c.LoadRange(context.Background(), may1); err != nil {
		t.Fatal(err)
	}

	if got := c.DetachTag(work.ID); got != 1 {
		t.Fatalf("DetachTag() = %d, want 1", got)
	}
	got, _ := c.Entry(may1, 1)
	if diff := cmp.Diff([]entry.Tag{home}, got.Tags); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}
	if got := c.DetachTag(work.ID); got != 0 {
		t.Fatalf("second DetachTag() = %d, want 0", got)
	}
	if got, _ := c.Entry(may2, 2); len(got.Tags) != 1 {
		t.Fatalf("unrelated entry changed: %+v", got.Tags)
	}
}
