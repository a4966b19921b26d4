package cache

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/events"
	"tableflip.dev/logbook/pkg/heatmap"
	"tableflip.dev/logbook/pkg/timeutil"
)

// Source is the read side of the entry and stat services.
type Source interface {
	EntriesByDate(ctx context.Context, d timeutil.Date) ([]entry.Entry, error)
	EntriesByRange(ctx context.Context, start, end timeutil.Date) ([]entry.Entry, error)
	Heatmap(ctx context.Context, start, end timeutil.Date) (heatmap.Snapshot, error)
}

// Options configure a Cache.
type Options struct {
	// Component tags emitted events. Defaults to "cache".
	Component events.ComponentID
	// Window is the heatmap length in days.
	Window    int
	WeekStart time.Weekday
	// Location resolves "today". Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
	Log      *log.Logger
}

// bucket is the complete entry list of one day. written is the sequence of
// the last install or mutation, mutated the sequence of the last local
// mutation. A provisional bucket was created by a local insert into a day that
// was never fetched, so it may be missing entries; removed records the ids
// deleted from it so a later fetch cannot resurrect them.
type bucket struct {
	entries     []entry.Entry
	written     uint64
	mutated     uint64
	provisional bool
	removed     map[int64]bool
}

// Cache owns the per-day entry buckets and the heatmap snapshot. State lives
// locally, consumers subscribe to Events and read cloned values without
// hitting the backend. Asynchronous responses are ordered with a sequence
// stamped on every issued request and every bucket write.
type Cache struct {
	component events.ComponentID
	src       Source
	window    int
	weekStart time.Weekday
	loc       *time.Location
	now       func() time.Time
	log       *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.RWMutex

	seq      uint64
	epoch    uint64
	buckets  map[timeutil.Date]*bucket
	inflight map[timeutil.Date]*Load
	selected timeutil.Date
	month    timeutil.Date

	snapshot      *heatmap.Snapshot
	heatmapIssued uint64

	loading  int
	requests int
	dropped  int

	eventCh chan events.Msg
}

// New creates an empty cache reading from src.
func New(src Source, opts Options) *Cache {
	if opts.Component == "" {
		opts.Component = events.ComponentID("cache")
	}
	if opts.Window <= 0 {
		opts.Window = heatmap.DefaultWindow
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = log.New(io.Discard, "", 0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		component: opts.Component,
		src:       src,
		window:    opts.Window,
		weekStart: opts.WeekStart,
		loc:       opts.Location,
		now:       opts.Now,
		log:       opts.Log,
		ctx:       ctx,
		cancel:    cancel,
		buckets:   make(map[timeutil.Date]*bucket),
		inflight:  make(map[timeutil.Date]*Load),
		eventCh:   make(chan events.Msg, 64),
	}
}

// Events exposes the cache event channel. Events are dropped when the
// consumer falls behind; reads always reflect the latest state.
func (c *Cache) Events() <-chan events.Msg {
	return c.eventCh
}

// Close cancels background fetches. The cache stays readable.
func (c *Cache) Close() {
	c.cancel()
}

// Reset drops every bucket, the selection, the visible month and the heatmap.
// Responses to requests issued before Reset are discarded.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.buckets = make(map[timeutil.Date]*bucket)
	c.inflight = make(map[timeutil.Date]*Load)
	c.selected = timeutil.Date{}
	c.month = timeutil.Date{}
	c.snapshot = nil
	c.heatmapIssued = 0
	c.loading = 0
}

// Today returns the current day in the cache's location.
func (c *Cache) Today() timeutil.Date {
	return timeutil.Today(c.now(), c.loc)
}

// WeekStart returns the configured first day of the week.
func (c *Cache) WeekStart() time.Weekday {
	return c.weekStart
}

// Window returns the heatmap length in days.
func (c *Cache) Window() int {
	return c.window
}

// Day returns a copy of the bucket for d and whether one is cached.
func (c *Cache) Day(d timeutil.Date) ([]entry.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.buckets[d]
	if !ok {
		return nil, false
	}
	return cloneEntries(b.entries), true
}

// Entry returns the cached entry id on day d.
func (c *Cache) Entry(d timeutil.Date, id int64) (entry.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.buckets[d]
	if !ok {
		return entry.Entry{}, false
	}
	if i := indexOf(b.entries, id); i >= 0 {
		return b.entries[i].Clone(), true
	}
	return entry.Entry{}, false
}

// Find locates a cached entry by id alone.
func (c *Cache) Find(id int64) (entry.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.buckets {
		if i := indexOf(b.entries, id); i >= 0 {
			return b.entries[i].Clone(), true
		}
	}
	return entry.Entry{}, false
}

// Selected returns the active day, zero when nothing is selected.
func (c *Cache) Selected() timeutil.Date {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Month returns the first day of the visible month, zero before SetMonth.
func (c *Cache) Month() timeutil.Date {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.month
}

// Heatmap returns a copy of the last applied snapshot.
func (c *Cache) Heatmap() (heatmap.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return heatmap.Snapshot{}, false
	}
	return c.snapshot.Clone(), true
}

// DayCounts returns the number of cached entries for every cached day in
// [from, to].
func (c *Cache) DayCounts(from, to timeutil.Date) map[timeutil.Date]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[timeutil.Date]int)
	for d, b := range c.buckets {
		if d.Before(from) || d.After(to) {
			continue
		}
		out[d] = len(b.entries)
	}
	return out
}

// Range returns copies of every cached entry in [from, to] keyed by day.
func (c *Cache) Range(from, to timeutil.Date) map[timeutil.Date][]entry.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[timeutil.Date][]entry.Entry)
	for d, b := range c.buckets {
		if d.Before(from) || d.After(to) {
			continue
		}
		out[d] = cloneEntries(b.entries)
	}
	return out
}

// Loading reports whether any fetch is outstanding.
func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

// Stats counts issued requests and responses discarded as stale.
type Stats struct {
	Requests int
	Dropped  int
	Buckets  int
}

// Stats returns the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Requests: c.requests, Dropped: c.dropped, Buckets: len(c.buckets)}
}

// SelectDay marks d as active. The selection takes effect immediately. When
// no complete bucket exists for d a fetch is started and its Load returned;
// otherwise the returned Load is already done. A fetch already in flight for
// d is shared.
func (c *Cache) SelectDay(ctx context.Context, d timeutil.Date) *Load {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = d
	c.emit(events.SelectionMsg{Component: c.component, Date: d})
	if b, ok := c.buckets[d]; ok && !b.provisional {
		return doneLoad(nil)
	}
	if l, ok := c.inflight[d]; ok {
		return l
	}
	return c.fetchDayLocked(ctx, d)
}

// ClearSelection closes the day panel.
func (c *Cache) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = timeutil.Date{}
	c.emit(events.SelectionMsg{Component: c.component})
}

// ApplyCreate appends e to its day and starts the heatmap refresh that
// follows every create. The returned Load tracks that refresh.
func (c *Cache) ApplyCreate(e entry.Entry) *Load {
	c.mu.Lock()
	b, ok := c.buckets[e.Date]
	if !ok {
		b = &bucket{provisional: true}
		c.buckets[e.Date] = b
	}
	if i := indexOf(b.entries, e.ID); i >= 0 {
		b.entries[i] = e.Clone()
	} else {
		b.entries = append(b.entries, e.Clone())
	}
	delete(b.removed, e.ID)
	c.markMutatedLocked(b)
	c.emit(events.DayChangeMsg{Component: c.component, Action: events.ChangeCreate, Date: e.Date, EntryID: e.ID, Count: len(b.entries)})
	c.mu.Unlock()
	return c.refreshAsync()
}

// ApplyUpdate replaces the entry with e.ID inside e.Date's bucket. It never
// moves entries between days and reports false when e is not cached under
// e.Date. Updates cannot change counts, so no heatmap refresh follows.
func (c *Cache) ApplyUpdate(e entry.Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buckets[e.Date]
	if !ok {
		return false
	}
	i := indexOf(b.entries, e.ID)
	if i < 0 {
		return false
	}
	b.entries[i] = e.Clone()
	c.markMutatedLocked(b)
	c.emit(events.DayChangeMsg{Component: c.component, Action: events.ChangeUpdate, Date: e.Date, EntryID: e.ID, Count: len(b.entries)})
	return true
}

// ApplyDelete removes id from d's bucket and starts the heatmap refresh that
// follows every delete.
func (c *Cache) ApplyDelete(id int64, d timeutil.Date) *Load {
	c.mu.Lock()
	if b, ok := c.buckets[d]; ok {
		if i := indexOf(b.entries, id); i >= 0 {
			b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
			c.markMutatedLocked(b)
			if b.provisional {
				if b.removed == nil {
					b.removed = make(map[int64]bool)
				}
				b.removed[id] = true
				if _, fetching := c.inflight[d]; len(b.entries) == 0 && !fetching {
					delete(c.buckets, d)
				}
			}
			c.emit(events.DayChangeMsg{Component: c.component, Action: events.ChangeDelete, Date: d, EntryID: id, Count: len(b.entries)})
		}
	}
	c.mu.Unlock()
	return c.refreshAsync()
}

// DetachTag removes tag id from every cached entry and returns how many
// entries changed. Counts are unaffected, so no heatmap refresh follows.
func (c *Cache) DetachTag(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := 0
	for d, b := range c.buckets {
		touched := false
		for i := range b.entries {
			tags := b.entries[i].Tags
			kept := make([]entry.Tag, 0, len(tags))
			for _, t := range tags {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			if len(kept) == len(tags) {
				continue
			}
			b.entries[i].Tags = kept
			touched = true
			changed++
		}
		if touched {
			c.markMutatedLocked(b)
			c.emit(events.DayChangeMsg{Component: c.component, Action: events.ChangeUpdate, Date: d, Count: len(b.entries)})
		}
	}
	return changed
}

func (c *Cache) markMutatedLocked(b *bucket) {
	c.seq++
	b.written = c.seq
	b.mutated = c.seq
}

func (c *Cache) emit(msg events.Msg) {
	select {
	case c.eventCh <- msg:
	default:
	}
}

func indexOf(entries []entry.Entry, id int64) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneEntries(in []entry.Entry) []entry.Entry {
	out := make([]entry.Entry, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
