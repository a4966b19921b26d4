package cache

import (
	"context"

	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/events"
	"tableflip.dev/logbook/pkg/timeutil"
)

// SyncDay refetches d authoritatively whether or not it is cached and waits
// for the result. It is used when storage reports an outside write.
func (c *Cache) SyncDay(ctx context.Context, d timeutil.Date) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	l := c.fetchDayLocked(ctx, d)
	c.mu.Unlock()
	return l.Wait(ctx)
}

// fetchDayLocked issues a single-day fetch. The response is installed unless
// a complete bucket was written after the request was issued. Local writes to
// a provisional bucket are layered over the response.
func (c *Cache) fetchDayLocked(ctx context.Context, d timeutil.Date) *Load {
	if ctx == nil {
		ctx = c.ctx
	}
	c.seq++
	issue, epoch := c.seq, c.epoch
	l := newLoad()
	c.inflight[d] = l
	c.loading++
	c.requests++

	go func() {
		entries, err := c.src.EntriesByDate(ctx, d)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.inflight[d] == l {
			delete(c.inflight, d)
		}
		if epoch != c.epoch {
			c.dropped++
			l.finish(nil)
			return
		}
		c.loading--
		if err != nil {
			lerr := &LoadError{Kind: string(events.LoadDay), What: d.String(), Err: err}
			c.log.Print(lerr)
			c.emit(events.LoadFailedMsg{Component: c.component, Kind: events.LoadDay, From: d, To: d, Err: lerr})
			l.finish(lerr)
			return
		}
		if b, ok := c.buckets[d]; ok && b.written > issue {
			if !b.provisional {
				c.dropped++
				c.log.Printf("cache: dropped stale day %s (issued %d, bucket %d)", d, issue, b.written)
				l.finish(nil)
				return
			}
			// A provisional bucket only holds local writes, so the response is
			// still the sole source for the rest of the day.
			entries = mergeProvisional(entries, b)
			c.log.Printf("cache: merged %d local entries into day %s", len(b.entries), d)
		}
		c.installLocked(d, entries)
		c.emit(events.DayChangeMsg{Component: c.component, Action: events.ChangeLoad, Date: d, Count: len(entries)})
		l.finish(nil)
	}()
	return l
}

// SetMonth records the visible month and loads it.
func (c *Cache) SetMonth(ctx context.Context, anchor timeutil.Date) error {
	c.mu.Lock()
	c.month = anchor.FirstOfMonth()
	c.mu.Unlock()
	return c.LoadRange(ctx, anchor)
}

// LoadRange fetches the month containing anchor in one request and installs a
// bucket for every day of it, empty days included. Days written by a local
// mutation after the request was issued keep their local state; every other
// day takes the response, regardless of earlier single-day fetches.
func (c *Cache) LoadRange(ctx context.Context, anchor timeutil.Date) error {
	if ctx == nil {
		ctx = context.Background()
	}
	first, last := anchor.FirstOfMonth(), anchor.LastOfMonth()

	c.mu.Lock()
	c.seq++
	issue, epoch := c.seq, c.epoch
	c.loading++
	c.requests++
	c.mu.Unlock()

	entries, err := c.src.EntriesByRange(ctx, first, last)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		c.dropped++
		return nil
	}
	c.loading--
	if err != nil {
		lerr := &LoadError{Kind: string(events.LoadRange), What: first.String() + ".." + last.String(), Err: err}
		c.log.Print(lerr)
		c.emit(events.LoadFailedMsg{Component: c.component, Kind: events.LoadRange, From: first, To: last, Err: lerr})
		return lerr
	}

	grouped := make(map[timeutil.Date][]entry.Entry)
	for _, e := range entries {
		if e.Date.Before(first) || e.Date.After(last) {
			continue
		}
		grouped[e.Date] = append(grouped[e.Date], e)
	}
	installed := 0
	for _, d := range timeutil.Range(first, last) {
		if b, ok := c.buckets[d]; ok && b.mutated > issue {
			c.dropped++
			c.log.Printf("cache: kept local changes on %s over range issued at %d", d, issue)
			continue
		}
		c.installLocked(d, grouped[d])
		installed += len(grouped[d])
	}
	c.emit(events.MonthLoadedMsg{Component: c.component, Month: first, Entries: installed})
	return nil
}

// RefreshHeatmap replaces the snapshot with the trailing window ending today.
// A response is discarded when a refresh issued later has already been
// applied; a failure keeps the previous snapshot.
func (c *Cache) RefreshHeatmap(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	end := c.Today()
	start := end.AddDays(-(c.window - 1))

	c.mu.Lock()
	c.seq++
	issue, epoch := c.seq, c.epoch
	c.loading++
	c.requests++
	c.mu.Unlock()

	snap, err := c.src.Heatmap(ctx, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		c.dropped++
		return nil
	}
	c.loading--
	if err != nil {
		lerr := &LoadError{Kind: string(events.LoadHeatmap), What: start.String() + ".." + end.String(), Err: err}
		c.log.Print(lerr)
		c.emit(events.LoadFailedMsg{Component: c.component, Kind: events.LoadHeatmap, From: start, To: end, Err: lerr})
		return lerr
	}
	if c.heatmapIssued > issue {
		c.dropped++
		return nil
	}
	snap = snap.Clone()
	c.snapshot = &snap
	c.heatmapIssued = issue
	c.emit(events.HeatmapChangeMsg{Component: c.component, Total: snap.TotalEntries, Current: snap.CurrentStreak, Longest: snap.LongestStreak})
	return nil
}

func (c *Cache) refreshAsync() *Load {
	l := newLoad()
	go func() {
		l.finish(c.RefreshHeatmap(c.ctx))
	}()
	return l
}

func (c *Cache) installLocked(d timeutil.Date, entries []entry.Entry) {
	c.seq++
	c.buckets[d] = &bucket{entries: cloneEntries(entries), written: c.seq}
}

// mergeProvisional overlays the local writes of a provisional bucket on a
// fetched day: local versions replace fetched ones, local creates missing from
// the response are appended and entries deleted locally stay deleted.
func mergeProvisional(fetched []entry.Entry, b *bucket) []entry.Entry {
	out := make([]entry.Entry, 0, len(fetched)+len(b.entries))
	seen := make(map[int64]bool, len(fetched))
	for _, e := range fetched {
		if b.removed[e.ID] {
			continue
		}
		seen[e.ID] = true
		if i := indexOf(b.entries, e.ID); i >= 0 {
			e = b.entries[i]
		}
		out = append(out, e)
	}
	for _, e := range b.entries {
		if !seen[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
