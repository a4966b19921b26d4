package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/logbook/pkg/entry"
)

type fakeTimer struct {
	mu      *sync.Mutex
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// manualClock records scheduled callbacks so tests decide when they fire.
type manualClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{mu: &c.mu, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every timer that has not been stopped.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	var live []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			live = append(live, t)
		}
	}
	c.mu.Unlock()
	for _, t := range live {
		t.f()
	}
}

type call struct {
	query string
	reply chan reply
}

type reply struct {
	entries []entry.Entry
	err     error
}

// gatedSearcher blocks every request until the test replies to it.
type gatedSearcher struct {
	calls chan call
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{calls: make(chan call, 16)}
}

func (s *gatedSearcher) Search(ctx context.Context, query string) ([]entry.Entry, error) {
	c := call{query: query, reply: make(chan reply, 1)}
	s.calls <- c
	select {
	case r := <-c.reply:
		return r.entries, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *gatedSearcher) next(t *testing.T) call {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search request")
		return call{}
	}
}

func (s *gatedSearcher) expectNone(t *testing.T) {
	t.Helper()
	select {
	case c := <-s.calls:
		t.Fatalf("unexpected search request for %q", c.query)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitState(t *testing.T, p *Pipeline, want State) Result {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case r := <-p.Results():
			if r.State == want {
				return r
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s (now %s)", want, p.State())
			return Result{}
		}
	}
}

func newPipeline(src Searcher) (*Pipeline, *manualClock) {
	clock := &manualClock{}
	return New(src, Options{AfterFunc: clock.AfterFunc}), clock
}

func TestTypingWithinWindowIssuesOneRequest(t *testing.T) {
	src := newGatedSearcher()
	p, clock := newPipeline(src)
	defer p.Close()

	p.Type("a")
	p.Type("ab")
	if got := p.State(); got != Debouncing {
		t.Fatalf("State() = %s, want debouncing", got)
	}
	clock.fireAll()

	c := src.next(t)
	if c.query != "ab" {
		t.Fatalf("searched %q, want %q", c.query, "ab")
	}
	src.expectNone(t)
	c.reply <- reply{entries: []entry.Entry{{ID: 1, Title: "abc"}}}

	res := waitState(t, p, Resolved)
	if res.Query != "ab" || len(res.Entries) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := p.Stats().Requests; got != 1 {
		t.Fatalf("Requests = %d, want 1", got)
	}
}

func TestClearBeforeFireIssuesNothing(t *testing.T) {
	src := newGatedSearcher()
	p, clock := newPipeline(src)
	defer p.Close()

	p.Type("standup")
	p.Clear()
	clock.fireAll()
	src.expectNone(t)
	if got := p.State(); got != Idle {
		t.Fatalf("State() = %s, want idle", got)
	}
}

func TestBlankQueryStaysIdle(t *testing.T) {
	src := newGatedSearcher()
	p, clock := newPipeline(src)
	defer p.Close()

	p.Type("   ")
	clock.fireAll()
	src.expectNone(t)
	if got := p.Snapshot(); got.State != Idle || got.Query != "   " {
		t.Fatalf("Snapshot() = %+v", got)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	src := newGatedSearcher()
	p, clock := newPipeline(src)
	defer p.Close()

	p.Type("run")
	clock.fireAll()
	first := src.next(t)

	p.Type("running")
	clock.fireAll()
	second := src.next(t)

	second.reply <- reply{entries: []entry.Entry{{ID: 2, Title: "running club"}}}
	res := waitState(t, p, Resolved)
	if res.Query != "running" {
		t.Fatalf("resolved query %q", res.Query)
	}

	first.reply <- reply{entries: []entry.Entry{{ID: 1, Title: "run"}}}
	deadline := time.Now().Add(2 * time.Second)
	for p.Stats().Dropped == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stale response was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	snap := p.Snapshot()
	if snap.Query != "running" || len(snap.Entries) != 1 || snap.Entries[0].ID != 2 {
		t.Fatalf("stale response leaked into %+v", snap)
	}
}

func TestInFlightResultDroppedAfterNewKeystroke(t *testing.T) {
	src := newGatedSearcher()
	p, clock := newPipeline(src)
	defer p.Close()

	p.Type("gym")
	clock.fireAll()
	c := src.next(t)

	p.Type("gym ")
	c.reply <- reply{entries: []entry.Entry{{ID: 1}}}
	deadline := time.Now().Add(2 * time.Second)
	for p.Stats().Dropped == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stale response was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := p.State(); got != Debouncing {
		t.Fatalf("State() = %s, want debouncing", got)
	}
}

func TestFailure(t *testing.T) {
	src := newGatedSearcher()
	p, clock := newPipeline(src)
	defer p.Close()

	p.Type("x")
	clock.fireAll()
	c := src.next(t)
	boom := errors.New("boom")
	c.reply <- reply{err: boom}

	res := waitState(t, p, Failed)
	if !errors.Is(res.Err, boom) {
		t.Fatalf("Err = %v, want wrapping %v", res.Err, boom)
	}
	if res.Entries != nil {
		t.Fatalf("failed result carried entries: %+v", res.Entries)
	}
}

func TestCloseCancelsInFlight(t *testing.T) {
	src := newGatedSearcher()
	p, clock := newPipeline(src)

	p.Type("late")
	clock.fireAll()
	src.next(t)

	done := make(chan struct{})
	go func() {
		p.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	p.Type("after close")
	if got := p.Query(); got != "late" {
		t.Fatalf("Query() = %q after close", got)
	}
}

func TestRealTimerDebounce(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	src := SearcherFunc(func(_ context.Context, q string) ([]entry.Entry, error) {
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		return nil, nil
	})
	p := New(src, Options{Delay: 20 * time.Millisecond})
	defer p.Close()

	p.Type("h")
	p.Type("he")
	p.Type("hello")
	waitState(t, p, Resolved)

	mu.Lock()
	defer mu.Unlock()
	if len(queries) != 1 || queries[0] != "hello" {
		t.Fatalf("queries = %q, want [hello]", queries)
	}
}
