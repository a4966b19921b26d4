// Package search implements the debounced entry search used by the journal
// views. Every keystroke bumps a generation counter; a response is only
// published while its generation is still current.
package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"tableflip.dev/logbook/pkg/entry"
)

// DefaultDelay is how long the pipeline waits for typing to settle.
const DefaultDelay = 300 * time.Millisecond

// Searcher runs a query against the entry service.
type Searcher interface {
	Search(ctx context.Context, query string) ([]entry.Entry, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string) ([]entry.Entry, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]entry.Entry, error) {
	return f(ctx, query)
}

// State is the pipeline phase.
type State int

const (
	Idle State = iota
	Debouncing
	Pending
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is a published view of the pipeline.
type Result struct {
	Generation uint64
	Query      string
	State      State
	Entries    []entry.Entry
	Err        error
}

// Timer is the part of *time.Timer the pipeline relies on.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options configure a Pipeline.
type Options struct {
	Delay     time.Duration
	AfterFunc AfterFunc
	Log       *log.Logger
	// Buffer is the capacity of the Results channel.
	Buffer int
}

// Pipeline is a debounced, stale-safe query dispatcher. It is safe for
// concurrent use.
type Pipeline struct {
	src       Searcher
	delay     time.Duration
	afterFunc AfterFunc
	log       *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	gen      uint64
	current  Result
	timer    Timer
	requests int
	dropped  int
	closed   bool
	out      chan Result
}

// New returns an idle pipeline over src.
func New(src Searcher, opts Options) *Pipeline {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.Log == nil {
		opts.Log = log.New(io.Discard, "", 0)
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 32
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		src:       src,
		delay:     opts.Delay,
		afterFunc: opts.AfterFunc,
		log:       opts.Log,
		ctx:       ctx,
		cancel:    cancel,
		out:       make(chan Result, opts.Buffer),
	}
}

// Results streams every state transition. Slow readers miss intermediate
// states; Snapshot always reflects the latest one.
func (p *Pipeline) Results() <-chan Result {
	return p.out
}

// Type records q as the live query and restarts the debounce timer. A blank
// query returns the pipeline to Idle without scheduling anything.
func (p *Pipeline) Type(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.gen++
	p.stopTimerLocked()

	if strings.TrimSpace(q) == "" {
		p.setLocked(Result{Generation: p.gen, Query: q, State: Idle})
		return
	}

	gen := p.gen
	p.setLocked(Result{Generation: gen, Query: q, State: Debouncing})
	p.timer = p.afterFunc(p.delay, func() { p.fire(gen) })
}

// Clear empties the query, cancelling any pending timer.
func (p *Pipeline) Clear() {
	p.Type("")
}

// State returns the current phase.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.State
}

// Query returns the live query string.
func (p *Pipeline) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Query
}

// Snapshot returns a copy of the current result.
func (p *Pipeline) Snapshot() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneResult(p.current)
}

// Stats reports counters for logging and tests.
type Stats struct {
	Requests int
	Dropped  int
}

// Stats returns how many requests were issued and how many responses were
// discarded as stale.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Requests: p.requests, Dropped: p.dropped}
}

// Close stops the timer, cancels in-flight requests and closes Results once
// they return.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopTimerLocked()
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	close(p.out)
}

func (p *Pipeline) fire(gen uint64) {
	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	query := strings.TrimSpace(p.current.Query)
	p.requests++
	p.setLocked(Result{Generation: gen, Query: p.current.Query, State: Pending})
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		entries, err := p.src.Search(p.ctx, query)
		p.resolve(gen, entries, err)
	}()
}

func (p *Pipeline) resolve(gen uint64, entries []entry.Entry, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.gen {
		p.dropped++
		p.log.Printf("search: dropped stale response for generation %d (current %d)", gen, p.gen)
		return
	}
	res := Result{Generation: gen, Query: p.current.Query, State: Resolved, Entries: entries}
	if err != nil {
		res.State = Failed
		res.Entries = nil
		res.Err = fmt.Errorf("search: %q: %w", strings.TrimSpace(res.Query), err)
		p.log.Print(res.Err)
	}
	p.setLocked(res)
}

func (p *Pipeline) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pipeline) setLocked(r Result) {
	p.current = r
	select {
	case p.out <- cloneResult(r):
	default:
	}
}

func cloneResult(r Result) Result {
	if r.Entries != nil {
		entries := make([]entry.Entry, len(r.Entries))
		for i, e := range r.Entries {
			entries[i] = e.Clone()
		}
		r.Entries = entries
	}
	return r
}
