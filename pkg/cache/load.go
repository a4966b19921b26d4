package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrLoadFailed is matched by every LoadError.
var ErrLoadFailed = errors.New("cache: load failed")

// LoadError reports a failed read. Cached state is left untouched; retrying
// is always safe.
type LoadError struct {
	Kind string
	What string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cache: load %s %s: %v", e.Kind, e.What, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrLoadFailed) match any LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// Load tracks an asynchronous fetch. A nil *Load is treated as done.
type Load struct {
	done chan struct{}
	err  error
}

func newLoad() *Load {
	return &Load{done: make(chan struct{})}
}

func doneLoad(err error) *Load {
	l := newLoad()
	l.finish(err)
	return l
}

func (l *Load) finish(err error) {
	l.err = err
	close(l.done)
}

// Done is closed once the fetch has been applied, dropped or has failed.
func (l *Load) Done() <-chan struct{} {
	if l == nil {
		return closed
	}
	return l.done
}

// Err returns the failure of a finished load, nil while running.
func (l *Load) Err() error {
	if l == nil {
		return nil
	}
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Wait blocks until the load finishes or ctx is done.
func (l *Load) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-l.done:
		return l.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var closed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
