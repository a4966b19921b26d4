package app

import (
	"context"

	"tableflip.dev/logbook/pkg/events"
	"tableflip.dev/logbook/pkg/store"
)

// Watcher is implemented by backends that can report outside writes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan store.Event, error)
}

// Follow keeps the cache in step with outside writes to a watchable backend.
// Each change is resynced before a StoreChangeMsg is sent on the returned
// channel, which is closed when ctx is done. Backends that cannot be watched
// return a nil channel.
func (s *Service) Follow(ctx context.Context) (<-chan events.Msg, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	w, ok := s.Backend.(Watcher)
	if !ok {
		return nil, nil
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan events.Msg, 16)
	go func() {
		defer close(out)
		for ev := range changes {
			msg := s.resync(ctx, ev)
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *Service) resync(ctx context.Context, ev store.Event) events.Msg {
	switch ev.Type {
	case store.EventDayChanged:
		// Load failures reach the UI through the cache's own event stream.
		_ = s.Cache.SyncDay(ctx, ev.Date)
		_ = s.Cache.RefreshHeatmap(ctx)
		return events.StoreChangeMsg{Component: "store", Date: ev.Date}
	case store.EventInvalidated:
		month := s.Cache.Month()
		selected := s.Cache.Selected()
		s.Cache.Reset()
		if !month.IsZero() {
			_ = s.Cache.SetMonth(ctx, month)
		}
		if !selected.IsZero() {
			_ = s.Cache.SelectDay(ctx, selected).Wait(ctx)
		}
		_ = s.Cache.RefreshHeatmap(ctx)
	}
	return events.StoreChangeMsg{Component: "store", All: true}
}
