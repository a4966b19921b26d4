package store

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/logbook/pkg/entry"
)

func TestWatchEmitsDayChanges(t *testing.T) {
	s := openTest(t)
	// Create the day directory first so the watcher subscribes to it.
	mustCreate(t, s, entry.CreateRequest{Title: "seed", Date: may1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	mustCreate(t, s, entry.CreateRequest{Title: "hello world", Date: may1})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventInvalidated {
				return
			}
			if evt.Type == EventDayChanged {
				if evt.Date != may1 {
					t.Fatalf("expected day %s, got %s", may1, evt.Date)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for day change event")
		}
	}
}

func TestEventForPath(t *testing.T) {
	s := openTest(t)
	tests := map[string]struct {
		rel  string
		want Event
		ok   bool
	}{
		"entry file": {rel: "entry/2024-05-02/7", want: Event{Type: EventDayChanged, Date: may2}, ok: true},
		"goal":       {rel: "goal/3", want: Event{Type: EventGoalsChanged}, ok: true},
		"index":      {rel: indexFile, ok: false},
		"bad date":   {rel: "entry/tomorrow/1", ok: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := s.eventForPath(s.BasePath() + "/" + tc.rel)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("eventForPath(%q) = %+v, %v", tc.rel, got, ok)
			}
		})
	}
}
