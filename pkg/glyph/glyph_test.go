package glyph

import (
	"strings"
	"testing"

	"tableflip.dev/logbook/pkg/entry"
)

func TestEveryTypeHasGlyph(t *testing.T) {
	if got, want := len(DefaultGlyphs()), len(entry.Types()); got != want {
		t.Fatalf("expected %d glyphs, got %d", want, got)
	}
	seen := map[string]bool{}
	for _, typ := range entry.Types() {
		g := For(typ)
		if g.Meaning != strings.ToLower(string(typ)) {
			t.Fatalf("glyph for %s has meaning %q", typ, g.Meaning)
		}
		if seen[g.Symbol] {
			t.Fatalf("duplicate symbol %q", g.Symbol)
		}
		seen[g.Symbol] = true
	}
}

func TestBullet(t *testing.T) {
	open := entry.Entry{Type: entry.TypeAction, Payload: entry.ActionPayload{}}
	done := entry.Entry{Type: entry.TypeAction, Payload: entry.ActionPayload{Completed: true}}
	if Bullet(open).Symbol != For(entry.TypeAction).Symbol {
		t.Fatalf("open action got %q", Bullet(open))
	}
	if Bullet(done) != Completed {
		t.Fatalf("completed action got %q", Bullet(done))
	}
}

func TestMood(t *testing.T) {
	for m, want := range map[int]string{0: "", 1: "😞", 5: "😄", 6: ""} {
		if got := Mood(m); got != want {
			t.Fatalf("Mood(%d) = %q, want %q", m, got, want)
		}
	}
}
