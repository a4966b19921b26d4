// Package glyph maps entry types and moods to the symbols shown in terminals.
package glyph

import (
	"fmt"

	"tableflip.dev/logbook/pkg/entry"
)

type Glyph struct {
	Key     string
	Symbol  string
	Meaning string
	// Color is a 256-color palette index used by lipgloss renderers.
	Color string
}

const (
	escape     = "\x1b"
	resetCode  = 0
	boldCode   = 1
	strikeCode = 9
)

func Strike(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, strikeCode, in, escape, resetCode)
}

func Bold(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, boldCode, in, escape, resetCode)
}

// DefaultGlyphs returns the symbol of every entry type in display order.
func DefaultGlyphs() []Glyph {
	return []Glyph{
		{Key: "-", Symbol: "⁃", Meaning: "note", Color: "252"},
		{Key: "s", Symbol: "✦", Meaning: "skill", Color: "141"},
		{Key: "+", Symbol: "●", Meaning: "action", Color: "39"},
		{Key: "o", Symbol: "○", Meaning: "event", Color: "214"},
		{Key: "c", Symbol: "⎇", Meaning: "commit", Color: "108"},
		{Key: "g", Symbol: "★", Meaning: "goal", Color: "220"},
	}
}

// Completed marks a finished action.
var Completed = Glyph{Key: "x", Symbol: "✘", Meaning: "action completed", Color: "244"}

func (g Glyph) String() string {
	return g.Symbol
}

// For returns the glyph of an entry type. Unknown types get a blank glyph.
func For(t entry.Type) Glyph {
	for i, known := range entry.Types() {
		if known == t {
			return DefaultGlyphs()[i]
		}
	}
	return Glyph{Symbol: " ", Meaning: "unknown"}
}

// Bullet is the symbol printed in front of an entry. Completed actions use the
// completion glyph.
func Bullet(e entry.Entry) Glyph {
	if e.Type == entry.TypeAction && e.Completed() {
		return Completed
	}
	return For(e.Type)
}

var moods = []string{"", "😞", "😕", "😐", "🙂", "😄"}

// Mood renders a 1-5 mood rating as a face. Zero means no mood.
func Mood(m int) string {
	if m <= 0 || m >= len(moods) {
		return ""
	}
	return moods[m]
}
