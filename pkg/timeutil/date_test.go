package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateArithmetic(t *testing.T) {
	d := MustParseDate("2024-02-28")
	if got := d.AddDays(1).String(); got != "2024-02-29" {
		t.Fatalf("leap day: got %s", got)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Fatalf("month rollover: got %s", got)
	}
	if got := d.LastOfMonth().Day; got != 29 {
		t.Fatalf("expected 29 days in Feb 2024, got %d", got)
	}
	if got := MustParseDate("2024-01-31").AddMonths(1).String(); got != "2024-02-01" {
		t.Fatalf("AddMonths should anchor to the first: got %s", got)
	}
	if got := d.DaysUntil(MustParseDate("2024-03-05")); got != 6 {
		t.Fatalf("DaysUntil: got %d", got)
	}
	if got := MustParseDate("2024-03-05").DaysUntil(d); got != -6 {
		t.Fatalf("negative DaysUntil: got %d", got)
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2024, 6, 30, 20, 0, 0, 0, time.UTC)
	if got := Today(instant, tokyo).String(); got != "2024-07-01" {
		t.Fatalf("expected 2024-07-01 in JST, got %s", got)
	}
	if got := Today(instant, time.UTC).String(); got != "2024-06-30" {
		t.Fatalf("expected 2024-06-30 in UTC, got %s", got)
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2024-05-01 is a Wednesday.
	d := MustParseDate("2024-05-01")
	if got := StartOfWeek(d, time.Sunday).String(); got != "2024-04-28" {
		t.Fatalf("sunday start: got %s", got)
	}
	if got := StartOfWeek(d, time.Monday).String(); got != "2024-04-29" {
		t.Fatalf("monday start: got %s", got)
	}
	if got := EndOfWeek(d, time.Sunday).String(); got != "2024-05-04" {
		t.Fatalf("sunday end: got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		On   Date `json:"on"`
		Miss Date `json:"miss"`
	}
	if err := json.Unmarshal([]byte(`{"on":"2024-05-01T10:00:00Z","miss":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.On.String() != "2024-05-01" || !v.Miss.IsZero() {
		t.Fatalf("unexpected decode: %+v", v)
	}
	b, err := json.Marshal(v.On)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-05-01"` {
		t.Fatalf("unexpected encode: %s", b)
	}
}

func TestRange(t *testing.T) {
	days := Range(MustParseDate("2024-12-30"), MustParseDate("2025-01-02"))
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	if Range(MustParseDate("2025-01-02"), MustParseDate("2024-12-30")) != nil {
		t.Fatalf("expected nil for inverted range")
	}
}
