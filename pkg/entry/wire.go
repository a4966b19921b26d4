package entry

import (
	"encoding/json"
	"fmt"
	"time"

	"tableflip.dev/logbook/pkg/timeutil"
)

// wireEntry is the flat shape exchanged with the journal backend.
type wireEntry struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Content        *string         `json:"content"`
	EntryType      Type            `json:"entryType"`
	EntryDate      timeutil.Date   `json:"entryDate"`
	StartTime      *string         `json:"startTime"`
	EndTime        *string         `json:"endTime"`
	IsCompleted    bool            `json:"isCompleted"`
	Mood           *int            `json:"mood"`
	Tags           []Tag           `json:"tags"`
	SourceMetadata json.RawMessage `json:"sourceMetadata,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	w := wireEntry{
		ID:        e.ID,
		Title:     e.Title,
		EntryType: e.Type,
		EntryDate: e.Date,
		Tags:      e.Tags,
	}
	if w.Tags == nil {
		w.Tags = []Tag{}
	}
	if e.Content != "" {
		content := e.Content
		w.Content = &content
	}
	if e.Mood != 0 {
		mood := e.Mood
		w.Mood = &mood
	}
	if !e.CreatedAt.IsZero() {
		w.CreatedAt = &e.CreatedAt
	}
	if !e.UpdatedAt.IsZero() {
		w.UpdatedAt = &e.UpdatedAt
	}
	switch p := e.Payload.(type) {
	case EventPayload:
		w.StartTime = clockString(p.Start)
		w.EndTime = clockString(p.End)
	case ActionPayload:
		w.IsCompleted = p.Completed
	case GoalPayload:
		w.IsCompleted = p.Completed
		meta, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		w.SourceMetadata = meta
	case CommitPayload:
		meta, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		w.SourceMetadata = meta
	}
	return json.Marshal(w)
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var w wireEntry
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Entry{
		ID:    w.ID,
		Title: w.Title,
		Type:  w.EntryType,
		Date:  w.EntryDate,
		Tags:  w.Tags,
	}
	if w.Content != nil {
		out.Content = *w.Content
	}
	if w.Mood != nil {
		out.Mood = *w.Mood
	}
	if w.CreatedAt != nil {
		out.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		out.UpdatedAt = *w.UpdatedAt
	}
	payload, err := decodePayload(w)
	if err != nil {
		return fmt.Errorf("entry %d: %w", w.ID, err)
	}
	out.Payload = payload
	*e = out
	return nil
}

func decodePayload(w wireEntry) (Payload, error) {
	switch w.EntryType {
	case TypeEvent:
		p := EventPayload{}
		var err error
		if p.Start, err = parseClockPtr(w.StartTime); err != nil {
			return nil, err
		}
		if p.End, err = parseClockPtr(w.EndTime); err != nil {
			return nil, err
		}
		return p, nil
	case TypeAction:
		return ActionPayload{Completed: w.IsCompleted}, nil
	case TypeGoal:
		p := GoalPayload{}
		if len(w.SourceMetadata) > 0 && string(w.SourceMetadata) != "null" {
			if err := json.Unmarshal(w.SourceMetadata, &p); err != nil {
				return nil, fmt.Errorf("goal metadata: %w", err)
			}
		}
		p.Completed = w.IsCompleted
		return p, nil
	case TypeCommit:
		p := CommitPayload{}
		if len(w.SourceMetadata) > 0 && string(w.SourceMetadata) != "null" {
			// The metadata blob is opaque; a shape we do not understand is
			// kept as an empty payload rather than failing the whole day.
			_ = json.Unmarshal(w.SourceMetadata, &p)
		}
		return p, nil
	default:
		return nil, nil
	}
}

func clockString(c *ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func parseClockPtr(s *string) (*ClockTime, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	c, err := ParseClock(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
