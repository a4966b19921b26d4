package entry

import (
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/logbook/pkg/timeutil"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("entry: invalid request")

// ValidationError reports a request rejected before it reaches the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entry: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalid) match any validation failure.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CreateRequest is the payload for creating an entry.
type CreateRequest struct {
	Title     string        `json:"title"`
	Content   string        `json:"content,omitempty"`
	Type      Type          `json:"entryType"`
	Date      timeutil.Date `json:"entryDate"`
	Start     *ClockTime    `json:"-"`
	End       *ClockTime    `json:"-"`
	Completed bool          `json:"isCompleted,omitempty"`
	Mood      int           `json:"mood,omitempty"`
	Tags      []string      `json:"tags,omitempty"`

	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Validate checks the request and normalizes whitespace. It never touches the
// network.
func (r *CreateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return invalid("title", "is required")
	}
	if r.Type == "" {
		r.Type = TypeNote
	}
	if !r.Type.Valid() {
		return invalid("type", fmt.Sprintf("%q is not a known entry type", r.Type))
	}
	if r.Date.IsZero() {
		return invalid("date", "is required")
	}
	if err := validateMood(r.Mood); err != nil {
		return err
	}
	if r.Type != TypeEvent && (r.Start != nil || r.End != nil) {
		return invalid("time", "is only valid for events")
	}
	if r.Start != nil && r.End != nil && r.End.Minutes() < r.Start.Minutes() {
		return invalid("end", "is before start")
	}
	if r.Completed && r.Type != TypeAction {
		return invalid("completed", "is only valid for actions")
	}
	r.Tags = normalizeTags(r.Tags)
	r.StartTime, r.EndTime = "", ""
	if r.Start != nil {
		r.StartTime = r.Start.String()
	}
	if r.End != nil {
		r.EndTime = r.End.String()
	}
	return nil
}

// UpdateRequest is a partial update. It has no date field since moving
// an entry to another day is not an update.
type UpdateRequest struct {
	Title     *string    `json:"title,omitempty"`
	Content   *string    `json:"content,omitempty"`
	Start     *ClockTime `json:"-"`
	End       *ClockTime `json:"-"`
	Completed *bool      `json:"isCompleted,omitempty"`
	Mood      *int       `json:"mood,omitempty"`
	// Tags replaces the tag list when set; an empty list clears it.
	Tags *[]string `json:"tags,omitempty"`

	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Validate checks the patch against the entry it will be applied to.
func (r *UpdateRequest) Validate(target Entry) error {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		if trimmed == "" {
			return invalid("title", "cannot be blank")
		}
		r.Title = &trimmed
	}
	if r.Mood != nil {
		if err := validateMood(*r.Mood); err != nil {
			return err
		}
	}
	if (r.Start != nil || r.End != nil) && target.Type != TypeEvent {
		return invalid("time", "is only valid for events")
	}
	if r.Completed != nil && target.Type != TypeAction {
		return invalid("completed", "is only valid for actions")
	}
	if p, ok := r.Apply(target).Payload.(EventPayload); ok && p.Start != nil && p.End != nil && p.End.Minutes() < p.Start.Minutes() {
		return invalid("end", "is before start")
	}
	if r.Tags != nil {
		tags := normalizeTags(*r.Tags)
		r.Tags = &tags
	}
	if r.Start != nil {
		r.StartTime = r.Start.String()
	}
	if r.End != nil {
		r.EndTime = r.End.String()
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (r UpdateRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Start == nil && r.End == nil &&
		r.Completed == nil && r.Mood == nil && r.Tags == nil
}

// Apply returns the local image of e after the patch. Tags are matched by name
// against the entry's existing tags; new names get a zero ID until the server
// assigns one.
func (r UpdateRequest) Apply(e Entry) Entry {
	out := e.Clone()
	if r.Title != nil {
		out.Title = *r.Title
	}
	if r.Content != nil {
		out.Content = *r.Content
	}
	if r.Mood != nil {
		out.Mood = *r.Mood
	}
	if r.Tags != nil {
		existing := make(map[string]Tag, len(e.Tags))
		for _, t := range e.Tags {
			existing[strings.ToLower(t.Name)] = t
		}
		out.Tags = make([]Tag, 0, len(*r.Tags))
		for _, name := range *r.Tags {
			if t, ok := existing[strings.ToLower(name)]; ok {
				out.Tags = append(out.Tags, t)
				continue
			}
			out.Tags = append(out.Tags, Tag{Name: name})
		}
	}
	switch p := out.Payload.(type) {
	case EventPayload:
		if r.Start != nil {
			s := *r.Start
			p.Start = &s
		}
		if r.End != nil {
			end := *r.End
			p.End = &end
		}
		out.Payload = p
	case ActionPayload:
		if r.Completed != nil {
			p.Completed = *r.Completed
		}
		out.Payload = p
	case nil:
		if out.Type == TypeAction && r.Completed != nil {
			out.Payload = ActionPayload{Completed: *r.Completed}
		}
		if out.Type == TypeEvent && (r.Start != nil || r.End != nil) {
			out.Payload = EventPayload{Start: r.Start, End: r.End}
		}
	}
	return out
}

func validateMood(m int) error {
	if m < 0 || m > 5 {
		return invalid("mood", "must be between 1 and 5")
	}
	return nil
}

// ValidateTag trims a catalog tag and checks its color, which is empty or a
// #rgb or #rrggbb hex value.
func ValidateTag(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", invalid("tag", "name is required")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		return name, "", nil
	}
	hex := strings.TrimPrefix(color, "#")
	if hex == color || (len(hex) != 3 && len(hex) != 6) {
		return "", "", invalid("color", fmt.Sprintf("%q is not a #rgb or #rrggbb value", color))
	}
	for _, c := range strings.ToLower(hex) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", "", invalid("color", fmt.Sprintf("%q is not a #rgb or #rrggbb value", color))
		}
	}
	return name, color, nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
