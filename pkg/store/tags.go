package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/entry"
)

// Tags returns the tag catalog ordered by name.
func (s *Store) Tags(ctx context.Context) ([]entry.Tag, error) {
	idx, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("store: load index: %w", err)
	}
	out := make([]entry.Tag, 0, len(idx.Tags))
	for _, t := range idx.Tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// CreateTag adds name to the catalog. Names match case-insensitively; an
// existing tag is returned unchanged. An empty color picks the next palette
// color.
func (s *Store) CreateTag(ctx context.Context, name, color string) (entry.Tag, error) {
	name, color, err := entry.ValidateTag(name, color)
	if err != nil {
		return entry.Tag{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var tag entry.Tag
	err = s.updateIndex(func(idx *index) error {
		if t, ok := idx.Tags[strings.ToLower(name)]; ok {
			tag = t
			return nil
		}
		tag = idx.resolveTags([]string{name})[0]
		if color != "" {
			tag.Color = color
			idx.Tags[strings.ToLower(name)] = tag
		}
		return nil
	})
	return tag, err
}

// DeleteTag removes tag id from the catalog and from every entry carrying it.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.updateIndex(func(idx *index) error {
		for key, t := range idx.Tags {
			if t.ID == id {
				delete(idx.Tags, key)
				return nil
			}
		}
		return fmt.Errorf("store: tag %d: %w", id, backend.ErrNotFound)
	})
	if err != nil {
		return err
	}

	for _, key := range s.keys(ctx, entryPrefix+"-") {
		var e entry.Entry
		if err := s.readJSON(key, &e); err != nil {
			return fmt.Errorf("store: read %s: %w", key, err)
		}
		kept := e.Tags[:0:0]
		for _, t := range e.Tags {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(e.Tags) {
			continue
		}
		e.Tags = kept
		if err := s.writeJSON(key, e); err != nil {
			return fmt.Errorf("store: write %s: %w", key, err)
		}
	}
	return ctx.Err()
}
