package app

import (
	"context"
	"fmt"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/entry"
)

// Summary returns the all-time overview from the backend.
func (s *Service) Summary(ctx context.Context) (backend.Summary, error) {
	if err := s.ready(); err != nil {
		return backend.Summary{}, err
	}
	return s.Backend.Summary(ctx)
}

// Tags lists the tag catalog.
func (s *Service) Tags(ctx context.Context) ([]entry.Tag, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Backend.Tags(ctx)
}

// CreateTag validates and adds a catalog tag.
func (s *Service) CreateTag(ctx context.Context, name, color string) (entry.Tag, error) {
	if err := s.ready(); err != nil {
		return entry.Tag{}, err
	}
	name, color, err := entry.ValidateTag(name, color)
	if err != nil {
		return entry.Tag{}, err
	}
	return s.Backend.CreateTag(ctx, name, color)
}

// DeleteTag removes tag id from the catalog, then from every cached entry.
func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.Backend.DeleteTag(ctx, id); err != nil {
		return fmt.Errorf("app: delete tag %d: %w", id, err)
	}
	s.Cache.DetachTag(id)
	return nil
}
