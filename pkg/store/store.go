// Package store is a local journal backend kept on disk with diskv.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/logbook/pkg/backend"
	"tableflip.dev/logbook/pkg/entry"
	"tableflip.dev/logbook/pkg/timeutil"
)

// Config locates the store on disk.
type Config interface {
	BasePath() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store implements backend.Backend on the local filesystem. Entries live at
// <base>/entry/<YYYY-MM-DD>/<id>, goals at <base>/goal/<id>.
type Store struct {
	d        *diskv.Diskv
	basePath string
	now      func() time.Time

	mu sync.Mutex
}

var _ backend.Backend = (*Store)(nil)

// Open creates a Store rooted at cfg.BasePath().
func Open(cfg Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("store: config required")
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	s := &Store{
		// Reads always go to disk so writes from other processes are seen.
		// Writes land in tmpDir first and are renamed into place.
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           filepath.Join(basePath, tmpDir),
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      0,
		}),
		basePath: basePath,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BasePath returns the root directory of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

const (
	entryPrefix = "entry"
	goalPrefix  = "goal"
	indexFile   = ".logbook.json"
	tmpDir      = ".tmp"
)

// index holds the id sequences and the tag catalog.
type index struct {
	NextEntry     int64                `json:"nextEntry"`
	NextGoal      int64                `json:"nextGoal"`
	NextMilestone int64                `json:"nextMilestone"`
	NextTag       int64                `json:"nextTag"`
	Tags          map[string]entry.Tag `json:"tags"`
}

func (s *Store) indexPath() string {
	return filepath.Join(s.basePath, indexFile)
}

func (s *Store) loadIndex() (*index, error) {
	idx := &index{Tags: map[string]entry.Tag{}}
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return idx, nil
	}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("store: decode index: %w", err)
	}
	if idx.Tags == nil {
		idx.Tags = map[string]entry.Tag{}
	}
	return idx, nil
}

func (s *Store) saveIndex(idx *index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.indexPath(), bytes.NewReader(data))
}

// updateIndex runs fn against the index and persists it. Callers hold s.mu.
func (s *Store) updateIndex(fn func(*index) error) error {
	idx, err := s.loadIndex()
	if err != nil {
		return fmt.Errorf("store: load index: %w", err)
	}
	if err := fn(idx); err != nil {
		return err
	}
	if err := s.saveIndex(idx); err != nil {
		return fmt.Errorf("store: save index: %w", err)
	}
	return nil
}

// tagPalette is cycled through for new tags.
var tagPalette = []string{"#6366f1", "#10b981", "#f59e0b", "#ef4444", "#3b82f6", "#ec4899", "#8b5cf6", "#14b8a6"}

func (idx *index) resolveTags(names []string) []entry.Tag {
	if names == nil {
		return nil
	}
	out := make([]entry.Tag, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		t, ok := idx.Tags[key]
		if !ok {
			idx.NextTag++
			t = entry.Tag{ID: idx.NextTag, Name: name, Color: tagPalette[int(idx.NextTag-1)%len(tagPalette)]}
			idx.Tags[key] = t
		}
		out = append(out, t)
	}
	return out
}

// keys returns every key with prefix. The walk is cancelled when ctx ends.
func (s *Store) keys(ctx context.Context, prefix string) []string {
	cancel := make(chan struct{})
	defer close(cancel)
	var out []string
	for key := range s.d.KeysPrefix(prefix, cancel) {
		if ctx.Err() != nil {
			break
		}
		out = append(out, key)
	}
	return out
}

func (s *Store) readJSON(key string, v any) error {
	data, err := s.d.Read(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.d.Write(key, data)
}

func entryKey(d timeutil.Date, id int64) string {
	return fmt.Sprintf("%s-%s-%d", entryPrefix, d, id)
}

func goalKey(id int64) string {
	return fmt.Sprintf("%s-%d", goalPrefix, id)
}

// keyToPathTransform maps entry-YYYY-MM-DD-id to entry/YYYY-MM-DD/id and
// goal-id to goal/id.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	if len(parts) < 2 {
		return &diskv.PathKey{FileName: s}
	}
	path := []string{parts[0]}
	if len(parts) > 2 {
		path = append(path, strings.Join(parts[1:len(parts)-1], "-"))
	}
	return &diskv.PathKey{
		Path:     path,
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// parseEntryKey splits an entry key into its date and id.
func parseEntryKey(key string) (timeutil.Date, int64, bool) {
	pk := keyToPathTransform(key)
	if len(pk.Path) != 2 || pk.Path[0] != entryPrefix {
		return timeutil.Date{}, 0, false
	}
	d, err := timeutil.ParseDate(pk.Path[1])
	if err != nil {
		return timeutil.Date{}, 0, false
	}
	id, err := strconv.ParseInt(pk.FileName, 10, 64)
	if err != nil {
		return timeutil.Date{}, 0, false
	}
	return d, id, true
}

func sortEntries(entries []entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i], entries[j]
		if c := left.Date.Compare(right.Date); c != 0 {
			return c < 0
		}
		lt, rt := left.CreatedAt, right.CreatedAt
		if lt.Equal(rt) {
			return left.ID < right.ID
		}
		return lt.Before(rt)
	})
}
