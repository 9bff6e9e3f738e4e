// Package sources holds the read-only table of demo source snippets.
//
// A Store is built once from a fixed data set (a directory walk or a YAML
// manifest) and is never mutated afterwards. Reloading the data produces a
// new Store; callers swap the pointer rather than editing a shared table.
package sources

import (
	"fmt"
	"path"

	"github.com/conneroisu/showcase/internal/errors"
)

// Entry is one registered demo snippet.
type Entry struct {
	// Path is the full logical key, e.g.
	// "timer-signal/timer-signal-demo/timer-signal-demo.component.ts".
	Path string `json:"path" yaml:"path"`
	// Content is the raw file text.
	Content string `json:"content" yaml:"content"`
}

// FileName is the substring after the final '/' of Path.
func (e Entry) FileName() string {
	return path.Base(e.Path)
}

// Category is derived from the file extension on every call.
func (e Entry) Category() Category {
	return Classify(e.FileName())
}

// Store is an immutable, ordered mapping from logical path to content.
type Store struct {
	entries []Entry
	index   map[string]int
}

// NewStore registers entries in the given order. Paths must be non-empty and
// unique.
func NewStore(entries []Entry) (*Store, error) {
	s := &Store{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, entry := range entries {
		if entry.Path == "" {
			return nil, errors.NewConfigError(errors.ErrCodeSourceLoad, "source entry has an empty path", nil)
		}
		if _, exists := s.index[entry.Path]; exists {
			return nil, errors.NewInternalError(errors.ErrCodeDuplicatePath,
				fmt.Sprintf("path registered twice: %s", entry.Path), nil).WithPath(entry.Path)
		}
		s.index[entry.Path] = len(s.entries)
		s.entries = append(s.entries, entry)
	}

	return s, nil
}

// MustNewStore is NewStore for fixed tables known to be valid.
func MustNewStore(entries []Entry) *Store {
	s, err := NewStore(entries)
	if err != nil {
		panic(err)
	}
	return s
}

// Entries returns a copy of all entries in registration order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Each calls fn for every entry in registration order without copying the
// table.
func (s *Store) Each(fn func(Entry)) {
	for _, entry := range s.entries {
		fn(entry)
	}
}

// Get looks up an entry by its logical path.
func (s *Store) Get(p string) (Entry, bool) {
	idx, ok := s.index[p]
	if !ok {
		return Entry{}, false
	}
	return s.entries[idx], true
}

// Len returns the number of registered entries.
func (s *Store) Len() int {
	return len(s.entries)
}
