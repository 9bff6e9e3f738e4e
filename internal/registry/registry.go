// Package registry selects, resolves and orders demo sources.
//
// A Registry answers queries against one immutable sources.Store snapshot at
// a time. Every query result is built fresh; nothing returned by a query is
// shared with another query or cached.
package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/showcase/internal/logging"
	"github.com/conneroisu/showcase/internal/sources"
)

// MatchedEntry is a source entry annotated with per-query presentation data.
type MatchedEntry struct {
	Path     string           `json:"path" yaml:"path"`
	FileName string           `json:"file_name" yaml:"file_name"`
	Content  string           `json:"content" yaml:"content"`
	Category sources.Category `json:"category" yaml:"category"`
	// Label is the category short name for sets of at most two entries and
	// the bare file name otherwise.
	Label string `json:"label" yaml:"label"`
	// OrdinalID is derived from the entry's position in its result set and
	// is only meaningful within that set.
	OrdinalID string `json:"ordinal_id" yaml:"ordinal_id"`
}

// DemoQuery is the per-demo configuration pair.
type DemoQuery struct {
	Name           string
	Pattern        string
	PrimaryPattern string
}

// QueryResult is the ordered, labelled set for one demo plus its primary
// file. Primary is nil when no entry qualifies.
type QueryResult struct {
	Entries []MatchedEntry `json:"entries"`
	Primary *MatchedEntry  `json:"primary,omitempty"`
}

// SnapshotEvent is sent to watchers when the store snapshot is replaced.
type SnapshotEvent struct {
	Entries   int
	Timestamp time.Time
}

// Registry runs selection queries over the current store snapshot.
type Registry struct {
	store    atomic.Pointer[sources.Store]
	patterns *PatternCache
	logger   logging.Logger

	mutex    sync.Mutex
	watchers []chan SnapshotEvent
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for query diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger.WithComponent("registry")
	}
}

// WithPatternCache shares a pattern cache between registries.
func WithPatternCache(cache *PatternCache) Option {
	return func(r *Registry) {
		r.patterns = cache
	}
}

// New creates a registry over store.
func New(store *sources.Store, opts ...Option) *Registry {
	r := &Registry{
		logger:   logging.NewNopLogger(),
		watchers: make([]chan SnapshotEvent, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.patterns == nil {
		r.patterns = NewPatternCache(DefaultPatternCacheSize)
	}
	if store == nil {
		store = sources.MustNewStore(nil)
	}
	r.store.Store(store)
	return r
}

// Store returns the current snapshot.
func (r *Registry) Store() *sources.Store {
	return r.store.Load()
}

// Swap replaces the snapshot and notifies watchers. Queries already running
// keep the snapshot they started with.
func (r *Registry) Swap(store *sources.Store) {
	if store == nil {
		return
	}
	r.store.Store(store)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	event := SnapshotEvent{Entries: store.Len(), Timestamp: time.Now()}
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

// Watch returns a channel that receives snapshot events
func (r *Registry) Watch() <-chan SnapshotEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan SnapshotEvent, 16)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *Registry) UnWatch(ch <-chan SnapshotEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Select returns every entry whose logical path matches pattern, in
// registration order. No match is an empty, non-nil slice. An invalid pattern
// is a configuration error.
func (r *Registry) Select(pattern string) ([]MatchedEntry, error) {
	re, err := r.patterns.Compile(pattern)
	if err != nil {
		return nil, err
	}

	matches := make([]MatchedEntry, 0)
	r.store.Load().Each(func(entry sources.Entry) {
		if re.MatchString(entry.Path) {
			matches = append(matches, newMatchedEntry(entry))
		}
	})
	annotate(matches)
	return matches, nil
}

// ResolvePrimaryPattern resolves the primary entry using an optional pattern
// string. An empty pattern applies the default rule.
func (r *Registry) ResolvePrimaryPattern(matches []MatchedEntry, primaryPattern string) (*MatchedEntry, error) {
	if primaryPattern == "" {
		return ResolvePrimary(matches, nil), nil
	}
	re, err := r.patterns.Compile(primaryPattern)
	if err != nil {
		return nil, err
	}
	return ResolvePrimary(matches, re), nil
}

// Query runs select, primary resolution and display ordering for one demo.
func (r *Registry) Query(ctx context.Context, q DemoQuery) (*QueryResult, error) {
	matches, err := r.Select(q.Pattern)
	if err != nil {
		r.logger.Error(ctx, err, "Source selection failed", "demo", q.Name, "pattern", q.Pattern)
		return nil, err
	}

	primary, err := r.ResolvePrimaryPattern(matches, q.PrimaryPattern)
	if err != nil {
		r.logger.Error(ctx, err, "Primary pattern invalid", "demo", q.Name, "primary_pattern", q.PrimaryPattern)
		return nil, err
	}

	ordered := Order(matches, primary)
	result := &QueryResult{Entries: ordered}
	if primary != nil {
		// Point at the ordered copy so Label and OrdinalID match the list.
		for i := range ordered {
			if ordered[i].Path == primary.Path {
				result.Primary = &ordered[i]
				break
			}
		}
	}

	r.logger.Debug(ctx, "Demo query resolved",
		"demo", q.Name,
		"matches", len(ordered),
		"has_primary", result.Primary != nil)
	return result, nil
}

func newMatchedEntry(entry sources.Entry) MatchedEntry {
	fileName := entry.FileName()
	return MatchedEntry{
		Path:     entry.Path,
		FileName: fileName,
		Content:  entry.Content,
		Category: sources.Classify(fileName),
	}
}
