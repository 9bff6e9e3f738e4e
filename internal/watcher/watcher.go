// Package watcher watches demo source trees and reports debounced batches of
// changes so the source table can be reloaded as a whole.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/showcase/internal/logging"
)

// FileWatcher watches for file changes with debouncing
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter determines if a file should be watched
type FileFilter func(path string) bool

// ChangeHandler handles a debounced batch of change events
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

// NewDebouncer creates a debouncer that emits a batch once no event has
// arrived for delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(debounceDelay),
		filters:   make([]FileFilter, 0),
		handlers:  make([]ChangeHandler, 0),
		logger:    logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a file filter
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath adds a path to watch
func (fw *FileWatcher) AddPath(path string) error {
	cleanPath, err := validatePath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return fw.watcher.Add(cleanPath)
}

// AddRecursive adds a directory and all subdirectories to watch. Hidden
// directories are skipped, matching what the source loader registers.
func (fw *FileWatcher) AddRecursive(root string) error {
	cleanRoot, err := validatePath(root)
	if err != nil {
		return fmt.Errorf("invalid root path: %w", err)
	}

	return filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != cleanRoot && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

// validatePath cleans a path and rejects directory traversal
func validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	cleanPath := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return "", fmt.Errorf("path contains directory traversal: %s", path)
		}
	}
	return cleanPath, nil
}

// Start starts the file watcher
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)

	return nil
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	if !fw.accepts(event.Name) {
		return
	}

	var modTime time.Time
	var size int64
	info, err := os.Stat(event.Name)
	if err == nil {
		modTime = info.ModTime()
		size = info.Size()

		// New directories are watched too so files created in them are seen.
		if info.IsDir() && event.Op&fsnotify.Create == fsnotify.Create {
			if err := fw.AddRecursive(event.Name); err != nil {
				fw.logger.Warn(context.Background(), err, "Cannot watch new directory", "path", event.Name)
			}
		}
	}

	changeEvent := ChangeEvent{
		Type:    eventTypeOf(event.Op),
		Path:    event.Name,
		ModTime: modTime,
		Size:    size,
	}

	select {
	case fw.debouncer.events <- changeEvent:
	default:
		fw.logger.Debug(context.Background(), "Dropping change event, queue full", "path", event.Name)
	}
}

func (fw *FileWatcher) accepts(path string) bool {
	fw.mutex.RLock()
	filters := fw.filters
	fw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func eventTypeOf(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return EventTypeCreated
	case op&fsnotify.Write == fsnotify.Write:
		return EventTypeModified
	case op&fsnotify.Remove == fsnotify.Remove:
		return EventTypeDeleted
	case op&fsnotify.Rename == fsnotify.Rename:
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.dispatch(ctx, events)
		}
	}
}

func (fw *FileWatcher) dispatch(ctx context.Context, events []ChangeEvent) {
	fw.mutex.RLock()
	handlers := fw.handlers
	fw.mutex.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, events); err != nil {
			fw.logger.Error(ctx, err, "File watcher handler failed", "events", len(events))
		}
	}
}

func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	select {
	case d.output <- Coalesce(d.pending):
	default:
		// Channel full, the next batch carries a reload anyway.
	}

	d.pending = d.pending[:0]
}

// Coalesce keeps the last event per path and orders the batch by path.
func Coalesce(events []ChangeEvent) []ChangeEvent {
	latest := make(map[string]ChangeEvent, len(events))
	for _, event := range events {
		latest[event.Path] = event
	}

	out := make([]ChangeEvent, 0, len(latest))
	for _, event := range latest {
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// SourceFilter accepts files the source loader registers: visible files
// whose base name matches none of the exclude globs.
func SourceFilter(exclude []string) FileFilter {
	return func(path string) bool {
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") {
			return false
		}
		for _, pattern := range exclude {
			if matched, _ := filepath.Match(pattern, base); matched {
				return false
			}
		}
		return true
	}
}

func NoGitFilter(path string) bool {
	slashed := filepath.ToSlash(path)
	return !strings.HasPrefix(slashed, ".git/") && !strings.Contains(slashed, "/.git/")
}

func NoNodeModulesFilter(path string) bool {
	slashed := filepath.ToSlash(path)
	return !strings.HasPrefix(slashed, "node_modules/") && !strings.Contains(slashed, "/node_modules/")
}
