package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)

	watcher.AddFilter(NoGitFilter)
	watcher.AddHandler(func(context.Context, []ChangeEvent) error { return nil })
	assert.Len(t, watcher.filters, 1)
	assert.Len(t, watcher.handlers, 1)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NoError(t, watcher.AddPath(t.TempDir()))
	assert.Error(t, watcher.AddPath("/non/existent/path"))
	assert.Error(t, watcher.AddPath("../outside"))
	assert.Error(t, watcher.AddPath(""))
}

func TestFileWatcherAddRecursiveSkipsHidden(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "timer-signal", "shared"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0755))

	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.AddRecursive(root))
	watched := watcher.watcher.WatchList()
	assert.Contains(t, watched, filepath.Join(root, "timer-signal", "shared"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
}

func TestFileWatcherStartStop(t *testing.T) {
	root := t.TempDir()

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()
	require.NoError(t, watcher.AddRecursive(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []ChangeEvent
	watcher.AddFilter(SourceFilter([]string{"*.bak"}))
	watcher.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		received = append(received, events...)
		mu.Unlock()
		return nil
	})

	require.NoError(t, watcher.Start(ctx))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "x.component.ts"), []byte("export class X {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.component.ts.bak"), []byte("old"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0
	}, 2*time.Second, 25*time.Millisecond)

	mu.Lock()
	for _, event := range received {
		assert.NotEqual(t, ".bak", filepath.Ext(event.Path))
	}
	mu.Unlock()

	cancel()
	assert.NoError(t, watcher.Stop())
}

func TestDebouncerBatchesRapidChanges(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.start(ctx)

	d.events <- ChangeEvent{Type: EventTypeCreated, Path: "b.ts"}
	d.events <- ChangeEvent{Type: EventTypeModified, Path: "a.ts"}
	d.events <- ChangeEvent{Type: EventTypeModified, Path: "b.ts"}

	select {
	case batch := <-d.output:
		require.Len(t, batch, 2)
		assert.Equal(t, "a.ts", batch[0].Path)
		assert.Equal(t, "b.ts", batch[1].Path)
		assert.Equal(t, EventTypeModified, batch[1].Type)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer did not flush")
	}
}

func TestCoalesce(t *testing.T) {
	events := Coalesce([]ChangeEvent{
		{Type: EventTypeCreated, Path: "z.ts"},
		{Type: EventTypeModified, Path: "a.ts"},
		{Type: EventTypeDeleted, Path: "z.ts"},
	})

	require.Len(t, events, 2)
	assert.Equal(t, "a.ts", events[0].Path)
	assert.Equal(t, EventTypeDeleted, events[1].Type)
	assert.Empty(t, Coalesce(nil))
}

func TestSourceFilter(t *testing.T) {
	filter := SourceFilter([]string{"*.bak", "*.spec.ts"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{"demos/timer-signal/x.component.ts", true},
		{"demos/timer-signal/x.component.html", true},
		{"demos/timer-signal/x.component.spec.ts", false},
		{"demos/timer-signal/x.ts.bak", false},
		{"demos/.DS_Store", false},
		{"README", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestPathFilters(t *testing.T) {
	testCases := []struct {
		path    string
		noGit   bool
		noNodes bool
	}{
		{"demos/a.ts", true, true},
		{".git/HEAD", false, true},
		{"demos/.git/config", false, true},
		{"node_modules/rxjs/index.js", true, false},
		{"demos/node_modules/x.js", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.noGit, NoGitFilter(tc.path))
			assert.Equal(t, tc.noNodes, NoNodeModulesFilter(tc.path))
		})
	}
}
