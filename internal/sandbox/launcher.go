// Package sandbox hands synthesized projects to an external interactive
// sandbox service.
//
// The core only constructs a valid project and options, decides whether a
// launch is possible in the current host, and propagates failures reported by
// the collaborator. Launches are never retried.
package sandbox

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/showcase/internal/scaffolding"
)

// Options control how the sandbox opens a project.
type Options struct {
	// OpenFile is the namespaced path of the file shown first.
	OpenFile string `json:"openFile"`
	// NewWindow opens the sandbox in a new browser window.
	NewWindow bool `json:"newWindow"`
}

// Launcher opens a project in an external environment.
type Launcher interface {
	Launch(ctx context.Context, project *scaffolding.Project, opts Options) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context, project *scaffolding.Project, opts Options) error

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, project *scaffolding.Project, opts Options) error {
	return f(ctx, project, opts)
}

// Lazy defers constructing the real launcher until the first launch request.
type Lazy struct {
	factory  func() (Launcher, error)
	once     sync.Once
	loaded   atomic.Bool
	launcher Launcher
	err      error
}

// NewLazy wraps factory. The factory runs at most once.
func NewLazy(factory func() (Launcher, error)) *Lazy {
	return &Lazy{factory: factory}
}

// Loaded reports whether the factory has run.
func (l *Lazy) Loaded() bool {
	return l.loaded.Load()
}

// Launch builds the launcher on first use and delegates to it.
func (l *Lazy) Launch(ctx context.Context, project *scaffolding.Project, opts Options) error {
	l.once.Do(func() {
		l.launcher, l.err = l.factory()
		l.loaded.Store(true)
	})
	if l.err != nil {
		return l.err
	}
	return l.launcher.Launch(ctx, project, opts)
}
