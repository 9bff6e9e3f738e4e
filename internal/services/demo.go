// Package services holds the demo workflows shared by the CLI commands and
// the preview server: querying a demo, synthesizing its project, launching
// it in the sandbox, and validating every configured demo.
package services

import (
	"context"

	"github.com/conneroisu/showcase/internal/config"
	"github.com/conneroisu/showcase/internal/errors"
	"github.com/conneroisu/showcase/internal/logging"
	"github.com/conneroisu/showcase/internal/registry"
	"github.com/conneroisu/showcase/internal/sandbox"
	"github.com/conneroisu/showcase/internal/scaffolding"
)

// DemoService answers demo queries against the registry's current snapshot.
type DemoService struct {
	config      *config.Config
	registry    *registry.Registry
	synthesizer *scaffolding.Synthesizer
	launcher    sandbox.Launcher
	host        sandbox.Host
	logger      logging.Logger
}

// Option configures a DemoService.
type Option func(*DemoService)

// WithLauncher replaces the default lazily constructed form launcher.
func WithLauncher(launcher sandbox.Launcher) Option {
	return func(s *DemoService) { s.launcher = launcher }
}

// WithHost replaces the host used for the browser precondition check.
func WithHost(host sandbox.Host) Option {
	return func(s *DemoService) { s.host = host }
}

// WithLogger sets the service logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *DemoService) { s.logger = logger }
}

// WithSynthesizer replaces the project synthesizer.
func WithSynthesizer(synthesizer *scaffolding.Synthesizer) Option {
	return func(s *DemoService) { s.synthesizer = synthesizer }
}

// NewDemoService creates a demo service.
func NewDemoService(cfg *config.Config, reg *registry.Registry, opts ...Option) *DemoService {
	s := &DemoService{
		config:   cfg,
		registry: reg,
		host:     sandbox.CurrentHost(),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("demos")

	if s.synthesizer == nil {
		s.synthesizer = scaffolding.NewSynthesizer(cfg.Sandbox.Root, nil)
	}
	if s.launcher == nil {
		logger := s.logger
		s.launcher = sandbox.NewLazy(func() (sandbox.Launcher, error) {
			return sandbox.NewFormLauncher(FormConfig(cfg, logger)), nil
		})
	}
	return s
}

// FormConfig maps the sandbox configuration section onto a form launcher
// configuration.
func FormConfig(cfg *config.Config, logger logging.Logger) sandbox.FormConfig {
	return sandbox.FormConfig{
		Endpoint:     cfg.Sandbox.Endpoint,
		Template:     cfg.Sandbox.Template,
		Description:  cfg.Sandbox.Description,
		Dependencies: cfg.Sandbox.Dependencies,
		Logger:       logger,
	}
}

// Registry returns the registry the service queries.
func (s *DemoService) Registry() *registry.Registry {
	return s.registry
}

// DemoSummary describes a configured demo.
type DemoSummary struct {
	Name           string `json:"name" yaml:"name"`
	Title          string `json:"title" yaml:"title"`
	Pattern        string `json:"pattern" yaml:"pattern"`
	PrimaryPattern string `json:"primary_pattern,omitempty" yaml:"primary_pattern,omitempty"`
}

// Demos lists the configured demos in name order.
func (s *DemoService) Demos() []DemoSummary {
	names := s.config.DemoNames()
	summaries := make([]DemoSummary, 0, len(names))
	for _, name := range names {
		demo := s.config.Demos[name]
		summaries = append(summaries, DemoSummary{
			Name:           name,
			Title:          demo.Title,
			Pattern:        demo.Pattern,
			PrimaryPattern: demo.PrimaryPattern,
		})
	}
	return summaries
}

// Query returns the ordered, labelled tabs of a demo. An empty result is not
// an error.
func (s *DemoService) Query(ctx context.Context, name string) (*registry.QueryResult, error) {
	demo, err := s.config.Demo(name)
	if err != nil {
		return nil, err
	}
	return s.registry.Query(ctx, registry.DemoQuery{
		Name:           name,
		Pattern:        demo.Pattern,
		PrimaryPattern: demo.PrimaryPattern,
	})
}

// Export is a synthesized project together with the options it would be
// launched with.
type Export struct {
	Demo    string               `json:"demo"`
	Project *scaffolding.Project `json:"project"`
	Options sandbox.Options      `json:"options"`
}

// Export synthesizes the sandbox project of a demo. It fails when the demo
// has no primary file.
func (s *DemoService) Export(ctx context.Context, name string) (*Export, error) {
	demo, err := s.config.Demo(name)
	if err != nil {
		return nil, err
	}

	result, err := s.Query(ctx, name)
	if err != nil {
		return nil, err
	}

	project, err := s.synthesizer.BuildProject(demo.Title, result.Entries, result.Primary)
	if err != nil {
		if se, ok := err.(*errors.ShowcaseError); ok {
			se.WithDemo(name)
		}
		return nil, err
	}

	return &Export{
		Demo:    name,
		Project: project,
		Options: sandbox.Options{
			OpenFile:  project.EntryFile,
			NewWindow: s.config.Sandbox.NewWindow,
		},
	}, nil
}

// Launch exports a demo and hands it to the sandbox. When the host cannot
// open a browser the launch is skipped and launched is false with a nil
// error. Collaborator failures are returned unchanged and never retried.
func (s *DemoService) Launch(ctx context.Context, name string) (launched bool, err error) {
	perf := logging.StartOperation(s.logger.With("demo", name), "launch")

	export, err := s.Export(ctx, name)
	if err != nil {
		perf.EndWithError(ctx, err)
		return false, err
	}

	if !s.host.CanOpenBrowser() {
		s.logger.Info(ctx, "No browser available, skipping sandbox launch", "demo", name)
		perf.End(ctx)
		return false, nil
	}

	if err := s.launcher.Launch(ctx, export.Project, export.Options); err != nil {
		perf.EndWithError(ctx, err)
		return false, err
	}

	perf.End(ctx)
	return true, nil
}

// Validate runs every demo's query and a dry-run export and collects the
// failures per demo.
func (s *DemoService) Validate(ctx context.Context) *errors.ErrorCollector {
	collector := errors.NewErrorCollector()
	for _, name := range s.config.DemoNames() {
		result, err := s.Query(ctx, name)
		if err != nil {
			collector.Add(name, "select", err)
			continue
		}
		if len(result.Entries) == 0 {
			collector.Add(name, "select", errors.NewConfigError(errors.ErrCodeEmptySelection,
				"pattern matches no source files", nil).WithDemo(name))
			continue
		}
		if _, err := s.Export(ctx, name); err != nil {
			collector.Add(name, "export", err)
		}
	}
	return collector
}
