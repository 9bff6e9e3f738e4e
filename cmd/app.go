package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/showcase/internal/config"
	"github.com/conneroisu/showcase/internal/logging"
	"github.com/conneroisu/showcase/internal/registry"
	"github.com/conneroisu/showcase/internal/services"
)

// serviceOptions are appended to every DemoService the commands build.
var serviceOptions []services.Option

// app bundles what a command needs after configuration has been read.
type app struct {
	config   *config.Config
	registry *registry.Registry
	demos    *services.DemoService
	logger   logging.Logger
}

func newLogger(cmd *cobra.Command) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(viper.GetString("log-level")),
		Format:    viper.GetString("log-format"),
		Output:    cmd.ErrOrStderr(),
		Component: "showcase",
	})
}

// loadApp reads the configuration, loads the source table and wires the
// demo service on top of it.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newApp(cmd, cfg)
}

func newApp(cmd *cobra.Command, cfg *config.Config) (*app, error) {
	logger := newLogger(cmd)

	store, err := services.LoadStore(cfg.Sources)
	if err != nil {
		return nil, err
	}
	logger.Debug(cmd.Context(), "Loaded sources", "entries", store.Len())

	reg := registry.New(store, registry.WithLogger(logger))
	opts := append([]services.Option{services.WithLogger(logger)}, serviceOptions...)

	return &app{
		config:   cfg,
		registry: reg,
		demos:    services.NewDemoService(cfg, reg, opts...),
		logger:   logger,
	}, nil
}
