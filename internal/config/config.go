// Package config provides configuration management for showcase using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration names where demo sources live, the per-demo selection
// patterns, the sandbox hand-off settings, and the preview server. Every demo
// pattern is compiled while loading so a malformed pattern fails before any
// query runs.
package config

import (
	"sort"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/showcase/internal/errors"
)

type Config struct {
	Server      ServerConfig          `mapstructure:"server" yaml:"server"`
	Sources     SourcesConfig         `mapstructure:"sources" yaml:"sources"`
	Demos       map[string]DemoConfig `mapstructure:"demos" yaml:"demos"`
	Sandbox     SandboxConfig         `mapstructure:"sandbox" yaml:"sandbox"`
	Development DevelopmentConfig     `mapstructure:"development" yaml:"development"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	Open           bool     `mapstructure:"open" yaml:"open"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// SourcesConfig selects where the source table is loaded from. Manifest
// takes precedence over Root when both are set.
type SourcesConfig struct {
	Root            string   `mapstructure:"root" yaml:"root"`
	Manifest        string   `mapstructure:"manifest" yaml:"manifest"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
}

// DemoConfig is the per-demo configuration pair plus its display title.
type DemoConfig struct {
	Title          string `mapstructure:"title" yaml:"title"`
	Pattern        string `mapstructure:"pattern" yaml:"pattern"`
	PrimaryPattern string `mapstructure:"primary_pattern" yaml:"primary_pattern"`
}

type SandboxConfig struct {
	Endpoint     string            `mapstructure:"endpoint" yaml:"endpoint"`
	Template     string            `mapstructure:"template" yaml:"template"`
	Root         string            `mapstructure:"root" yaml:"root"`
	Description  string            `mapstructure:"description" yaml:"description"`
	NewWindow    bool              `mapstructure:"new_window" yaml:"new_window"`
	Dependencies map[string]string `mapstructure:"dependencies" yaml:"dependencies"`
}

type DevelopmentConfig struct {
	HotReload bool `mapstructure:"hot_reload" yaml:"hot_reload"`
}

// Load reads the configuration from the global viper instance, applies
// defaults and validates the result.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}

	applyDefaults(v, &config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(v *viper.Viper, config *Config) {
	if config.Server.Port == 0 && !v.IsSet("server.port") {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}

	if config.Sources.Root == "" && config.Sources.Manifest == "" {
		config.Sources.Root = "./demos"
	}
	if !v.IsSet("sources.exclude_patterns") && len(config.Sources.ExcludePatterns) == 0 {
		config.Sources.ExcludePatterns = []string{"*.bak", "*.spec.ts"}
	}

	if config.Demos == nil {
		config.Demos = make(map[string]DemoConfig)
	}
	for name, demo := range config.Demos {
		if demo.Title == "" {
			demo.Title = DefaultTitle(name)
			config.Demos[name] = demo
		}
	}

	if config.Sandbox.Endpoint == "" {
		config.Sandbox.Endpoint = "https://stackblitz.com/run"
	}
	if config.Sandbox.Template == "" {
		config.Sandbox.Template = "angular-cli"
	}
	if config.Sandbox.Root == "" {
		config.Sandbox.Root = "src/"
	}
	if !v.IsSet("sandbox.new_window") {
		config.Sandbox.NewWindow = true
	}

	if !v.IsSet("development.hot_reload") {
		config.Development.HotReload = true
	}
}

// DefaultTitle derives a human-readable title from a demo name:
// "timer-signal" becomes "Timer Signal".
func DefaultTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '/' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Demo returns the configuration of a named demo.
func (c *Config) Demo(name string) (DemoConfig, error) {
	demo, ok := c.Demos[name]
	if !ok {
		// Keys read through viper are lowercased.
		demo, ok = c.Demos[strings.ToLower(name)]
	}
	if !ok {
		return DemoConfig{}, errors.NewConfigError(errors.ErrCodeUnknownDemo, "no such demo", nil).WithDemo(name)
	}
	return demo, nil
}

// DemoNames returns the configured demo names in lexical order.
func (c *Config) DemoNames() []string {
	names := make([]string, 0, len(c.Demos))
	for name := range c.Demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
