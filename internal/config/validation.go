package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/conneroisu/showcase/internal/errors"
	"github.com/conneroisu/showcase/internal/registry"
)

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return invalid("server config", err)
	}

	if err := validateSourcesConfig(&config.Sources); err != nil {
		return invalid("sources config", err)
	}

	if err := validateSandboxConfig(&config.Sandbox); err != nil {
		return invalid("sandbox config", err)
	}

	for _, name := range config.DemoNames() {
		if err := validateDemoConfig(config.Demos[name]); err != nil {
			if se, ok := err.(*errors.ShowcaseError); ok {
				return se.WithDemo(name)
			}
			return invalid("demo "+name, err)
		}
	}

	return nil
}

func invalid(section string, err error) error {
	return errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid configuration: "+section, err)
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateSourcesConfig validates where sources are loaded from
func validateSourcesConfig(config *SourcesConfig) error {
	if config.Root != "" {
		if err := validatePath(config.Root); err != nil {
			return fmt.Errorf("invalid source root '%s': %w", config.Root, err)
		}
	}
	if config.Manifest != "" {
		if err := validatePath(config.Manifest); err != nil {
			return fmt.Errorf("invalid manifest '%s': %w", config.Manifest, err)
		}
	}
	for _, pattern := range config.ExcludePatterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}
	return nil
}

// validateSandboxConfig validates the sandbox hand-off settings
func validateSandboxConfig(config *SandboxConfig) error {
	endpoint, err := url.Parse(config.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if endpoint.Scheme != "https" && endpoint.Scheme != "http" {
		return fmt.Errorf("endpoint must be an http(s) URL: %s", config.Endpoint)
	}

	root := path.Clean(config.Root)
	if path.IsAbs(root) || root == ".." || strings.HasPrefix(root, "../") {
		return fmt.Errorf("sandbox root must stay inside the project: %s", config.Root)
	}
	return nil
}

// validateDemoConfig compiles both patterns of a demo so authoring mistakes
// surface at load time.
func validateDemoConfig(demo DemoConfig) error {
	if demo.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	if _, err := registry.CompilePattern(demo.Pattern); err != nil {
		return err
	}
	if demo.PrimaryPattern != "" {
		if _, err := registry.CompilePattern(demo.PrimaryPattern); err != nil {
			return err
		}
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(p string) error {
	cleanPath := filepath.Clean(p)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", p)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
