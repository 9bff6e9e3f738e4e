package services

import (
	"context"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/showcase/internal/config"
	"github.com/conneroisu/showcase/internal/registry"
)

var relativeImport = regexp.MustCompile(`(?m)^\s*import\b[^;]*?\bfrom\s+['"](\.{1,2}/[^'"]+)['"]`)

// loadSamples reads the repository's .showcase.yml and demos/ tree.
func loadSamples(t *testing.T) (*config.Config, *registry.Registry) {
	t.Helper()
	repoRoot := filepath.Join("..", "..")

	v := viper.New()
	v.SetConfigFile(filepath.Join(repoRoot, ".showcase.yml"))
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	cfg.Sources.Root = filepath.Join(repoRoot, cfg.Sources.Root)

	store, err := LoadStore(cfg.Sources)
	require.NoError(t, err)
	return cfg, registry.New(store)
}

func TestSampleDemosExportSelfContainedProjects(t *testing.T) {
	cfg, reg := loadSamples(t)
	service := NewDemoService(cfg, reg, WithLauncher(&fakeLauncher{}), WithHost(headlessHost()))

	require.NotEmpty(t, cfg.DemoNames())
	for _, name := range cfg.DemoNames() {
		t.Run(name, func(t *testing.T) {
			export, err := service.Export(context.Background(), name)
			require.NoError(t, err)
			assert.Contains(t, export.Project.Files, export.Options.OpenFile)

			for file, content := range export.Project.Files {
				if !strings.HasSuffix(file, ".ts") {
					continue
				}
				for _, m := range relativeImport.FindAllStringSubmatch(content, -1) {
					target := path.Join(path.Dir(file), m[1]) + ".ts"
					assert.Contains(t, export.Project.Files, target,
						"%s imports %s, which is not part of the project", file, m[1])
				}
			}
		})
	}
}

func TestSampleDemosValidate(t *testing.T) {
	cfg, reg := loadSamples(t)
	service := NewDemoService(cfg, reg, WithLauncher(&fakeLauncher{}), WithHost(headlessHost()))

	collector := service.Validate(context.Background())
	assert.Empty(t, collector.GetErrors())
}
