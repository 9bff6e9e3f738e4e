package scaffolding

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// WriteProject materializes a project's file map below outputDir. Existing
// files are only replaced when overwrite is set.
func WriteProject(outputDir string, project *Project, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(project.Files))
	for _, rel := range project.Paths() {
		target, err := resolveTarget(outputDir, rel)
		if err != nil {
			return written, err
		}

		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				return written, fmt.Errorf("refusing to overwrite %s", target)
			}
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(target, []byte(project.Files[rel]), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", rel, err)
		}
		written = append(written, target)
	}

	return written, nil
}

// resolveTarget joins a project path onto outputDir, rejecting absolute paths
// and traversal out of the directory.
func resolveTarget(outputDir, rel string) (string, error) {
	clean := path.Clean(rel)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("project path escapes output directory: %s", rel)
	}
	return filepath.Join(outputDir, filepath.FromSlash(clean)), nil
}
