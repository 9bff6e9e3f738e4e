package sources

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/showcase/internal/errors"
)

// Manifest is the on-disk YAML form of a source table. Entries keep the
// order they are listed in.
type Manifest struct {
	Files []Entry `yaml:"files"`
}

// LoadDir walks root and registers every regular file under its
// slash-separated path relative to root. fs.WalkDir visits entries in
// lexical order, which becomes the registration order.
func LoadDir(root string, exclude []string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeSourceLoad, "cannot read source root", err).WithPath(root)
	}
	if !info.IsDir() {
		return nil, errors.NewIOError(errors.ErrCodeSourceLoad, "source root is not a directory", nil).WithPath(root)
	}
	return LoadFS(os.DirFS(root), exclude)
}

// LoadFS registers every regular file of fsys. Files whose base name matches
// one of the exclude globs, and hidden files and directories, are skipped.
func LoadFS(fsys fs.FS, exclude []string) (*Store, error) {
	for _, pattern := range exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid exclude pattern %q", pattern), err)
		}
	}

	var entries []Entry
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if isExcluded(name, exclude) {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: p, Content: string(content)})
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeSourceLoad, "failed to walk source tree", err)
	}

	return NewStore(entries)
}

// LoadManifest reads a YAML manifest file.
func LoadManifest(file string) (*Store, error) {
	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeSourceLoad, "cannot read manifest", err).WithPath(file)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest into a Store.
func ParseManifest(data []byte) (*Store, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeSourceLoad, "malformed manifest", err)
	}
	return NewStore(manifest.Files)
}

func isExcluded(name string, exclude []string) bool {
	for _, pattern := range exclude {
		if matched, _ := path.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
