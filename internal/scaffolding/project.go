// Package scaffolding turns a demo's matched sources into a self-contained
// project description that a sandbox can run.
package scaffolding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conneroisu/showcase/internal/errors"
	"github.com/conneroisu/showcase/internal/registry"
	"github.com/conneroisu/showcase/internal/sources"
)

// DefaultRoot is the virtual directory demo sources are placed under.
const DefaultRoot = "src/"

// Project is the bundle handed to the sandbox.
type Project struct {
	Title string            `json:"title"`
	Files map[string]string `json:"files"`
	// EntryFile is the namespaced path of the primary source, used as the
	// file the sandbox opens first.
	EntryFile string `json:"-"`
}

// Paths returns the project file paths in lexical order.
func (p *Project) Paths() []string {
	paths := make([]string, 0, len(p.Files))
	for path := range p.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Synthesizer merges demo sources with a template set.
type Synthesizer struct {
	root      string
	templates TemplateSet
}

// NewSynthesizer creates a synthesizer. An empty root uses DefaultRoot and
// a nil template set uses DefaultTemplates.
func NewSynthesizer(root string, templates TemplateSet) *Synthesizer {
	if root == "" {
		root = DefaultRoot
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Synthesizer{root: root, templates: templates}
}

// BuildProject uses the default root and templates.
func BuildProject(title string, matches []registry.MatchedEntry, primary *registry.MatchedEntry) (*Project, error) {
	return NewSynthesizer("", nil).BuildProject(title, matches, primary)
}

// EntryPath is where the primary source lands inside the project.
func (s *Synthesizer) EntryPath(primary *registry.MatchedEntry) string {
	return s.root + primary.FileName
}

// BuildProject assembles the project. It fails when primary is nil, when the
// primary text lacks either declaration, and when two files would share a
// project path.
func (s *Synthesizer) BuildProject(title string, matches []registry.MatchedEntry, primary *registry.MatchedEntry) (*Project, error) {
	if primary == nil {
		return nil, errors.NewConfigError(errors.ErrCodeNoPrimary,
			"cannot export a project without a primary file", nil)
	}

	decl, err := Extract(primary.Content)
	if err != nil {
		if se, ok := err.(*errors.ShowcaseError); ok {
			se.WithPath(primary.Path)
		}
		return nil, err
	}
	importPath := sources.TrimExtension(primary.FileName)

	files := make(map[string]string, len(matches)+len(s.templates))
	for _, m := range matches {
		target := s.root + m.FileName
		if _, exists := files[target]; exists {
			return nil, collision(target, m.Path)
		}
		files[target] = m.Content
	}

	for target, content := range s.templates.Render(decl, importPath) {
		if _, exists := files[target]; exists {
			return nil, collision(target, target)
		}
		files[target] = content
	}

	return &Project{
		Title:     title,
		Files:     files,
		EntryFile: s.EntryPath(primary),
	}, nil
}

func collision(target, source string) error {
	return errors.NewInternalError(errors.ErrCodePathCollision,
		fmt.Sprintf("project path %s is produced twice", target), nil).WithPath(source)
}
