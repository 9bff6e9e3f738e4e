package scaffolding

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

// Placeholder tokens substituted in every template file.
const (
	PlaceholderEntryType  = "%%ENTRY_TYPE%%"
	PlaceholderImportPath = "%%IMPORT_PATH%%"
	PlaceholderSelector   = "%%SELECTOR%%"
)

//go:embed templates
var templateFS embed.FS

// TemplateSet maps a project-relative path to raw template text.
type TemplateSet map[string]string

// DefaultTemplates returns the scaffold files needed to run a single
// standalone component in the sandbox.
func DefaultTemplates() TemplateSet {
	set, err := LoadTemplates(templateFS, "templates")
	if err != nil {
		// The embedded tree is part of the binary.
		panic(err)
	}
	return set
}

// LoadTemplates reads every file below root of fsys into a TemplateSet keyed
// by its path relative to root.
func LoadTemplates(fsys fs.FS, root string) (TemplateSet, error) {
	set := make(TemplateSet)
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		set[strings.TrimPrefix(p, root+"/")] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Paths returns the template paths in lexical order.
func (s TemplateSet) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Render substitutes every literal occurrence of the three placeholders.
func (s TemplateSet) Render(decl Declarations, importPath string) map[string]string {
	replacer := strings.NewReplacer(
		PlaceholderEntryType, decl.EntryType,
		PlaceholderImportPath, importPath,
		PlaceholderSelector, decl.Selector,
	)

	out := make(map[string]string, len(s))
	for p, content := range s {
		out[p] = replacer.Replace(content)
	}
	return out
}
