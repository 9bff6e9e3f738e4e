package scaffolding

import (
	"regexp"

	"github.com/conneroisu/showcase/internal/errors"
)

// Declarations are the identifiers recovered from a primary file.
type Declarations struct {
	// EntryType is the exported class name, e.g. "TimerSignalDemoComponent".
	EntryType string
	// Selector is the element tag the component registers, e.g. "app-timer".
	Selector string
}

var (
	entryTypePattern = regexp.MustCompile(`export\s+(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
	selectorPattern  = regexp.MustCompile("selector\\s*:\\s*['\"`]([^'\"`]+)['\"`]")
)

// Extract scans source text for the entry type and the selector. This is a
// text search, not a parse: the first candidate of each kind in text order
// wins, including matches inside comments or strings. A missing declaration
// is a configuration error naming which one was not found.
func Extract(text string) (Declarations, error) {
	var decl Declarations

	m := entryTypePattern.FindStringSubmatch(text)
	if m == nil {
		return decl, errors.NewConfigError(errors.ErrCodeDeclarationNotFound,
			"no exported class declaration found in primary file", nil).
			WithContext("declaration", "entry_type")
	}
	decl.EntryType = m[1]

	m = selectorPattern.FindStringSubmatch(text)
	if m == nil {
		return decl, errors.NewConfigError(errors.ErrCodeDeclarationNotFound,
			"no selector declaration found in primary file", nil).
			WithContext("declaration", "selector")
	}
	decl.Selector = m[1]

	return decl, nil
}
