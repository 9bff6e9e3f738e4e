package registry

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/conneroisu/showcase/internal/sources"
)

// shortLabelLimit is the largest set size that is labelled by category.
const shortLabelLimit = 2

// ResolvePrimary picks the entry point of a matched set. With a pattern, the
// first entry whose path matches wins; without one, the first code entry
// wins. Ties always go to registration order. The returned pointer refers
// to an element of matches, and is nil when nothing qualifies.
func ResolvePrimary(matches []MatchedEntry, primary *regexp.Regexp) *MatchedEntry {
	for i := range matches {
		if primary != nil {
			if primary.MatchString(matches[i].Path) {
				return &matches[i]
			}
			continue
		}
		if matches[i].Category == sources.CategoryCode {
			return &matches[i]
		}
	}
	return nil
}

// Order returns a new slice holding the same entries sorted for display:
// the primary entry first, then entries sharing its extension-less name,
// then everything else by file name. Without a primary the input order is
// kept. Labels and ordinal IDs are reassigned from the final positions.
func Order(matches []MatchedEntry, primary *MatchedEntry) []MatchedEntry {
	ordered := make([]MatchedEntry, len(matches))
	copy(ordered, matches)

	if primary != nil {
		base := sources.TrimExtension(primary.FileName)
		rank := func(e MatchedEntry) int {
			switch {
			case e.Path == primary.Path:
				return 0
			case sources.TrimExtension(e.FileName) == base:
				return 1
			default:
				return 2
			}
		}

		sort.SliceStable(ordered, func(i, j int) bool {
			ri, rj := rank(ordered[i]), rank(ordered[j])
			if ri != rj {
				return ri < rj
			}
			if ri == 0 {
				return false
			}
			return ordered[i].FileName < ordered[j].FileName
		})
	}

	annotate(ordered)
	return ordered
}

// annotate assigns labels and ordinal IDs in place.
func annotate(entries []MatchedEntry) {
	short := len(entries) <= shortLabelLimit
	for i := range entries {
		if short {
			entries[i].Label = sources.ShortName(entries[i].FileName)
		} else {
			entries[i].Label = entries[i].FileName
		}
		entries[i].OrdinalID = fmt.Sprintf("tab-%d", i)
	}
}
