package registry

import (
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/conneroisu/showcase/internal/errors"
)

// DefaultPatternCacheSize bounds the number of compiled patterns kept.
const DefaultPatternCacheSize = 256

// PatternCache keeps compiled path patterns. Only the compiled matchers are
// cached; selection results are recomputed for every query.
type PatternCache struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// NewPatternCache creates a bounded cache. A non-positive size uses
// DefaultPatternCacheSize.
func NewPatternCache(size int) *PatternCache {
	if size <= 0 {
		size = DefaultPatternCacheSize
	}
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &PatternCache{cache: cache}
}

// Compile returns the compiled form of pattern. Syntax errors are
// configuration errors.
func (c *PatternCache) Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := c.cache.Get(pattern); ok {
		return re, nil
	}
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	c.cache.Add(pattern, re)
	return re, nil
}

// Len reports how many compiled patterns are cached.
func (c *PatternCache) Len() int {
	return c.cache.Len()
}

// CompilePattern compiles a path pattern using standard regular-expression
// syntax, e.g. "timer-signal/(timer-signal-demo|shared)". Patterns are
// unanchored: they match anywhere in the logical path.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidPattern,
			fmt.Sprintf("invalid path pattern %q", pattern), err)
	}
	return re, nil
}
