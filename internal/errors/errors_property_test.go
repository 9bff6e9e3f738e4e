//go:build property

package errors

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type demoFailure struct {
	Demo  string
	Stage string
}

// TestErrorCollectorProperties validates error collection and aggregation properties
func TestErrorCollectorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("concurrent error addition is thread-safe", prop.ForAll(
		func(goroutineCount int, errorsPerGoroutine int) bool {
			collector := NewErrorCollector()

			var wg sync.WaitGroup
			for g := 0; g < goroutineCount; g++ {
				wg.Add(1)
				go func(goroutineID int) {
					defer wg.Done()
					for e := 0; e < errorsPerGoroutine; e++ {
						collector.Add(fmt.Sprintf("demo-%d", goroutineID), "export",
							NewConfigError(ErrCodeNoPrimary, fmt.Sprintf("iteration %d", e), nil))
					}
				}(g)
			}
			wg.Wait()

			return len(collector.GetErrors()) == goroutineCount*errorsPerGoroutine
		},
		gen.IntRange(1, 10),
		gen.IntRange(1, 20),
	))

	properties.Property("errors are grouped by demo in name order", prop.ForAll(
		func(failures []demoFailure) bool {
			collector := NewErrorCollector()
			for i, f := range failures {
				collector.Add(f.Demo, f.Stage, fmt.Errorf("failure %d", i))
			}

			all := collector.GetErrors()
			if len(all) != len(failures) {
				return false
			}
			return sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Demo < all[j].Demo })
		},
		genFailures(),
	))

	properties.Property("per-demo errors keep insertion order", prop.ForAll(
		func(failures []demoFailure) bool {
			collector := NewErrorCollector()
			for i, f := range failures {
				collector.Add(f.Demo, f.Stage, fmt.Errorf("%d", i))
			}

			for _, f := range failures {
				last := -1
				for _, de := range collector.GetErrorsByDemo(f.Demo) {
					var n int
					fmt.Sscanf(de.Err.Error(), "%d", &n)
					if n <= last || failures[n].Demo != f.Demo {
						return false
					}
					last = n
				}
			}
			return true
		},
		genFailures(),
	))

	properties.Property("nil errors are ignored", prop.ForAll(
		func(failures []demoFailure) bool {
			collector := NewErrorCollector()
			for _, f := range failures {
				collector.Add(f.Demo, f.Stage, nil)
			}
			return !collector.HasErrors()
		},
		genFailures(),
	))

	properties.TestingRun(t)
}

// TestShowcaseErrorProperties validates classification of wrapped errors
func TestShowcaseErrorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("classification survives wrapping", prop.ForAll(
		func(depth int, code string) bool {
			var err error = NewCollaboratorError(code, "launch failed", nil)
			for i := 0; i < depth; i++ {
				err = fmt.Errorf("layer %d: %w", i, err)
			}
			return IsCollaboratorError(err) && !IsConfigError(err) && HasCode(err, code)
		},
		gen.IntRange(0, 8),
		gen.OneConstOf(ErrCodeLaunchFailed, ErrCodeSourceLoad, ErrCodeNoPrimary),
	))

	properties.Property("message carries code and demo", prop.ForAll(
		func(demo string) bool {
			msg := NewConfigError(ErrCodeUnknownDemo, "unknown demo", nil).WithDemo(demo).Error()
			return strings.Contains(msg, "["+ErrCodeUnknownDemo+"]") && strings.Contains(msg, "demo:"+demo)
		},
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func genFailures() gopter.Gen {
	return gen.SliceOf(gopter.CombineGens(
		gen.OneConstOf("timer-signal", "resource-loader", "broken"),
		gen.OneConstOf("select", "export"),
	).Map(func(values []interface{}) demoFailure {
		return demoFailure{Demo: values[0].(string), Stage: values[1].(string)}
	}))
}
