package errors

import (
	"sort"
	"sync"
)

// DemoError records a failure attributed to one configured demo.
type DemoError struct {
	Demo  string
	Stage string
	Err   error
}

// Error implements the error interface
func (de *DemoError) Error() string {
	return de.Demo + ": " + de.Stage + ": " + de.Err.Error()
}

// Unwrap returns the wrapped error
func (de *DemoError) Unwrap() error {
	return de.Err
}

// ErrorCollector collects errors across demos so a validation run can report
// every problem instead of stopping at the first one.
type ErrorCollector struct {
	demoErrors []DemoError
	mutex      sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		demoErrors: make([]DemoError, 0),
	}
}

// Add records a failure for a demo at the given pipeline stage
func (ec *ErrorCollector) Add(demo, stage string, err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.demoErrors = append(ec.demoErrors, DemoError{Demo: demo, Stage: stage, Err: err})
}

// GetErrors returns all collected errors sorted by demo name, keeping the
// insertion order within a demo
func (ec *ErrorCollector) GetErrors() []DemoError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]DemoError, len(ec.demoErrors))
	copy(result, ec.demoErrors)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Demo < result[j].Demo
	})
	return result
}

// GetErrorsByDemo returns errors for a specific demo
func (ec *ErrorCollector) GetErrorsByDemo(demo string) []DemoError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var demoErrors []DemoError
	for _, err := range ec.demoErrors {
		if err.Demo == demo {
			demoErrors = append(demoErrors, err)
		}
	}
	return demoErrors
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.demoErrors) > 0
}
