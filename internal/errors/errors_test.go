package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowcaseErrorError(t *testing.T) {
	err := NewConfigError(ErrCodeInvalidPattern, "invalid pattern", fmt.Errorf("missing closing )")).
		WithDemo("timer-signal").
		WithPath("timer-signal/(demo")

	msg := err.Error()
	assert.Contains(t, msg, "[ERR_INVALID_PATTERN]")
	assert.Contains(t, msg, "demo:timer-signal")
	assert.Contains(t, msg, "timer-signal/(demo")
	assert.Contains(t, msg, "invalid pattern")
	assert.Contains(t, msg, "missing closing )")
}

func TestShowcaseErrorUnwrapAndIs(t *testing.T) {
	cause := errors.New("boom")
	err := NewCollaboratorError(ErrCodeLaunchFailed, "launch failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.Is(err, &ShowcaseError{Type: ErrorTypeNetwork, Code: ErrCodeLaunchFailed}))
	assert.False(t, errors.Is(err, &ShowcaseError{Type: ErrorTypeConfig, Code: ErrCodeLaunchFailed}))
}

func TestErrorCategories(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		config       bool
		collaborator bool
		internal     bool
	}{
		{"config", NewConfigError(ErrCodeNoPrimary, "no primary", nil), true, false, false},
		{"collaborator", NewCollaboratorError(ErrCodeLaunchFailed, "x", nil), false, true, false},
		{"internal", NewInternalError(ErrCodePathCollision, "x", nil), false, false, true},
		{"wrapped config", fmt.Errorf("outer: %w", NewConfigError(ErrCodeUnknownDemo, "x", nil)), true, false, false},
		{"plain", errors.New("plain"), false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.config, IsConfigError(tc.err))
			assert.Equal(t, tc.collaborator, IsCollaboratorError(tc.err))
			assert.Equal(t, tc.internal, IsInternalError(tc.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewInternalError(ErrCodePathCollision, "collision", nil))
	assert.True(t, HasCode(err, ErrCodePathCollision))
	assert.False(t, HasCode(err, ErrCodeNoPrimary))
	assert.False(t, HasCode(nil, ErrCodeNoPrimary))
}

func TestWithContext(t *testing.T) {
	err := NewConfigError(ErrCodeDeclarationNotFound, "missing", nil).
		WithContext("declaration", "selector")
	require.NotNil(t, err.Context)
	assert.Equal(t, "selector", err.Context["declaration"])
}

type recordingLogger struct {
	errors []string
	warns  []string
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.errors = append(r.errors, msg)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.warns = append(r.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)
	ctx := context.Background()

	handler.Handle(ctx, nil)
	handler.Handle(ctx, NewConfigError(ErrCodeInvalidPattern, "bad", nil))
	handler.Handle(ctx, NewCollaboratorError(ErrCodeLaunchFailed, "bad", nil))
	handler.Handle(ctx, errors.New("plain"))

	assert.Equal(t, []string{"Configuration error", "Unhandled error occurred"}, logger.errors)
	assert.Equal(t, []string{"Collaborator failure"}, logger.warns)
}

func TestErrorCollector(t *testing.T) {
	collector := NewErrorCollector()
	assert.False(t, collector.HasErrors())

	collector.Add("zeta", "select", errors.New("one"))
	collector.Add("alpha", "export", errors.New("two"))
	collector.Add("alpha", "select", errors.New("three"))
	collector.Add("alpha", "select", nil)

	require.True(t, collector.HasErrors())
	all := collector.GetErrors()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Demo)
	assert.Equal(t, "export", all[0].Stage)
	assert.Equal(t, "select", all[1].Stage)
	assert.Equal(t, "zeta", all[2].Demo)

	assert.Len(t, collector.GetErrorsByDemo("alpha"), 2)
	assert.Equal(t, "zeta: select: one", collector.GetErrorsByDemo("zeta")[0].Error())
}
