package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeDisconnectedTopology, "topology is not connected"),
			expected: "[DISCONNECTED_TOPOLOGY] topology is not connected",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeInvalidProbability, "must be within [0, 1]", "fault_probability"),
			expected: "[INVALID_PROBABILITY] must be within [0, 1] (field: fault_probability)",
		},
		{
			name:     "with cause",
			err:      Wrap(errors.New("boom"), CodeInternal, "run failed"),
			expected: "[INTERNAL_ERROR] run failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CodeInternal, "wrapped error")

	assert.Same(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("setup: %w", New(CodeMatrixShape, "bad shape"))

	assert.True(t, Is(err, CodeMatrixShape))
	assert.False(t, Is(err, CodeInternal))
	assert.False(t, Is(errors.New("plain"), CodeMatrixShape))
}

func TestCode(t *testing.T) {
	assert.Equal(t, CodeRouteInvariant, Code(NewCritical(CodeRouteInvariant, "x")))
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitInvalidInput, ExitCode(New(CodeCapacityTableSize, "x")))
	assert.Equal(t, ExitInvalidInput, ExitCode(fmt.Errorf("wrapped: %w", New(CodeInvalidTrials, "x"))))
	assert.Equal(t, ExitFailure, ExitCode(New(CodeRouteInvariant, "x")))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("plain")))
}

func TestIsCritical(t *testing.T) {
	assert.True(t, IsCritical(NewCritical(CodeRouteInvariant, "x")))
	assert.False(t, IsCritical(New(CodeRouteInvariant, "x")))
	assert.False(t, IsCritical(errors.New("plain")))
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	require.NoError(t, v.Err())
	assert.Nil(t, v.First())

	v.AddErrorWithField(CodeMatrixShape, "matrix must be 3x3", "intensity")
	v.AddErrorWithField(CodeCapacityTableSize, "need 3 capacities", "capacities")

	require.True(t, v.HasErrors())
	err := v.Err()
	require.Error(t, err)
	assert.True(t, Is(err, CodeMatrixShape))

	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Details["also"], 1)
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
