package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netreliability/pkg/apperror"
)

func TestIntensityMatrix_Total(t *testing.T) {
	m := IntensityMatrix{
		{0, 1, 2},
		{3, 0, 4},
		{5, 6, 0},
	}
	assert.Equal(t, int64(21), m.Total())
	assert.Equal(t, 3, m.Size())
}

func TestIntensityMatrix_Validate(t *testing.T) {
	tests := []struct {
		name string
		m    IntensityMatrix
		n    int
		code apperror.ErrorCode
	}{
		{"valid", IntensityMatrix{{0, 1}, {1, 0}}, 2, ""},
		{"too few rows", IntensityMatrix{{0, 1}}, 2, apperror.CodeMatrixShape},
		{"ragged", IntensityMatrix{{0, 1}, {1}}, 2, apperror.CodeMatrixShape},
		{"negative", IntensityMatrix{{0, -1}, {1, 0}}, 2, apperror.CodeNegativeIntensity},
		{"diagonal", IntensityMatrix{{0, 1}, {1, 5}}, 2, apperror.CodeMatrixDiagonal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate(tt.n)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestIntensityMatrix_Clone(t *testing.T) {
	m := NewIntensityMatrix(2)
	m[0][1] = 7
	c := m.Clone()
	c[0][1] = 1
	assert.Equal(t, 7, m[0][1])
}

func TestCapacityTable(t *testing.T) {
	c := CapacityTable{1200, 1250, 0}

	require.NoError(t, c.Validate(3))
	assert.True(t, apperror.Is(c.Validate(2), apperror.CodeCapacityTableSize))
	assert.True(t, apperror.Is(CapacityTable{1, -1}.Validate(2), apperror.CodeNegativeCapacity))

	assert.Equal(t, 10, c.ServiceRate(0, 120))
	assert.Equal(t, 10, c.ServiceRate(1, 120), "service rate is floored")
	assert.Equal(t, CapacityTable{1800, 1875, 0}, c.Scale(1.5))
}
