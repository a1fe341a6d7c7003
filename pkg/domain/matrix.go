package domain

import (
	"math"

	"netreliability/pkg/apperror"
)

// IntensityMatrix интенсивности трафика между упорядоченными парами узлов,
// в пакетах за единицу времени. Диагональ не используется и должна быть нулевой.
type IntensityMatrix [][]int

// NewIntensityMatrix создаёт нулевую матрицу n x n
func NewIntensityMatrix(n int) IntensityMatrix {
	m := make(IntensityMatrix, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

// Size возвращает число строк
func (m IntensityMatrix) Size() int {
	return len(m)
}

// Total возвращает суммарную интенсивность по всем парам i != j
func (m IntensityMatrix) Total() int64 {
	var total int64
	for i, row := range m {
		for j, v := range row {
			if i != j {
				total += int64(v)
			}
		}
	}
	return total
}

// Validate проверяет, что матрица квадратная размера n с нулевой диагональю
// и неотрицательными значениями
func (m IntensityMatrix) Validate(n int) error {
	if len(m) != n {
		return apperror.NewWithField(apperror.CodeMatrixShape,
			"intensity matrix must have one row per node", "intensity").
			WithDetails("rows", len(m)).WithDetails("nodes", n)
	}
	for i, row := range m {
		if len(row) != n {
			return apperror.NewWithField(apperror.CodeMatrixShape,
				"intensity matrix must be square", "intensity").
				WithDetails("row", i).WithDetails("columns", len(row))
		}
		for j, v := range row {
			if v < 0 {
				return apperror.NewWithField(apperror.CodeNegativeIntensity,
					"intensity must be non-negative", "intensity").
					WithDetails("from", i).WithDetails("to", j)
			}
			if i == j && v != 0 {
				return apperror.NewWithField(apperror.CodeMatrixDiagonal,
					"intensity matrix diagonal must be zero", "intensity").
					WithDetails("node", i)
			}
		}
	}
	return nil
}

// Clone возвращает глубокую копию
func (m IntensityMatrix) Clone() IntensityMatrix {
	c := make(IntensityMatrix, len(m))
	for i, row := range m {
		c[i] = append([]int(nil), row...)
	}
	return c
}

// CapacityTable пропускные способности каналов, индексированные EdgeID
type CapacityTable []int

// Validate проверяет длину таблицы и знак значений
func (c CapacityTable) Validate(edgeCount int) error {
	if len(c) != edgeCount {
		return apperror.NewWithField(apperror.CodeCapacityTableSize,
			"capacity table must have one entry per edge", "capacities").
			WithDetails("entries", len(c)).WithDetails("edges", edgeCount)
	}
	for id, v := range c {
		if v < 0 {
			return apperror.NewWithField(apperror.CodeNegativeCapacity,
				"capacity must be non-negative", "capacities").
				WithDetails("edge", id)
		}
	}
	return nil
}

// Scale умножает все пропускные способности на k с округлением вниз
func (c CapacityTable) Scale(k float64) CapacityTable {
	scaled := make(CapacityTable, len(c))
	for i, v := range c {
		scaled[i] = int(math.Floor(float64(v) * k))
	}
	return scaled
}

// ServiceRate число пакетов, которое канал успевает передать за единицу времени
func (c CapacityTable) ServiceRate(id EdgeID, packetSize int) int {
	return c[id] / packetSize
}
