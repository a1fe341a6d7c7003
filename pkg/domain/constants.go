package domain

import "math"

// Математические константы
const (
	Epsilon = 1e-9
)

// Параметры эталонного эксперимента
const (
	DefaultNetworkSize = 20
	DefaultEdgeCount   = 28
	DefaultPacketSize  = 120
	DefaultTrials      = 1_000_000
)

// FloatEquals сравнивает два float64 с учётом Epsilon
func FloatEquals(a, b float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) < Epsilon
}
