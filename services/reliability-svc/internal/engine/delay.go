// services/reliability-svc/internal/engine/delay.go
package engine

import (
	"math"

	"netreliability/pkg/domain"
)

// EstimateDelay средняя задержка пакета по модели M/M/1:
//
//	T = 1/γ · Σ f_e / (μ_e − f_e),  μ_e = capacity_e / packetSize
//
// где γ суммарная интенсивность, μ_e пропускная способность канала в пакетах.
// В отличие от FitsCapacity, μ_e здесь дробная: округление вниз относится
// только к проверке пропускной способности.
//
// Граничные случаи:
//   - канал без потока ничего не добавляет, даже при μ_e == 0;
//   - канал с f_e >= μ_e делает задержку бесконечной, такое испытание не
//     укладывается ни в какой порог;
//   - при γ == 0 задержка равна нулю.
func EstimateDelay(totalIntensity int64, t *domain.Topology, capacities domain.CapacityTable, flows FlowTable, packetSize int) float64 {
	if totalIntensity == 0 {
		return 0
	}

	var sum float64
	for id, f := range flows {
		if f == 0 || !t.HasEdge(domain.EdgeID(id)) {
			continue
		}
		mu := float64(capacities[id]) / float64(packetSize)
		if float64(f) >= mu {
			return math.Inf(1)
		}
		sum += float64(f) / (mu - float64(f))
	}

	return sum / float64(totalIntensity)
}
