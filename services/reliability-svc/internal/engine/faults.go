// services/reliability-svc/internal/engine/faults.go
package engine

import "netreliability/pkg/domain"

// RandomSource источник равномерных чисел в [0, 1).
// *rand.Rand удовлетворяет интерфейсу, тесты подставляют фиксированные последовательности.
type RandomSource interface {
	Float64() float64
}

// FaultInjector удаляет отказавшие каналы. Переиспользует буфер между испытаниями.
type FaultInjector struct {
	failed []domain.EdgeID
}

// Inject бросает по одному числу r на каждый присутствующий канал в порядке
// возрастания EdgeID. Канал отказывает при r < p, при r == p он остаётся.
// Отказавшие каналы удаляются одним проходом после всех бросков.
// Возвращает число удалённых каналов.
func (f *FaultInjector) Inject(t *domain.Topology, p float64, rng RandomSource) int {
	f.failed = f.failed[:0]
	for id := domain.EdgeID(0); int(id) < t.InitialEdgeCount(); id++ {
		if !t.HasEdge(id) {
			continue
		}
		if rng.Float64() < p {
			f.failed = append(f.failed, id)
		}
	}

	for _, id := range f.failed {
		t.RemoveEdge(id)
	}
	return len(f.failed)
}

// InjectFaults разовый вариант FaultInjector.Inject
func InjectFaults(t *domain.Topology, p float64, rng RandomSource) int {
	var f FaultInjector
	return f.Inject(t, p, rng)
}
