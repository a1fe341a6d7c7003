// services/reliability-svc/internal/netgen/generator.go
package netgen

import (
	"math"
	"math/rand"

	"netreliability/pkg/apperror"
	"netreliability/pkg/domain"
	"netreliability/services/reliability-svc/internal/engine"
)

// DefaultSeed зерно генератора сети по умолчанию
const DefaultSeed = 42

// GenerateTopology строит связную сеть из n узлов и e каналов.
//
// Сначала узлы замыкаются в кольцо, затем добавляются случайные хорды между
// ещё не соединёнными парами. Каналы кольца получают идентификаторы 0..n-1.
func GenerateTopology(n, e int, rng *rand.Rand) (*domain.Topology, error) {
	if n <= 0 {
		return nil, apperror.NewWithField(apperror.CodeEmptyTopology,
			"network must have at least one node", "nodes")
	}

	ring := n
	switch n {
	case 1:
		ring = 0
	case 2:
		ring = 1
	}
	maxEdges := n * (n - 1) / 2
	if e < ring || e > maxEdges {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			"edge count must allow a ring and fit a simple graph", "edges").
			WithDetails("edges", e).WithDetails("min", ring).WithDetails("max", maxEdges)
	}

	t := domain.NewTopology(n)
	for i := 0; i < ring; i++ {
		if _, err := t.AddEdge(i, (i+1)%n); err != nil {
			return nil, err
		}
	}

	free := make([][2]int, 0, maxEdges-ring)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if _, ok := t.FindEdge(u, v); !ok {
				free = append(free, [2]int{u, v})
			}
		}
	}
	rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})

	for _, pair := range free[:e-ring] {
		if _, err := t.AddEdge(pair[0], pair[1]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// DefaultTopology сеть из 20 узлов и 28 каналов с фиксированным зерном
func DefaultTopology() *domain.Topology {
	t, err := GenerateTopology(domain.DefaultNetworkSize, domain.DefaultEdgeCount, rand.New(rand.NewSource(DefaultSeed)))
	if err != nil {
		panic(err)
	}
	return t
}

// GenerateIntensityMatrix случайная матрица интенсивностей из [lo, hi] с нулевой диагональю
func GenerateIntensityMatrix(n, lo, hi int, rng *rand.Rand) (domain.IntensityMatrix, error) {
	if lo < 0 || hi < lo {
		return nil, apperror.NewWithField(apperror.CodeNegativeIntensity,
			"intensity range must satisfy 0 <= min <= max", "intensity").
			WithDetails("min", lo).WithDetails("max", hi)
	}

	m := domain.NewIntensityMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m[i][j] = lo + rng.Intn(hi-lo+1)
			}
		}
	}
	return m, nil
}

// GenerateCapacities подбирает пропускные способности под базовые потоки:
// ceil(поток*multiplier) пакетов, но не меньше одного.
func GenerateCapacities(baseFlows []int, packetSize int, multiplier float64) (domain.CapacityTable, error) {
	if packetSize <= 0 {
		return nil, apperror.NewWithField(apperror.CodeInvalidPacketSize,
			"packet size must be positive", "packet_size")
	}
	if !(multiplier > 0) {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			"capacity multiplier must be positive", "capacity_multiplier")
	}

	capacities := make(domain.CapacityTable, len(baseFlows))
	for id, f := range baseFlows {
		packets := int(math.Ceil(float64(f) * multiplier))
		capacities[id] = max(packets, 1) * packetSize
	}
	return capacities, nil
}

// Params параметры генерации полной задачи
type Params struct {
	Nodes              int
	Edges              int
	IntensityMin       int
	IntensityMax       int
	CapacityMultiplier float64
	PacketSize         int
	Seed               int64
}

// DefaultParams параметры стандартной сети
func DefaultParams() Params {
	return Params{
		Nodes:              domain.DefaultNetworkSize,
		Edges:              domain.DefaultEdgeCount,
		IntensityMin:       0,
		IntensityMax:       10,
		CapacityMultiplier: 2,
		PacketSize:         domain.DefaultPacketSize,
		Seed:               DefaultSeed,
	}
}

// Generate строит сеть, матрицу интенсивностей и таблицу пропускных способностей.
// Пропускные способности рассчитываются по потокам в сети без отказов.
func Generate(p Params) (*engine.Inputs, error) {
	rng := rand.New(rand.NewSource(p.Seed))

	topo, err := GenerateTopology(p.Nodes, p.Edges, rng)
	if err != nil {
		return nil, err
	}
	intensity, err := GenerateIntensityMatrix(p.Nodes, p.IntensityMin, p.IntensityMax, rng)
	if err != nil {
		return nil, err
	}
	flows, err := engine.BaselineFlows(topo, intensity)
	if err != nil {
		return nil, err
	}
	capacities, err := GenerateCapacities(flows, p.PacketSize, p.CapacityMultiplier)
	if err != nil {
		return nil, err
	}

	return &engine.Inputs{
		Topology:   topo,
		Intensity:  intensity,
		Capacities: capacities,
		PacketSize: p.PacketSize,
	}, nil
}
