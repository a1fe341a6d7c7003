// services/reliability-svc/internal/engine/helpers_test.go
package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"netreliability/pkg/domain"
	"netreliability/pkg/logger"
)

func init() {
	logger.Init("error")
}

// ============================================================
// FIXTURES
// ============================================================

const testPacketSize = 120

// seqSource возвращает значения по кругу
type seqSource struct {
	values []float64
	next   int
	calls  int
}

func (s *seqSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	s.calls++
	return v
}

func constSource(v float64) *seqSource {
	return &seqSource{values: []float64{v}}
}

func uniformIntensity(n, value int) domain.IntensityMatrix {
	m := domain.NewIntensityMatrix(n)
	for i := range m {
		for j := range m[i] {
			if i != j {
				m[i][j] = value
			}
		}
	}
	return m
}

func uniformCapacities(edges, value int) domain.CapacityTable {
	c := make(domain.CapacityTable, edges)
	for i := range c {
		c[i] = value
	}
	return c
}

// triangleInputs треугольник 0-1, 1-2, 0-2, интенсивность 1, пропускная способность 10 пакетов
func triangleInputs(t *testing.T) *Inputs {
	t.Helper()
	topo, err := domain.NewTopologyFromEdges(3, [][2]int{{0, 1}, {1, 2}, {0, 2}})
	require.NoError(t, err)
	return &Inputs{
		Topology:   topo,
		Intensity:  uniformIntensity(3, 1),
		Capacities: uniformCapacities(3, testPacketSize*10),
		PacketSize: testPacketSize,
	}
}

// randomTopology кольцо плюс extra хорд
func randomTopology(seed int64, n, extra int) *domain.Topology {
	rng := rand.New(rand.NewSource(seed))
	topo := domain.NewTopology(n)
	for i := 0; i < n; i++ {
		_, _ = topo.AddEdge(i, (i+1)%n)
	}
	if limit := n*(n-1)/2 - topo.EdgeCount(); extra > limit {
		extra = limit
	}
	for added := 0; added < extra; {
		if _, err := topo.AddEdge(rng.Intn(n), rng.Intn(n)); err == nil {
			added++
		}
	}
	return topo
}

func randomIntensity(seed int64, n int) domain.IntensityMatrix {
	rng := rand.New(rand.NewSource(seed))
	m := domain.NewIntensityMatrix(n)
	for i := range m {
		for j := range m[i] {
			if i != j {
				m[i][j] = rng.Intn(5)
			}
		}
	}
	return m
}

// ringInputs кольцо из n узлов с большим запасом пропускной способности
func ringInputs(t *testing.T, n int) *Inputs {
	t.Helper()
	topo := randomTopology(1, n, 0)
	return &Inputs{
		Topology:   topo,
		Intensity:  uniformIntensity(n, 1),
		Capacities: uniformCapacities(topo.InitialEdgeCount(), testPacketSize*1000),
		PacketSize: testPacketSize,
	}
}

func removeByMask(t *domain.Topology, mask uint64) {
	for _, id := range t.Edges() {
		if mask&(1<<(uint(id)%64)) != 0 {
			t.RemoveEdge(id)
		}
	}
}
