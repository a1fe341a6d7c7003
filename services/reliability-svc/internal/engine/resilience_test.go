// services/reliability-svc/internal/engine/resilience_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netreliability/pkg/domain"
)

func TestFindBridges(t *testing.T) {
	// висячий узел 0 и треугольник 1-2-3
	topo, err := domain.NewTopologyFromEdges(4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 1}})
	require.NoError(t, err)

	assert.Equal(t, []domain.EdgeID{0}, FindBridges(topo))
	assert.Equal(t, 4, topo.EdgeCount())

	in := triangleInputs(t)
	assert.Empty(t, FindBridges(in.Topology))

	path := pathInputs(t, 4)
	assert.Equal(t, []domain.EdgeID{0, 1, 2}, FindBridges(path.Topology))
}

func TestAnalyzeEdges(t *testing.T) {
	in := triangleInputs(t)
	in.Capacities = domain.CapacityTable{1200, 239, 600}

	reports, err := AnalyzeEdges(in)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, domain.EdgeID(1), reports[0].ID)
	assert.True(t, reports[0].Overloaded)
	assert.Equal(t, 1, reports[0].ServiceRate)

	assert.Equal(t, domain.EdgeID(2), reports[1].ID)
	assert.InDelta(t, 0.4, reports[1].Utilization, 1e-12)
	assert.Equal(t, domain.EdgeID(0), reports[2].ID)
	assert.InDelta(t, 0.2, reports[2].Utilization, 1e-12)

	for _, r := range reports {
		assert.Equal(t, 2, r.BaselineFlow)
		assert.False(t, r.Bridge)
	}
}

func TestAnalyzeEdges_ZeroCapacity(t *testing.T) {
	in := pathInputs(t, 3)
	in.Capacities = domain.CapacityTable{0, 1200}

	reports, err := AnalyzeEdges(in)
	require.NoError(t, err)

	assert.Equal(t, domain.EdgeID(0), reports[0].ID)
	assert.True(t, reports[0].Overloaded)
	assert.Equal(t, 0.0, reports[0].Utilization)
	assert.True(t, reports[0].Bridge)
}
