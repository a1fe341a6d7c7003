// services/reliability-svc/internal/engine/routes_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netreliability/pkg/apperror"
	"netreliability/pkg/domain"
)

func squareTopology(t *testing.T) *domain.Topology {
	t.Helper()
	// 0-1 (0), 1-2 (1), 2-3 (2), 3-0 (3)
	topo, err := domain.NewTopologyFromEdges(4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}})
	require.NoError(t, err)
	return topo
}

func TestPrecomputeRoutes(t *testing.T) {
	topo := squareTopology(t)
	cache, err := PrecomputeRoutes(topo)
	require.NoError(t, err)

	assert.Equal(t, 4, cache.NodeCount())
	assert.Equal(t, []domain.EdgeID{0}, cache.Route(0, 1))
	assert.Equal(t, []domain.EdgeID{0, 1}, cache.Route(0, 2), "lowest edge id wins the tie")
	assert.Equal(t, []domain.EdgeID{1, 0}, cache.Route(2, 0))
	assert.Equal(t, []domain.EdgeID{3}, cache.Route(0, 3))
	assert.Empty(t, cache.Route(2, 2))
}

func TestPrecomputeRoutes_Disconnected(t *testing.T) {
	topo, err := domain.NewTopologyFromEdges(3, [][2]int{{0, 1}})
	require.NoError(t, err)

	_, err = PrecomputeRoutes(topo)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeDisconnectedTopology))
}

func TestRouter_FastPath(t *testing.T) {
	topo := squareTopology(t)
	cache, err := PrecomputeRoutes(topo)
	require.NoError(t, err)

	router := NewRouter(cache)
	trial := topo.Clone()
	trial.RemoveEdge(2) // 2-3, не на маршруте 0->2
	router.Begin(trial)

	route, err := router.Route(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.EdgeID{0, 1}, route)
	assert.Equal(t, int64(1), router.Hits())
	assert.Equal(t, int64(0), router.Fallbacks())
}

func TestRouter_FallbackDoesNotWriteBack(t *testing.T) {
	topo := squareTopology(t)
	cache, err := PrecomputeRoutes(topo)
	require.NoError(t, err)

	router := NewRouter(cache)
	trial := topo.Clone()
	trial.RemoveEdge(0)
	router.Begin(trial)

	route, err := router.Route(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.EdgeID{3, 2}, route)
	assert.Equal(t, int64(1), router.Fallbacks())

	// маршрут 1->2 цел и берётся из кэша
	route, err = router.Route(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.EdgeID{1}, route)
	assert.Equal(t, int64(1), router.Fallbacks())

	// 1->3 в полной сети шёл через канал 0
	route, err = router.Route(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.EdgeID{1, 2}, route)
	assert.Equal(t, int64(2), router.Fallbacks())

	assert.Equal(t, []domain.EdgeID{0, 1}, cache.Route(0, 2), "cache stays fixed to the fault-free topology")

	// новое испытание без отказов снова идёт быстрым путём
	router.Begin(topo)
	route, err = router.Route(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.EdgeID{0, 1}, route)
}

func TestRouter_MemoIsPerTrial(t *testing.T) {
	topo := squareTopology(t)
	cache, err := PrecomputeRoutes(topo)
	require.NoError(t, err)
	router := NewRouter(cache)

	first := topo.Clone()
	first.RemoveEdge(0)
	router.Begin(first)
	_, err = router.Route(0, 2)
	require.NoError(t, err)

	second := topo.Clone()
	second.RemoveEdge(3)
	second.RemoveEdge(1)
	router.Begin(second)
	// 0->1 по каналу 0 цел, а 0->2 должен пройти заново: 1-2 и 3-0 удалены
	_, err = router.Route(0, 2)
	require.Error(t, err, "0 and 2 are disconnected in the second trial")
	assert.True(t, apperror.IsCritical(err))
	assert.True(t, apperror.Is(err, apperror.CodeRouteInvariant))
}
