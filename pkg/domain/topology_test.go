package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netreliability/pkg/apperror"
)

// square 0-1-2-3-0 с диагональю 0-2
func createSquare(t *testing.T) *Topology {
	t.Helper()
	topo, err := NewTopologyFromEdges(4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}})
	require.NoError(t, err)
	return topo
}

func TestNewTopologyFromEdges(t *testing.T) {
	topo := createSquare(t)

	assert.Equal(t, 4, topo.NodeCount())
	assert.Equal(t, 5, topo.EdgeCount())
	assert.Equal(t, 5, topo.InitialEdgeCount())
	assert.Equal(t, Edge{From: 2, To: 3}, topo.Edge(2))
	assert.Equal(t, []EdgeID{0, 3, 4}, topo.Incident(0))
}

func TestNewTopologyFromEdges_Errors(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		pairs [][2]int
		code  apperror.ErrorCode
	}{
		{"empty", 0, nil, apperror.CodeEmptyTopology},
		{"self loop", 3, [][2]int{{1, 1}}, apperror.CodeSelfLoop},
		{"out of range", 3, [][2]int{{0, 3}}, apperror.CodeNodeOutOfRange},
		{"negative node", 3, [][2]int{{-1, 2}}, apperror.CodeNodeOutOfRange},
		{"duplicate reversed", 3, [][2]int{{0, 1}, {1, 0}}, apperror.CodeDuplicateEdge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTopologyFromEdges(tt.n, tt.pairs)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestTopology_RemoveEdge(t *testing.T) {
	topo := createSquare(t)

	assert.True(t, topo.RemoveEdge(4))
	assert.False(t, topo.RemoveEdge(4), "second removal is a no-op")
	assert.False(t, topo.RemoveEdge(99))
	assert.False(t, topo.RemoveEdge(NoEdge))

	assert.False(t, topo.HasEdge(4))
	assert.Equal(t, 4, topo.EdgeCount())
	assert.Equal(t, 5, topo.InitialEdgeCount())
	assert.Equal(t, []EdgeID{0, 1, 2, 3}, topo.Edges())

	// идентификаторы остальных каналов не сдвигаются
	assert.Equal(t, Edge{From: 3, To: 0}, topo.Edge(3))
	assert.Equal(t, 2, topo.Degree(0))
}

func TestTopology_FindEdge(t *testing.T) {
	topo := createSquare(t)

	id, ok := topo.FindEdge(2, 0)
	require.True(t, ok)
	assert.Equal(t, EdgeID(4), id)

	_, ok = topo.FindEdge(1, 3)
	assert.False(t, ok)

	topo.RemoveEdge(4)
	_, ok = topo.FindEdge(0, 2)
	assert.False(t, ok)

	_, ok = topo.FindEdge(-1, 0)
	assert.False(t, ok)
}

func TestTopology_CloneIsIndependent(t *testing.T) {
	topo := createSquare(t)
	clone := topo.Clone()

	clone.RemoveEdge(0)
	clone.RemoveEdge(1)

	assert.True(t, topo.HasEdge(0))
	assert.True(t, topo.HasEdge(1))
	assert.Equal(t, 5, topo.EdgeCount())
	assert.Equal(t, 3, clone.EdgeCount())

	// идентичность каналов сохраняется
	for _, id := range clone.Edges() {
		assert.Equal(t, topo.Edge(id), clone.Edge(id))
	}
}

func TestTopology_AddEdgeAfterClone(t *testing.T) {
	topo, err := NewTopologyFromEdges(4, [][2]int{{0, 1}, {1, 2}})
	require.NoError(t, err)
	clone := topo.Clone()

	id, err := topo.AddEdge(1, 3)
	require.NoError(t, err)
	assert.Equal(t, EdgeID(2), id)

	assert.Equal(t, []EdgeID{0, 1, 2}, topo.Incident(1))
	assert.Equal(t, []EdgeID{0, 1}, clone.Incident(1), "clone adjacency must not see the new edge")

	_, err = clone.AddEdge(1, 3)
	require.NoError(t, err)
	assert.Equal(t, Edge{From: 1, To: 3}, topo.Edge(2))
}

func TestTopology_Reset(t *testing.T) {
	topo := createSquare(t)
	scratch := topo.Clone()

	scratch.RemoveEdge(0)
	scratch.RemoveEdge(2)
	scratch.Reset(topo)

	assert.Equal(t, topo.Edges(), scratch.Edges())
	assert.Equal(t, 5, scratch.EdgeCount())

	_, err := topo.AddEdge(1, 3)
	require.NoError(t, err)
	scratch.Reset(topo)
	assert.Equal(t, 6, scratch.EdgeCount())
	assert.True(t, scratch.HasEdge(5))
}

func TestEdge_Other(t *testing.T) {
	e := Edge{From: 3, To: 7}
	assert.Equal(t, 7, e.Other(3))
	assert.Equal(t, 3, e.Other(7))
}
