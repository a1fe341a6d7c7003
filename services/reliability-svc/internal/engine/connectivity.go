// services/reliability-svc/internal/engine/connectivity.go
package engine

import "netreliability/pkg/domain"

// ReferenceNode узел, от которого проверяется связность
const ReferenceNode = 0

// IsConnected проверяет, что из узла 0 достижимы все узлы сети
func IsConnected(t *domain.Topology, search *domain.Search) bool {
	if t.NodeCount() == 0 {
		return false
	}
	return search.Distances(t, ReferenceNode) == t.NodeCount()
}
