// services/reliability-svc/internal/engine/capacity.go
package engine

import "netreliability/pkg/domain"

// FitsCapacity проверяет, что поток ни одного присутствующего канала не
// превышает capacity/packetSize (целочисленное деление)
func FitsCapacity(capacities domain.CapacityTable, t *domain.Topology, flows FlowTable, packetSize int) bool {
	_, ok := FirstOverloaded(capacities, t, flows, packetSize)
	return !ok
}

// FirstOverloaded возвращает первый перегруженный канал
func FirstOverloaded(capacities domain.CapacityTable, t *domain.Topology, flows FlowTable, packetSize int) (domain.EdgeID, bool) {
	for id := range flows {
		eid := domain.EdgeID(id)
		if !t.HasEdge(eid) {
			continue
		}
		if flows[id] > capacities.ServiceRate(eid, packetSize) {
			return eid, true
		}
	}
	return domain.NoEdge, false
}
