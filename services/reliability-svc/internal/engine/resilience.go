// services/reliability-svc/internal/engine/resilience.go
package engine

import (
	"sort"

	"netreliability/pkg/domain"
)

// FindBridges анализ N-1: каналы, удаление любого из которых разрывает сеть.
// Такие каналы делают вероятность разрыва не меньше p при любом числе
// резервных маршрутов в остальной сети.
func FindBridges(t *domain.Topology) []domain.EdgeID {
	search := domain.NewSearch(t.NodeCount())
	scratch := t.Clone()

	var bridges []domain.EdgeID
	for _, id := range t.Edges() {
		scratch.Reset(t)
		scratch.RemoveEdge(id)
		if !IsConnected(scratch, search) {
			bridges = append(bridges, id)
		}
	}
	return bridges
}

// EdgeReport состояние канала в сети без отказов
type EdgeReport struct {
	ID           domain.EdgeID `json:"id"`
	From         int           `json:"from"`
	To           int           `json:"to"`
	Capacity     int           `json:"capacity"`
	ServiceRate  int           `json:"service_rate"`
	BaselineFlow int           `json:"baseline_flow"`
	Utilization  float64       `json:"utilization"` // поток / пропускная способность в пакетах
	Overloaded   bool          `json:"overloaded"`
	Bridge       bool          `json:"bridge"`
}

// AnalyzeEdges считает загрузку каналов без отказов и отмечает мосты.
// Перегруженные каналы идут первыми, остальные по убыванию загрузки.
func AnalyzeEdges(in *Inputs) ([]EdgeReport, error) {
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	flows := make(FlowTable, in.Topology.InitialEdgeCount())
	if err := ComputeFlows(in.Intensity, in.Topology, NewRouter(in.Routes), flows); err != nil {
		return nil, err
	}

	bridges := make(map[domain.EdgeID]bool)
	for _, id := range FindBridges(in.Topology) {
		bridges[id] = true
	}

	reports := make([]EdgeReport, 0, in.Topology.EdgeCount())
	for _, id := range in.Topology.Edges() {
		edge := in.Topology.Edge(id)
		rate := in.Capacities.ServiceRate(id, in.PacketSize)
		r := EdgeReport{
			ID:           id,
			From:         edge.From,
			To:           edge.To,
			Capacity:     in.Capacities[id],
			ServiceRate:  rate,
			BaselineFlow: flows[id],
			Overloaded:   flows[id] > rate,
			Bridge:       bridges[id],
		}
		if rate > 0 {
			r.Utilization = float64(flows[id]) / float64(rate)
		}
		reports = append(reports, r)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].Overloaded != reports[j].Overloaded {
			return reports[i].Overloaded
		}
		return reports[i].Utilization > reports[j].Utilization
	})
	return reports, nil
}
