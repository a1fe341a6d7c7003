// services/reliability-svc/internal/engine/flows.go
package engine

import (
	"sync"

	"netreliability/pkg/domain"
)

// FlowTable суммарный поток по каналам, индексированный EdgeID
type FlowTable []int

var flowTablePool = sync.Pool{
	New: func() any {
		return &FlowTable{}
	},
}

// AcquireFlowTable берёт из пула таблицу на size каналов
func AcquireFlowTable(size int) *FlowTable {
	ft := flowTablePool.Get().(*FlowTable)
	if cap(*ft) < size {
		*ft = make(FlowTable, size)
	}
	*ft = (*ft)[:size]
	return ft
}

// ReleaseFlowTable возвращает таблицу в пул
func ReleaseFlowTable(ft *FlowTable) {
	if ft == nil {
		return
	}
	flowTablePool.Put(ft)
}

// ComputeFlows обнуляет flows и для каждой упорядоченной пары i != j добавляет
// интенсивность пары к каждому каналу её маршрута.
func ComputeFlows(intensity domain.IntensityMatrix, t *domain.Topology, router *Router, flows FlowTable) error {
	clear(flows)
	router.Begin(t)

	n := t.NodeCount()
	for i := 0; i < n; i++ {
		row := intensity[i]
		for j := 0; j < n; j++ {
			if i == j || row[j] == 0 {
				continue
			}
			route, err := router.Route(i, j)
			if err != nil {
				return err
			}
			for _, id := range route {
				flows[id] += row[j]
			}
		}
	}
	return nil
}

// BaselineFlows потоки в сети без отказов. Не требует таблицы пропускных
// способностей, поэтому используется и при её генерации.
func BaselineFlows(t *domain.Topology, intensity domain.IntensityMatrix) (FlowTable, error) {
	if err := intensity.Validate(t.NodeCount()); err != nil {
		return nil, err
	}
	routes, err := PrecomputeRoutes(t)
	if err != nil {
		return nil, err
	}
	flows := make(FlowTable, t.InitialEdgeCount())
	if err := ComputeFlows(intensity, t, NewRouter(routes), flows); err != nil {
		return nil, err
	}
	return flows, nil
}
