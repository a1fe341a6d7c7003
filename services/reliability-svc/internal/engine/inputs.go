// services/reliability-svc/internal/engine/inputs.go
package engine

import (
	"netreliability/pkg/apperror"
	"netreliability/pkg/domain"
)

// Inputs исходные данные оценки. После Prepare все поля только читаются
// и могут разделяться между воркерами и движками. Изменять Inputs после
// Prepare нельзя.
type Inputs struct {
	Topology   *domain.Topology
	Intensity  domain.IntensityMatrix
	Capacities domain.CapacityTable
	PacketSize int

	// Routes строится в Prepare, если не задан заранее
	Routes *RoutesCache

	totalIntensity int64
	prepared       bool
}

// Validate проверяет предусловия запуска: размерности таблиц, размер пакета
// и связность сети без отказов.
func (in *Inputs) Validate() error {
	if in == nil || in.Topology == nil {
		return apperror.New(apperror.CodeNilInput, "topology is required")
	}
	n := in.Topology.NodeCount()
	if n == 0 {
		return apperror.New(apperror.CodeEmptyTopology, "topology has no nodes")
	}
	if in.PacketSize <= 0 {
		return apperror.NewWithField(apperror.CodeInvalidPacketSize,
			"packet size must be positive", "packet_size").
			WithDetails("packet_size", in.PacketSize)
	}
	if err := in.Intensity.Validate(n); err != nil {
		return err
	}
	if err := in.Capacities.Validate(in.Topology.InitialEdgeCount()); err != nil {
		return err
	}
	if !IsConnected(in.Topology, domain.NewSearch(n)) {
		return apperror.New(apperror.CodeDisconnectedTopology,
			"fault-free topology must be connected").
			WithDetails("reachable", domain.ReachableCount(in.Topology, 0)).
			WithDetails("nodes", n)
	}
	return nil
}

// Prepare валидирует входные данные и строит кэш маршрутов.
// Повторный вызов ничего не делает.
func (in *Inputs) Prepare() error {
	if in != nil && in.prepared {
		return nil
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if in.Routes == nil || in.Routes.NodeCount() != in.Topology.NodeCount() {
		routes, err := PrecomputeRoutes(in.Topology)
		if err != nil {
			return err
		}
		in.Routes = routes
	}
	in.totalIntensity = in.Intensity.Total()
	in.prepared = true
	return nil
}

// TotalIntensity суммарная интенсивность, вычисленная в Prepare
func (in *Inputs) TotalIntensity() int64 {
	return in.totalIntensity
}

// WithCapacities возвращает копию входных данных с другой таблицей
// пропускных способностей. Кэш маршрутов переиспользуется.
func (in *Inputs) WithCapacities(c domain.CapacityTable) *Inputs {
	out := *in
	out.Capacities = c
	out.prepared = false
	return &out
}
