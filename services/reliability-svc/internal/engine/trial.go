// services/reliability-svc/internal/engine/trial.go
package engine

import (
	"math"

	"netreliability/pkg/domain"
)

// Outcome конечное состояние испытания
type Outcome int

const (
	// OutcomeMeetsThreshold задержка меньше порога, испытание успешно
	OutcomeMeetsThreshold Outcome = iota
	// OutcomeBelowThreshold сеть работоспособна, но задержка не укладывается в порог
	OutcomeBelowThreshold
	// OutcomeDisconnected после отказов сеть распалась
	OutcomeDisconnected
	// OutcomeOverCapacity поток хотя бы одного канала превышает его пропускную способность
	OutcomeOverCapacity

	numOutcomes
)

// Outcomes все состояния в порядке объявления
var Outcomes = []Outcome{
	OutcomeMeetsThreshold,
	OutcomeBelowThreshold,
	OutcomeDisconnected,
	OutcomeOverCapacity,
}

func (o Outcome) String() string {
	switch o {
	case OutcomeMeetsThreshold:
		return "meets_threshold"
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomeDisconnected:
		return "disconnected"
	case OutcomeOverCapacity:
		return "over_capacity"
	default:
		return "unknown"
	}
}

// Success засчитывается ли испытание в числитель
func (o Outcome) Success() bool {
	return o == OutcomeMeetsThreshold
}

// TrialResult итог одного испытания
type TrialResult struct {
	Outcome Outcome
	Removed int
	// Delay определена только для OutcomeMeetsThreshold и OutcomeBelowThreshold
	Delay float64
}

// TrialRunner выполняет испытания над общими Inputs. Все буферы принадлежат
// экземпляру, поэтому один TrialRunner используется одним воркером.
type TrialRunner struct {
	in       *Inputs
	topo     *domain.Topology
	search   *domain.Search
	injector FaultInjector
	router   *Router
	flows    *FlowTable
}

// NewTrialRunner создаёт исполнитель. in должен быть подготовлен через Prepare.
func NewTrialRunner(in *Inputs) *TrialRunner {
	return &TrialRunner{
		in:     in,
		topo:   in.Topology.Clone(),
		search: domain.NewSearch(in.Topology.NodeCount()),
		router: NewRouter(in.Routes),
		flows:  AcquireFlowTable(in.Topology.InitialEdgeCount()),
	}
}

// Run проводит одно испытание:
//  1. копия сети без отказов;
//  2. отказы каналов с вероятностью p;
//  3. проверка связности;
//  4. расчёт потоков;
//  5. проверка пропускной способности;
//  6. расчёт задержки и сравнение с maxDelay.
//
// Ошибка означает нарушение внутреннего инварианта.
func (r *TrialRunner) Run(p, maxDelay float64, rng RandomSource) (TrialResult, error) {
	r.topo.Reset(r.in.Topology)
	res := TrialResult{Delay: math.NaN()}
	res.Removed = r.injector.Inject(r.topo, p, rng)

	if !IsConnected(r.topo, r.search) {
		res.Outcome = OutcomeDisconnected
		return res, nil
	}

	if err := ComputeFlows(r.in.Intensity, r.topo, r.router, *r.flows); err != nil {
		return res, err
	}

	if !FitsCapacity(r.in.Capacities, r.topo, *r.flows, r.in.PacketSize) {
		res.Outcome = OutcomeOverCapacity
		return res, nil
	}

	res.Delay = EstimateDelay(r.in.totalIntensity, r.topo, r.in.Capacities, *r.flows, r.in.PacketSize)
	if res.Delay < maxDelay {
		res.Outcome = OutcomeMeetsThreshold
	} else {
		res.Outcome = OutcomeBelowThreshold
	}
	return res, nil
}

// Flows потоки последнего испытания, дошедшего до их расчёта
func (r *TrialRunner) Flows() FlowTable {
	return *r.flows
}

// Topology сеть последнего испытания
func (r *TrialRunner) Topology() *domain.Topology {
	return r.topo
}

// Router маршрутизатор исполнителя
func (r *TrialRunner) Router() *Router {
	return r.router
}

// Close возвращает буферы в пул
func (r *TrialRunner) Close() {
	ReleaseFlowTable(r.flows)
	r.flows = nil
}
