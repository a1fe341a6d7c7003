// services/reliability-svc/internal/engine/growth.go
package engine

import (
	"context"
	"time"

	"netreliability/pkg/apperror"
	"netreliability/pkg/domain"
	"netreliability/pkg/logger"
)

// IntSource источник случайных индексов, *rand.Rand ему удовлетворяет
type IntSource interface {
	Intn(n int) int
}

// AddRandomEdge добавляет канал между случайной парой различных узлов, ещё не
// соединённых напрямую. Пара выбирается равновероятно среди свободных.
func AddRandomEdge(t *domain.Topology, rng IntSource) (domain.EdgeID, error) {
	n := t.NodeCount()
	free := make([][2]int, 0)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if _, ok := t.FindEdge(u, v); !ok {
				free = append(free, [2]int{u, v})
			}
		}
	}
	if len(free) == 0 {
		return domain.NoEdge, apperror.New(apperror.CodeTopologySaturated,
			"every pair of nodes is already connected")
	}
	pair := free[rng.Intn(len(free))]
	return t.AddEdge(pair[0], pair[1])
}

// GrowSpec параметры наращивания сети
type GrowSpec struct {
	Target   float64 // требуемая надёжность
	MaxEdges int     // сколько каналов можно добавить
	Capacity int     // пропускная способность новых каналов, 0 = максимум из таблицы
}

// Validate проверяет параметры
func (s GrowSpec) Validate() error {
	if s.Target <= 0 || s.Target > 1 {
		return apperror.NewWithField(apperror.CodeInvalidProbability,
			"target reliability must be within (0, 1]", "target")
	}
	if s.MaxEdges <= 0 {
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			"max edges must be positive", "max_edges")
	}
	if s.Capacity < 0 {
		return apperror.NewWithField(apperror.CodeNegativeCapacity,
			"capacity must be non-negative", "capacity")
	}
	return nil
}

// GrowStep один добавленный канал и оценка после него
type GrowStep struct {
	Step     int           `json:"step"`
	EdgeID   domain.EdgeID `json:"edge_id"`
	From     int           `json:"from"`
	To       int           `json:"to"`
	Capacity int           `json:"capacity"`
	Result   *Result       `json:"result"`
}

// GrowResult итог наращивания
type GrowResult struct {
	Target   float64       `json:"target"`
	Baseline *Result       `json:"baseline"`
	Steps    []GrowStep    `json:"steps"`
	Reached  bool          `json:"reached"`
	Duration time.Duration `json:"duration"`

	// Final входные данные итоговой сети
	Final *Inputs `json:"-"`
}

// Grow добавляет случайные каналы, пока оценка надёжности не достигнет
// Target или не исчерпается MaxEdges. После каждого канала кэш маршрутов
// строится заново и оценка повторяется с тем же зерном.
func Grow(ctx context.Context, in *Inputs, cfg Config, spec GrowSpec, rng IntSource, opts ...Option) (*GrowResult, error) {
	start := time.Now()

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	capacity := spec.Capacity
	if capacity == 0 {
		for _, c := range in.Capacities {
			capacity = max(capacity, c)
		}
	}

	baseline, err := NewMonteCarloEngine(cfg, opts...).Run(ctx, in)
	if err != nil {
		return nil, err
	}

	result := &GrowResult{
		Target:   spec.Target,
		Baseline: baseline,
		Final:    in,
		Reached:  baseline.Probability >= spec.Target,
	}
	log := logger.WithComponent("growth")

	current := in
	for step := 1; !result.Reached && step <= spec.MaxEdges; step++ {
		topo := current.Topology.Clone()
		id, err := AddRandomEdge(topo, rng)
		if err != nil {
			if apperror.Is(err, apperror.CodeTopologySaturated) {
				log.Info("topology saturated", "step", step)
				break
			}
			return nil, err
		}

		capacities := make(domain.CapacityTable, len(current.Capacities), len(current.Capacities)+1)
		copy(capacities, current.Capacities)
		capacities = append(capacities, capacity)

		next := &Inputs{
			Topology:   topo,
			Intensity:  current.Intensity,
			Capacities: capacities,
			PacketSize: current.PacketSize,
		}

		estimate, err := NewMonteCarloEngine(cfg, opts...).Run(ctx, next)
		if err != nil {
			return nil, err
		}

		edge := topo.Edge(id)
		result.Steps = append(result.Steps, GrowStep{
			Step:     step,
			EdgeID:   id,
			From:     edge.From,
			To:       edge.To,
			Capacity: capacity,
			Result:   estimate,
		})
		log.Debug("edge added", "step", step, "from", edge.From, "to", edge.To, "probability", estimate.Probability)

		current = next
		result.Final = next
		result.Reached = estimate.Probability >= spec.Target
	}

	result.Duration = time.Since(start)
	return result, nil
}
