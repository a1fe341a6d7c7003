// services/reliability-svc/internal/engine/sensitivity.go
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"netreliability/pkg/apperror"
	"netreliability/pkg/logger"
)

// SweepParameter варьируемый параметр
type SweepParameter string

const (
	SweepFaultProbability   SweepParameter = "fault_probability"
	SweepMaxDelay           SweepParameter = "max_delay"
	SweepCapacityMultiplier SweepParameter = "capacity_multiplier"
)

// ParseSweepParameter разбирает имя параметра
func ParseSweepParameter(s string) (SweepParameter, error) {
	switch p := SweepParameter(s); p {
	case SweepFaultProbability, SweepMaxDelay, SweepCapacityMultiplier:
		return p, nil
	default:
		return "", apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unknown sweep parameter %q", s), "parameter")
	}
}

// SweepSpec описание серии оценок
type SweepSpec struct {
	Parameter SweepParameter
	From      float64
	To        float64
	Steps     int // число точек, включая обе границы

	// Target пороговая надёжность. Если > 0, в результате ищется первое
	// значение параметра, при котором оценка падает ниже Target.
	Target float64

	// Parallelism число одновременно оцениваемых точек, 0 = по числу CPU
	Parallelism int
}

// Validate проверяет описание серии
func (s SweepSpec) Validate() error {
	if _, err := ParseSweepParameter(string(s.Parameter)); err != nil {
		return err
	}
	if s.Steps < 2 {
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			"sweep needs at least two steps", "steps")
	}
	if s.Target < 0 || s.Target > 1 {
		return apperror.NewWithField(apperror.CodeInvalidProbability,
			"target reliability must be within [0, 1]", "target")
	}
	switch s.Parameter {
	case SweepFaultProbability:
		if s.From < 0 || s.To > 1 || s.From > s.To {
			return apperror.NewWithField(apperror.CodeInvalidProbability,
				"fault probability range must satisfy 0 <= from <= to <= 1", "range")
		}
	default:
		if !(s.From > 0) || s.From > s.To {
			return apperror.NewWithField(apperror.CodeInvalidArgument,
				"range must satisfy 0 < from <= to", "range")
		}
	}
	return nil
}

// Values значения параметра, равномерно от From до To
func (s SweepSpec) Values() []float64 {
	values := make([]float64, s.Steps)
	step := (s.To - s.From) / float64(s.Steps-1)
	for i := range values {
		values[i] = s.From + float64(i)*step
	}
	values[s.Steps-1] = s.To
	return values
}

// SweepPoint одна точка серии
type SweepPoint struct {
	Value  float64 `json:"value"`
	Result *Result `json:"result"`
}

// SweepResult результат серии
type SweepResult struct {
	Parameter SweepParameter `json:"parameter"`
	Points    []SweepPoint   `json:"points"`
	Target    float64        `json:"target,omitempty"`
	// Crossing первое значение параметра, при котором надёжность ниже Target
	Crossing    float64       `json:"crossing,omitempty"`
	HasCrossing bool          `json:"has_crossing"`
	Seed        int64         `json:"seed"`
	Duration    time.Duration `json:"duration"`
}

type sweepTask struct {
	index int
	value float64
}

// Sweep оценивает надёжность для ряда значений одного параметра.
//
// Все точки используют одно зерно, поэтому соседние точки видят одни и те же
// случайные числа и кривая получается гладкой. Точки считаются параллельно
// в пуле горутин, воркеры движка делятся между точками.
func Sweep(ctx context.Context, in *Inputs, base Config, spec SweepSpec, opts ...Option) (*SweepResult, error) {
	start := time.Now()

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := in.Prepare(); err != nil {
		return nil, err
	}
	if base.Seed == 0 {
		base.Seed = time.Now().UnixNano()
	}

	values := spec.Values()

	parallelism := spec.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(values) {
		parallelism = len(values)
	}
	if base.Workers == 0 {
		base.Workers = max(1, runtime.NumCPU()/parallelism)
	}

	points := make([]SweepPoint, len(values))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	taskFunc := func(payload interface{}) {
		defer wg.Done()
		task := payload.(sweepTask)

		if ctx.Err() != nil {
			setErr(ctx.Err())
			return
		}

		cfg := base
		pointInputs := in
		switch spec.Parameter {
		case SweepFaultProbability:
			cfg.FaultProbability = task.value
		case SweepMaxDelay:
			cfg.MaxDelay = task.value
		case SweepCapacityMultiplier:
			pointInputs = in.WithCapacities(in.Capacities.Scale(task.value))
		}

		result, err := NewMonteCarloEngine(cfg, opts...).Run(ctx, pointInputs)
		if err != nil {
			setErr(fmt.Errorf("%s=%g: %w", spec.Parameter, task.value, err))
			return
		}
		points[task.index] = SweepPoint{Value: task.value, Result: result}
	}

	pool, err := ants.NewPoolWithFunc(parallelism, taskFunc)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to create sweep pool")
	}
	defer pool.Release()

	for i, v := range values {
		wg.Add(1)
		if err := pool.Invoke(sweepTask{index: i, value: v}); err != nil {
			wg.Done()
			setErr(apperror.Wrap(err, apperror.CodeInternal, "failed to submit sweep point"))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		if ctx.Err() != nil {
			return nil, apperror.Wrap(ctx.Err(), apperror.CodeCancelled, "sweep cancelled")
		}
		return nil, firstErr
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Value < points[j].Value
	})

	result := &SweepResult{
		Parameter: spec.Parameter,
		Points:    points,
		Target:    spec.Target,
		Seed:      base.Seed,
		Duration:  time.Since(start),
	}
	if spec.Target > 0 {
		result.Crossing, result.HasCrossing = findCrossing(points, spec.Target)
	}

	logger.WithComponent("sweep").Debug("sweep finished",
		"parameter", spec.Parameter,
		"points", len(points),
		"duration", result.Duration,
	)

	return result, nil
}

// findCrossing первое по возрастанию значение, при котором надёжность ниже target
func findCrossing(points []SweepPoint, target float64) (float64, bool) {
	for _, p := range points {
		if p.Result.Probability < target {
			return p.Value, true
		}
	}
	return 0, false
}
