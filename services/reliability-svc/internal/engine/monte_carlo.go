// services/reliability-svc/internal/engine/monte_carlo.go
package engine

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"netreliability/pkg/apperror"
	"netreliability/pkg/logger"
)

// DefaultBlockSize число испытаний в одном блоке
const DefaultBlockSize = 4096

// Config параметры оценки
type Config struct {
	Trials           int64
	FaultProbability float64
	MaxDelay         float64
	Workers          int   // 0 = runtime.NumCPU()
	Seed             int64 // 0 = от текущего времени
	ConfidenceLevel  float64
	BlockSize        int
}

// DefaultConfig конфигурация по умолчанию
func DefaultConfig() Config {
	return Config{
		Trials:           1_000_000,
		FaultProbability: 0.05,
		MaxDelay:         0.1,
		ConfidenceLevel:  0.95,
		BlockSize:        DefaultBlockSize,
	}
}

// Validate проверяет параметры оценки
func (c Config) Validate() error {
	if c.Trials <= 0 {
		return apperror.NewWithField(apperror.CodeInvalidTrials,
			"number of trials must be positive", "trials").WithDetails("trials", c.Trials)
	}
	if c.FaultProbability < 0 || c.FaultProbability > 1 {
		return apperror.NewWithField(apperror.CodeInvalidProbability,
			"fault probability must be within [0, 1]", "fault_probability").
			WithDetails("fault_probability", c.FaultProbability)
	}
	if !(c.MaxDelay > 0) {
		return apperror.NewWithField(apperror.CodeInvalidThreshold,
			"delay threshold must be positive", "max_delay").WithDetails("max_delay", c.MaxDelay)
	}
	if c.Workers < 0 {
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			"workers must be non-negative", "workers")
	}
	if c.ConfidenceLevel < 0 || c.ConfidenceLevel >= 1 {
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			"confidence level must be within (0, 1)", "confidence_level")
	}
	return nil
}

// Progress состояние выполнения
type Progress struct {
	Completed int64
	Total     int64
	Percent   float64
}

// Option настраивает движок
type Option func(*MonteCarloEngine)

// WithSourceFactory подменяет источник случайных чисел. Фабрика вызывается
// для каждого блока с его зерном.
func WithSourceFactory(f func(seed int64) RandomSource) Option {
	return func(e *MonteCarloEngine) {
		e.sourceFactory = f
	}
}

// WithProgress включает отправку прогресса после каждого блока.
// Отправка неблокирующая: медленный читатель пропускает обновления.
func WithProgress(ch chan<- Progress) Option {
	return func(e *MonteCarloEngine) {
		e.progress = ch
	}
}

// MonteCarloEngine движок Монте-Карло оценки надёжности
type MonteCarloEngine struct {
	config        Config
	sourceFactory func(seed int64) RandomSource
	progress      chan<- Progress
}

// NewMonteCarloEngine создаёт новый движок
func NewMonteCarloEngine(config Config, opts ...Option) *MonteCarloEngine {
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	if config.BlockSize <= 0 {
		config.BlockSize = DefaultBlockSize
	}
	if config.ConfidenceLevel == 0 {
		config.ConfidenceLevel = 0.95
	}

	e := &MonteCarloEngine{config: config}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config возвращает итоговую конфигурацию (с выбранным зерном)
func (e *MonteCarloEngine) Config() Config {
	return e.config
}

// Result итог оценки
type Result struct {
	Trials         int64         `json:"trials"`
	Successes      int64         `json:"successes"`
	BelowThreshold int64         `json:"below_threshold"`
	Disconnected   int64         `json:"disconnected"`
	OverCapacity   int64         `json:"over_capacity"`
	Probability    float64       `json:"probability"`
	StdError       float64       `json:"std_error"`
	Confidence     Interval      `json:"confidence_interval"`
	ConfidenceLvl  float64       `json:"confidence_level"`
	Delay          DelaySummary  `json:"delay"`
	MeanRemoved    float64       `json:"mean_removed_edges"`
	RouteHits      int64         `json:"route_hits"`
	RouteFallbacks int64         `json:"route_fallbacks"`
	Workers        int           `json:"workers"`
	Seed           int64         `json:"seed"`
	Duration       time.Duration `json:"duration"`
}

// Count число испытаний с указанным исходом
func (r *Result) Count(o Outcome) int64 {
	switch o {
	case OutcomeMeetsThreshold:
		return r.Successes
	case OutcomeBelowThreshold:
		return r.BelowThreshold
	case OutcomeDisconnected:
		return r.Disconnected
	case OutcomeOverCapacity:
		return r.OverCapacity
	default:
		return 0
	}
}

// partial локальные счётчики воркера
type partial struct {
	counts    [numOutcomes]int64
	delays    delayStats
	removed   int64
	hits      int64
	fallbacks int64
}

func (p *partial) merge(o *partial) {
	for i := range p.counts {
		p.counts[i] += o.counts[i]
	}
	p.delays.merge(o.delays)
	p.removed += o.removed
	p.hits += o.hits
	p.fallbacks += o.fallbacks
}

type block struct {
	index int64
	size  int64
}

// Run проводит Trials испытаний и возвращает долю успешных.
//
// Испытания нарезаются на блоки по BlockSize. Источник случайных чисел блока
// засевается значением Seed+index, поэтому результат при фиксированном зерне
// не зависит от числа воркеров и порядка выполнения. Воркеры держат локальные
// счётчики, которые суммируются после завершения всех блоков.
func (e *MonteCarloEngine) Run(ctx context.Context, in *Inputs) (*Result, error) {
	start := time.Now()
	cfg := e.config

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	blockSize := int64(cfg.BlockSize)
	numBlocks := (cfg.Trials + blockSize - 1) / blockSize

	numWorkers := runtime.NumCPU()
	if cfg.Workers > 0 {
		numWorkers = cfg.Workers
	}
	if int64(numWorkers) > numBlocks {
		numWorkers = int(numBlocks)
	}

	log := logger.WithComponent("monte_carlo")
	log.Debug("estimation started",
		"trials", cfg.Trials,
		"fault_probability", cfg.FaultProbability,
		"max_delay", cfg.MaxDelay,
		"workers", numWorkers,
		"blocks", numBlocks,
		"seed", cfg.Seed,
	)

	g, gctx := errgroup.WithContext(ctx)

	// Канал блоков
	blocks := make(chan block)
	g.Go(func() error {
		defer close(blocks)
		for i := int64(0); i < numBlocks; i++ {
			size := blockSize
			if rest := cfg.Trials - i*blockSize; rest < size {
				size = rest
			}
			select {
			case blocks <- block{index: i, size: size}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	partials := make([]partial, numWorkers)
	var completed atomic.Int64

	for w := 0; w < numWorkers; w++ {
		local := &partials[w]
		local.delays = newDelayStats()

		g.Go(func() error {
			runner := NewTrialRunner(in)
			defer runner.Close()

			// Локальный RNG, пересеваемый на каждый блок
			localRng := rand.New(rand.NewSource(cfg.Seed))

			for b := range blocks {
				var rng RandomSource = localRng
				blockSeed := cfg.Seed + b.index
				if e.sourceFactory != nil {
					rng = e.sourceFactory(blockSeed)
				} else {
					localRng.Seed(blockSeed)
				}

				for k := int64(0); k < b.size; k++ {
					res, err := runner.Run(cfg.FaultProbability, cfg.MaxDelay, rng)
					if err != nil {
						return err
					}
					local.counts[res.Outcome]++
					local.removed += int64(res.Removed)
					if res.Outcome == OutcomeMeetsThreshold || res.Outcome == OutcomeBelowThreshold {
						local.delays.add(res.Delay)
					}
				}

				done := completed.Add(b.size)
				e.reportProgress(done, cfg.Trials)

				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
			}

			local.hits = runner.Router().Hits()
			local.fallbacks = runner.Router().Fallbacks()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, apperror.Wrap(ctx.Err(), apperror.CodeCancelled, "estimation cancelled")
		}
		return nil, err
	}

	total := partial{delays: newDelayStats()}
	for i := range partials {
		total.merge(&partials[i])
	}

	result := &Result{
		Trials:         cfg.Trials,
		Successes:      total.counts[OutcomeMeetsThreshold],
		BelowThreshold: total.counts[OutcomeBelowThreshold],
		Disconnected:   total.counts[OutcomeDisconnected],
		OverCapacity:   total.counts[OutcomeOverCapacity],
		ConfidenceLvl:  cfg.ConfidenceLevel,
		Delay:          total.delays.summary(),
		MeanRemoved:    float64(total.removed) / float64(cfg.Trials),
		RouteHits:      total.hits,
		RouteFallbacks: total.fallbacks,
		Workers:        numWorkers,
		Seed:           cfg.Seed,
	}
	result.Probability = float64(result.Successes) / float64(result.Trials)
	result.StdError = StandardError(result.Successes, result.Trials)
	result.Confidence = WilsonInterval(result.Successes, result.Trials, cfg.ConfidenceLevel)
	result.Duration = time.Since(start)

	log.Debug("estimation finished",
		"probability", result.Probability,
		"disconnected", result.Disconnected,
		"over_capacity", result.OverCapacity,
		"duration", result.Duration,
	)

	return result, nil
}

func (e *MonteCarloEngine) reportProgress(done, total int64) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- Progress{
		Completed: done,
		Total:     total,
		Percent:   float64(done) / float64(total) * 100,
	}:
	default:
	}
}
