// services/reliability-svc/internal/service/reliability.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"netreliability/pkg/apperror"
	"netreliability/pkg/cache"
	"netreliability/pkg/logger"
	"netreliability/pkg/metrics"
	"netreliability/pkg/telemetry"
	"netreliability/services/reliability-svc/internal/engine"
	"netreliability/services/reliability-svc/internal/repository"
)

const resultCachePrefix = "reliability:estimate"

// ReliabilityService фасад над движком: проверка входа, кэш детерминированных
// оценок, история прогонов, метрики и трассировка.
type ReliabilityService struct {
	repo    repository.RunRepository
	results *cache.Typed[engine.Result]
	metrics *metrics.Metrics
	log     *slog.Logger
}

// Option настраивает сервис
type Option func(*ReliabilityService)

// WithRepository задаёт хранилище истории. По умолчанию история хранится в памяти.
func WithRepository(repo repository.RunRepository) Option {
	return func(s *ReliabilityService) {
		s.repo = repo
	}
}

// WithCache включает кэш оценок с фиксированным зерном
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *ReliabilityService) {
		if c != nil {
			s.results = cache.NewTyped[engine.Result](c, resultCachePrefix, ttl)
		}
	}
}

// WithMetrics задаёт набор метрик. По умолчанию используются глобальные.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ReliabilityService) {
		s.metrics = m
	}
}

// NewReliabilityService создаёт сервис
func NewReliabilityService(opts ...Option) *ReliabilityService {
	s := &ReliabilityService{log: logger.WithComponent("reliability_service")}
	for _, opt := range opts {
		opt(s)
	}
	if s.repo == nil {
		s.repo = repository.NewMemoryRunRepository()
	}
	if s.metrics == nil {
		s.metrics = metrics.Get()
	}
	return s
}

// ============ ESTIMATE ============

// EstimateRequest запрос оценки
type EstimateRequest struct {
	Name     string
	Inputs   *engine.Inputs
	Config   engine.Config
	Tags     []string
	Progress chan<- engine.Progress
}

// EstimateResponse результат оценки
type EstimateResponse struct {
	RunID  string
	Result *engine.Result
	Cached bool
}

// Estimate оценивает надёжность сети. При ненулевом зерне результат
// детерминирован и берётся из кэша, если он там есть.
func (s *ReliabilityService) Estimate(ctx context.Context, req *EstimateRequest) (resp *EstimateResponse, err error) {
	timer := s.metrics.StartOperation("estimate")
	defer func() { timer.Stop(err) }()

	if req == nil {
		return nil, errNilRequest()
	}
	in, cfg := req.Inputs, req.Config
	if err := validateRequest(in, cfg); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ReliabilityService.Estimate",
		trace.WithAttributes(runAttributes(in, cfg)...))
	defer span.End()

	var key string
	if s.results != nil && cfg.Seed != 0 {
		key = resultKey(in, cfg)
		cached, hit, cacheErr := s.results.Get(ctx, key)
		if cacheErr != nil {
			s.log.Warn("result cache lookup failed", "error", cacheErr)
		}
		s.metrics.RecordCacheLookup(hit)
		if hit {
			telemetry.SetAttributes(ctx, telemetry.ResultAttributes(
				cached.Probability, cached.Confidence.Low, cached.Confidence.High, true)...)
			return &EstimateResponse{
				RunID:  s.saveEstimate(ctx, req, cached),
				Result: cached,
				Cached: true,
			}, nil
		}
	}

	var opts []engine.Option
	if req.Progress != nil {
		opts = append(opts, engine.WithProgress(req.Progress))
	}

	result, err := engine.NewMonteCarloEngine(cfg, opts...).Run(ctx, in)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	s.recordResult(in, result)
	telemetry.SetAttributes(ctx, telemetry.ResultAttributes(
		result.Probability, result.Confidence.Low, result.Confidence.High, false)...)

	if key != "" {
		if err := s.results.Set(ctx, key, result, 0); err != nil {
			s.log.Warn("failed to cache result", "error", err)
		}
	}

	s.log.Info("estimate completed",
		"probability", result.Probability,
		"trials", result.Trials,
		"seed", result.Seed,
		"duration", result.Duration,
	)

	return &EstimateResponse{
		RunID:  s.saveEstimate(ctx, req, result),
		Result: result,
	}, nil
}

func (s *ReliabilityService) recordResult(in *engine.Inputs, result *engine.Result) {
	for _, o := range engine.Outcomes {
		s.metrics.RecordTrials(o.String(), result.Count(o))
	}
	s.metrics.RecordRoutes(result.RouteHits, result.RouteFallbacks)
	s.metrics.RecordReliability(result.Probability, result.Confidence.Low, result.Confidence.High)
	s.metrics.RecordTopology(in.Topology.NodeCount(), in.Topology.EdgeCount())
}

func (s *ReliabilityService) saveEstimate(ctx context.Context, req *EstimateRequest, result *engine.Result) string {
	run := newRun(repository.RunKindEstimate, req.Name, req.Inputs, req.Config, req.Tags)
	run.Seed = result.Seed
	run.Probability = &result.Probability
	run.ConfidenceLow = &result.Confidence.Low
	run.ConfidenceHigh = &result.Confidence.High
	run.DurationMs = float64(result.Duration.Microseconds()) / 1000
	return s.save(ctx, run, result)
}

// ============ SWEEP ============

// SweepRequest запрос серии оценок
type SweepRequest struct {
	Name   string
	Inputs *engine.Inputs
	Config engine.Config
	Spec   engine.SweepSpec
	Tags   []string
}

// SweepResponse результат серии
type SweepResponse struct {
	RunID  string
	Result *engine.SweepResult
}

// Sweep оценивает надёжность для ряда значений одного параметра
func (s *ReliabilityService) Sweep(ctx context.Context, req *SweepRequest) (resp *SweepResponse, err error) {
	timer := s.metrics.StartOperation("sweep")
	defer func() { timer.Stop(err) }()

	if req == nil {
		return nil, errNilRequest()
	}
	if err := req.Spec.Validate(); err != nil {
		return nil, err
	}
	in, cfg := req.Inputs, req.Config
	// варьируемый параметр уже проверен в спецификации серии
	switch req.Spec.Parameter {
	case engine.SweepFaultProbability:
		cfg.FaultProbability = req.Spec.From
	case engine.SweepMaxDelay:
		cfg.MaxDelay = req.Spec.From
	}
	if err := validateRequest(in, cfg); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ReliabilityService.Sweep",
		trace.WithAttributes(runAttributes(in, req.Config)...),
		trace.WithAttributes(
			attribute.String(telemetry.AttrSweepParameter, string(req.Spec.Parameter)),
			attribute.Int(telemetry.AttrSweepSteps, req.Spec.Steps),
		))
	defer span.End()

	result, err := engine.Sweep(ctx, in, req.Config, req.Spec)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	for _, p := range result.Points {
		s.recordResult(in, p.Result)
	}
	if result.HasCrossing {
		telemetry.AddEvent(ctx, "target_crossed", attribute.Float64("value", result.Crossing))
	}

	s.log.Info("sweep completed",
		"parameter", result.Parameter,
		"points", len(result.Points),
		"duration", result.Duration,
	)

	run := newRun(repository.RunKindSweep, req.Name, in, req.Config, req.Tags)
	run.Seed = result.Seed
	run.DurationMs = float64(result.Duration.Microseconds()) / 1000
	run.Points = make([]repository.SweepPoint, len(result.Points))
	for i, p := range result.Points {
		run.Points[i] = repository.SweepPoint{
			Position:       i,
			Value:          p.Value,
			Probability:    p.Result.Probability,
			ConfidenceLow:  p.Result.Confidence.Low,
			ConfidenceHigh: p.Result.Confidence.High,
		}
	}

	return &SweepResponse{
		RunID:  s.save(ctx, run, result),
		Result: result,
	}, nil
}

// ============ GROW ============

// GrowRequest запрос наращивания сети
type GrowRequest struct {
	Name   string
	Inputs *engine.Inputs
	Config engine.Config
	Spec   engine.GrowSpec
	// GrowSeed зерно выбора новых каналов, 0 = зерно оценки
	GrowSeed int64
	Tags     []string
}

// GrowResponse результат наращивания
type GrowResponse struct {
	RunID  string
	Result *engine.GrowResult
}

// Grow добавляет случайные каналы, пока оценка не достигнет цели
func (s *ReliabilityService) Grow(ctx context.Context, req *GrowRequest) (resp *GrowResponse, err error) {
	timer := s.metrics.StartOperation("grow")
	defer func() { timer.Stop(err) }()

	if req == nil {
		return nil, errNilRequest()
	}
	in, cfg := req.Inputs, req.Config
	if err := validateRequest(in, cfg); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ReliabilityService.Grow",
		trace.WithAttributes(runAttributes(in, cfg)...))
	defer span.End()

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	growSeed := req.GrowSeed
	if growSeed == 0 {
		growSeed = cfg.Seed
	}

	result, err := engine.Grow(ctx, in, cfg, req.Spec, rand.New(rand.NewSource(growSeed)))
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	final := result.Baseline
	if n := len(result.Steps); n > 0 {
		final = result.Steps[n-1].Result
	}
	s.recordResult(result.Final, final)

	s.log.Info("grow completed",
		"added_edges", len(result.Steps),
		"reached", result.Reached,
		"probability", final.Probability,
	)

	run := newRun(repository.RunKindGrow, req.Name, result.Final, cfg, req.Tags)
	run.Probability = &final.Probability
	run.ConfidenceLow = &final.Confidence.Low
	run.ConfidenceHigh = &final.Confidence.High
	run.DurationMs = float64(result.Duration.Microseconds()) / 1000

	return &GrowResponse{
		RunID:  s.save(ctx, run, result),
		Result: result,
	}, nil
}

// ============ HISTORY ============

// GetRun возвращает сохранённый прогон
func (s *ReliabilityService) GetRun(ctx context.Context, id string) (*repository.Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReliabilityService.GetRun")
	defer span.End()

	if id == "" {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument, "run id is required", "id")
	}
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return run, nil
}

// ListRuns возвращает страницу истории и общее число прогонов
func (s *ReliabilityService) ListRuns(ctx context.Context, opts *repository.ListOptions) ([]*repository.RunSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReliabilityService.ListRuns")
	defer span.End()

	if opts != nil && opts.Kind != "" && !opts.Kind.Valid() {
		return nil, 0, apperror.NewWithField(apperror.CodeInvalidArgument,
			"unknown run kind", "kind").WithDetails("kind", opts.Kind)
	}
	runs, total, err := s.repo.List(ctx, opts)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list runs")
	}
	return runs, total, nil
}

// DeleteRun удаляет прогон из истории
func (s *ReliabilityService) DeleteRun(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "ReliabilityService.DeleteRun")
	defer span.End()

	if id == "" {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "run id is required", "id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, id)
	}
	s.log.Info("run deleted", "id", id)
	return nil
}

// InvalidateCache удаляет все закэшированные оценки
func (s *ReliabilityService) InvalidateCache(ctx context.Context) (int64, error) {
	if s.results == nil {
		return 0, nil
	}
	return s.results.InvalidateAll(ctx)
}

// ============ HELPERS ============

func errNilRequest() error {
	return apperror.New(apperror.CodeNilInput, "request is required")
}

// validateRequest проверяет запрос до запуска движка, чтобы ошибки входа
// не попадали в трассировку как ошибки выполнения.
func validateRequest(in *engine.Inputs, cfg engine.Config) error {
	if in == nil {
		return apperror.New(apperror.CodeNilInput, "inputs are required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return in.Prepare()
}

func mapRepoError(err error, id string) error {
	if errors.Is(err, repository.ErrRunNotFound) {
		return apperror.Wrap(err, apperror.CodeNotFound, "run not found").WithDetails("id", id)
	}
	return apperror.Wrap(err, apperror.CodeInternal, "run history failed")
}

func newRun(kind repository.RunKind, name string, in *engine.Inputs, cfg engine.Config, tags []string) *repository.Run {
	return &repository.Run{
		Kind:             kind,
		Name:             name,
		NodeCount:        in.Topology.NodeCount(),
		EdgeCount:        in.Topology.EdgeCount(),
		Trials:           cfg.Trials,
		FaultProbability: cfg.FaultProbability,
		MaxDelay:         cfg.MaxDelay,
		Seed:             cfg.Seed,
		Tags:             tags,
	}
}

// save сохраняет прогон в историю. Ошибка хранилища не отменяет результат
// вычисления: она пишется в лог, а идентификатор остаётся пустым.
func (s *ReliabilityService) save(ctx context.Context, run *repository.Run, result any) string {
	data, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("failed to encode run result", "kind", run.Kind, "error", err)
		return ""
	}
	run.Result = data

	if err := s.repo.Create(ctx, run); err != nil {
		telemetry.RecordError(ctx, err)
		s.log.Warn("failed to save run", "kind", run.Kind, "error", err)
		return ""
	}
	return run.ID
}

func runAttributes(in *engine.Inputs, cfg engine.Config) []attribute.KeyValue {
	attrs := telemetry.TopologyAttributes(in.Topology.NodeCount(), in.Topology.EdgeCount(), in.PacketSize)
	return append(attrs, telemetry.EstimateAttributes(
		cfg.Trials, cfg.FaultProbability, cfg.MaxDelay, cfg.Seed, cfg.Workers)...)
}
