package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"netreliability/pkg/config"
	"netreliability/services/reliability-svc/internal/engine"
	"netreliability/services/reliability-svc/internal/netgen"
)

// networkFlags источник сети: файл или генератор по настройкам simulation
type networkFlags struct {
	path          string
	packetSize    int
	generatorSeed int64
}

func (f *networkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "network", "f", "", "network file (.yaml, .yml or .json); generated when empty")
	cmd.Flags().IntVar(&f.packetSize, "packet-size", 0, "packet size, overrides the file and the config")
	cmd.Flags().Int64Var(&f.generatorSeed, "generator-seed", 0, "seed of the generated network")
}

// load возвращает имя сети и входные данные оценки
func (f *networkFlags) load(cmd *cobra.Command, sim config.SimulationConfig) (string, *engine.Inputs, error) {
	if f.path != "" {
		file, err := netgen.LoadNetwork(f.path)
		if err != nil {
			return "", nil, err
		}
		if cmd.Flags().Changed("packet-size") {
			file.PacketSize = f.packetSize
		}
		in, err := file.Inputs()
		if err != nil {
			return "", nil, err
		}
		name := file.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path))
		}
		return name, in, nil
	}

	params := paramsFromConfig(sim)
	if cmd.Flags().Changed("packet-size") {
		params.PacketSize = f.packetSize
	}
	if cmd.Flags().Changed("generator-seed") {
		params.Seed = f.generatorSeed
	}
	in, err := netgen.Generate(params)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("generated-%d-%d", params.Nodes, params.Edges), in, nil
}

func paramsFromConfig(sim config.SimulationConfig) netgen.Params {
	return netgen.Params{
		Nodes:              sim.NetworkSize,
		Edges:              sim.EdgeCount,
		IntensityMin:       sim.IntensityMin,
		IntensityMax:       sim.IntensityMax,
		CapacityMultiplier: sim.CapacityMultiplier,
		PacketSize:         sim.PacketSize,
		Seed:               sim.GeneratorSeed,
	}
}

// runFlags параметры оценки. Незаданные флаги берутся из конфигурации.
type runFlags struct {
	trials     int64
	p          float64
	maxDelay   float64
	workers    int
	seed       int64
	confidence float64
	name       string
	tags       []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64VarP(&f.trials, "trials", "n", 0, "number of Monte Carlo trials")
	fs.Float64VarP(&f.p, "fault-probability", "p", 0, "probability that a link fails in a trial")
	fs.Float64Var(&f.maxDelay, "t-max", 0, "average delay threshold")
	fs.IntVarP(&f.workers, "workers", "w", 0, "number of workers, 0 = number of CPUs")
	fs.Int64Var(&f.seed, "seed", 0, "random seed, 0 = from the clock")
	fs.Float64Var(&f.confidence, "confidence", 0, "confidence level of the interval")
	fs.StringVar(&f.name, "name", "", "run name stored in history")
	fs.StringSliceVar(&f.tags, "tag", nil, "run tag, repeatable")
}

func (f *runFlags) config(cmd *cobra.Command, sim config.SimulationConfig) engine.Config {
	cfg := engine.Config{
		Trials:           int64(sim.Trials),
		FaultProbability: sim.FaultProbability,
		MaxDelay:         sim.MaxDelay,
		Workers:          sim.Workers,
		Seed:             sim.Seed,
		ConfidenceLevel:  sim.ConfidenceLevel,
		BlockSize:        engine.DefaultBlockSize,
	}

	fs := cmd.Flags()
	if fs.Changed("trials") {
		cfg.Trials = f.trials
	}
	if fs.Changed("fault-probability") {
		cfg.FaultProbability = f.p
	}
	if fs.Changed("t-max") {
		cfg.MaxDelay = f.maxDelay
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("confidence") {
		cfg.ConfidenceLevel = f.confidence
	}
	return cfg
}

func (f *runFlags) runName(network string) string {
	if f.name != "" {
		return f.name
	}
	return network
}

// sweepFlags описание серии
type sweepFlags struct {
	parameter   string
	from        float64
	to          float64
	steps       int
	target      float64
	parallelism int
}

func (f *sweepFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.parameter, "parameter", string(engine.SweepFaultProbability),
		"swept parameter: fault_probability, max_delay or capacity_multiplier")
	fs.Float64Var(&f.from, "from", 0, "first value")
	fs.Float64Var(&f.to, "to", 0.2, "last value")
	fs.IntVar(&f.steps, "steps", 11, "number of points including both ends")
	fs.Float64Var(&f.target, "target", 0, "report where reliability first drops below this value")
	fs.IntVar(&f.parallelism, "parallelism", 0, "points evaluated at once, 0 = number of CPUs")
}

func (f *sweepFlags) spec() engine.SweepSpec {
	return engine.SweepSpec{
		Parameter:   engine.SweepParameter(f.parameter),
		From:        f.from,
		To:          f.to,
		Steps:       f.steps,
		Target:      f.target,
		Parallelism: f.parallelism,
	}
}

// growFlags параметры наращивания сети
type growFlags struct {
	target   float64
	maxEdges int
	capacity int
	seed     int64
}

func (f *growFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.target, "target", 0.99, "required reliability")
	fs.IntVar(&f.maxEdges, "max-edges", 10, "maximum number of links to add")
	fs.IntVar(&f.capacity, "capacity", 0, "capacity of new links, 0 = largest existing capacity")
	fs.Int64Var(&f.seed, "grow-seed", 0, "seed for choosing new links, 0 = estimation seed")
}

func (f *growFlags) spec() engine.GrowSpec {
	return engine.GrowSpec{
		Target:   f.target,
		MaxEdges: f.maxEdges,
		Capacity: f.capacity,
	}
}
