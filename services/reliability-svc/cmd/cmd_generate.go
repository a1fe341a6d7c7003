package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"netreliability/services/reliability-svc/internal/engine"
	"netreliability/services/reliability-svc/internal/netgen"
)

func newGenerateCmd(getApp func() *app) *cobra.Command {
	var (
		params netgen.Params
		name   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random network and write it to a file",
		Args:  checkArgs(cobra.NoArgs),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, _ []string) error {
			p := paramsFromConfig(a.cfg.Simulation)
			fs := cmd.Flags()
			if fs.Changed("nodes") {
				p.Nodes = params.Nodes
			}
			if fs.Changed("edges") {
				p.Edges = params.Edges
			}
			if fs.Changed("intensity-min") {
				p.IntensityMin = params.IntensityMin
			}
			if fs.Changed("intensity-max") {
				p.IntensityMax = params.IntensityMax
			}
			if fs.Changed("capacity-multiplier") {
				p.CapacityMultiplier = params.CapacityMultiplier
			}
			if fs.Changed("packet-size") {
				p.PacketSize = params.PacketSize
			}
			if fs.Changed("seed") {
				p.Seed = params.Seed
			}

			in, err := netgen.Generate(p)
			if err != nil {
				return err
			}
			if name == "" {
				name = fmt.Sprintf("generated-%d-%d", p.Nodes, p.Edges)
			}
			if err := saveInputs(output, name, in); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d nodes, %d links\n",
				output, in.Topology.NodeCount(), in.Topology.EdgeCount())
			return nil
		}),
	}

	fs := cmd.Flags()
	fs.IntVar(&params.Nodes, "nodes", 0, "number of nodes")
	fs.IntVar(&params.Edges, "edges", 0, "number of links")
	fs.IntVar(&params.IntensityMin, "intensity-min", 0, "minimum pair intensity")
	fs.IntVar(&params.IntensityMax, "intensity-max", 0, "maximum pair intensity")
	fs.Float64Var(&params.CapacityMultiplier, "capacity-multiplier", 0, "capacity headroom over the fault-free load")
	fs.IntVar(&params.PacketSize, "packet-size", 0, "packet size")
	fs.Int64Var(&params.Seed, "seed", 0, "generator seed")
	fs.StringVar(&name, "name", "", "network name")
	fs.StringVarP(&output, "output", "o", "network.yaml", "output file (.yaml, .yml or .json)")
	return cmd
}

func saveInputs(path, name string, in *engine.Inputs) error {
	return netgen.SaveNetwork(path, netgen.FromInputs(name, in))
}
