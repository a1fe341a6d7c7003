package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"netreliability/services/reliability-svc/internal/engine"
	"netreliability/services/reliability-svc/internal/service"
)

func newEstimateCmd(getApp func() *app, opts *globalOptions) *cobra.Command {
	var (
		network  networkFlags
		run      runFlags
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the reliability of a network",
		Args:  checkArgs(cobra.NoArgs),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			name, in, err := network.load(cmd, a.cfg.Simulation)
			if err != nil {
				return err
			}
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}

			req := &service.EstimateRequest{
				Name:   run.runName(name),
				Inputs: in,
				Config: run.config(cmd, a.cfg.Simulation),
				Tags:   run.tags,
			}
			if progress {
				ch := make(chan engine.Progress, 16)
				done := make(chan struct{})
				go printProgress(cmd.ErrOrStderr(), ch, done)
				defer func() { <-done }()
				defer close(ch)
				req.Progress = ch
			}

			resp, err := svc.Estimate(ctx, req)
			if err != nil {
				return err
			}
			return printEstimate(cmd.OutOrStdout(), opts.jsonOutput, name, in, resp)
		}),
	}

	network.register(cmd)
	run.register(cmd)
	cmd.Flags().BoolVar(&progress, "progress", false, "print progress to stderr")
	return cmd
}

func newSweepCmd(getApp func() *app, opts *globalOptions) *cobra.Command {
	var (
		network networkFlags
		run     runFlags
		sweep   sweepFlags
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Estimate reliability over a range of one parameter",
		Args:  checkArgs(cobra.NoArgs),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			name, in, err := network.load(cmd, a.cfg.Simulation)
			if err != nil {
				return err
			}
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}

			resp, err := svc.Sweep(ctx, &service.SweepRequest{
				Name:   run.runName(name),
				Inputs: in,
				Config: run.config(cmd, a.cfg.Simulation),
				Spec:   sweep.spec(),
				Tags:   run.tags,
			})
			if err != nil {
				return err
			}
			return printSweep(cmd.OutOrStdout(), opts.jsonOutput, name, resp)
		}),
	}

	network.register(cmd)
	run.register(cmd)
	sweep.register(cmd)
	return cmd
}

func newGrowCmd(getApp func() *app, opts *globalOptions) *cobra.Command {
	var (
		network networkFlags
		run     runFlags
		grow    growFlags
		output  string
	)

	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Add random links until the network reaches a target reliability",
		Args:  checkArgs(cobra.NoArgs),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			name, in, err := network.load(cmd, a.cfg.Simulation)
			if err != nil {
				return err
			}
			svc, err := a.Service(ctx)
			if err != nil {
				return err
			}

			resp, err := svc.Grow(ctx, &service.GrowRequest{
				Name:     run.runName(name),
				Inputs:   in,
				Config:   run.config(cmd, a.cfg.Simulation),
				Spec:     grow.spec(),
				GrowSeed: grow.seed,
				Tags:     run.tags,
			})
			if err != nil {
				return err
			}
			if output != "" && resp.Result.Final != nil {
				if err := saveInputs(output, name+"-grown", resp.Result.Final); err != nil {
					return err
				}
			}
			return printGrow(cmd.OutOrStdout(), opts.jsonOutput, name, resp)
		}),
	}

	network.register(cmd)
	run.register(cmd)
	grow.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the grown network to this file")
	return cmd
}

func printProgress(w io.Writer, ch <-chan engine.Progress, done chan<- struct{}) {
	defer close(done)
	last := -1
	for p := range ch {
		// не чаще одного сообщения на 10%
		if step := int(p.Percent) / 10; step > last {
			last = step
			fmt.Fprintf(w, "progress: %3.0f%% (%d/%d)\n", p.Percent, p.Completed, p.Total)
		}
	}
}
