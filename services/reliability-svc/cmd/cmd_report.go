package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"netreliability/pkg/apperror"
	"netreliability/services/reliability-svc/internal/report"
	"netreliability/services/reliability-svc/internal/service"
)

func newReportCmd(getApp func() *app) *cobra.Command {
	var (
		network    networkFlags
		run        runFlags
		sweep      sweepFlags
		grow       growFlags
		kind       string
		format     string
		output     string
		title      string
		author     string
		noEdges    bool
		growTarget float64
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run an estimate, sweep or growth and write a report",
		Long: `report runs the requested analysis and writes it as csv, json, markdown,
excel or pdf. With --kind network only the topology and link load are reported.`,
		Args: checkArgs(cobra.NoArgs),
		RunE: withApp(getApp, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()

			if format == "" {
				format = a.cfg.Report.Format
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			gen, err := report.New(f)
			if err != nil {
				return err
			}

			name, in, err := network.load(cmd, a.cfg.Simulation)
			if err != nil {
				return err
			}
			cfg := run.config(cmd, a.cfg.Simulation)

			data, err := report.NewReportData(name, in, cfg)
			if err != nil {
				return err
			}
			data.Options = &report.Options{
				Title:        firstNonEmpty(title, a.cfg.Report.Title),
				Author:       firstNonEmpty(author, a.cfg.Report.Author),
				IncludeEdges: !noEdges,
			}

			if report.Kind(kind) != report.KindNetwork {
				svc, err := a.Service(ctx)
				if err != nil {
					return err
				}
				switch report.Kind(kind) {
				case report.KindEstimate:
					resp, err := svc.Estimate(ctx, &service.EstimateRequest{
						Name: run.runName(name), Inputs: in, Config: cfg, Tags: run.tags,
					})
					if err != nil {
						return err
					}
					data.RunID, data.Estimate = resp.RunID, resp.Result
				case report.KindSweep:
					resp, err := svc.Sweep(ctx, &service.SweepRequest{
						Name: run.runName(name), Inputs: in, Config: cfg, Spec: sweep.spec(), Tags: run.tags,
					})
					if err != nil {
						return err
					}
					data.RunID, data.Sweep = resp.RunID, resp.Result
				case report.KindGrow:
					spec := grow.spec()
					spec.Target = growTarget
					resp, err := svc.Grow(ctx, &service.GrowRequest{
						Name: run.runName(name), Inputs: in, Config: cfg, Spec: spec,
						GrowSeed: grow.seed, Tags: run.tags,
					})
					if err != nil {
						return err
					}
					data.RunID, data.Grow = resp.RunID, resp.Result
				default:
					return apperror.NewWithField(apperror.CodeInvalidArgument,
						fmt.Sprintf("unknown report kind %q", kind), "kind")
				}
			}

			out, err := gen.Generate(ctx, data)
			if err != nil {
				return fmt.Errorf("failed to generate %s report: %w", f, err)
			}

			if output == "" {
				output = filepath.Join(a.cfg.Report.OutputDir, name+"-"+kind+f.Extension())
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create report directory: %w", err)
				}
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s report to %s (%d bytes)\n", f, output, len(out))
			return nil
		}),
	}

	network.register(cmd)
	run.register(cmd)
	sweep.register(cmd)

	// у sweep и grow общий флаг --target, поэтому цель наращивания вынесена отдельно
	fs := cmd.Flags()
	fs.IntVar(&grow.maxEdges, "max-edges", 10, "grow: maximum number of links to add")
	fs.IntVar(&grow.capacity, "capacity", 0, "grow: capacity of new links, 0 = largest existing capacity")
	fs.Int64Var(&grow.seed, "grow-seed", 0, "grow: seed for choosing new links")
	fs.Float64Var(&growTarget, "grow-target", 0.99, "grow: required reliability")

	fs.StringVar(&kind, "kind", string(report.KindEstimate), "analysis: estimate, sweep, grow or network")
	fs.StringVar(&format, "format", "", "report format: csv, json, markdown, excel or pdf (default from config)")
	fs.StringVarP(&output, "output", "o", "", "output file (default <report.output_dir>/<network>-<kind><ext>)")
	fs.StringVar(&title, "title", "", "report title")
	fs.StringVar(&author, "author", "", "report author")
	fs.BoolVar(&noEdges, "no-edges", false, "omit the per-link table")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
