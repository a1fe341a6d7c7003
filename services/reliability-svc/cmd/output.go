package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"netreliability/services/reliability-svc/internal/engine"
	"netreliability/services/reliability-svc/internal/repository"
	"netreliability/services/reliability-svc/internal/service"
)

// marginOfInterest полуширина интервала для подсказки о числе испытаний
const marginOfInterest = 0.001

type estimateOutput struct {
	RunID   string         `json:"run_id,omitempty"`
	Network string         `json:"network"`
	Nodes   int            `json:"nodes"`
	Edges   int            `json:"edges"`
	Cached  bool           `json:"cached"`
	Result  *engine.Result `json:"result"`
}

type sweepOutput struct {
	RunID   string              `json:"run_id,omitempty"`
	Network string              `json:"network"`
	Result  *engine.SweepResult `json:"result"`
}

type growOutput struct {
	RunID   string             `json:"run_id,omitempty"`
	Network string             `json:"network"`
	Result  *engine.GrowResult `json:"result"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEstimate(w io.Writer, asJSON bool, name string, in *engine.Inputs, resp *service.EstimateResponse) error {
	if asJSON {
		return writeJSON(w, estimateOutput{
			RunID:   resp.RunID,
			Network: name,
			Nodes:   in.Topology.NodeCount(),
			Edges:   in.Topology.EdgeCount(),
			Cached:  resp.Cached,
			Result:  resp.Result,
		})
	}

	r := resp.Result
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Network:\t%s (%d nodes, %d links)\n", name, in.Topology.NodeCount(), in.Topology.EdgeCount())
	fmt.Fprintf(tw, "Reliability:\t%.6f\n", r.Probability)
	fmt.Fprintf(tw, "Interval:\t[%.6f, %.6f] at %.0f%%\n", r.Confidence.Low, r.Confidence.High, r.ConfidenceLvl*100)
	fmt.Fprintf(tw, "Trials:\t%d (seed %d, %d workers)\n", r.Trials, r.Seed, r.Workers)
	fmt.Fprintf(tw, "Trials for ±%g:\t%d\n", marginOfInterest,
		engine.RequiredTrials(r.Probability, marginOfInterest, r.ConfidenceLvl))
	for _, o := range engine.Outcomes {
		fmt.Fprintf(tw, "  %s:\t%d\n", o, r.Count(o))
	}
	fmt.Fprintf(tw, "Mean delay:\t%.6f (saturated %d)\n", r.Delay.Mean, r.Delay.Saturated)
	fmt.Fprintf(tw, "Duration:\t%s\n", r.Duration.Round(time.Millisecond))
	printRunID(tw, resp.RunID, resp.Cached)
	return tw.Flush()
}

func printSweep(w io.Writer, asJSON bool, name string, resp *service.SweepResponse) error {
	if asJSON {
		return writeJSON(w, sweepOutput{RunID: resp.RunID, Network: name, Result: resp.Result})
	}

	s := resp.Result
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Network:\t%s\n", name)
	fmt.Fprintf(tw, "Parameter:\t%s\n\n", s.Parameter)
	fmt.Fprintln(tw, "VALUE\tRELIABILITY\tLOW\tHIGH")
	for _, p := range s.Points {
		fmt.Fprintf(tw, "%g\t%.6f\t%.6f\t%.6f\n",
			p.Value, p.Result.Probability, p.Result.Confidence.Low, p.Result.Confidence.High)
	}
	fmt.Fprintln(tw)
	if s.Target > 0 {
		if s.HasCrossing {
			fmt.Fprintf(tw, "Below %g at:\t%g\n", s.Target, s.Crossing)
		} else {
			fmt.Fprintf(tw, "Below %g at:\tnever\n", s.Target)
		}
	}
	fmt.Fprintf(tw, "Duration:\t%s\n", s.Duration.Round(time.Millisecond))
	printRunID(tw, resp.RunID, false)
	return tw.Flush()
}

func printGrow(w io.Writer, asJSON bool, name string, resp *service.GrowResponse) error {
	if asJSON {
		return writeJSON(w, growOutput{RunID: resp.RunID, Network: name, Result: resp.Result})
	}

	g := resp.Result
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Network:\t%s\n", name)
	fmt.Fprintf(tw, "Baseline:\t%.6f\n\n", g.Baseline.Probability)
	fmt.Fprintln(tw, "STEP\tLINK\tCAPACITY\tRELIABILITY")
	for _, s := range g.Steps {
		fmt.Fprintf(tw, "%d\t%d-%d\t%d\t%.6f\n", s.Step, s.From, s.To, s.Capacity, s.Result.Probability)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Target %g reached:\t%t\n", g.Target, g.Reached)
	fmt.Fprintf(tw, "Duration:\t%s\n", g.Duration.Round(time.Millisecond))
	printRunID(tw, resp.RunID, false)
	return tw.Flush()
}

func printRunID(w io.Writer, id string, cached bool) {
	switch {
	case id != "" && cached:
		fmt.Fprintf(w, "Run:\t%s (cached)\n", id)
	case id != "":
		fmt.Fprintf(w, "Run:\t%s\n", id)
	case cached:
		fmt.Fprintln(w, "Run:\tcached")
	}
}

func printRuns(w io.Writer, asJSON bool, runs []*repository.RunSummary, total int64) error {
	if asJSON {
		return writeJSON(w, struct {
			Runs  []*repository.RunSummary `json:"runs"`
			Total int64                    `json:"total"`
		}{runs, total})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME\tRELIABILITY\tCREATED")
	for _, r := range runs {
		prob := "-"
		if r.Probability != nil {
			prob = fmt.Sprintf("%.6f", *r.Probability)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.Name, prob, r.CreatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "\n%d of %d runs\n", len(runs), total)
	return tw.Flush()
}

func printRun(w io.Writer, asJSON bool, run *repository.Run) error {
	if asJSON {
		result := json.RawMessage(run.Result)
		if len(result) == 0 {
			result = json.RawMessage("null")
		}
		return writeJSON(w, struct {
			*repository.Run
			Result json.RawMessage `json:"result"`
		}{run, result})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", run.ID)
	fmt.Fprintf(tw, "Kind:\t%s\n", run.Kind)
	fmt.Fprintf(tw, "Name:\t%s\n", run.Name)
	fmt.Fprintf(tw, "Network:\t%d nodes, %d links\n", run.NodeCount, run.EdgeCount)
	fmt.Fprintf(tw, "Trials:\t%d (p=%g, t_max=%g, seed %d)\n", run.Trials, run.FaultProbability, run.MaxDelay, run.Seed)
	if run.Probability != nil {
		fmt.Fprintf(tw, "Reliability:\t%.6f\n", *run.Probability)
	}
	if run.ConfidenceLow != nil && run.ConfidenceHigh != nil {
		fmt.Fprintf(tw, "Interval:\t[%.6f, %.6f]\n", *run.ConfidenceLow, *run.ConfidenceHigh)
	}
	for _, p := range run.Points {
		fmt.Fprintf(tw, "  %g:\t%.6f\n", p.Value, p.Probability)
	}
	if len(run.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%v\n", run.Tags)
	}
	fmt.Fprintf(tw, "Duration:\t%.0fms\n", run.DurationMs)
	fmt.Fprintf(tw, "Created:\t%s\n", run.CreatedAt.Format(time.RFC3339))
	return tw.Flush()
}
