// services/reliability-svc/internal/report/types.go
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"netreliability/pkg/apperror"
	"netreliability/pkg/domain"
	"netreliability/services/reliability-svc/internal/engine"
)

// Format формат отчёта
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatExcel    Format = "excel"
	FormatPDF      Format = "pdf"
)

// Formats все поддерживаемые форматы
var Formats = []Format{FormatCSV, FormatJSON, FormatMarkdown, FormatExcel, FormatPDF}

// ParseFormat разбирает имя формата, допускаются расширения файлов
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unknown report format %q", s), "format")
	}
}

// Extension расширение файла для формата
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatExcel:
		return ".xlsx"
	default:
		return "." + string(f)
	}
}

// Kind вид отчёта, определяется заполненным результатом
type Kind string

const (
	KindEstimate Kind = "estimate"
	KindSweep    Kind = "sweep"
	KindGrow     Kind = "grow"
	KindNetwork  Kind = "network"
)

// Options параметры оформления
type Options struct {
	Title        string
	Author       string
	Description  string
	IncludeEdges bool
}

// ReportData данные для генерации отчёта. Должен быть заполнен не более чем
// один из Estimate, Sweep и Grow; без них получается отчёт о сети.
type ReportData struct {
	Options     *Options
	GeneratedAt time.Time
	RunID       string

	NetworkName string
	PacketSize  int
	Config      engine.Config
	Network     *domain.TopologyStatistics
	Bridges     int
	Edges       []engine.EdgeReport

	Estimate *engine.Result
	Sweep    *engine.SweepResult
	Grow     *engine.GrowResult
}

// NewReportData собирает статистику сети и загрузку каналов без отказов
func NewReportData(name string, in *engine.Inputs, cfg engine.Config) (*ReportData, error) {
	edges, err := engine.AnalyzeEdges(in)
	if err != nil {
		return nil, err
	}
	bridges := 0
	for _, e := range edges {
		if e.Bridge {
			bridges++
		}
	}
	return &ReportData{
		GeneratedAt: time.Now(),
		NetworkName: name,
		PacketSize:  in.PacketSize,
		Config:      cfg,
		Network:     domain.CalculateStatistics(in.Topology),
		Bridges:     bridges,
		Edges:       edges,
	}, nil
}

// Kind вид отчёта
func (d *ReportData) Kind() Kind {
	switch {
	case d.Estimate != nil:
		return KindEstimate
	case d.Sweep != nil:
		return KindSweep
	case d.Grow != nil:
		return KindGrow
	default:
		return KindNetwork
	}
}

// =====================================================
// Табличное представление, общее для CSV, Markdown, Excel и PDF
// =====================================================

type keyValue struct {
	Key   string
	Value any
}

type table struct {
	Name    string // короткое имя, используется как имя листа Excel
	Headers []string
	Rows    [][]any
}

type section struct {
	Title string
	Items []keyValue
	Table *table
}

// sections раскладывает отчёт на разделы в порядке вывода
func sections(d *ReportData) []section {
	var out []section

	if d.Network != nil {
		n := d.Network
		out = append(out, section{
			Title: "Network",
			Items: []keyValue{
				{"Name", d.NetworkName},
				{"Nodes", n.NodeCount},
				{"Edges", n.EdgeCount},
				{"Density", n.Density},
				{"Average degree", n.AverageDegree},
				{"Min degree", n.MinDegree},
				{"Max degree", n.MaxDegree},
				{"Diameter", n.Diameter},
				{"Bridges", d.Bridges},
				{"Packet size", d.PacketSize},
			},
		})
	}

	if d.Kind() != KindNetwork {
		cfg := d.Config
		out = append(out, section{
			Title: "Parameters",
			Items: []keyValue{
				{"Trials", cfg.Trials},
				{"Fault probability", cfg.FaultProbability},
				{"Max delay", cfg.MaxDelay},
				{"Confidence level", cfg.ConfidenceLevel},
				{"Seed", seedOf(d)},
			},
		})
	}

	switch d.Kind() {
	case KindEstimate:
		out = append(out, estimateSection(d.Estimate))
	case KindSweep:
		out = append(out, sweepSection(d.Sweep))
	case KindGrow:
		out = append(out, growSection(d.Grow))
	}

	if len(d.Edges) > 0 && (d.Options == nil || d.Options.IncludeEdges) {
		out = append(out, edgeSection(d.Edges))
	}

	return out
}

func seedOf(d *ReportData) int64 {
	switch {
	case d.Estimate != nil:
		return d.Estimate.Seed
	case d.Sweep != nil:
		return d.Sweep.Seed
	case d.Grow != nil && d.Grow.Baseline != nil:
		return d.Grow.Baseline.Seed
	}
	return d.Config.Seed
}

func estimateSection(r *engine.Result) section {
	return section{
		Title: "Reliability",
		Items: []keyValue{
			{"Probability", r.Probability},
			{"Confidence low", r.Confidence.Low},
			{"Confidence high", r.Confidence.High},
			{"Standard error", r.StdError},
			{"Successes", r.Successes},
			{"Below threshold", r.BelowThreshold},
			{"Disconnected", r.Disconnected},
			{"Over capacity", r.OverCapacity},
			{"Mean delay", r.Delay.Mean},
			{"Delay std dev", r.Delay.StdDev},
			{"Saturated trials", r.Delay.Saturated},
			{"Mean removed edges", r.MeanRemoved},
			{"Route cache hits", r.RouteHits},
			{"Route fallbacks", r.RouteFallbacks},
			{"Workers", r.Workers},
			{"Duration", r.Duration.Round(time.Millisecond).String()},
		},
	}
}

func sweepSection(s *engine.SweepResult) section {
	items := []keyValue{
		{"Parameter", string(s.Parameter)},
		{"Points", len(s.Points)},
	}
	if s.Target > 0 {
		items = append(items, keyValue{"Target", s.Target})
		if s.HasCrossing {
			items = append(items, keyValue{"Drops below target at", s.Crossing})
		} else {
			items = append(items, keyValue{"Drops below target at", "never"})
		}
	}

	t := &table{
		Name:    "Sweep",
		Headers: []string{"Value", "Probability", "CI Low", "CI High", "Disconnected", "Over Capacity", "Mean Delay"},
	}
	for _, p := range s.Points {
		r := p.Result
		t.Rows = append(t.Rows, []any{
			p.Value, r.Probability, r.Confidence.Low, r.Confidence.High,
			r.Disconnected, r.OverCapacity, r.Delay.Mean,
		})
	}
	return section{Title: "Sensitivity", Items: items, Table: t}
}

func growSection(g *engine.GrowResult) section {
	items := []keyValue{
		{"Target", g.Target},
		{"Reached", g.Reached},
		{"Baseline probability", g.Baseline.Probability},
		{"Added edges", len(g.Steps)},
	}

	t := &table{
		Name:    "Growth",
		Headers: []string{"Step", "From", "To", "Capacity", "Probability", "CI Low", "CI High"},
	}
	for _, s := range g.Steps {
		t.Rows = append(t.Rows, []any{
			s.Step, s.From, s.To, s.Capacity,
			s.Result.Probability, s.Result.Confidence.Low, s.Result.Confidence.High,
		})
	}
	return section{Title: "Growth", Items: items, Table: t}
}

func edgeSection(edges []engine.EdgeReport) section {
	t := &table{
		Name:    "Edges",
		Headers: []string{"ID", "From", "To", "Capacity", "Rate", "Flow", "Utilization", "Overloaded", "Bridge"},
	}
	for _, e := range edges {
		t.Rows = append(t.Rows, []any{
			int(e.ID), e.From, e.To, e.Capacity, e.ServiceRate,
			e.BaselineFlow, e.Utilization, e.Overloaded, e.Bridge,
		})
	}
	return section{Title: "Edge load without faults", Table: t}
}

// formatCell текстовое представление значения ячейки
func formatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func formatRow(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = formatCell(v)
	}
	return out
}
