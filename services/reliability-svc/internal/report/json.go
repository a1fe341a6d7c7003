// services/reliability-svc/internal/report/json.go
package report

import (
	"context"
	"encoding/json"
	"fmt"

	"netreliability/pkg/domain"
	"netreliability/services/reliability-svc/internal/engine"
)

// JSONGenerator генератор JSON отчётов
type JSONGenerator struct {
	BaseGenerator
}

// NewJSONGenerator создаёт новый генератор
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Format возвращает формат генератора
func (g *JSONGenerator) Format() Format {
	return FormatJSON
}

// JSONReport структура JSON отчёта
type JSONReport struct {
	Metadata   JSONMetadata               `json:"metadata"`
	Network    *domain.TopologyStatistics `json:"network,omitempty"`
	Parameters *JSONParameters            `json:"parameters,omitempty"`
	Estimate   *engine.Result             `json:"estimate,omitempty"`
	Sweep      *engine.SweepResult        `json:"sweep,omitempty"`
	Grow       *engine.GrowResult         `json:"grow,omitempty"`
	Edges      []engine.EdgeReport        `json:"edges,omitempty"`
}

type JSONMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	GeneratedAt string `json:"generatedAt"`
	ReportKind  string `json:"reportKind"`
	RunID       string `json:"runId,omitempty"`
	NetworkName string `json:"networkName,omitempty"`
}

type JSONParameters struct {
	Trials           int64   `json:"trials"`
	FaultProbability float64 `json:"faultProbability"`
	MaxDelay         float64 `json:"maxDelay"`
	ConfidenceLevel  float64 `json:"confidenceLevel"`
	PacketSize       int     `json:"packetSize"`
	Seed             int64   `json:"seed"`
}

// Generate генерирует JSON отчёт
func (g *JSONGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	report := JSONReport{
		Metadata: JSONMetadata{
			Title:       g.GetTitle(data),
			Author:      g.GetAuthor(data),
			Description: g.GetDescription(data),
			GeneratedAt: g.FormatTimestamp(data.GeneratedAt),
			ReportKind:  string(data.Kind()),
			RunID:       data.RunID,
			NetworkName: data.NetworkName,
		},
		Network:  data.Network,
		Estimate: data.Estimate,
		Sweep:    data.Sweep,
		Grow:     data.Grow,
	}

	if data.Kind() != KindNetwork {
		report.Parameters = &JSONParameters{
			Trials:           data.Config.Trials,
			FaultProbability: data.Config.FaultProbability,
			MaxDelay:         data.Config.MaxDelay,
			ConfidenceLevel:  data.Config.ConfidenceLevel,
			PacketSize:       data.PacketSize,
			Seed:             seedOf(data),
		}
	}
	if data.Options == nil || data.Options.IncludeEdges {
		report.Edges = data.Edges
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal error: %w", err)
	}
	return out, nil
}
