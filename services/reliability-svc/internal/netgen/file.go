// services/reliability-svc/internal/netgen/file.go
package netgen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"netreliability/pkg/apperror"
	"netreliability/pkg/domain"
	"netreliability/services/reliability-svc/internal/engine"
)

// NetworkFile описание сети на диске
type NetworkFile struct {
	Name       string   `yaml:"name,omitempty" json:"name,omitempty"`
	Nodes      int      `yaml:"nodes" json:"nodes"`
	Edges      [][2]int `yaml:"edges" json:"edges"`
	Intensity  [][]int  `yaml:"intensity" json:"intensity"`
	Capacities []int    `yaml:"capacities" json:"capacities"`
	PacketSize int      `yaml:"packet_size" json:"packet_size"`
}

// LoadNetwork читает описание сети. Формат определяется по расширению:
// .json или .yaml/.yml.
func LoadNetwork(path string) (*NetworkFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}

	var f NetworkFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported network file extension %q", ext), "network")
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "failed to parse network file").
			WithDetails("path", path)
	}
	return &f, nil
}

// SaveNetwork записывает описание сети, формат выбирается по расширению
func SaveNetwork(path string, f *NetworkFile) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(f, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(f)
	default:
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported network file extension %q", ext), "output")
	}
	if err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write network file: %w", err)
	}
	return nil
}

// Inputs собирает входные данные оценки. Идентификаторы каналов
// соответствуют порядку в Edges.
func (f *NetworkFile) Inputs() (*engine.Inputs, error) {
	topo, err := domain.NewTopologyFromEdges(f.Nodes, f.Edges)
	if err != nil {
		return nil, err
	}
	in := &engine.Inputs{
		Topology:   topo,
		Intensity:  domain.IntensityMatrix(f.Intensity),
		Capacities: domain.CapacityTable(f.Capacities),
		PacketSize: f.PacketSize,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// FromInputs описание сети для сохранения. Удалённые каналы не сохраняются,
// идентификаторы перенумеровываются подряд.
func FromInputs(name string, in *engine.Inputs) *NetworkFile {
	f := &NetworkFile{
		Name:       name,
		Nodes:      in.Topology.NodeCount(),
		Intensity:  in.Intensity.Clone(),
		PacketSize: in.PacketSize,
	}
	for _, id := range in.Topology.Edges() {
		e := in.Topology.Edge(id)
		f.Edges = append(f.Edges, [2]int{e.From, e.To})
		f.Capacities = append(f.Capacities, in.Capacities[id])
	}
	return f
}
