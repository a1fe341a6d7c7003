package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Сеть
	AttrTopologyNodes = "topology.nodes"
	AttrTopologyEdges = "topology.edges"
	AttrPacketSize    = "topology.packet_size"

	// Параметры оценки
	AttrTrials           = "estimate.trials"
	AttrFaultProbability = "estimate.fault_probability"
	AttrMaxDelay         = "estimate.max_delay"
	AttrSeed             = "estimate.seed"
	AttrWorkers          = "estimate.workers"

	// Результат
	AttrProbability    = "result.probability"
	AttrConfidenceLow  = "result.confidence_low"
	AttrConfidenceHigh = "result.confidence_high"
	AttrCached         = "result.cached"

	// Серии
	AttrSweepParameter = "sweep.parameter"
	AttrSweepSteps     = "sweep.steps"
)

// TopologyAttributes возвращает атрибуты сети
func TopologyAttributes(nodes, edges, packetSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrTopologyNodes, nodes),
		attribute.Int(AttrTopologyEdges, edges),
		attribute.Int(AttrPacketSize, packetSize),
	}
}

// EstimateAttributes возвращает параметры оценки
func EstimateAttributes(trials int64, p, maxDelay float64, seed int64, workers int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrTrials, trials),
		attribute.Float64(AttrFaultProbability, p),
		attribute.Float64(AttrMaxDelay, maxDelay),
		attribute.Int64(AttrSeed, seed),
		attribute.Int(AttrWorkers, workers),
	}
}

// ResultAttributes возвращает атрибуты результата
func ResultAttributes(probability, low, high float64, cached bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(AttrProbability, probability),
		attribute.Float64(AttrConfidenceLow, low),
		attribute.Float64(AttrConfidenceHigh, high),
		attribute.Bool(AttrCached, cached),
	}
}
