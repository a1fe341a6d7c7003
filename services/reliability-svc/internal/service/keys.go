// services/reliability-svc/internal/service/keys.go
package service

import (
	"netreliability/pkg/cache"
	"netreliability/pkg/domain"
	"netreliability/services/reliability-svc/internal/engine"
)

const resultKeyVersion = "estimate/v1"

// resultKey канонический ключ оценки. Результат при фиксированном зерне не
// зависит от числа воркеров, поэтому Workers в ключ не входит. Нулевые
// BlockSize и ConfidenceLevel заменяются значениями, которые подставит движок.
func resultKey(in *engine.Inputs, cfg engine.Config) string {
	h := cache.NewHasher().String(resultKeyVersion)

	t := in.Topology
	h.Int(int64(t.NodeCount())).Int(int64(t.InitialEdgeCount()))
	for i := 0; i < t.InitialEdgeCount(); i++ {
		id := domain.EdgeID(i)
		e := t.Edge(id)
		alive := int64(0)
		if t.HasEdge(id) {
			alive = 1
		}
		h.Int(int64(e.From)).Int(int64(e.To)).Int(alive)
	}

	h.Int(int64(len(in.Intensity)))
	for _, row := range in.Intensity {
		h.Ints(row)
	}
	h.Ints(in.Capacities).Int(int64(in.PacketSize))

	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = engine.DefaultBlockSize
	}
	confidence := cfg.ConfidenceLevel
	if confidence == 0 {
		confidence = 0.95
	}

	return h.Int(cfg.Trials).
		Float(cfg.FaultProbability).
		Float(cfg.MaxDelay).
		Int(cfg.Seed).
		Float(confidence).
		Int(int64(blockSize)).
		Sum()
}
