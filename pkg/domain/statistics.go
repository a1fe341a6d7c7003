package domain

// TopologyStatistics статистика сети
type TopologyStatistics struct {
	NodeCount     int     `json:"node_count"`
	EdgeCount     int     `json:"edge_count"`
	RemovedEdges  int     `json:"removed_edges"`
	IsConnected   bool    `json:"is_connected"`
	Components    int     `json:"components"`
	Density       float64 `json:"density"`
	AverageDegree float64 `json:"average_degree"`
	MaxDegree     int     `json:"max_degree"`
	MinDegree     int     `json:"min_degree"`
	Diameter      int     `json:"diameter"` // -1 для несвязной сети
}

// CalculateStatistics вычисляет статистику сети
func CalculateStatistics(t *Topology) *TopologyStatistics {
	stats := &TopologyStatistics{
		NodeCount:    t.nodes,
		EdgeCount:    t.live,
		RemovedEdges: len(t.edges) - t.live,
		MinDegree:    int(^uint(0) >> 1),
		Diameter:     Unreachable,
	}
	if t.nodes == 0 {
		stats.MinDegree = 0
		return stats
	}

	for u := 0; u < t.nodes; u++ {
		d := t.Degree(u)
		if d > stats.MaxDegree {
			stats.MaxDegree = d
		}
		if d < stats.MinDegree {
			stats.MinDegree = d
		}
	}

	stats.AverageDegree = float64(2*t.live) / float64(t.nodes)
	if t.nodes > 1 {
		stats.Density = float64(2*t.live) / float64(t.nodes*(t.nodes-1))
	}

	stats.Components = len(FindConnectedComponents(t))
	stats.IsConnected = stats.Components == 1

	if stats.IsConnected {
		s := NewSearch(t.nodes)
		diameter := 0
		for root := 0; root < t.nodes; root++ {
			s.Distances(t, root)
			for _, d := range s.Dist() {
				if d > diameter {
					diameter = d
				}
			}
		}
		stats.Diameter = diameter
	}

	return stats
}
