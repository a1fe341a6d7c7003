// pkg/domain/topology.go
package domain

import (
	"fmt"

	"netreliability/pkg/apperror"
)

// EdgeID стабильный идентификатор канала. Совпадает с позицией канала в арене
// и не меняется при удалении других каналов.
type EdgeID int

// NoEdge значение-маркер отсутствующего канала
const NoEdge EdgeID = -1

// Edge неориентированный канал между двумя узлами
type Edge struct {
	From int
	To   int
}

// Other возвращает противоположный конец канала
func (e Edge) Other(u int) int {
	if e.From == u {
		return e.To
	}
	return e.From
}

// Topology неориентированная сеть с фиксированным числом узлов 0..N-1.
//
// Каналы хранятся в арене: удаление только помечает слот, поэтому EdgeID
// остаются действительными индексами в таблицах пропускных способностей и
// потоков на всё время жизни топологии и её копий. Списки смежности упорядочены
// по возрастанию EdgeID.
//
// Topology не потокобезопасна. Один экземпляр может читаться из нескольких
// горутин, если никто его не изменяет.
type Topology struct {
	nodes     int
	edges     []Edge
	alive     []bool
	live      int
	adjacency [][]EdgeID
}

// NewTopology создаёт сеть из n изолированных узлов
func NewTopology(n int) *Topology {
	return &Topology{
		nodes:     n,
		adjacency: make([][]EdgeID, n),
	}
}

// NewTopologyFromEdges создаёт сеть из списка пар узлов.
// Идентификаторы каналов присваиваются в порядке списка.
func NewTopologyFromEdges(n int, pairs [][2]int) (*Topology, error) {
	if n <= 0 {
		return nil, apperror.New(apperror.CodeEmptyTopology, "topology must have at least one node")
	}
	t := NewTopology(n)
	for i, p := range pairs {
		if _, err := t.AddEdge(p[0], p[1]); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return t, nil
}

// AddEdge добавляет канал u-v и возвращает его идентификатор.
// Петли, узлы вне диапазона и повторные каналы между той же парой отклоняются.
func (t *Topology) AddEdge(u, v int) (EdgeID, error) {
	if u < 0 || u >= t.nodes || v < 0 || v >= t.nodes {
		return NoEdge, apperror.Newf(apperror.CodeNodeOutOfRange,
			"edge %d-%d references a node outside [0, %d)", u, v, t.nodes)
	}
	if u == v {
		return NoEdge, apperror.Newf(apperror.CodeSelfLoop, "self loop at node %d", u)
	}
	if _, ok := t.FindEdge(u, v); ok {
		return NoEdge, apperror.Newf(apperror.CodeDuplicateEdge, "edge %d-%d already exists", u, v)
	}

	id := EdgeID(len(t.edges))
	t.edges = append(t.edges, Edge{From: u, To: v})
	t.alive = append(t.alive, true)
	t.live++

	// списки смежности могут разделяться с копиями, поэтому всегда перевыделяем
	t.adjacency[u] = append(t.adjacency[u][:len(t.adjacency[u]):len(t.adjacency[u])], id)
	t.adjacency[v] = append(t.adjacency[v][:len(t.adjacency[v]):len(t.adjacency[v])], id)

	return id, nil
}

// NodeCount возвращает число узлов
func (t *Topology) NodeCount() int {
	return t.nodes
}

// InitialEdgeCount возвращает размер арены, включая удалённые каналы
func (t *Topology) InitialEdgeCount() int {
	return len(t.edges)
}

// EdgeCount возвращает число присутствующих каналов
func (t *Topology) EdgeCount() int {
	return t.live
}

// Edge возвращает концы канала. Работает и для удалённых каналов.
func (t *Topology) Edge(id EdgeID) Edge {
	return t.edges[id]
}

// HasEdge проверяет, что канал существует и не удалён
func (t *Topology) HasEdge(id EdgeID) bool {
	return id >= 0 && int(id) < len(t.alive) && t.alive[id]
}

// FindEdge ищет присутствующий канал между u и v
func (t *Topology) FindEdge(u, v int) (EdgeID, bool) {
	if u < 0 || u >= t.nodes {
		return NoEdge, false
	}
	for _, id := range t.adjacency[u] {
		if t.alive[id] && t.edges[id].Other(u) == v {
			return id, true
		}
	}
	return NoEdge, false
}

// RemoveEdge удаляет канал. Возвращает false, если канала уже нет.
func (t *Topology) RemoveEdge(id EdgeID) bool {
	if !t.HasEdge(id) {
		return false
	}
	t.alive[id] = false
	t.live--
	return true
}

// Edges возвращает присутствующие каналы по возрастанию идентификатора
func (t *Topology) Edges() []EdgeID {
	ids := make([]EdgeID, 0, t.live)
	for id, ok := range t.alive {
		if ok {
			ids = append(ids, EdgeID(id))
		}
	}
	return ids
}

// Incident возвращает все каналы узла, включая удалённые, по возрастанию
// идентификатора. Срез принадлежит топологии и не должен изменяться.
func (t *Topology) Incident(u int) []EdgeID {
	return t.adjacency[u]
}

// Degree возвращает число присутствующих каналов узла
func (t *Topology) Degree(u int) int {
	d := 0
	for _, id := range t.adjacency[u] {
		if t.alive[id] {
			d++
		}
	}
	return d
}

// Clone возвращает независимую копию за O(N+E).
// Каналы и их состояние копируются, списки смежности разделяются.
func (t *Topology) Clone() *Topology {
	c := &Topology{
		nodes:     t.nodes,
		edges:     make([]Edge, len(t.edges)),
		alive:     make([]bool, len(t.alive)),
		live:      t.live,
		adjacency: make([][]EdgeID, len(t.adjacency)),
	}
	copy(c.edges, t.edges)
	copy(c.alive, t.alive)
	copy(c.adjacency, t.adjacency)
	return c
}

// Reset возвращает копию в состояние src без новых аллокаций.
// t должна быть получена через src.Clone(). Если с тех пор в src добавлялись
// каналы, t пересоздаётся целиком.
func (t *Topology) Reset(src *Topology) {
	if t.nodes != src.nodes || len(t.edges) != len(src.edges) {
		*t = *src.Clone()
		return
	}
	copy(t.alive, src.alive)
	t.live = src.live
}
