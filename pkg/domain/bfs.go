package domain

// Unreachable значение расстояния для недостижимых узлов
const Unreachable = -1

// Search переиспользуемое состояние поиска в ширину.
// Буферы выделяются один раз под число узлов сети.
type Search struct {
	dist  []int
	queue []int
}

// NewSearch создаёт состояние поиска для сети из n узлов
func NewSearch(n int) *Search {
	return &Search{
		dist:  make([]int, n),
		queue: make([]int, 0, n),
	}
}

// Distances выполняет BFS по присутствующим каналам от root и возвращает
// число достигнутых узлов (включая сам root). Результат доступен через Dist
// до следующего вызова.
func (s *Search) Distances(t *Topology, root int) int {
	if cap(s.dist) < t.nodes {
		s.dist = make([]int, t.nodes)
	}
	s.dist = s.dist[:t.nodes]
	for i := range s.dist {
		s.dist[i] = Unreachable
	}

	s.dist[root] = 0
	s.queue = append(s.queue[:0], root)
	reached := 1

	for head := 0; head < len(s.queue); head++ {
		u := s.queue[head]
		for _, id := range t.adjacency[u] {
			if !t.alive[id] {
				continue
			}
			v := t.edges[id].Other(u)
			if s.dist[v] != Unreachable {
				continue
			}
			s.dist[v] = s.dist[u] + 1
			s.queue = append(s.queue, v)
			reached++
		}
	}

	return reached
}

// Dist возвращает расстояния последнего поиска. Срез переиспользуется.
func (s *Search) Dist() []int {
	return s.dist
}

// HopDistances возвращает число переходов от root до каждого узла
// (Unreachable для недостижимых) и число достигнутых узлов.
func HopDistances(t *Topology, root int) ([]int, int) {
	s := NewSearch(t.nodes)
	reached := s.Distances(t, root)
	return s.dist, reached
}

// ReachableCount возвращает число узлов, достижимых из root
func ReachableCount(t *Topology, root int) int {
	_, reached := HopDistances(t, root)
	return reached
}

// RouteFromDistances восстанавливает кратчайший маршрут от src до узла,
// для которого построен dist (dist[dst] == 0).
//
// Среди всех маршрутов минимальной длины выбирается маршрут с лексикографически
// наименьшей последовательностью EdgeID: на каждом шаге берётся канал с
// наименьшим идентификатором, приближающий к цели. Удаление каналов не укорачивает
// маршруты, поэтому уцелевший маршрут полной сети остаётся выбранным и в любой
// её подсети.
func RouteFromDistances(t *Topology, src int, dist []int) ([]EdgeID, bool) {
	if dist[src] == Unreachable {
		return nil, false
	}
	return AppendRoute(make([]EdgeID, 0, dist[src]), t, src, dist)
}

// AppendRoute то же, что RouteFromDistances, но дописывает маршрут в buf
func AppendRoute(buf []EdgeID, t *Topology, src int, dist []int) ([]EdgeID, bool) {
	if dist[src] == Unreachable {
		return buf, false
	}

	route := buf
	u := src
	for dist[u] > 0 {
		next := -1
		for _, id := range t.adjacency[u] {
			if !t.alive[id] {
				continue
			}
			v := t.edges[id].Other(u)
			if dist[v] == dist[u]-1 {
				route = append(route, id)
				next = v
				break
			}
		}
		if next < 0 {
			// dist построен для другого состояния сети
			return buf, false
		}
		u = next
	}

	return route, true
}

// ShortestRoute находит кратчайший по числу переходов маршрут src -> dst
func ShortestRoute(t *Topology, src, dst int) ([]EdgeID, bool) {
	dist, _ := HopDistances(t, dst)
	return RouteFromDistances(t, src, dist)
}

// FindConnectedComponents находит компоненты связности по присутствующим каналам
func FindConnectedComponents(t *Topology) [][]int {
	s := NewSearch(t.nodes)
	seen := make([]bool, t.nodes)
	var components [][]int

	for root := 0; root < t.nodes; root++ {
		if seen[root] {
			continue
		}
		s.Distances(t, root)
		component := make([]int, 0, len(s.queue))
		for _, v := range s.queue {
			seen[v] = true
			component = append(component, v)
		}
		components = append(components, component)
	}

	return components
}
