// services/reliability-svc/internal/engine/routes.go
package engine

import (
	"netreliability/pkg/apperror"
	"netreliability/pkg/domain"
)

// RoutesCache кратчайшие маршруты для всех упорядоченных пар узлов сети без
// отказов. Строится один раз до испытаний и дальше только читается.
type RoutesCache struct {
	n      int
	routes [][]domain.EdgeID // индекс i*n+j
}

// PrecomputeRoutes строит кэш: один BFS на каждый узел назначения и
// восстановление маршрута для каждого источника.
func PrecomputeRoutes(t *domain.Topology) (*RoutesCache, error) {
	n := t.NodeCount()
	cache := &RoutesCache{
		n:      n,
		routes: make([][]domain.EdgeID, n*n),
	}

	search := domain.NewSearch(n)
	for j := 0; j < n; j++ {
		search.Distances(t, j)
		dist := search.Dist()
		for i := 0; i < n; i++ {
			if i == j {
				continue
			}
			route, ok := domain.RouteFromDistances(t, i, dist)
			if !ok {
				return nil, apperror.Newf(apperror.CodeDisconnectedTopology,
					"no route from node %d to node %d", i, j).
					WithDetails("from", i).WithDetails("to", j)
			}
			cache.routes[i*n+j] = route
		}
	}

	return cache, nil
}

// NodeCount размер сети, для которой построен кэш
func (c *RoutesCache) NodeCount() int {
	return c.n
}

// Route возвращает закэшированный маршрут i -> j. Срез нельзя изменять.
func (c *RoutesCache) Route(i, j int) []domain.EdgeID {
	return c.routes[i*c.n+j]
}

// Intact проверяет, что все каналы закэшированного маршрута присутствуют в t
func (c *RoutesCache) Intact(t *domain.Topology, i, j int) bool {
	for _, id := range c.routes[i*c.n+j] {
		if !t.HasEdge(id) {
			return false
		}
	}
	return true
}

// Router выдаёт маршруты в рамках одного испытания.
//
// Быстрый путь возвращает закэшированный маршрут, если все его каналы уцелели.
// Иначе выполняется новый поиск по текущей сети. Расстояния до узла назначения
// запоминаются до конца испытания, в кэш ничего не записывается.
// Router принадлежит одному воркеру.
type Router struct {
	cache  *RoutesCache
	topo   *domain.Topology
	search *domain.Search
	dists  [][]int
	known  []bool
	buf    []domain.EdgeID

	hits      int64
	fallbacks int64
}

// NewRouter создаёт маршрутизатор поверх кэша
func NewRouter(cache *RoutesCache) *Router {
	return &Router{
		cache:  cache,
		search: domain.NewSearch(cache.n),
		dists:  make([][]int, cache.n),
		known:  make([]bool, cache.n),
	}
}

// Begin начинает новое испытание на сети t
func (r *Router) Begin(t *domain.Topology) {
	r.topo = t
	clear(r.known)
}

// Route возвращает маршрут i -> j для текущего испытания. Результат
// действителен до следующего вызова. Отсутствие маршрута в связной сети
// нарушает инвариант и возвращается как критическая ошибка.
func (r *Router) Route(i, j int) ([]domain.EdgeID, error) {
	if r.cache.Intact(r.topo, i, j) {
		r.hits++
		return r.cache.Route(i, j), nil
	}

	r.fallbacks++
	if !r.known[j] {
		r.search.Distances(r.topo, j)
		if r.dists[j] == nil {
			r.dists[j] = make([]int, r.cache.n)
		}
		copy(r.dists[j], r.search.Dist())
		r.known[j] = true
	}

	route, ok := domain.AppendRoute(r.buf[:0], r.topo, i, r.dists[j])
	r.buf = route
	if !ok {
		return nil, apperror.NewCritical(apperror.CodeRouteInvariant,
			"no route between nodes of a connected topology").
			WithDetails("from", i).WithDetails("to", j)
	}
	return route, nil
}

// Hits число маршрутов, выданных из кэша
func (r *Router) Hits() int64 {
	return r.hits
}

// Fallbacks число маршрутов, найденных заново
func (r *Router) Fallbacks() int64 {
	return r.fallbacks
}
