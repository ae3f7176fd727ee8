package depgraph

import "github.com/cedarhh/rsheet/internal/domain"

// weakComponent returns every node mutually reachable from start when edges
// are treated as undirected (BFS over the union of in- and out-adjacency).
// This is an optimization that limits the topological sort to cells that
// could possibly be affected by a change to start; it narrows the search
// space but is never required for correctness.
func (g *Graph) weakComponent(start domain.CellCoord) map[domain.CellCoord]struct{} {
	seen := map[domain.CellCoord]struct{}{start: {}}
	queue := []domain.CellCoord{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for next := range g.out[n] {
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
		for prev := range g.in[n] {
			if _, ok := seen[prev]; !ok {
				seen[prev] = struct{}{}
				queue = append(queue, prev)
			}
		}
	}
	return seen
}

// kahnToposort runs Kahn's algorithm (in-degree queue) restricted to the
// given node set. It returns the order and, if the restricted subgraph
// contains a cycle, the set of nodes left unvisited when the queue drains —
// every node of the cycle is among them, along with any node downstream of it.
func (g *Graph) kahnToposort(nodes map[domain.CellCoord]struct{}) (order []domain.CellCoord, stuck []domain.CellCoord) {
	indeg := make(map[domain.CellCoord]int, len(nodes))
	for n := range nodes {
		count := 0
		for from := range g.in[n] {
			if _, ok := nodes[from]; ok {
				count++
			}
		}
		indeg[n] = count
	}

	queue := make([]domain.CellCoord, 0, len(nodes))
	for n, d := range indeg {
		if d == 0 {
			queue = append(queue, n)
		}
	}

	order = make([]domain.CellCoord, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for next := range g.out[n] {
			if _, ok := nodes[next]; !ok {
				continue
			}
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) == len(nodes) {
		return order, nil
	}
	visited := make(map[domain.CellCoord]struct{}, len(order))
	for _, n := range order {
		visited[n] = struct{}{}
	}
	for n := range nodes {
		if _, ok := visited[n]; !ok {
			stuck = append(stuck, n)
		}
	}
	return order, stuck
}

// CycleReport is the union of the strongly connected component containing
// the cycle plus every node transitively dependent on it — exactly what
// must be marked with a self-referential error.
type CycleReport struct {
	Cells []domain.CellCoord
}

// RecomputePlan restricts to the weakly connected component containing
// start, attempts a topological sort of the induced (still-directed)
// subgraph, and on failure escalates to a full-graph Tarjan SCC plus
// reachability pass to build the CycleReport.
func (g *Graph) RecomputePlan(start domain.CellCoord) ([]domain.CellCoord, *CycleReport) {
	g.ensureNode(start)
	component := g.weakComponent(start)
	order, stuck := g.kahnToposort(component)
	if stuck == nil {
		return order, nil
	}

	// A stuck node may merely be downstream of the cycle; the offending SCC
	// is a stuck one that is cyclic (more than one node, or a self-loop).
	stuckSet := make(map[domain.CellCoord]struct{}, len(stuck))
	for _, n := range stuck {
		stuckSet[n] = struct{}{}
	}
	var targetSCC []domain.CellCoord
	for _, scc := range g.tarjanSCC() {
		if _, ok := stuckSet[scc[0]]; !ok {
			continue
		}
		if _, selfLoop := g.out[scc[0]][scc[0]]; len(scc) > 1 || selfLoop {
			targetSCC = scc
			break
		}
	}

	reachable := map[domain.CellCoord]struct{}{}
	queue := append([]domain.CellCoord{}, targetSCC...)
	for _, n := range targetSCC {
		reachable[n] = struct{}{}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for next := range g.out[n] {
			if _, ok := reachable[next]; !ok {
				reachable[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}

	cells := make([]domain.CellCoord, 0, len(reachable))
	for n := range reachable {
		cells = append(cells, n)
	}
	return nil, &CycleReport{Cells: cells}
}
