package depgraph

import "github.com/cedarhh/rsheet/internal/domain"

// tarjanState carries the iterative Tarjan's algorithm bookkeeping. An
// explicit stack-based walk is used instead of recursion so a pathologically
// long dependency chain cannot blow the goroutine's call stack.
type tarjanState struct {
	g        *Graph
	index    map[domain.CellCoord]int
	lowlink  map[domain.CellCoord]int
	onStack  map[domain.CellCoord]bool
	stack    []domain.CellCoord
	nextIdx  int
	sccs     [][]domain.CellCoord
}

// tarjanSCC computes every strongly connected component of the full graph.
// Reserved for the cycle-reporting path only: the restricted Kahn toposort
// over the weak component is the common case.
func (g *Graph) tarjanSCC() [][]domain.CellCoord {
	st := &tarjanState{
		g:       g,
		index:   make(map[domain.CellCoord]int),
		lowlink: make(map[domain.CellCoord]int),
		onStack: make(map[domain.CellCoord]bool),
	}
	for n := range g.nodes {
		if _, visited := st.index[n]; !visited {
			st.strongConnect(n)
		}
	}
	return st.sccs
}

// frame is one level of the explicit DFS stack used to avoid recursion.
type frame struct {
	node     domain.CellCoord
	children []domain.CellCoord
	next     int
}

func (st *tarjanState) strongConnect(root domain.CellCoord) {
	work := []*frame{st.visit(root)}

	for len(work) > 0 {
		top := work[len(work)-1]
		if top.next < len(top.children) {
			child := top.children[top.next]
			top.next++
			if _, visited := st.index[child]; !visited {
				work = append(work, st.visit(child))
				continue
			}
			if st.onStack[child] {
				if st.index[child] < st.lowlink[top.node] {
					st.lowlink[top.node] = st.index[child]
				}
			}
			continue
		}

		// All children processed; pop and propagate lowlink to parent.
		work = work[:len(work)-1]
		if st.lowlink[top.node] == st.index[top.node] {
			var scc []domain.CellCoord
			for {
				n := st.stack[len(st.stack)-1]
				st.stack = st.stack[:len(st.stack)-1]
				st.onStack[n] = false
				scc = append(scc, n)
				if n == top.node {
					break
				}
			}
			st.sccs = append(st.sccs, scc)
		}
		if len(work) > 0 {
			parent := work[len(work)-1]
			if st.lowlink[top.node] < st.lowlink[parent.node] {
				st.lowlink[parent.node] = st.lowlink[top.node]
			}
		}
	}
}

func (st *tarjanState) visit(n domain.CellCoord) *frame {
	st.index[n] = st.nextIdx
	st.lowlink[n] = st.nextIdx
	st.nextIdx++
	st.stack = append(st.stack, n)
	st.onStack[n] = true

	children := make([]domain.CellCoord, 0, len(st.g.out[n]))
	for next := range st.g.out[n] {
		children = append(children, next)
	}
	return &frame{node: n, children: children}
}
