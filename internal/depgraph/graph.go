// Package depgraph implements the Dependency Graph: a directed graph of
// cell-to-cell dependencies with weakly-connected-component extraction,
// topological sort, and cycle detection. It is engine-local — the
// Evaluation Engine is its only caller, and that caller's single-writer
// discipline is what lets none of its methods take locks of their own.
package depgraph

import "github.com/cedarhh/rsheet/internal/domain"

// Graph is a directed graph over domain.CellCoord nodes, adjacency kept as
// set-semantics: at most one edge between any ordered pair.
type Graph struct {
	nodes map[domain.CellCoord]struct{}
	out   map[domain.CellCoord]map[domain.CellCoord]struct{}
	in    map[domain.CellCoord]map[domain.CellCoord]struct{}
}

// New builds an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[domain.CellCoord]struct{}),
		out:   make(map[domain.CellCoord]map[domain.CellCoord]struct{}),
		in:    make(map[domain.CellCoord]map[domain.CellCoord]struct{}),
	}
}

func (g *Graph) ensureNode(c domain.CellCoord) {
	if _, ok := g.nodes[c]; ok {
		return
	}
	g.nodes[c] = struct{}{}
	g.out[c] = make(map[domain.CellCoord]struct{})
	g.in[c] = make(map[domain.CellCoord]struct{})
}

func (g *Graph) addEdge(from, to domain.CellCoord) {
	g.ensureNode(from)
	g.ensureNode(to)
	g.out[from][to] = struct{}{}
	g.in[to][from] = struct{}{}
}

// SetDeps ensures target exists as a node, removes every current incoming
// edge to target, then adds an edge d -> target for every d in deps
// (idempotent: duplicate deps collapse via set semantics, order is
// immaterial). This is the exclusive record of target's direct
// dependencies.
func (g *Graph) SetDeps(target domain.CellCoord, deps []domain.CellCoord) {
	g.ensureNode(target)
	for from := range g.in[target] {
		delete(g.out[from], target)
	}
	g.in[target] = make(map[domain.CellCoord]struct{})
	for _, d := range deps {
		g.addEdge(d, target)
	}
}

// InDegree returns the current incoming-edge set of target, exposed mainly
// for tests asserting edge-set exclusivity.
func (g *Graph) InDegree(target domain.CellCoord) []domain.CellCoord {
	var out []domain.CellCoord
	for from := range g.in[target] {
		out = append(out, from)
	}
	return out
}
