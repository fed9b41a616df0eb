// Package graph provides a dependency graph with cycle detection, used
// for module import ordering and for explaining unresolved symbols.
package graph

import (
	"cmp"
	"slices"
)

// Graph is a dependency graph with forward edges. Node keys are
// ordered so traversal is deterministic.
type Graph[N cmp.Ordered] struct {
	nodes map[N]struct{}
	edges map[N][]N
}

// New returns a graph with no nodes or edges.
func New[N cmp.Ordered]() *Graph[N] {
	return &Graph[N]{
		nodes: make(map[N]struct{}),
		edges: make(map[N][]N),
	}
}

// AddNode registers a node. Duplicate calls are no-ops.
func (g *Graph[N]) AddNode(n N) {
	g.nodes[n] = struct{}{}
}

// AddEdge records that "from" depends on "to", meaning "to" must be
// handled before "from". Missing nodes are created implicitly.
// Duplicate edges are ignored.
func (g *Graph[N]) AddEdge(from, to N) {
	g.nodes[from] = struct{}{}
	g.nodes[to] = struct{}{}
	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// Dependencies returns the nodes n depends on.
func (g *Graph[N]) Dependencies(n N) []N {
	return g.edges[n]
}

// HasNode reports whether n exists in the graph.
func (g *Graph[N]) HasNode(n N) bool {
	_, ok := g.nodes[n]
	return ok
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int {
	return len(g.nodes)
}

// Nodes returns all nodes in sorted order.
func (g *Graph[N]) Nodes() []N {
	out := make([]N, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// ResolutionOrder returns nodes ordered so that dependencies come
// before dependents, using Tarjan's algorithm. Strongly connected
// components with more than one node (or a single node with a
// self-loop) are reported as cycles and excluded from the order.
func (g *Graph[N]) ResolutionOrder() (order []N, cycles [][]N) {
	var (
		index    int
		stack    []N
		onStack  = make(map[N]bool)
		indices  = make(map[N]int)
		lowlinks = make(map[N]int)
	)

	var strongConnect func(n N)
	strongConnect = func(n N) {
		indices[n] = index
		lowlinks[n] = index
		index++
		stack = append(stack, n)
		onStack[n] = true

		for _, dep := range g.edges[n] {
			if _, visited := indices[dep]; !visited {
				strongConnect(dep)
				lowlinks[n] = min(lowlinks[n], lowlinks[dep])
			} else if onStack[dep] {
				lowlinks[n] = min(lowlinks[n], indices[dep])
			}
		}

		if lowlinks[n] == indices[n] {
			var scc []N
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == n {
					break
				}
			}
			switch {
			case len(scc) > 1:
				slices.Sort(scc)
				cycles = append(cycles, scc)
			case slices.Contains(g.edges[scc[0]], scc[0]):
				cycles = append(cycles, scc)
			default:
				order = append(order, scc[0])
			}
		}
	}

	for _, n := range g.Nodes() {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return order, cycles
}

// Cycles returns the cyclic components of the graph.
func (g *Graph[N]) Cycles() [][]N {
	_, cycles := g.ResolutionOrder()
	return cycles
}

// HasCycles reports whether the graph contains any cycles.
func (g *Graph[N]) HasCycles() bool {
	return len(g.Cycles()) > 0
}
