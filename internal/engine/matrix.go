package engine

import (
	"math"
	"sort"
)

// allPairs is a cached all-pairs shortest-distance matrix, indexed by
// the dense node order captured at computation time.
type allPairs struct {
	index map[string]int // node name -> row/col
	names []string       // row/col -> node name, same order as index
	dist  [][]float64
}

// buildAllPairs assigns every node a dense index in an arbitrary but
// stable order (sorted, for determinism), then runs Floyd-Warshall.
//
// Loop order is fixed (k -> i -> j), off-diagonal entries start at
// +Inf, the diagonal starts at 0, and an edge relaxes its cell only on
// strict improvement — the same shape as a textbook dense APSP closure.
func buildAllPairs(g *Graph) *allPairs {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	n := len(names)
	index := make(map[string]int, n)
	for i, name := range names {
		index[name] = i
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i == j {
				dist[i][j] = 0
			} else {
				dist[i][j] = math.Inf(1)
			}
		}
	}

	for _, name := range names {
		i := index[name]
		for _, e := range g.Nodes[name].Outgoing {
			j := index[e.To]
			if w := float64(e.Weight); w < dist[i][j] {
				dist[i][j] = w
			}
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if math.IsInf(dist[i][k], 1) {
				continue
			}
			for j := 0; j < n; j++ {
				if math.IsInf(dist[k][j], 1) {
					continue
				}
				if cand := dist[i][k] + dist[k][j]; cand < dist[i][j] {
					dist[i][j] = cand
				}
			}
		}
	}

	return &allPairs{index: index, names: names, dist: dist}
}

// closerThan returns the names of nodes strictly closer than weight
// from "to", sorted ascending, excluding "to" itself. m.names is
// already in sorted order, so no further sort is needed.
func (m *allPairs) closerThan(weight int, to string) []string {
	toIdx := m.index[to]
	out := make([]string, 0)
	for i, name := range m.names {
		if name == to {
			continue
		}
		if m.dist[toIdx][i] < float64(weight) {
			out = append(out, name)
		}
	}
	return out
}

// distance returns the cached shortest distance from "from" to "to".
func (m *allPairs) distance(from, to string) float64 {
	return m.dist[m.index[from]][m.index[to]]
}
