// Package engine implements the in-memory, directed, weighted graph
// shared by every session: a small synchronous API (AddNode, AddEdge,
// RemoveNode, RemoveEdge, ShortestPath, CloserThan) backed by Dijkstra
// for single-source shortest path and a lazily-rebuilt, cached
// Floyd-Warshall all-pairs matrix for CloserThan.
package engine

import (
	"math"
	"sync"
)

// MaxWeight is the sentinel ShortestPath returns for "no path exists".
const MaxWeight = math.MaxInt32

// MissingEndpoint is the sentinel ShortestPath returns when either
// endpoint is not in the graph.
const MissingEndpoint = -1

// Engine is the thread-safe, synchronous graph store. The zero value
// is not usable; construct with New. A single Engine is meant to be
// shared by every session, but nothing about it requires that — it is
// an ordinary value, constructed with New and passed explicitly, which
// keeps it trivially testable without a process-wide singleton.
//
// Locking discipline (a readers-writer design): writers (AddNode,
// AddEdge, RemoveNode, RemoveEdge) take the exclusive lock for their
// entire duration. Readers (ShortestPath,
// CloserThan) take the shared lock. CloserThan's cache rebuild needs
// exclusive access because it mutates cache/dirty, so it upgrades:
// release the read lock, acquire the write lock, re-check dirty (a
// concurrent writer may have rebuilt it first), rebuild if still
// dirty, then proceed holding the write lock for the lookup itself.
// A single mutex guards both the graph and the cache fields, so there
// is no separate handshake between two locks to get wrong.
type Engine struct {
	mu    sync.RWMutex
	graph *Graph
	cache *allPairs
	dirty bool
}

// New returns a ready-to-use Engine with an empty graph.
func New() *Engine {
	return &Engine{graph: newGraph(), dirty: true}
}

// AddNode inserts a node named name. Returns true if it was inserted,
// false if name already existed (not an error — a legal no-op).
func (e *Engine) AddNode(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ok := e.graph.addNode(name)
	if ok {
		e.dirty = true
	}
	return ok
}

// AddEdge upserts a directed edge from -> to with the given weight:
// inserts it if absent, or lowers its stored weight if weight is
// strictly less than the current one. Returns false only if either
// endpoint is missing; otherwise true, regardless of whether the
// weight actually improved (idempotent upsert).
func (e *Engine) AddEdge(from, to string, weight int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.graph.Nodes[from]; !ok {
		return false
	}
	if _, ok := e.graph.Nodes[to]; !ok {
		return false
	}

	if e.graph.addEdge(from, to, weight) {
		e.dirty = true
	}
	return true
}

// RemoveNode deletes name and every edge touching it. Returns false if
// name was not present.
func (e *Engine) RemoveNode(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ok := e.graph.removeNode(name)
	if ok {
		e.dirty = true
	}
	return ok
}

// RemoveEdge deletes the edge (from, to) if present. Returns false
// only if either endpoint is missing; removing an edge that doesn't
// exist (but whose endpoints do) is a legal no-op that still returns
// true.
func (e *Engine) RemoveEdge(from, to string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.graph.Nodes[from]; !ok {
		return false
	}
	if _, ok := e.graph.Nodes[to]; !ok {
		return false
	}

	if e.graph.removeEdge(from, to) {
		e.dirty = true
	}
	return true
}

// ShortestPath returns the cost of the shortest directed path from
// "from" to "to" (MaxWeight if unreachable), or MissingEndpoint if
// either node does not exist.
func (e *Engine) ShortestPath(from, to string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, ok := e.graph.Nodes[from]; !ok {
		return MissingEndpoint
	}
	if _, ok := e.graph.Nodes[to]; !ok {
		return MissingEndpoint
	}

	cost := shortestPath(e.graph, from, to)
	if math.IsInf(cost, 1) {
		return MaxWeight
	}
	return int(cost)
}

// CloserThan returns the names of nodes n (n != to) such that the
// shortest directed distance from "to" to n is strictly less than
// weight, sorted lexicographically ascending. The second return value
// is false iff "to" does not exist in the graph, distinguishing
// "no such nodes" (true, empty slice) from "node missing" (false,
// nil).
func (e *Engine) CloserThan(weight int, to string) ([]string, bool) {
	e.mu.RLock()
	if _, ok := e.graph.Nodes[to]; !ok {
		e.mu.RUnlock()
		return nil, false
	}
	if !e.dirty {
		names := e.cache.closerThan(weight, to)
		e.mu.RUnlock()
		return names, true
	}
	e.mu.RUnlock()

	// Upgrade to exclusive access to rebuild the cache.
	e.mu.Lock()
	if _, ok := e.graph.Nodes[to]; !ok {
		e.mu.Unlock()
		return nil, false
	}
	if e.dirty {
		e.cache = buildAllPairs(e.graph)
		e.dirty = false
	}
	names := e.cache.closerThan(weight, to)
	e.mu.Unlock()

	return names, true
}
