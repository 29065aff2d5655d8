package engine

import (
	"container/heap"
	"math"
)

// shortestPath computes the cost of the shortest directed path from
// src to dst using Dijkstra's algorithm. Both nodes must already exist
// (the caller checks that). Returns math.Inf(1) if dst is unreachable
// from src.
//
// The priority queue may carry stale duplicate entries after a
// decrease-key event; a popped entry whose cost exceeds the current
// best-known distance is skipped (lazy deletion), matching the
// standard heap-based Dijkstra shape.
func shortestPath(g *Graph, src, dst string) float64 {
	dist := make(map[string]float64, len(g.Nodes))
	for id := range g.Nodes {
		dist[id] = math.Inf(1)
	}
	dist[src] = 0

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{name: src, cost: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		u := item.name

		if item.cost > dist[u] {
			continue // stale entry
		}
		if u == dst {
			break
		}

		for _, edge := range g.Nodes[u].Outgoing {
			alt := dist[u] + float64(edge.Weight)
			if alt < dist[edge.To] {
				dist[edge.To] = alt
				heap.Push(pq, &pqItem{name: edge.To, cost: alt})
			}
		}
	}

	return dist[dst]
}

type pqItem struct {
	name  string
	cost  float64
	index int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
