package engine

// Graph is a directed weighted graph keyed by node name. It has no
// locking of its own — callers (Engine) serialize access.
type Graph struct {
	Nodes map[string]*Node
}

// Node is a vertex in the graph.
type Node struct {
	Name     string
	Outgoing []Edge
}

// Edge is a directed connection from one node to another. Identity is
// the ordered pair (from, to); Weight does not participate in
// equality, which is what makes addEdge's upsert-by-min-weight rule
// well defined.
type Edge struct {
	To     string
	Weight int
}

// newGraph returns an empty graph.
func newGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// addNode inserts a node if absent. Returns false if name was already
// present (caller is responsible for the "already exists" semantics).
func (g *Graph) addNode(name string) bool {
	if _, ok := g.Nodes[name]; ok {
		return false
	}
	g.Nodes[name] = &Node{Name: name}
	return true
}

// addEdge upserts a directed edge: inserts it if absent, or lowers its
// weight in place if weight is strictly less than the current one.
// Returns true if the graph's state changed. Both endpoints must
// already exist; the caller checks that before calling.
func (g *Graph) addEdge(from, to string, weight int) (changed bool) {
	node := g.Nodes[from]
	for i, e := range node.Outgoing {
		if e.To == to {
			if weight < e.Weight {
				node.Outgoing[i].Weight = weight
				return true
			}
			return false
		}
	}
	node.Outgoing = append(node.Outgoing, Edge{To: to, Weight: weight})
	return true
}

// removeEdge deletes the edge (from, to) if present. Returns true if
// the graph's state changed.
func (g *Graph) removeEdge(from, to string) (changed bool) {
	node := g.Nodes[from]
	for i, e := range node.Outgoing {
		if e.To == to {
			node.Outgoing = append(node.Outgoing[:i], node.Outgoing[i+1:]...)
			return true
		}
	}
	return false
}

// removeNode deletes name and every edge whose from or to endpoint is
// name. Returns false if name was not present.
func (g *Graph) removeNode(name string) bool {
	if _, ok := g.Nodes[name]; !ok {
		return false
	}
	delete(g.Nodes, name)
	for _, node := range g.Nodes {
		filtered := node.Outgoing[:0]
		for _, e := range node.Outgoing {
			if e.To != name {
				filtered = append(filtered, e)
			}
		}
		node.Outgoing = filtered
	}
	return true
}
