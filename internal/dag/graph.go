package dag

import "fmt"

// Graph owns a tariff's nodes by unique name and carries the product
// metadata the declaration format attaches. It does not
// perform topological sorting itself; AddNode rejects duplicate names,
// Validate checks the two structural invariants (every reference
// resolves, no cycle) and the Evaluator drives traversal recursively.
type Graph struct {
	Product  string
	Version  string
	Currency string
	Metadata map[string]string

	nodes map[string]*Node
	order []string
}

// NewGraph returns an empty Graph carrying the given reporting metadata.
func NewGraph(product, version, currency string, metadata map[string]string) *Graph {
	return &Graph{
		Product:  product,
		Version:  version,
		Currency: currency,
		Metadata: metadata,
		nodes:    make(map[string]*Node),
	}
}

// AddNode inserts n into the graph. A duplicate name is fatal.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.nodes[n.Name]; exists {
		return fmt.Errorf("duplicate node name %q", n.Name)
	}
	g.nodes[n.Name] = n
	g.order = append(g.order, n.Name)
	return nil
}

// Get returns the node named name, or false if no such node exists.
func (g *Graph) Get(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns every node in insertion order, for diagnostic and
// visualization consumers.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, name := range g.order {
		out[i] = g.nodes[name]
	}
	return out
}

// Len reports the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate checks the two structural invariants every graph must satisfy
// before it can be evaluated: every dependency reference resolves to a
// node in the same graph, and the reference graph is acyclic. It uses
// the classic three-color depth-first search: a node is either unvisited,
// "in progress" (on the current recursion stack), or "done".
func (g *Graph) Validate() error {
	for _, n := range g.Nodes() {
		for _, dep := range n.Dependencies() {
			if _, ok := g.nodes[dep]; !ok {
				return fmt.Errorf("node %q references unknown node %q", n.Name, dep)
			}
		}
	}

	inProgress := make(map[string]bool, len(g.nodes))
	done := make(map[string]bool, len(g.nodes))

	var visit func(name string) error
	visit = func(name string) error {
		if done[name] {
			return nil
		}
		if inProgress[name] {
			return fmt.Errorf("cycle detected involving node %q", name)
		}
		inProgress[name] = true
		for _, dep := range g.nodes[name].Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(inProgress, name)
		done[name] = true
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
