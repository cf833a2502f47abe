package graph

import "sort"

// Graph is an immutable set of named nodes connected by dependency edges.
// Construct one with Define or FromNodes; both validate the structural
// invariants (unique names, acyclic dependencies, free variables without
// dependencies) before returning.
type Graph struct {
	nodes map[string]*Node
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given name, if present.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns all node names, sorted.
func (g *Graph) Names() []string {
	out := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FreeVariables returns the sorted names of nodes with no producer. These
// are the required external inputs of every evaluation run.
func (g *Graph) FreeVariables() []string {
	out := make([]string, 0, len(g.nodes))
	for name, n := range g.nodes {
		if n.IsFree() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ValidateInputs checks that the supplied bindings cover exactly the graph's
// free variables: an UnknownInputError is returned for keys that are not
// declared free variables, then a MissingInputError naming every still
// unbound free variable. All evaluators share this check.
func (g *Graph) ValidateInputs(inputs Bindings) error {
	free := make(map[string]struct{}, len(g.nodes))
	for name, n := range g.nodes {
		if n.IsFree() {
			free[name] = struct{}{}
		}
	}

	var unknown []string
	for name := range inputs {
		if _, ok := free[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &UnknownInputError{Names: unknown}
	}

	var missing []string
	for name := range free {
		if _, ok := inputs[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingInputError{Names: missing}
	}

	return nil
}
