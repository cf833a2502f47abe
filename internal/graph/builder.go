package graph

import "fmt"

// RegisterFunc records one node during graph definition. A nil producer
// declares a free variable, which must not list dependencies. Dependencies
// may name nodes that have not been registered yet; a dependency that is
// never registered becomes an implicit free variable.
type RegisterFunc func(producer Producer, name string, dependencies ...string) error

// entry is the mutable pre-finalization form of a node.
type entry struct {
	producer   Producer
	registered bool
	requests   map[string]struct{}
	requested  []string
}

// Define invokes the definition callback with a register operation, then
// finalizes the accumulated entries into an immutable Graph. Registration
// failures are sticky: once register has returned an error, further calls
// return the same error and Define fails with it. Full cycle detection runs
// before the graph is returned, so a Graph in hand is always acyclic.
func Define(def func(register RegisterFunc) error) (*Graph, error) {
	entries := make(map[string]*entry)
	get := func(name string) *entry {
		e, ok := entries[name]
		if !ok {
			e = &entry{requests: make(map[string]struct{})}
			entries[name] = e
		}
		return e
	}

	var sticky error
	register := func(producer Producer, name string, dependencies ...string) error {
		if sticky != nil {
			return sticky
		}
		e := get(name)
		if e.registered {
			sticky = &DuplicateNodeError{Name: name}
			return sticky
		}
		e.registered = true
		e.producer = producer

		for _, dep := range dependencies {
			if dep == name {
				sticky = &CyclicDependencyError{Path: []string{name, name}}
				return sticky
			}
			de := get(dep)
			de.requested = append(de.requested, name)
			// Catch the immediate two-node cycle here; longer cycles are
			// caught by the layering traversal below.
			if _, back := de.requests[name]; back {
				sticky = &CyclicDependencyError{Path: []string{dep, name, dep}}
				return sticky
			}
			e.requests[dep] = struct{}{}
		}

		if producer == nil && len(e.requests) > 0 {
			sticky = fmt.Errorf("free variable %q cannot declare dependencies", name)
			return sticky
		}
		return nil
	}

	if err := def(register); err != nil {
		return nil, err
	}
	if sticky != nil {
		return nil, sticky
	}

	nodes := make(map[string]*Node, len(entries))
	for name, e := range entries {
		nodes[name] = &Node{
			name:      name,
			producer:  e.producer,
			requests:  e.requests,
			requested: e.requested,
		}
	}
	g := &Graph{nodes: nodes}

	if _, err := g.Layers(); err != nil {
		return nil, err
	}
	return g, nil
}

// NodeDef declares one node for FromNodes. A nil Producer declares a free
// variable.
type NodeDef struct {
	Name         string
	Producer     Producer
	Dependencies []string
}

// FromNodes builds a graph from a declarative slice of node definitions. It
// is a thin convenience over Define with identical validation.
func FromNodes(defs []NodeDef) (*Graph, error) {
	return Define(func(register RegisterFunc) error {
		for _, d := range defs {
			if err := register(d.Producer, d.Name, d.Dependencies...); err != nil {
				return err
			}
		}
		return nil
	})
}
