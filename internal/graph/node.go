package graph

import "sort"

// Producer computes a node's value from the values of its dependencies. The
// inputs map is keyed exactly by the node's declared dependency names.
// Producers must be pure; any error aborts the evaluation run that invoked
// the producer.
type Producer func(inputs Bindings) (any, error)

// Bindings maps node names to concrete values. During an evaluation run it
// starts out holding exactly the free-variable values and grows as producers
// complete. Each run owns its own Bindings; the graph itself is never
// mutated.
type Bindings map[string]any

// Clone returns a shallow copy of the bindings.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Node is a single vertex in an evaluation graph. A node with no producer is
// a free variable and must be bound by the caller before evaluation.
type Node struct {
	name      string
	producer  Producer
	requests  map[string]struct{}
	requested []string
}

// Name returns the node's unique name.
func (n *Node) Name() string { return n.name }

// Producer returns the node's producer, or nil for a free variable.
func (n *Node) Producer() Producer { return n.producer }

// IsFree reports whether the node is a free variable.
func (n *Node) IsFree() bool { return n.producer == nil }

// Requests returns the sorted names this node depends on.
func (n *Node) Requests() []string {
	out := make([]string, 0, len(n.requests))
	for name := range n.requests {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Requested returns the names that depend on this node, in registration
// order. It is the reverse edge set, kept for introspection only.
func (n *Node) Requested() []string {
	out := make([]string, len(n.requested))
	copy(out, n.requested)
	return out
}

func (n *Node) requires(name string) bool {
	_, ok := n.requests[name]
	return ok
}
