package graph

import "sort"

// Traversal states for the layering walk.
const (
	unvisited uint8 = iota
	onPath
	settled
)

// frame is one explicit-stack entry of the depth-first layering walk.
type frame struct {
	name string
	reqs []string
	next int
}

// Layers partitions the graph into ordered dependency layers: layer 0 holds
// the nodes with no dependencies, and every node sits one layer above its
// deepest dependency, so for every edge dep -> name, layer(dep) comes
// strictly before layer(name). Names within a layer are sorted.
//
// The walk uses an explicit stack with per-node state so that cycles of any
// length are detected deterministically and reported with the offending
// path. This is the last line of defense: registration only rejects
// immediate two-node cycles.
func (g *Graph) Layers() ([][]string, error) {
	depth := make(map[string]int, len(g.nodes))
	state := make(map[string]uint8, len(g.nodes))

	for _, root := range g.Names() {
		if state[root] != unvisited {
			continue
		}
		if err := g.walkDepths(root, state, depth); err != nil {
			return nil, err
		}
	}

	maxDepth := -1
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	layers := make([][]string, maxDepth+1)
	for name, d := range depth {
		layers[d] = append(layers[d], name)
	}
	for _, layer := range layers {
		sort.Strings(layer)
	}
	return layers, nil
}

// walkDepths resolves the depth of root and everything beneath it.
func (g *Graph) walkDepths(root string, state map[string]uint8, depth map[string]int) error {
	state[root] = onPath
	stack := []frame{{name: root, reqs: g.nodes[root].Requests()}}

	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]

		if f.next < len(f.reqs) {
			dep := f.reqs[f.next]
			stack[top].next++

			switch state[dep] {
			case settled:
				continue
			case onPath:
				return &CyclicDependencyError{Path: cyclePath(stack, dep)}
			default:
				state[dep] = onPath
				stack = append(stack, frame{name: dep, reqs: g.nodes[dep].Requests()})
			}
			continue
		}

		// All dependencies settled; this node sits one past the deepest.
		d := 0
		for _, dep := range f.reqs {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[f.name] = d
		state[f.name] = settled
		stack = stack[:top]
	}
	return nil
}

// cyclePath extracts the cycle witness from the walk stack, closing it by
// repeating the first name.
func cyclePath(stack []frame, dep string) []string {
	start := 0
	for i, f := range stack {
		if f.name == dep {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.name)
	}
	return append(path, dep)
}
