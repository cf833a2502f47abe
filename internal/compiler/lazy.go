package compiler

import (
	"context"
	"fmt"

	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/graph"
)

// LazyEvalFunc evaluates only the requested targets of a compiled graph,
// returning exactly the target name -> value pairs.
type LazyEvalFunc func(ctx context.Context, targets []string, inputs graph.Bindings) (graph.Bindings, error)

// CompileLazy returns an on-demand evaluator for g. Each call computes the
// minimal subgraph needed for the requested targets: a work stack starts
// with the targets, and an item with unresolved dependencies is pushed back
// behind those dependencies so they resolve first. Intermediate values are
// memoized within the call, but only the requested names are returned.
func CompileLazy(g *graph.Graph) LazyEvalFunc {
	return func(ctx context.Context, targets []string, inputs graph.Bindings) (graph.Bindings, error) {
		if err := g.ValidateInputs(inputs); err != nil {
			return nil, err
		}
		for _, target := range targets {
			if _, ok := g.Node(target); !ok {
				return nil, fmt.Errorf("unknown node %q", target)
			}
		}

		logger := ctxlog.FromContext(ctx)
		got := inputs.Clone()
		stack := make([]string, len(targets))
		copy(stack, targets)

		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := got[item]; ok {
				continue
			}

			node, _ := g.Node(item)
			var unresolved []string
			for _, dep := range node.Requests() {
				if _, ok := got[dep]; !ok {
					unresolved = append(unresolved, dep)
				}
			}

			if len(unresolved) > 0 {
				// An unbound free variable cannot be deferred: it has no
				// producer to push onto the stack.
				for _, dep := range unresolved {
					if n, _ := g.Node(dep); n.IsFree() {
						return nil, &graph.MissingInputError{Names: []string{dep}}
					}
				}
				stack = append(stack, item)
				stack = append(stack, unresolved...)
				continue
			}

			env := make(graph.Bindings, len(node.Requests()))
			for _, dep := range node.Requests() {
				env[dep] = got[dep]
			}
			logger.Debug("lazy evaluation", "node", item)
			value, err := node.Producer()(env)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", item, err)
			}
			got[item] = value
		}

		out := make(graph.Bindings, len(targets))
		for _, target := range targets {
			out[target] = got[target]
		}
		return out, nil
	}
}
