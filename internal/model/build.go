package model

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// BuildGraph translates a loaded Spec into an evaluation graph. Inputs
// become free variables; each node's expression becomes a producer that
// evaluates it with the dependency values as expression variables. All
// structural validation (duplicates, cycles, free-variable invariants) is
// delegated to graph.Define.
func BuildGraph(ctx context.Context, spec *Spec) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	g, err := graph.Define(func(register graph.RegisterFunc) error {
		for _, in := range spec.Inputs {
			if err := register(nil, in.Name); err != nil {
				return err
			}
		}
		for _, n := range spec.Nodes {
			deps := dependencies(n)
			if err := register(producerFor(n.Name, n.Expr), n.Name, deps...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	logger.Debug("dependency graph built", "node_count", g.Len())
	return g, nil
}

// dependencies merges a node's explicit depends_on list with the variables
// its expression references, deduplicated and sorted.
func dependencies(n *NodeSpec) []string {
	seen := make(map[string]struct{})
	var deps []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		deps = append(deps, name)
	}
	for _, dep := range n.DependsOn {
		add(dep)
	}
	for _, traversal := range n.Expr.Variables() {
		add(traversal.RootName())
	}
	sort.Strings(deps)
	return deps
}

// producerFor wraps an HCL expression as a producer. The dependency bindings
// become the expression's variable scope; values flowing through an
// HCL-defined graph are cty.Value.
func producerFor(name string, expr hcl.Expression) graph.Producer {
	return func(inputs graph.Bindings) (any, error) {
		vars := make(map[string]cty.Value, len(inputs))
		for dep, value := range inputs {
			ctyVal, ok := value.(cty.Value)
			if !ok {
				return nil, fmt.Errorf("node %q: dependency %q is not a cty.Value (got %T)", name, dep, value)
			}
			vars[dep] = ctyVal
		}
		evalCtx := &hcl.EvalContext{
			Variables: vars,
			Functions: EvalFuncs(),
		}
		value, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate node %q: %w", name, diags)
		}
		return value, nil
	}
}
