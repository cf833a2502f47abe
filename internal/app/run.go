package app

import (
	"context"
	"fmt"

	"github.com/vk/flowgraph/internal/compiler"
	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/executor"
	"github.com/vk/flowgraph/internal/graph"
	"github.com/vk/flowgraph/internal/model"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Run executes the main application logic: load definitions, build the
// graph, bind inputs, evaluate, and print the resolved values as one JSON
// object.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	spec, err := model.LoadGraphsRecursively(ctx, a.config.GraphPath)
	if err != nil {
		return err
	}

	g, err := model.BuildGraph(ctx, spec)
	if err != nil {
		return err
	}
	a.logger.Debug("graph ready",
		"nodes", g.Len(), "free_variables", g.FreeVariables())

	inputs, err := a.parseInputs()
	if err != nil {
		return err
	}

	var results graph.Bindings
	switch {
	case len(a.config.Targets) > 0:
		a.logger.Info("evaluating lazily", "targets", a.config.Targets)
		evaluate := compiler.CompileLazy(g)
		results, err = evaluate(ctx, a.config.Targets, inputs)
	case a.config.WorkerCount > 1:
		a.logger.Info("evaluating with worker pool", "workers", a.config.WorkerCount)
		results, err = executor.New(g, a.config.WorkerCount).Run(ctx, inputs)
	default:
		a.logger.Info("evaluating eagerly")
		evaluate := compiler.Compile(g)
		results, err = evaluate(ctx, inputs)
	}
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	return a.printResults(results)
}

// parseInputs converts raw JSON input values into cty values, the value
// kind HCL-defined producers expect.
func (a *App) parseInputs() (graph.Bindings, error) {
	inputs := make(graph.Bindings, len(a.config.Inputs))
	for name, raw := range a.config.Inputs {
		ty, err := ctyjson.ImpliedType([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("input %q: cannot determine type of %s: %w", name, raw, err)
		}
		value, err := ctyjson.Unmarshal([]byte(raw), ty)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		inputs[name] = value
	}
	return inputs, nil
}

// printResults renders the resolved bindings as a single JSON object.
// Object attributes marshal in sorted order, so the output is stable.
func (a *App) printResults(results graph.Bindings) error {
	attrs := make(map[string]cty.Value, len(results))
	for name, value := range results {
		ctyVal, ok := value.(cty.Value)
		if !ok {
			return fmt.Errorf("result %q is not a cty.Value (got %T)", name, value)
		}
		attrs[name] = ctyVal
	}

	obj := cty.ObjectVal(attrs)
	out, err := ctyjson.Marshal(obj, obj.Type())
	if err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}
	fmt.Fprintln(a.outW, string(out))
	return nil
}
