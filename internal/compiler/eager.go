package compiler

import (
	"context"
	"fmt"

	"github.com/vk/flowgraph/internal/graph"
	"github.com/vk/flowgraph/internal/scheduler"
)

// EvalFunc evaluates a compiled graph against one set of free-variable
// bindings and returns the full mapping of resolved node values.
type EvalFunc func(ctx context.Context, inputs graph.Bindings) (graph.Bindings, error)

// Compile returns a function that resolves every node of g. Each call
// validates its inputs against the graph's free variables, then drives the
// staged scheduler wave by wave, computing a wave's jobs sequentially and
// submitting them together. A producer error aborts the run and is returned
// annotated with the failing node's name.
func Compile(g *graph.Graph) EvalFunc {
	return func(ctx context.Context, inputs graph.Bindings) (graph.Bindings, error) {
		driver, err := scheduler.Start(ctx, g, inputs)
		if err != nil {
			return nil, err
		}
		for {
			jobs, done, err := driver.NextWave(ctx)
			if err != nil {
				return nil, err
			}
			if done {
				return driver.Results(), nil
			}
			results := make(graph.Bindings, len(jobs))
			for _, job := range jobs {
				value, err := job.Producer(job.Inputs)
				if err != nil {
					return nil, fmt.Errorf("node %q: %w", job.Name, err)
				}
				results[job.Name] = value
			}
			if err := driver.SubmitResults(ctx, results); err != nil {
				return nil, err
			}
		}
	}
}
