// Package executor runs a graph through the staged scheduler with a bounded
// worker pool per wave. It is the reference caller-side parallel harness:
// the scheduler itself stays single-threaded, and jobs within a wave are
// independent, so fanning them out needs no extra coordination beyond the
// wave barrier.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/graph"
	"github.com/vk/flowgraph/internal/scheduler"
)

// Executor evaluates a graph with up to numWorkers producers running
// concurrently inside each wave. Producers must be safe to run concurrently
// with each other; the engine makes no guarantee about producer bodies.
type Executor struct {
	g          *graph.Graph
	numWorkers int
}

// New creates an executor for the given graph. A worker count below one is
// clamped to one.
func New(g *graph.Graph, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{g: g, numWorkers: workers}
}

// Run evaluates the whole graph and returns every resolved node value. The
// first producer failure cancels the remainder of its wave and aborts the
// run.
func (e *Executor) Run(ctx context.Context, inputs graph.Bindings) (graph.Bindings, error) {
	logger := ctxlog.FromContext(ctx)
	driver, err := scheduler.Start(ctx, e.g, inputs)
	if err != nil {
		return nil, err
	}

	for {
		jobs, done, err := driver.NextWave(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			logger.Debug("all nodes resolved")
			return driver.Results(), nil
		}

		results, err := e.runWave(ctx, jobs)
		if err != nil {
			return nil, err
		}
		if err := driver.SubmitResults(ctx, results); err != nil {
			return nil, err
		}
	}
}

// outcome carries one job's result back from a worker.
type outcome struct {
	name  string
	value any
	err   error
}

// runWave executes one wave's jobs on the worker pool and collects their
// results. On failure it returns the root-cause error, preferring a real
// producer error over cancellation noise from the same wave.
func (e *Executor) runWave(ctx context.Context, jobs []scheduler.Job) (graph.Bindings, error) {
	logger := ctxlog.FromContext(ctx)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := e.numWorkers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	logger.Debug("running wave", "jobs", len(jobs), "workers", workers)

	jobChan := make(chan scheduler.Job)
	outChan := make(chan outcome, len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				if runCtx.Err() != nil {
					outChan <- outcome{name: job.Name, err: runCtx.Err()}
					continue
				}
				value, err := job.Producer(job.Inputs)
				if err != nil {
					err = fmt.Errorf("node %q: %w", job.Name, err)
					cancel()
				}
				outChan <- outcome{name: job.Name, value: value, err: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)
	wg.Wait()
	close(outChan)

	results := make(graph.Bindings, len(jobs))
	var firstErr error
	for o := range outChan {
		if o.err != nil {
			if firstErr == nil || errors.Is(firstErr, context.Canceled) {
				firstErr = o.err
			}
			continue
		}
		results[o.name] = o.value
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
