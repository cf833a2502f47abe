package scheduler

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/graph"
)

// Job is one unit of work offered by a wave: the node's name, its producer,
// and the bindings restricted to exactly the node's dependencies. Jobs in
// the same wave never depend on one another and may run in any order, or
// concurrently.
type Job struct {
	Name     string
	Producer graph.Producer
	Inputs   graph.Bindings
}

// Driver is the staged evaluation state machine. It owns the run's bindings
// and the set of names currently offered but not yet resolved. The driver is
// single-threaded: callers serialize NextWave and SubmitResults themselves.
type Driver struct {
	g       *graph.Graph
	got     graph.Bindings
	waiting map[string]struct{}
}

// Start creates a driver for one evaluation run. The inputs must bind
// exactly the graph's free variables; anything else fails before a single
// producer runs.
func Start(ctx context.Context, g *graph.Graph, inputs graph.Bindings) (*Driver, error) {
	if err := g.ValidateInputs(inputs); err != nil {
		return nil, err
	}
	got := make(graph.Bindings, g.Len())
	for name, value := range inputs {
		got[name] = value
	}
	ctxlog.FromContext(ctx).Debug("staged driver started",
		"nodes", g.Len(), "free_variables", len(inputs))
	return &Driver{
		g:       g,
		got:     got,
		waiting: make(map[string]struct{}),
	}, nil
}

// Done reports whether every node of the graph has a resolved value.
func (d *Driver) Done() bool { return len(d.got) == d.g.Len() }

// NextWave offers the next batch of ready jobs: nodes not yet resolved, not
// already offered, whose dependencies are all resolved. It returns done=true
// with no jobs once the graph is fully resolved. An empty ready set on an
// unresolved graph is a DeadlockError, never a silent spin; on a validated
// acyclic graph that only happens when a caller dropped offered results.
func (d *Driver) NextWave(ctx context.Context) (jobs []Job, done bool, err error) {
	logger := ctxlog.FromContext(ctx)
	if d.Done() {
		logger.Debug("graph fully resolved, no further waves")
		return nil, true, nil
	}

	var ready []string
	for _, name := range d.g.Names() {
		if _, ok := d.got[name]; ok {
			continue
		}
		if _, ok := d.waiting[name]; ok {
			continue
		}
		node, _ := d.g.Node(name)
		satisfied := true
		for _, dep := range node.Requests() {
			if _, ok := d.got[dep]; !ok {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, name)
		}
	}

	if len(ready) == 0 {
		var unresolved []string
		for _, name := range d.g.Names() {
			if _, ok := d.got[name]; !ok {
				unresolved = append(unresolved, name)
			}
		}
		return nil, false, &graph.DeadlockError{Unresolved: unresolved}
	}

	sort.Strings(ready)
	jobs = make([]Job, 0, len(ready))
	for _, name := range ready {
		d.waiting[name] = struct{}{}
		node, _ := d.g.Node(name)
		inputs := make(graph.Bindings, len(node.Requests()))
		for _, dep := range node.Requests() {
			inputs[dep] = d.got[dep]
		}
		jobs = append(jobs, Job{Name: name, Producer: node.Producer(), Inputs: inputs})
	}
	logger.Debug("wave offered", "jobs", len(jobs))
	return jobs, false, nil
}

// SubmitResults resolves offered names with their computed values. A wave
// need not be submitted atomically: a subset is fine, and unsubmitted names
// simply stay waiting (they are not offered again). Submitting a name that
// was never offered, or was already resolved, is a contract violation.
func (d *Driver) SubmitResults(ctx context.Context, results graph.Bindings) error {
	names := make([]string, 0, len(results))
	for name := range results {
		if _, ok := d.waiting[name]; !ok {
			return fmt.Errorf("result for %q was not requested by any wave", name)
		}
		names = append(names, name)
	}
	for _, name := range names {
		delete(d.waiting, name)
		d.got[name] = results[name]
	}
	ctxlog.FromContext(ctx).Debug("results accepted",
		"count", len(names), "resolved", len(d.got), "nodes", d.g.Len())
	return nil
}

// Results returns a copy of the bindings resolved so far. After Done reports
// true it holds a value for every node in the graph.
func (d *Driver) Results() graph.Bindings {
	return d.got.Clone()
}
