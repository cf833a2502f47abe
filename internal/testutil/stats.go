// Package testutil provides shared fixtures for engine tests.
package testutil

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgraph/internal/graph"
)

// Counters tracks per-node producer invocations. Safe for concurrent use so
// parallel executors can share the fixture.
type Counters map[string]*atomic.Int64

// Calls returns the recorded invocation count for a node.
func (c Counters) Calls(name string) int64 { return c[name].Load() }

// StatsGraph builds the descriptive-statistics fixture over a free variable
// xs ([]float64): n = count, m = mean, m2 = mean of squares, var = m2 - m².
// Every producer increments its counter on invocation.
func StatsGraph(t *testing.T) (*graph.Graph, Counters) {
	t.Helper()
	counters := Counters{
		"n":   &atomic.Int64{},
		"m":   &atomic.Int64{},
		"m2":  &atomic.Int64{},
		"var": &atomic.Int64{},
	}
	xsOf := func(in graph.Bindings) []float64 { return in["xs"].([]float64) }

	g, err := graph.FromNodes([]graph.NodeDef{
		{Name: "xs"},
		{Name: "n", Dependencies: []string{"xs"}, Producer: func(in graph.Bindings) (any, error) {
			counters["n"].Add(1)
			return float64(len(xsOf(in))), nil
		}},
		{Name: "m", Dependencies: []string{"xs", "n"}, Producer: func(in graph.Bindings) (any, error) {
			counters["m"].Add(1)
			sum := 0.0
			for _, x := range xsOf(in) {
				sum += x
			}
			return sum / in["n"].(float64), nil
		}},
		{Name: "m2", Dependencies: []string{"xs", "n"}, Producer: func(in graph.Bindings) (any, error) {
			counters["m2"].Add(1)
			sum := 0.0
			for _, x := range xsOf(in) {
				sum += x * x
			}
			return sum / in["n"].(float64), nil
		}},
		{Name: "var", Dependencies: []string{"m", "m2"}, Producer: func(in graph.Bindings) (any, error) {
			counters["var"].Add(1)
			m := in["m"].(float64)
			return in["m2"].(float64) - m*m, nil
		}},
	})
	require.NoError(t, err)
	return g, counters
}

// Sequence returns the float64 slice [0, 1, ..., n-1].
func Sequence(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// StatsExpected is the full expected result mapping for StatsGraph evaluated
// with xs = Sequence(10).
func StatsExpected() graph.Bindings {
	return graph.Bindings{
		"xs":  Sequence(10),
		"n":   10.0,
		"m":   4.5,
		"m2":  28.5,
		"var": 8.25,
	}
}
