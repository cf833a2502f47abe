package model_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgraph/internal/compiler"
	"github.com/vk/flowgraph/internal/graph"
	"github.com/vk/flowgraph/internal/model"
	"github.com/zclconf/go-cty/cty"
)

const statsDefinition = `
input "xs" {}

node "n" {
  expr = length(xs)
}

node "m" {
  expr = sum(xs) / n
}

node "m2" {
  expr = sum([for x in xs : pow(x, 2)]) / n
}

node "variance" {
  expr = m2 - pow(m, 2)
}
`

func parseSpec(t *testing.T, src string) *model.Spec {
	t.Helper()
	spec, err := model.ParseSpec("test.hcl", []byte(src), hclparse.NewParser())
	require.NoError(t, err)
	return spec
}

func sequenceVal(n int) cty.Value {
	vals := make([]cty.Value, n)
	for i := range vals {
		vals[i] = cty.NumberIntVal(int64(i))
	}
	return cty.ListVal(vals)
}

func TestParseSpec(t *testing.T) {
	t.Parallel()
	spec := parseSpec(t, statsDefinition)

	require.Len(t, spec.Inputs, 1)
	assert.Equal(t, "xs", spec.Inputs[0].Name)
	require.Len(t, spec.Nodes, 4)
	assert.Equal(t, "variance", spec.Nodes[3].Name)
}

func TestParseSpec_InvalidSyntax(t *testing.T) {
	t.Parallel()
	_, err := model.ParseSpec("broken.hcl", []byte(`node "a" {`), hclparse.NewParser())
	assert.ErrorContains(t, err, "failed to parse")
}

func TestBuildGraph_InfersDependenciesFromExpressions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, err := model.BuildGraph(ctx, parseSpec(t, statsDefinition))
	require.NoError(t, err)

	assert.Equal(t, []string{"xs"}, g.FreeVariables())

	m, ok := g.Node("m")
	require.True(t, ok)
	assert.Equal(t, []string{"n", "xs"}, m.Requests())

	m2, ok := g.Node("m2")
	require.True(t, ok)
	assert.Equal(t, []string{"n", "xs"}, m2.Requests(),
		"the for-expression's bound variable must not count as a dependency")

	variance, ok := g.Node("variance")
	require.True(t, ok)
	assert.Equal(t, []string{"m", "m2"}, variance.Requests())
}

func TestBuildGraph_ExplicitDependsOnWidensRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	spec := parseSpec(t, `
input "a" {}
input "b" {}

node "c" {
  depends_on = ["b"]
  expr       = a + 1
}
`)
	g, err := model.BuildGraph(ctx, spec)
	require.NoError(t, err)

	c, ok := g.Node("c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, c.Requests())
}

func TestBuildGraph_CycleIsRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	spec := parseSpec(t, `
node "a" {
  expr = b + 1
}

node "b" {
  expr = a + 1
}
`)
	_, err := model.BuildGraph(ctx, spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrCyclicDependency)
}

func TestEvaluateStatsDefinition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, err := model.BuildGraph(ctx, parseSpec(t, statsDefinition))
	require.NoError(t, err)

	results, err := compiler.Compile(g)(ctx, graph.Bindings{"xs": sequenceVal(10)})
	require.NoError(t, err)

	want := map[string]cty.Value{
		"n":        cty.NumberIntVal(10),
		"m":        cty.NumberFloatVal(4.5),
		"m2":       cty.NumberFloatVal(28.5),
		"variance": cty.NumberFloatVal(8.25),
	}
	for name, wantVal := range want {
		got, ok := results[name].(cty.Value)
		require.True(t, ok, "result %q should be a cty.Value", name)
		assert.True(t, wantVal.RawEquals(got), "node %q: want %#v, got %#v", name, wantVal, got)
	}
}

func TestEvaluateLazily(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g, err := model.BuildGraph(ctx, parseSpec(t, statsDefinition))
	require.NoError(t, err)

	results, err := compiler.CompileLazy(g)(ctx, []string{"m2", "n"}, graph.Bindings{"xs": sequenceVal(10)})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.True(t, cty.NumberFloatVal(28.5).RawEquals(results["m2"].(cty.Value)))
	assert.True(t, cty.NumberIntVal(10).RawEquals(results["n"].(cty.Value)))
}

func TestLoadGraphsRecursively_MergesAcrossFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "inputs.hcl"), []byte(`
input "xs" {}
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodes.hcl"), []byte(`
node "n" {
  expr = length(xs)
}
`), 0o600))

	spec, err := model.LoadGraphsRecursively(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, spec.Inputs, 1)
	assert.Len(t, spec.Nodes, 1)

	g, err := model.BuildGraph(ctx, spec)
	require.NoError(t, err)

	results, err := compiler.Compile(g)(ctx, graph.Bindings{"xs": sequenceVal(3)})
	require.NoError(t, err)
	assert.True(t, cty.NumberIntVal(3).RawEquals(results["n"].(cty.Value)))
}

func TestLoadGraphsRecursively_NoDefinitionFiles(t *testing.T) {
	t.Parallel()
	_, err := model.LoadGraphsRecursively(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no .hcl definition files")
}
