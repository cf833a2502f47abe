package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numbersOf reads a []float64 dependency out of the bindings.
func numbersOf(inputs Bindings, name string) []float64 {
	return inputs[name].([]float64)
}

// defineStats builds the descriptive-statistics fixture graph over a free
// variable xs.
func defineStats(t *testing.T) *Graph {
	t.Helper()
	g, err := Define(func(register RegisterFunc) error {
		if err := register(nil, "xs"); err != nil {
			return err
		}
		if err := register(func(in Bindings) (any, error) {
			return float64(len(numbersOf(in, "xs"))), nil
		}, "n", "xs"); err != nil {
			return err
		}
		if err := register(func(in Bindings) (any, error) {
			sum := 0.0
			for _, x := range numbersOf(in, "xs") {
				sum += x
			}
			return sum / in["n"].(float64), nil
		}, "m", "xs", "n"); err != nil {
			return err
		}
		if err := register(func(in Bindings) (any, error) {
			sum := 0.0
			for _, x := range numbersOf(in, "xs") {
				sum += x * x
			}
			return sum / in["n"].(float64), nil
		}, "m2", "xs", "n"); err != nil {
			return err
		}
		return register(func(in Bindings) (any, error) {
			m := in["m"].(float64)
			return in["m2"].(float64) - m*m, nil
		}, "var", "m", "m2")
	})
	require.NoError(t, err)
	return g
}

func TestDefine_StatsGraph(t *testing.T) {
	t.Parallel()
	g := defineStats(t)

	assert.Equal(t, 5, g.Len())
	assert.Equal(t, []string{"m", "m2", "n", "var", "xs"}, g.Names())
	assert.Equal(t, []string{"xs"}, g.FreeVariables())

	n, ok := g.Node("m")
	require.True(t, ok)
	assert.Equal(t, []string{"n", "xs"}, n.Requests())
	assert.False(t, n.IsFree())

	xs, ok := g.Node("xs")
	require.True(t, ok)
	assert.True(t, xs.IsFree())
	assert.Empty(t, xs.Requests())
	assert.Equal(t, []string{"n", "m", "m2"}, xs.Requested())
}

func TestDefine_DuplicateNode(t *testing.T) {
	t.Parallel()
	g, err := Define(func(register RegisterFunc) error {
		if err := register(nil, "a"); err != nil {
			return err
		}
		return register(nil, "a")
	})
	assert.Nil(t, g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateNode)

	var dup *DuplicateNodeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Name)
}

func TestDefine_ImmediateCycle(t *testing.T) {
	t.Parallel()
	g, err := Define(func(register RegisterFunc) error {
		constant := func(Bindings) (any, error) { return nil, nil }
		if err := register(constant, "a", "b"); err != nil {
			return err
		}
		return register(constant, "b", "a")
	})
	assert.Nil(t, g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicDependency)

	var cyc *CyclicDependencyError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []string{"a", "b", "a"}, cyc.Path)
}

func TestDefine_SelfCycle(t *testing.T) {
	t.Parallel()
	_, err := Define(func(register RegisterFunc) error {
		return register(func(Bindings) (any, error) { return nil, nil }, "a", "a")
	})
	assert.ErrorIs(t, err, ErrCyclicDependency)
}

func TestDefine_LongCycleDetected(t *testing.T) {
	t.Parallel()
	// No edge of this triangle is an immediate back-edge, so only the full
	// traversal at Define time can catch it.
	constant := func(Bindings) (any, error) { return nil, nil }
	g, err := Define(func(register RegisterFunc) error {
		if err := register(constant, "a", "c"); err != nil {
			return err
		}
		if err := register(constant, "b", "a"); err != nil {
			return err
		}
		return register(constant, "c", "b")
	})
	assert.Nil(t, g)
	require.Error(t, err)

	var cyc *CyclicDependencyError
	require.ErrorAs(t, err, &cyc)
	require.NotEmpty(t, cyc.Path)
	assert.Equal(t, cyc.Path[0], cyc.Path[len(cyc.Path)-1], "cycle path should close on itself")
	assert.Len(t, cyc.Path, 4)
}

func TestDefine_ForwardReferenceBecomesFreeVariable(t *testing.T) {
	t.Parallel()
	g, err := Define(func(register RegisterFunc) error {
		return register(func(Bindings) (any, error) { return nil, nil }, "m", "xs")
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"xs"}, g.FreeVariables())
	xs, ok := g.Node("xs")
	require.True(t, ok)
	assert.True(t, xs.IsFree())
	assert.Equal(t, []string{"m"}, xs.Requested())
}

func TestDefine_FreeVariableCannotDeclareDependencies(t *testing.T) {
	t.Parallel()
	g, err := Define(func(register RegisterFunc) error {
		return register(nil, "x", "y")
	})
	assert.Nil(t, g)
	assert.ErrorContains(t, err, "cannot declare dependencies")
}

func TestDefine_CallbackErrorPropagates(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("definition gone wrong")
	g, err := Define(func(register RegisterFunc) error {
		return sentinel
	})
	assert.Nil(t, g)
	assert.ErrorIs(t, err, sentinel)
}

func TestDefine_RegistrationErrorsAreSticky(t *testing.T) {
	t.Parallel()
	g, err := Define(func(register RegisterFunc) error {
		require.NoError(t, register(nil, "a"))
		first := register(nil, "a")
		require.Error(t, first)

		// Later registrations are refused with the original failure.
		second := register(nil, "b")
		assert.Equal(t, first, second)
		return nil
	})
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestFromNodes(t *testing.T) {
	t.Parallel()
	g, err := FromNodes([]NodeDef{
		{Name: "xs"},
		{Name: "n", Producer: func(in Bindings) (any, error) {
			return float64(len(numbersOf(in, "xs"))), nil
		}, Dependencies: []string{"xs"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"xs"}, g.FreeVariables())
	assert.Equal(t, []string{"n", "xs"}, g.Names())
}
