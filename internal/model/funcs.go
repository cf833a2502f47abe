package model

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// EvalFuncs returns the functions available to node expressions. Arithmetic
// and comparisons come from HCL's native operators; this set only covers
// what operators can't express.
func EvalFuncs() map[string]function.Function {
	return map[string]function.Function{
		"length": stdlib.LengthFunc,
		"min":    stdlib.MinFunc,
		"max":    stdlib.MaxFunc,
		"pow":    stdlib.PowFunc,
		"sum":    sumFunc,
		"mean":   meanFunc,
	}
}

// sumFunc adds up a list of numbers. An empty list sums to zero.
var sumFunc = function.New(&function.Spec{
	Description: "Returns the sum of a list of numbers.",
	Params: []function.Parameter{
		{Name: "list", Type: cty.List(cty.Number)},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		sum := cty.Zero
		for it := args[0].ElementIterator(); it.Next(); {
			_, v := it.Element()
			sum = sum.Add(v)
		}
		return sum, nil
	},
})

// meanFunc averages a list of numbers.
var meanFunc = function.New(&function.Spec{
	Description: "Returns the arithmetic mean of a list of numbers.",
	Params: []function.Parameter{
		{Name: "list", Type: cty.List(cty.Number)},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		count := args[0].LengthInt()
		if count == 0 {
			return cty.NilVal, fmt.Errorf("cannot take the mean of an empty list")
		}
		sum := cty.Zero
		for it := args[0].ElementIterator(); it.Next(); {
			_, v := it.Element()
			sum = sum.Add(v)
		}
		return sum.Divide(cty.NumberIntVal(int64(count))), nil
	},
})
