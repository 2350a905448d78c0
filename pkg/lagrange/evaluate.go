package lagrange

import (
	"fmt"
	"math"

	"github.com/wildfunctions/lagrange/pkg/expr"
)

// Compiled is a parsed polynomial string ready for repeated evaluation.
// It is never mutated after Compile returns and may be shared.
type Compiled struct {
	Source string
	tree   expr.ExprNode
}

// Compile parses src and checks that x is its only free variable.
func Compile(src string) (*Compiled, error) {
	return CompileWithLimits(src, expr.Limits{})
}

// CompileWithLimits is Compile with bounds on the parsed tree.
func CompileWithLimits(src string, limits expr.Limits) (*Compiled, error) {
	tree, err := expr.ParseWithLimits(src, limits)
	if err != nil {
		return nil, err
	}
	for _, name := range expr.FreeVars(tree) {
		if name != Variable {
			return nil, &expr.EvalError{Err: fmt.Errorf("%w: %s", expr.ErrUnknownVariable, name)}
		}
	}
	return &Compiled{Source: src, tree: expr.Simplify(tree)}, nil
}

func (c *Compiled) String() string { return c.tree.String() }

// Evaluate returns the value of the expression at x. Every failure is an
// *expr.EvalError.
func (c *Compiled) Evaluate(x float64) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, &expr.EvalError{Err: fmt.Errorf("%w: x = %v", expr.ErrNonFinite, x)}
	}
	y, err := c.tree.EvalF64(map[string]float64{Variable: x})
	if err != nil {
		return 0, &expr.EvalError{Err: err}
	}
	return y, nil
}

// Evaluate parses src and evaluates it at wishedX.
func Evaluate(src string, wishedX float64) (float64, error) {
	c, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return c.Evaluate(wishedX)
}
