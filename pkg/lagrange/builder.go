package lagrange

import (
	"fmt"
	"math/big"

	"github.com/wildfunctions/lagrange/pkg/expr"
)

// Polynomial is the interpolant of a point set in canonical form.
type Polynomial struct {
	Expr   expr.ExprNode
	Poly   expr.Poly
	Points []Point
}

func (p *Polynomial) String() string { return p.Expr.String() }

func (p *Polynomial) LaTeX() string { return p.Expr.LaTeX() }

// Degree returns the degree of the interpolant. The zero polynomial
// reports 0.
func (p *Polynomial) Degree() int {
	if d := p.Poly.Degree(); d > 0 {
		return d
	}
	return 0
}

// Build returns the Lagrange interpolant P(x) = sum_i y_i * L_i(x) of
// points, expanded and with like terms collected.
func Build(points []Point) (*Polynomial, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	xs, ys, err := rats(points)
	if err != nil {
		return nil, err
	}

	terms := make([]expr.ExprNode, len(points))
	for i := range points {
		if terms[i], err = basisTerm(points, xs, ys, i); err != nil {
			return nil, err
		}
	}

	poly, err := expr.ToPoly(expr.Sum(terms...), Variable)
	if err != nil {
		return nil, err
	}

	echo := make([]Point, len(points))
	copy(echo, points)
	return &Polynomial{Expr: poly.Expr(), Poly: poly, Points: echo}, nil
}

// BasisTerm returns the unsimplified contribution y_i * L_i(x) of point i.
func BasisTerm(points []Point, i int) (expr.ExprNode, error) {
	if i < 0 || i >= len(points) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrPointIndex, i, len(points))
	}
	xs, ys, err := rats(points)
	if err != nil {
		return nil, err
	}
	return basisTerm(points, xs, ys, i)
}

// basisTerm skips index i by position. The numerator is the product of
// (x - x_j) and the denominator the product of (x_i - x_j) over every
// other j, both starting from the empty product 1.
func basisTerm(points []Point, xs, ys []*big.Rat, i int) (expr.ExprNode, error) {
	denominator := big.NewRat(1, 1)
	factors := make([]expr.ExprNode, 0, len(xs)-1)
	diff := new(big.Rat)
	for j := range xs {
		if j == i {
			continue
		}
		diff.Sub(xs[i], xs[j])
		if diff.Sign() == 0 {
			return nil, &DuplicateXError{I: i, J: j, X: points[i].X}
		}
		denominator.Mul(denominator, diff)
		factors = append(factors, expr.Sub(expr.Var(Variable), expr.Const(xs[j])))
	}
	basis := expr.Div(expr.Product(factors...), expr.Const(denominator))
	return expr.Mul(expr.Const(ys[i]), basis), nil
}
