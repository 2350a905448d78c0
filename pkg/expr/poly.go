package expr

import (
	"fmt"
	"math/big"
)

// Poly is a univariate polynomial with exact rational coefficients:
// p(x) = c0 + c1*x + c2*x^2 + ...
// Coefficients are trimmed so the last one is non-zero; the zero polynomial
// has none.
type Poly struct {
	Var    string
	coeffs []*big.Rat
}

// NewPoly returns the polynomial with the given coefficients in ascending
// degree. The coefficients are copied.
func NewPoly(variable string, coeffs ...*big.Rat) Poly {
	out := make([]*big.Rat, len(coeffs))
	for i, c := range coeffs {
		out[i] = new(big.Rat).Set(c)
	}
	return Poly{Var: variable, coeffs: out}.trim()
}

func constPoly(variable string, c *big.Rat) Poly {
	return NewPoly(variable, c)
}

func monoPoly(variable string) Poly {
	return Poly{Var: variable, coeffs: []*big.Rat{new(big.Rat), big.NewRat(1, 1)}}
}

func (p Poly) trim() Poly {
	i := len(p.coeffs)
	for i > 0 && p.coeffs[i-1].Sign() == 0 {
		i--
	}
	return Poly{Var: p.Var, coeffs: p.coeffs[:i]}
}

// Degree returns the degree of p, or -1 for the zero polynomial.
func (p Poly) Degree() int {
	return len(p.coeffs) - 1
}

func (p Poly) IsZero() bool {
	return len(p.coeffs) == 0
}

// Coeff returns a copy of the coefficient of x^i.
func (p Poly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p.coeffs) {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.coeffs[i])
}

// Coeffs returns a copy of the coefficients in ascending degree.
func (p Poly) Coeffs() []*big.Rat {
	out := make([]*big.Rat, len(p.coeffs))
	for i := range p.coeffs {
		out[i] = p.Coeff(i)
	}
	return out
}

func (p Poly) Equal(q Poly) bool {
	if len(p.coeffs) != len(q.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if p.coeffs[i].Cmp(q.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

func (p Poly) Add(q Poly) Poly {
	n := len(p.coeffs)
	if len(q.coeffs) > n {
		n = len(q.coeffs)
	}
	out := make([]*big.Rat, n)
	for i := range out {
		out[i] = new(big.Rat)
		if i < len(p.coeffs) {
			out[i].Add(out[i], p.coeffs[i])
		}
		if i < len(q.coeffs) {
			out[i].Add(out[i], q.coeffs[i])
		}
	}
	return Poly{Var: p.Var, coeffs: out}.trim()
}

func (p Poly) Sub(q Poly) Poly {
	return p.Add(q.Scale(big.NewRat(-1, 1)))
}

func (p Poly) Mul(q Poly) Poly {
	if p.IsZero() || q.IsZero() {
		return Poly{Var: p.Var}
	}
	out := make([]*big.Rat, len(p.coeffs)+len(q.coeffs)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	term := new(big.Rat)
	for i, a := range p.coeffs {
		if a.Sign() == 0 {
			continue
		}
		for j, b := range q.coeffs {
			out[i+j].Add(out[i+j], term.Mul(a, b))
		}
	}
	return Poly{Var: p.Var, coeffs: out}.trim()
}

// Scale multiplies every coefficient by k.
func (p Poly) Scale(k *big.Rat) Poly {
	out := make([]*big.Rat, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = new(big.Rat).Mul(c, k)
	}
	return Poly{Var: p.Var, coeffs: out}.trim()
}

// Pow raises p to a non-negative integer power by repeated squaring.
func (p Poly) Pow(k int) Poly {
	out := constPoly(p.Var, big.NewRat(1, 1))
	base := p
	for k > 0 {
		if k&1 == 1 {
			out = out.Mul(base)
		}
		k >>= 1
		if k > 0 {
			base = base.Mul(base)
		}
	}
	return out
}

// Eval evaluates p at x exactly using Horner's rule.
func (p Poly) Eval(x *big.Rat) *big.Rat {
	v := new(big.Rat)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		v.Mul(v, x)
		v.Add(v, p.coeffs[i])
	}
	return v
}

// Expr converts p back to a tree in canonical order: descending degree,
// unit coefficients omitted, negative terms joined by subtraction.
func (p Poly) Expr() ExprNode {
	if p.IsZero() {
		return Int(0)
	}
	var out ExprNode
	for k := p.Degree(); k >= 0; k-- {
		c := p.coeffs[k]
		if c.Sign() == 0 {
			continue
		}
		abs := new(big.Rat).Abs(c)
		switch {
		case out == nil && c.Sign() < 0:
			out = negateTerm(monomial(p.Var, abs, k))
		case out == nil:
			out = monomial(p.Var, abs, k)
		case c.Sign() < 0:
			out = Sub(out, monomial(p.Var, abs, k))
		default:
			out = Add(out, monomial(p.Var, abs, k))
		}
	}
	return out
}

func (p Poly) String() string {
	return p.Expr().String()
}

func (p Poly) LaTeX() string {
	return p.Expr().LaTeX()
}

// monomial builds c * x^k for c > 0.
func monomial(variable string, c *big.Rat, k int) ExprNode {
	if k == 0 {
		return Const(c)
	}
	var power ExprNode = Var(variable)
	if k > 1 {
		power = Pow(power, Int(int64(k)))
	}
	if c.Cmp(big.NewRat(1, 1)) == 0 {
		return power
	}
	return Mul(Const(c), power)
}

// negateTerm negates a monomial, folding the sign into its coefficient.
func negateTerm(term ExprNode) ExprNode {
	switch t := term.(type) {
	case *ConstNode:
		return Const(new(big.Rat).Neg(t.Val))
	case *BinaryNode:
		if c, ok := t.Left.(*ConstNode); ok && t.Op == OpMul {
			return Mul(Const(new(big.Rat).Neg(c.Val)), t.Right)
		}
	}
	return Neg(term)
}

// ToPoly expands node into a polynomial in variable. Products are
// expanded, like terms combined and constants folded. Division is only
// allowed by a non-zero constant subexpression.
func ToPoly(node ExprNode, variable string) (Poly, error) {
	switch n := node.(type) {
	case *ConstNode:
		return constPoly(variable, n.Val), nil

	case *VarNode:
		if n.Name != variable {
			return Poly{}, fmt.Errorf("%w: unexpected variable %s", ErrNotPolynomial, n.Name)
		}
		return monoPoly(variable), nil

	case *UnaryNode:
		child, err := ToPoly(n.Child, variable)
		if err != nil {
			return Poly{}, err
		}
		switch n.Op {
		case OpNeg:
			return child.Scale(big.NewRat(-1, 1)), nil
		default:
			return Poly{}, fmt.Errorf("unknown unary op %d", n.Op)
		}

	case *BinaryNode:
		left, err := ToPoly(n.Left, variable)
		if err != nil {
			return Poly{}, err
		}
		right, err := ToPoly(n.Right, variable)
		if err != nil {
			return Poly{}, err
		}

		switch n.Op {
		case OpAdd:
			return left.Add(right), nil
		case OpSub:
			return left.Sub(right), nil
		case OpMul:
			return left.Mul(right), nil
		case OpDiv:
			if right.Degree() > 0 {
				return Poly{}, fmt.Errorf("%w: division by %s", ErrNotPolynomial, n.Right.String())
			}
			if right.IsZero() {
				return Poly{}, ErrDivisionByZero
			}
			return left.Scale(new(big.Rat).Inv(right.coeffs[0])), nil
		case OpPow:
			if right.Degree() > 0 {
				return Poly{}, fmt.Errorf("%w: non-constant exponent %s", ErrNotPolynomial, n.Right.String())
			}
			k, err := intExponent(right.Coeff(0))
			if err != nil {
				return Poly{}, err
			}
			return left.Pow(k), nil
		default:
			return Poly{}, fmt.Errorf("unknown binary op %d", n.Op)
		}

	default:
		return Poly{}, fmt.Errorf("%w: unsupported node %T", ErrNotPolynomial, node)
	}
}
