package expr

import (
	"fmt"
	"math/big"
)

// Binding strength used to decide where parentheses are required.
const (
	precSum = iota + 1
	precProduct
	precNeg
	precPow
	precAtom
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpPow: "^",
}

func precedence(node ExprNode) int {
	switch n := node.(type) {
	case *ConstNode:
		// A fraction prints as p/q and binds like a quotient.
		if !n.Val.IsInt() {
			return precProduct
		}
		if n.Val.Sign() < 0 {
			return precNeg
		}
		return precAtom
	case *UnaryNode:
		return precNeg
	case *BinaryNode:
		switch n.Op {
		case OpAdd, OpSub:
			return precSum
		case OpMul, OpDiv:
			return precProduct
		default:
			return precPow
		}
	default:
		return precAtom
	}
}

// needsParens reports whether child must be parenthesized as an operand of b.
func needsParens(b *BinaryNode, child ExprNode, right bool) bool {
	parent := precedence(b)
	cp := precedence(child)
	if cp != parent {
		return cp < parent
	}
	if b.Op == OpPow {
		// right-associative
		return !right
	}
	return right
}

// String methods

func (v *VarNode) String() string {
	return v.Name
}

func (c *ConstNode) String() string {
	return c.Val.RatString()
}

func (u *UnaryNode) String() string {
	child := u.Child.String()
	if precedence(u.Child) < precNeg {
		child = "(" + child + ")"
	}
	return "-" + child
}

func (b *BinaryNode) String() string {
	left := b.Left.String()
	right := b.Right.String()
	if needsParens(b, b.Left, false) {
		left = "(" + left + ")"
	}
	if needsParens(b, b.Right, true) {
		right = "(" + right + ")"
	}
	return fmt.Sprintf("%s %s %s", left, binaryOpSymbols[b.Op], right)
}

// LaTeX methods

func (v *VarNode) LaTeX() string {
	return v.Name
}

func (c *ConstNode) LaTeX() string {
	if c.Val.IsInt() {
		return c.Val.Num().String()
	}
	num := new(big.Int).Set(c.Val.Num())
	sign := ""
	if num.Sign() < 0 {
		sign = "-"
		num.Neg(num)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, num.String(), c.Val.Denom().String())
}

func (u *UnaryNode) LaTeX() string {
	child := u.Child.LaTeX()
	if precedence(u.Child) < precNeg {
		child = "\\left(" + child + "\\right)"
	}
	return "-" + child
}

func (b *BinaryNode) LaTeX() string {
	if b.Op == OpDiv {
		return fmt.Sprintf("\\frac{%s}{%s}", b.Left.LaTeX(), b.Right.LaTeX())
	}
	left := b.Left.LaTeX()
	right := b.Right.LaTeX()
	if needsParens(b, b.Left, false) {
		left = "\\left(" + left + "\\right)"
	}
	switch b.Op {
	case OpAdd:
		if needsParens(b, b.Right, true) {
			right = "\\left(" + right + "\\right)"
		}
		return fmt.Sprintf("%s + %s", left, right)
	case OpSub:
		if needsParens(b, b.Right, true) {
			right = "\\left(" + right + "\\right)"
		}
		return fmt.Sprintf("%s - %s", left, right)
	case OpMul:
		if needsParens(b, b.Right, true) {
			right = "\\left(" + right + "\\right)"
		}
		return fmt.Sprintf("%s \\cdot %s", left, right)
	case OpPow:
		return fmt.Sprintf("{%s}^{%s}", left, right)
	default:
		return ""
	}
}
