package expr

import "math/big"

// ExprNode is the interface for all expression tree nodes.
type ExprNode interface {
	Eval(vars map[string]*big.Rat) (*big.Rat, error)
	EvalF64(vars map[string]float64) (float64, error)
	String() string
	LaTeX() string
	Clone() ExprNode
	NodeCount() int
	Depth() int
}

// UnaryOp identifies a unary operation.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
)

// BinaryOp identifies a binary operation.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow // exponent must be a non-negative integer
)

// VarNode represents a free variable.
type VarNode struct {
	Name string
}

// ConstNode represents an exact rational constant. Val is never mutated
// after construction.
type ConstNode struct {
	Val *big.Rat
}

// UnaryNode applies a unary operation to a child expression.
type UnaryNode struct {
	Op    UnaryOp
	Child ExprNode
}

// BinaryNode applies a binary operation to two child expressions.
type BinaryNode struct {
	Op          BinaryOp
	Left, Right ExprNode
}

// Var returns a variable node.
func Var(name string) ExprNode { return &VarNode{Name: name} }

// Const returns a constant node holding a copy of v.
func Const(v *big.Rat) ExprNode { return &ConstNode{Val: new(big.Rat).Set(v)} }

// Int returns an integer constant node.
func Int(v int64) ExprNode { return &ConstNode{Val: new(big.Rat).SetInt64(v)} }

func Neg(x ExprNode) ExprNode { return &UnaryNode{Op: OpNeg, Child: x} }

func Add(a, b ExprNode) ExprNode { return &BinaryNode{Op: OpAdd, Left: a, Right: b} }
func Sub(a, b ExprNode) ExprNode { return &BinaryNode{Op: OpSub, Left: a, Right: b} }
func Mul(a, b ExprNode) ExprNode { return &BinaryNode{Op: OpMul, Left: a, Right: b} }
func Div(a, b ExprNode) ExprNode { return &BinaryNode{Op: OpDiv, Left: a, Right: b} }
func Pow(a, b ExprNode) ExprNode { return &BinaryNode{Op: OpPow, Left: a, Right: b} }

// Sum folds terms with addition. The empty sum is 0.
func Sum(terms ...ExprNode) ExprNode {
	if len(terms) == 0 {
		return Int(0)
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = Add(acc, t)
	}
	return acc
}

// Product folds factors with multiplication. The empty product is 1.
func Product(factors ...ExprNode) ExprNode {
	if len(factors) == 0 {
		return Int(1)
	}
	acc := factors[0]
	for _, f := range factors[1:] {
		acc = Mul(acc, f)
	}
	return acc
}
