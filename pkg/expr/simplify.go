package expr

import "math/big"

// Simplify applies rewrite rules to reduce an expression tree.
// It repeatedly applies rules until no further changes occur.
//
// Every rule preserves the value of the expression and the errors its
// evaluation can raise: constant subtrees are folded only when they
// evaluate cleanly, and a subtree is dropped only when it is a leaf.
func Simplify(node ExprNode) ExprNode {
	for i := 0; i < 20; i++ { // cap iterations
		next := simplifyOnce(node)
		if sameTree(next, node) {
			return next
		}
		node = next
	}
	return node
}

func simplifyOnce(node ExprNode) ExprNode {
	switch n := node.(type) {
	case *VarNode, *ConstNode:
		return node

	case *UnaryNode:
		child := simplifyOnce(n.Child)

		if n.Op == OpNeg {
			// Double negation: -(-x) = x
			if inner, ok := child.(*UnaryNode); ok && inner.Op == OpNeg {
				return inner.Child
			}
			// Neg of const: -(k) = -k
			if c, ok := child.(*ConstNode); ok {
				return Const(new(big.Rat).Neg(c.Val))
			}
		}

		return &UnaryNode{Op: n.Op, Child: child}

	case *BinaryNode:
		left := simplifyOnce(n.Left)
		right := simplifyOnce(n.Right)

		lc, lok := left.(*ConstNode)
		rc, rok := right.(*ConstNode)

		// Constant folding; a failing fold (1/0) is left for evaluation to report.
		if lok && rok {
			folded := &BinaryNode{Op: n.Op, Left: left, Right: right}
			if v, err := folded.Eval(nil); err == nil {
				return &ConstNode{Val: v}
			}
			return folded
		}

		switch n.Op {
		case OpAdd:
			// x + 0 = x
			if rok && rc.Val.Sign() == 0 {
				return left
			}
			// 0 + x = x
			if lok && lc.Val.Sign() == 0 {
				return right
			}
			// x + (-k) = x - k
			if rok && rc.Val.Sign() < 0 {
				return &BinaryNode{Op: OpSub, Left: left, Right: Const(new(big.Rat).Neg(rc.Val))}
			}
			// x + neg(y) = x - y
			if ru, ok := right.(*UnaryNode); ok && ru.Op == OpNeg {
				return &BinaryNode{Op: OpSub, Left: left, Right: ru.Child}
			}

		case OpSub:
			// x - 0 = x
			if rok && rc.Val.Sign() == 0 {
				return left
			}
			// 0 - x = -x
			if lok && lc.Val.Sign() == 0 {
				return &UnaryNode{Op: OpNeg, Child: right}
			}
			// x - (-k) = x + k
			if rok && rc.Val.Sign() < 0 {
				return &BinaryNode{Op: OpAdd, Left: left, Right: Const(new(big.Rat).Neg(rc.Val))}
			}
			// x - neg(y) = x + y
			if ru, ok := right.(*UnaryNode); ok && ru.Op == OpNeg {
				return &BinaryNode{Op: OpAdd, Left: left, Right: ru.Child}
			}
			// v - v = 0 for a single variable
			if lv, ok := left.(*VarNode); ok {
				if rv, ok := right.(*VarNode); ok && lv.Name == rv.Name {
					return Int(0)
				}
			}

		case OpMul:
			// v * 0 = 0 when v is a leaf
			if rok && rc.Val.Sign() == 0 && isLeaf(left) {
				return Int(0)
			}
			if lok && lc.Val.Sign() == 0 && isLeaf(right) {
				return Int(0)
			}
			// x * 1 = x
			if rok && rc.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return left
			}
			// 1 * x = x
			if lok && lc.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return right
			}
			// x * (-1) = -x
			if rok && rc.Val.Cmp(big.NewRat(-1, 1)) == 0 {
				return &UnaryNode{Op: OpNeg, Child: left}
			}
			// (-1) * x = -x
			if lok && lc.Val.Cmp(big.NewRat(-1, 1)) == 0 {
				return &UnaryNode{Op: OpNeg, Child: right}
			}

		case OpDiv:
			// x / 1 = x
			if rok && rc.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return left
			}

		case OpPow:
			// x^1 = x
			if rok && rc.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return left
			}
			// v^0 = 1 when v is a leaf
			if rok && rc.Val.Sign() == 0 && isLeaf(left) {
				return Int(1)
			}
		}

		return &BinaryNode{Op: n.Op, Left: left, Right: right}

	default:
		return node
	}
}

func isLeaf(node ExprNode) bool {
	switch node.(type) {
	case *VarNode, *ConstNode:
		return true
	default:
		return false
	}
}

// sameTree reports whether a and b have the same shape, operators,
// variable names and constant values.
func sameTree(a, b ExprNode) bool {
	switch x := a.(type) {
	case *VarNode:
		y, ok := b.(*VarNode)
		return ok && x.Name == y.Name
	case *ConstNode:
		y, ok := b.(*ConstNode)
		return ok && x.Val.Cmp(y.Val) == 0
	case *UnaryNode:
		y, ok := b.(*UnaryNode)
		return ok && x.Op == y.Op && sameTree(x.Child, y.Child)
	case *BinaryNode:
		y, ok := b.(*BinaryNode)
		return ok && x.Op == y.Op && sameTree(x.Left, y.Left) && sameTree(x.Right, y.Right)
	default:
		return false
	}
}
