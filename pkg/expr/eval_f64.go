package expr

import (
	"fmt"
	"math"
)

// EvalF64 for VarNode looks the variable up in vars.
func (v *VarNode) EvalF64(vars map[string]float64) (float64, error) {
	val, ok := vars[v.Name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, v.Name)
	}
	return val, nil
}

// EvalF64 for ConstNode returns the nearest float64 to the constant.
func (c *ConstNode) EvalF64(map[string]float64) (float64, error) {
	f, _ := c.Val.Float64()
	if math.IsInf(f, 0) {
		return 0, ErrNonFinite
	}
	return f, nil
}

// EvalF64 for UnaryNode dispatches on op.
func (u *UnaryNode) EvalF64(vars map[string]float64) (float64, error) {
	child, err := u.Child.EvalF64(vars)
	if err != nil {
		return 0, err
	}

	switch u.Op {
	case OpNeg:
		return -child, nil
	default:
		return 0, fmt.Errorf("unknown unary op %d", u.Op)
	}
}

// EvalF64 for BinaryNode dispatches on op.
func (b *BinaryNode) EvalF64(vars map[string]float64) (float64, error) {
	left, err := b.Left.EvalF64(vars)
	if err != nil {
		return 0, err
	}
	right, err := b.Right.EvalF64(vars)
	if err != nil {
		return 0, err
	}

	var r float64
	switch b.Op {
	case OpAdd:
		r = left + right
	case OpSub:
		r = left - right
	case OpMul:
		r = left * right
	case OpDiv:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		r = left / right
	case OpPow:
		return powF64(left, right)
	default:
		return 0, fmt.Errorf("unknown binary op %d", b.Op)
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, ErrNonFinite
	}
	return r, nil
}

// powF64 computes base^exp for a non-negative integer exponent.
func powF64(base, exp float64) (float64, error) {
	ei := int64(exp)
	if exp != float64(ei) || ei < 0 || ei > MaxExponent {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedExponent, exp)
	}
	r, ok := intPowF64(base, ei)
	if !ok {
		return 0, ErrNonFinite
	}
	return r, nil
}

// intPowF64 computes base^exp using binary exponentiation, exp >= 0.
func intPowF64(base float64, exp int64) (float64, bool) {
	result := 1.0
	b := base
	e := exp
	for e > 0 {
		if e%2 == 1 {
			result *= b
		}
		e /= 2
		if e > 0 {
			b *= b
		}
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, false
	}
	return result, true
}
