package expr

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// MaxExponent bounds integer exponents accepted by evaluation and
// polynomial conversion.
const MaxExponent = 1024

// MaxRatBits bounds the combined numerator and denominator bit length of
// any exact intermediate value. Larger results fail with ErrNonFinite.
const MaxRatBits = 1 << 20

// RatFromFloat converts a finite float64 to the rational named by its
// shortest decimal representation, so 0.1 becomes 1/10.
func RatFromFloat(f float64) (*big.Rat, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, ErrNonFinite
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNonFinite, f)
	}
	return r, nil
}

func (v *VarNode) Eval(vars map[string]*big.Rat) (*big.Rat, error) {
	val, ok := vars[v.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, v.Name)
	}
	return new(big.Rat).Set(val), nil
}

func (c *ConstNode) Eval(map[string]*big.Rat) (*big.Rat, error) {
	return new(big.Rat).Set(c.Val), nil
}

func (u *UnaryNode) Eval(vars map[string]*big.Rat) (*big.Rat, error) {
	child, err := u.Child.Eval(vars)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case OpNeg:
		return child.Neg(child), nil
	default:
		return nil, fmt.Errorf("unknown unary op %d", u.Op)
	}
}

func (b *BinaryNode) Eval(vars map[string]*big.Rat) (*big.Rat, error) {
	left, err := b.Left.Eval(vars)
	if err != nil {
		return nil, err
	}
	right, err := b.Right.Eval(vars)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case OpAdd:
		return checkBits(left.Add(left, right))
	case OpSub:
		return checkBits(left.Sub(left, right))
	case OpMul:
		if ratBits(left)+ratBits(right) > 2*MaxRatBits {
			return nil, errTooLarge
		}
		return checkBits(left.Mul(left, right))
	case OpDiv:
		if right.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return checkBits(left.Quo(left, right))
	case OpPow:
		k, err := intExponent(right)
		if err != nil {
			return nil, err
		}
		if powBitsLowerBound(left, k) > MaxRatBits {
			return nil, errTooLarge
		}
		return checkBits(ratPow(left, k))
	default:
		return nil, fmt.Errorf("unknown binary op %d", b.Op)
	}
}

var errTooLarge = fmt.Errorf("%w: exact value exceeds %d bits", ErrNonFinite, MaxRatBits)

func ratBits(r *big.Rat) int {
	return r.Num().BitLen() + r.Denom().BitLen()
}

func checkBits(r *big.Rat) (*big.Rat, error) {
	if ratBits(r) > MaxRatBits {
		return nil, errTooLarge
	}
	return r, nil
}

// powBitsLowerBound is (floor(log2 |num|) + floor(log2 den)) * k. The
// exact size of base^k exceeds it by at most 2k bits.
func powBitsLowerBound(base *big.Rat, k int) int {
	n := 0
	if l := base.Num().BitLen(); l > 1 {
		n += l - 1
	}
	if l := base.Denom().BitLen(); l > 1 {
		n += l - 1
	}
	return n * k
}

// intExponent validates a rational exponent for OpPow.
func intExponent(r *big.Rat) (int, error) {
	if !r.IsInt() || r.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedExponent, r.RatString())
	}
	if !r.Num().IsInt64() || r.Num().Int64() > MaxExponent {
		return 0, fmt.Errorf("%w: %s exceeds %d", ErrUnsupportedExponent, r.RatString(), MaxExponent)
	}
	return int(r.Num().Int64()), nil
}

// ratPow computes base^k for k >= 0; 0^0 is 1.
func ratPow(base *big.Rat, k int) *big.Rat {
	e := big.NewInt(int64(k))
	num := new(big.Int).Exp(base.Num(), e, nil)
	den := new(big.Int).Exp(base.Denom(), e, nil)
	return new(big.Rat).SetFrac(num, den)
}
