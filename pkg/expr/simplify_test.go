package expr

import (
	"errors"
	"math/big"
	"testing"
)

func TestSimplify_Rules(t *testing.T) {
	x := Var("x")
	cases := []struct {
		name string
		node ExprNode
		want string
	}{
		{"x+0", Add(x, Int(0)), "x"},
		{"0+x", Add(Int(0), x), "x"},
		{"x-0", Sub(x, Int(0)), "x"},
		{"0-x", Sub(Int(0), x), "-x"},
		{"x*1", Mul(x, Int(1)), "x"},
		{"1*(x*1)", Mul(Int(1), Mul(x, Int(1))), "x"},
		{"x*0", Mul(x, Int(0)), "0"},
		{"x*-1", Mul(x, Int(-1)), "-x"},
		{"x/1", Div(x, Int(1)), "x"},
		{"x^1", Pow(x, Int(1)), "x"},
		{"x^0", Pow(x, Int(0)), "1"},
		{"--x", Neg(Neg(x)), "x"},
		{"-(3)", Neg(Int(3)), "-3"},
		{"2+3", Add(Int(2), Int(3)), "5"},
		{"(1/2)*4", Mul(Const(big.NewRat(1, 2)), Int(4)), "2"},
		{"x+-3", Add(x, Int(-3)), "x - 3"},
		{"x--3", Sub(x, Int(-3)), "x + 3"},
		{"x+-y", Add(x, Neg(Var("y"))), "x - y"},
		{"x--y", Sub(x, Neg(Var("y"))), "x + y"},
		{"x-x", Sub(x, x), "0"},
		{"nested", Add(Mul(Int(2), Add(x, Int(0))), Mul(Int(0), Int(5))), "2 * x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Simplify(tc.node).String(); got != tc.want {
				t.Errorf("Simplify = %q, want %q", got, tc.want)
			}
		})
	}
}

// Simplify never hides an evaluation error.
func TestSimplify_KeepsErrors(t *testing.T) {
	cases := []struct {
		name string
		node ExprNode
		want error
	}{
		{"1/0", Div(Int(1), Int(0)), ErrDivisionByZero},
		{"0*(1/x)", Mul(Int(0), Div(Int(1), Var("x"))), ErrDivisionByZero},
		{"(1/x)^0", Pow(Div(Int(1), Var("x")), Int(0)), ErrDivisionByZero},
		{"2^-1", Pow(Int(2), Int(-1)), ErrUnsupportedExponent},
		{"tower*0+x", Add(Mul(Pow(Pow(Pow(Int(2), Int(1024)), Int(1024)), Int(1024)), Int(0)), Var("x")), ErrNonFinite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Simplify(tc.node)
			_, err := s.Eval(map[string]*big.Rat{"x": new(big.Rat)})
			if !errors.Is(err, tc.want) {
				t.Errorf("Simplify(%s) = %s: err = %v, want %v", tc.node, s, err, tc.want)
			}
		})
	}
}

func TestSimplify_PreservesValue(t *testing.T) {
	for _, src := range []string{
		"(x - 1)(x - 2) / ((0 - 1) * (0 - 2)) + 0",
		"1 * x ^ 1 - -(x * 0) + 2 * 3",
		"-(-(x + 1)) * (1/2)",
	} {
		node := mustParse(t, src)
		s := Simplify(node)
		for _, xv := range []string{"-3", "0", "5/2"} {
			vars := map[string]*big.Rat{"x": rat(xv)}
			want, err1 := node.Eval(vars)
			got, err2 := s.Eval(vars)
			if err1 != nil || err2 != nil {
				t.Fatalf("%q: eval errors %v / %v", src, err1, err2)
			}
			if want.Cmp(got) != 0 {
				t.Errorf("%q at x=%s: simplified %s = %s, want %s", src, xv, s, got.RatString(), want.RatString())
			}
		}
	}
}

// A constant tower too large to hold exactly is left unfolded, and float
// evaluation reports it as non-finite.
func TestSimplify_ConstantTower(t *testing.T) {
	node := mustParse(t, "((2 ^ 1024) ^ 1024) ^ 1024 * 0 + x")
	s := Simplify(node)
	if _, ok := s.(*ConstNode); ok {
		t.Fatalf("Simplify = %s, want the tower kept", s)
	}
	if _, err := s.EvalF64(map[string]float64{"x": 1}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("EvalF64 err = %v, want ErrNonFinite", err)
	}
}

func TestSameTree(t *testing.T) {
	a := Add(Mul(Int(2), Var("x")), Const(rat("1/2")))
	if !sameTree(a, a.Clone()) {
		t.Error("clone should be the same tree")
	}
	for _, b := range []ExprNode{
		Add(Mul(Int(2), Var("y")), Const(rat("1/2"))),
		Sub(Mul(Int(2), Var("x")), Const(rat("1/2"))),
		Add(Mul(Int(2), Var("x")), Const(rat("1/3"))),
		Add(Neg(Var("x")), Const(rat("1/2"))),
	} {
		if sameTree(a, b) {
			t.Errorf("sameTree(%s, %s) = true", a, b)
		}
	}
}
