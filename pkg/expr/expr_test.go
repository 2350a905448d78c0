package expr

import (
	"errors"
	"math/big"
	"testing"
)

func rat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("bad rational " + s)
	}
	return r
}

func assertEval(t *testing.T, node ExprNode, x string, expected string) {
	t.Helper()
	result, err := node.Eval(map[string]*big.Rat{"x": rat(x)})
	if err != nil {
		t.Fatalf("Eval returned %v for x=%s", err, x)
	}
	if result.Cmp(rat(expected)) != 0 {
		t.Errorf("Eval(x=%s) = %s, want %s", x, result.RatString(), expected)
	}
}

func TestVarNode(t *testing.T) {
	v := Var("x")
	assertEval(t, v, "5", "5")
	assertEval(t, v, "1/3", "1/3")

	if v.String() != "x" {
		t.Errorf("VarNode.String() = %q, want \"x\"", v.String())
	}
	if v.NodeCount() != 1 {
		t.Errorf("VarNode.NodeCount() = %d, want 1", v.NodeCount())
	}
}

func TestVarNode_Unbound(t *testing.T) {
	_, err := Var("y").Eval(map[string]*big.Rat{"x": rat("1")})
	if !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("err = %v, want ErrUnknownVariable", err)
	}
}

func TestConstNode(t *testing.T) {
	c := Int(7)
	assertEval(t, c, "99", "7")

	if c.String() != "7" {
		t.Errorf("ConstNode.String() = %q, want \"7\"", c.String())
	}
	if s := Const(rat("-3/4")).String(); s != "-3/4" {
		t.Errorf("ConstNode.String() = %q, want \"-3/4\"", s)
	}
}

func TestConst_CopiesValue(t *testing.T) {
	v := rat("2")
	c := Const(v)
	v.SetInt64(9)
	assertEval(t, c, "0", "2")
}

func TestBinaryOps(t *testing.T) {
	x := Var("x")
	two := Int(2)

	assertEval(t, Add(x, two), "3", "5")
	assertEval(t, Sub(x, two), "5", "3")
	assertEval(t, Mul(x, two), "4", "8")
	assertEval(t, Div(x, two), "3", "3/2")
	assertEval(t, Pow(x, two), "-3", "9")
	assertEval(t, Neg(x), "3", "-3")
}

func TestDivisionByZero(t *testing.T) {
	node := Div(Int(1), Sub(Var("x"), Int(2)))
	_, err := node.Eval(map[string]*big.Rat{"x": rat("2")})
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("err = %v, want ErrDivisionByZero", err)
	}
	if !errors.Is(err, ErrArithmetic) {
		t.Error("ErrDivisionByZero should match ErrArithmetic")
	}
}

func TestPow(t *testing.T) {
	// (2/3)^3 = 8/27
	assertEval(t, Pow(Const(rat("2/3")), Int(3)), "0", "8/27")
	// 0^0 = 1
	assertEval(t, Pow(Int(0), Int(0)), "0", "1")

	for _, exp := range []ExprNode{Int(-1), Const(rat("1/2")), Int(MaxExponent + 1)} {
		_, err := Pow(Int(2), exp).Eval(nil)
		if !errors.Is(err, ErrUnsupportedExponent) {
			t.Errorf("2^%s: err = %v, want ErrUnsupportedExponent", exp, err)
		}
	}
}

func TestEval_SizeCap(t *testing.T) {
	// 2^1024 is well inside the cap.
	v, err := Pow(Int(2), Int(1024)).Eval(nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Num().BitLen() != 1025 {
		t.Errorf("2^1024 has %d bits, want 1025", v.Num().BitLen())
	}

	huge := Pow(Pow(Int(2), Int(1000)), Int(1000))
	for name, node := range map[string]ExprNode{
		"tower":   Pow(Pow(Pow(Int(2), Int(1024)), Int(1024)), Int(1024)),
		"product": Mul(huge, huge),
		"sum":     Add(Pow(Pow(Int(2), Int(1024)), Int(1024)), Int(1)),
	} {
		_, err := node.Eval(nil)
		if !errors.Is(err, ErrNonFinite) || !errors.Is(err, ErrArithmetic) {
			t.Errorf("%s: err = %v, want ErrNonFinite", name, err)
		}
	}
}

func TestSumProduct_Identities(t *testing.T) {
	assertEval(t, Sum(), "4", "0")
	assertEval(t, Product(), "4", "1")
	assertEval(t, Sum(Var("x"), Int(1), Int(2)), "4", "7")
	assertEval(t, Product(Var("x"), Int(3), Var("x")), "2", "12")
}

func TestString_Precedence(t *testing.T) {
	x := Var("x")
	cases := []struct {
		node ExprNode
		want string
	}{
		{Add(x, Int(1)), "x + 1"},
		{Mul(Add(x, Int(1)), Int(2)), "(x + 1) * 2"},
		{Sub(x, Sub(x, Int(1))), "x - (x - 1)"},
		{Sub(Sub(x, Int(1)), x), "x - 1 - x"},
		{Div(x, Mul(x, Int(2))), "x / (x * 2)"},
		{Div(x, Const(rat("1/2"))), "x / (1/2)"},
		{Mul(Const(rat("1/2")), Pow(x, Int(2))), "1/2 * x ^ 2"},
		{Pow(Pow(x, Int(2)), Int(3)), "(x ^ 2) ^ 3"},
		{Pow(x, Pow(Int(2), Int(3))), "x ^ 2 ^ 3"},
		{Neg(Add(x, Int(1))), "-(x + 1)"},
		{Neg(Pow(x, Int(2))), "-x ^ 2"},
		{Pow(Int(-2), Int(2)), "(-2) ^ 2"},
		{Pow(x, Neg(Int(1))), "x ^ (-1)"},
	}
	for _, tc := range cases {
		if got := tc.node.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestString_ParsesBack(t *testing.T) {
	x := Var("x")
	nodes := []ExprNode{
		Sub(x, Sub(x, Int(1))),
		Div(x, Const(rat("-1/2"))),
		Pow(Const(rat("1/2")), Int(2)),
		Mul(Neg(x), Add(x, Int(3))),
		Pow(x, Pow(Int(2), Int(2))),
	}
	for _, n := range nodes {
		parsed, err := Parse(n.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", n.String(), err)
		}
		for _, xv := range []string{"-2", "1/3", "5"} {
			want, err1 := n.Eval(map[string]*big.Rat{"x": rat(xv)})
			got, err2 := parsed.Eval(map[string]*big.Rat{"x": rat(xv)})
			if err1 != nil || err2 != nil {
				t.Fatalf("eval errors: %v / %v", err1, err2)
			}
			if want.Cmp(got) != 0 {
				t.Errorf("%q at x=%s: %s != %s", n.String(), xv, got.RatString(), want.RatString())
			}
		}
	}
}

func TestLaTeX(t *testing.T) {
	x := Var("x")
	cases := []struct {
		node ExprNode
		want string
	}{
		{Const(rat("-3/4")), `-\frac{3}{4}`},
		{Div(x, Int(2)), `\frac{x}{2}`},
		{Mul(Int(3), Pow(x, Int(2))), `3 \cdot {x}^{2}`},
		{Mul(Add(x, Int(1)), x), `\left(x + 1\right) \cdot x`},
	}
	for _, tc := range cases {
		if got := tc.node.LaTeX(); got != tc.want {
			t.Errorf("LaTeX() = %q, want %q", got, tc.want)
		}
	}
}

func TestClone(t *testing.T) {
	orig := Add(Mul(Int(2), Var("x")), Neg(Int(1)))
	clone := orig.Clone()
	if clone.String() != orig.String() {
		t.Errorf("clone %q != original %q", clone.String(), orig.String())
	}
	// Mutating the clone must not affect the original.
	clone.(*BinaryNode).Left = Int(0)
	if orig.String() != "2 * x + -1" {
		t.Errorf("original changed to %q", orig.String())
	}
}

func TestNodeCountDepth(t *testing.T) {
	node := Add(Mul(Int(2), Var("x")), Neg(Int(1)))
	if node.NodeCount() != 6 {
		t.Errorf("NodeCount() = %d, want 6", node.NodeCount())
	}
	if node.Depth() != 3 {
		t.Errorf("Depth() = %d, want 3", node.Depth())
	}
}

func TestFreeVars(t *testing.T) {
	node := Add(Mul(Var("y"), Var("x")), Sub(Var("x"), Var("a")))
	got := FreeVars(node)
	want := []string{"a", "x", "y"}
	if len(got) != len(want) {
		t.Fatalf("FreeVars = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FreeVars = %v, want %v", got, want)
		}
	}
	if got := FreeVars(Add(Int(1), Int(2))); len(got) != 0 {
		t.Errorf("FreeVars of a constant tree = %v, want none", got)
	}
}

func TestRatFromFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.1, "1/10"},
		{-2.5, "-5/2"},
		{3, "3"},
		{1e21, "1000000000000000000000"},
	}
	for _, tc := range cases {
		r, err := RatFromFloat(tc.in)
		if err != nil {
			t.Fatalf("RatFromFloat(%v): %v", tc.in, err)
		}
		if r.Cmp(rat(tc.want)) != 0 {
			t.Errorf("RatFromFloat(%v) = %s, want %s", tc.in, r.RatString(), tc.want)
		}
	}
}
