package expr

import (
	"math/big"
	"math/rand"
	"testing"
)

// treeGen builds random polynomial expressions in x.
type treeGen struct {
	rng *rand.Rand
}

func (g treeGen) leaf() ExprNode {
	switch r := g.rng.Float64(); {
	case r < 0.45:
		return Var("x")
	case r < 0.85:
		return Int(int64(g.rng.Intn(9) - 2))
	default:
		return Const(big.NewRat(int64(g.rng.Intn(7)+1), int64(g.rng.Intn(4)+2)))
	}
}

// divisor returns a constant subtree that never evaluates to zero.
func (g treeGen) divisor() ExprNode {
	k := int64(g.rng.Intn(5) + 1)
	if g.rng.Intn(2) == 0 {
		k = -k
	}
	return Int(k)
}

// tree is biased toward leaves at shallow depths to keep trees small.
func (g treeGen) tree(maxDepth int) ExprNode {
	if maxDepth <= 1 {
		return g.leaf()
	}
	switch r := g.rng.Float64(); {
	case r < 0.3:
		return g.leaf()
	case r < 0.4:
		return Neg(g.tree(maxDepth - 1))
	case r < 0.55:
		return Add(g.tree(maxDepth-1), g.tree(maxDepth-1))
	case r < 0.7:
		return Sub(g.tree(maxDepth-1), g.tree(maxDepth-1))
	case r < 0.85:
		return Mul(g.tree(maxDepth-1), g.tree(maxDepth-1))
	case r < 0.93:
		return Div(g.tree(maxDepth-1), g.divisor())
	default:
		return Pow(g.tree(maxDepth-1), Int(int64(g.rng.Intn(4))))
	}
}

var sampleXs = []string{"-3", "-1/2", "0", "1", "7/3", "4"}

func evalAt(t *testing.T, node ExprNode, x string) *big.Rat {
	t.Helper()
	v, err := node.Eval(map[string]*big.Rat{"x": rat(x)})
	if err != nil {
		t.Fatalf("Eval(%s) at x=%s: %v", node, x, err)
	}
	return v
}

func TestRandomTrees(t *testing.T) {
	g := treeGen{rng: rand.New(rand.NewSource(42))}

	for i := 0; i < 500; i++ {
		node := g.tree(5)
		src := node.String()

		parsed, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		simplified := Simplify(node)
		p, err := ToPoly(node, "x")
		if err != nil {
			t.Fatalf("ToPoly(%q): %v", src, err)
		}
		canon, err := Parse(p.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", p.String(), err)
		}

		for _, x := range sampleXs {
			want := evalAt(t, node, x)
			for name, other := range map[string]*big.Rat{
				"parsed":     evalAt(t, parsed, x),
				"simplified": evalAt(t, simplified, x),
				"canonical":  evalAt(t, canon, x),
				"poly":       p.Eval(rat(x)),
			} {
				if want.Cmp(other) != 0 {
					t.Errorf("%q at x=%s: %s form = %s, want %s", src, x, name, other.RatString(), want.RatString())
				}
			}
		}
	}
}
