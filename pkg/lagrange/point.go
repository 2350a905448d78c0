package lagrange

import (
	"fmt"
	"math/big"

	"github.com/wildfunctions/lagrange/pkg/expr"
)

// Variable is the name of the free variable of every built polynomial.
const Variable = "x"

// Point is one sample (x, y) of the function being interpolated.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

// rats converts the coordinates to exact rationals via their shortest
// decimal form, so 0.1 becomes 1/10.
func rats(points []Point) (xs, ys []*big.Rat, err error) {
	xs = make([]*big.Rat, len(points))
	ys = make([]*big.Rat, len(points))
	for i, p := range points {
		if xs[i], err = expr.RatFromFloat(p.X); err != nil {
			return nil, nil, fmt.Errorf("point %d x: %w", i, err)
		}
		if ys[i], err = expr.RatFromFloat(p.Y); err != nil {
			return nil, nil, fmt.Errorf("point %d y: %w", i, err)
		}
	}
	return xs, ys, nil
}
