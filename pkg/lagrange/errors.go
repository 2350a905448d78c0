package lagrange

import (
	"errors"
	"fmt"

	"github.com/wildfunctions/lagrange/pkg/expr"
)

var (
	ErrNoPoints   = errors.New("at least one point is required")
	ErrPointIndex = errors.New("point index out of range")
)

// DuplicateXError reports two samples sharing an x value, which makes the
// basis denominator of point I vanish.
type DuplicateXError struct {
	I, J int
	X    float64
}

func (e *DuplicateXError) Error() string {
	return fmt.Sprintf("duplicate x value %v at points %d and %d: %v", e.X, e.I, e.J, expr.ErrDivisionByZero)
}

func (e *DuplicateXError) Unwrap() error { return expr.ErrDivisionByZero }
