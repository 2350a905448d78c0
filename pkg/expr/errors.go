package expr

import (
	"errors"
	"fmt"
)

var (
	ErrParse      = errors.New("parse error")
	ErrEvaluation = errors.New("evaluation error")
	ErrArithmetic = errors.New("arithmetic error")

	ErrDivisionByZero      = fmt.Errorf("%w: division by zero", ErrArithmetic)
	ErrNonFinite           = fmt.Errorf("%w: non-finite value", ErrArithmetic)
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrUnsupportedExponent = errors.New("unsupported exponent")
	ErrNotPolynomial       = errors.New("not a polynomial")
)

// ParseError reports a syntax error at a byte offset of the source.
type ParseError struct {
	Src string
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at column %d: %s", e.Pos+1, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// EvalError wraps a failure raised while evaluating a parsed expression.
// It matches both ErrEvaluation and the underlying cause.
type EvalError struct {
	Err error
}

func (e *EvalError) Error() string {
	return "evaluation error: " + e.Err.Error()
}

func (e *EvalError) Unwrap() []error { return []error{ErrEvaluation, e.Err} }
