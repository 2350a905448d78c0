package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"github.com/spf13/cast"

	"github.com/wildfunctions/lagrange/pkg/lagrange"
)

var ErrValidation = errors.New("validation error")

// ValidationError reports request input that does not have the expected
// shape. Field names the offending input, e.g. "dataPoints[2].x".
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DecodePoints reads a JSON array of {"x": number, "y": number} objects.
// Numbers may also be given as numeric strings; other keys are ignored.
func DecodePoints(r io.Reader) ([]lagrange.Point, error) {
	dec := json.NewDecoder(r)

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ValidationError{Field: "body", Msg: fmt.Sprintf("larger than %d bytes", maxErr.Limit)}
		}
		return nil, &ValidationError{Field: "body", Msg: "expected a JSON array of points: " + err.Error()}
	}
	if dec.More() {
		return nil, &ValidationError{Field: "body", Msg: "invalid JSON: trailing data"}
	}
	if raw == nil {
		return nil, &ValidationError{Field: "body", Msg: "expected a JSON array of points"}
	}

	points := make([]lagrange.Point, len(raw))
	for i, msg := range raw {
		p, err := decodePoint(i, msg)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}

func decodePoint(i int, msg json.RawMessage) (lagrange.Point, error) {
	field := fmt.Sprintf("dataPoints[%d]", i)

	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return lagrange.Point{}, &ValidationError{Field: field, Msg: "expected an object with x and y"}
	}

	x, err := numberField(obj, field, "x")
	if err != nil {
		return lagrange.Point{}, err
	}
	y, err := numberField(obj, field, "y")
	if err != nil {
		return lagrange.Point{}, err
	}
	return lagrange.Point{X: x, Y: y}, nil
}

func numberField(obj map[string]any, prefix, key string) (float64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, &ValidationError{Field: prefix + "." + key, Msg: "required"}
	}
	f, err := toFinite(v)
	if err != nil {
		return 0, &ValidationError{Field: prefix + "." + key, Msg: err.Error()}
	}
	return f, nil
}

// toFinite accepts JSON numbers and numeric strings only; cast alone would
// also turn booleans and nulls into numbers.
func toFinite(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		v = n.String()
	case string:
	default:
		return 0, fmt.Errorf("expected a number, got %s", jsonKind(v))
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("expected a number, got %q", fmt.Sprint(v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %v", f)
	}
	return f, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ParseQuery extracts polynomialString and wishedX from an evaluation
// request's query.
func ParseQuery(q url.Values) (string, float64, error) {
	src := q.Get("polynomialString")
	if src == "" {
		return "", 0, &ValidationError{Field: "polynomialString", Msg: "required"}
	}

	if !q.Has("wishedX") {
		return "", 0, &ValidationError{Field: "wishedX", Msg: "required"}
	}
	x, err := toFinite(q.Get("wishedX"))
	if err != nil {
		return "", 0, &ValidationError{Field: "wishedX", Msg: err.Error()}
	}
	return src, x, nil
}
