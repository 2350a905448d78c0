package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/wildfunctions/lagrange/pkg/lagrange"
)

// BuildReport is the result of interpolating a point set.
type BuildReport struct {
	PolynomialString string           `json:"polynomialString"`
	DataPoints       []lagrange.Point `json:"dataPoints"`
	LaTeX            string           `json:"latex"`
	Degree           int              `json:"degree"`
	MaxResidual      float64          `json:"maxResidual"`
}

// EvaluateReport is the value of a polynomial at one point.
type EvaluateReport struct {
	WishedX float64 `json:"wishedX"`
	WishedY float64 `json:"wishedY"`
}

func validFormat(format string) bool {
	switch format {
	case "text", "json", "latex":
		return true
	default:
		return false
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteBuild writes a build report in the given format.
func WriteBuild(w io.Writer, format string, r BuildReport) error {
	switch format {
	case "json":
		return WriteJSON(w, r)
	case "latex":
		return WriteBuildLatex(w, r)
	default:
		return WriteTextBuild(w, r)
	}
}

// WriteEvaluations writes evaluation reports in the given format.
func WriteEvaluations(w io.Writer, format string, rs []EvaluateReport) error {
	switch format {
	case "json":
		if len(rs) == 1 {
			return WriteJSON(w, rs[0])
		}
		return WriteJSON(w, rs)
	case "latex":
		for _, r := range rs {
			if _, err := fmt.Fprintf(w, "P(%s) = %s\\\\\n", formatFloat(r.WishedX), formatFloat(r.WishedY)); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, r := range rs {
			if err := WriteTextEvaluate(w, r); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteTextBuild writes a build report in human-readable format.
func WriteTextBuild(w io.Writer, r BuildReport) error {
	_, err := fmt.Fprintf(w, "Polynomial: %s\nLaTeX:      %s\nDegree:     %d\nPoints:     %d\nResidual:   %s\n",
		r.PolynomialString, r.LaTeX, r.Degree, len(r.DataPoints), formatFloat(r.MaxResidual))
	return err
}

// WriteTextEvaluate writes one evaluation in human-readable format.
func WriteTextEvaluate(w io.Writer, r EvaluateReport) error {
	_, err := fmt.Fprintf(w, "P(%s) = %s\n", formatFloat(r.WishedX), formatFloat(r.WishedY))
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteBuildLatex writes a compilable LaTeX document showing the
// interpolant and its samples.
func WriteBuildLatex(w io.Writer, r BuildReport) error {
	ew := &errWriter{w: w}

	ew.println(`\documentclass{article}`)
	ew.println(`\usepackage{amsmath}`)
	ew.println(`\begin{document}`)
	ew.printf("\\noindent Interpolant of %d points, degree %d:\n", len(r.DataPoints), r.Degree)
	ew.println(`\[`)
	ew.printf("  P(x) = %s\n", r.LaTeX)
	ew.println(`\]`)
	ew.println(`\begin{tabular}{r|r}`)
	ew.println(`$x$ & $y$ \\ \hline`)
	for _, p := range r.DataPoints {
		ew.printf("%s & %s \\\\\n", formatFloat(p.X), formatFloat(p.Y))
	}
	ew.println(`\end{tabular}`)
	ew.println(`\end{document}`)

	return ew.err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintf(ew.w, format, args...)
	}
}

func (ew *errWriter) println(s string) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintln(ew.w, s)
	}
}
