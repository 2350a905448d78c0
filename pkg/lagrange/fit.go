package lagrange

import "math"

// maxDigits is the precision cap for float64 digit counting (~15 significant digits).
const maxDigits = 15

// Fit describes how well the float evaluation of a built polynomial
// reproduces its own sample points.
type Fit struct {
	Degree        int
	MaxResidual   float64
	WorstIndex    int
	CorrectDigits float64 // fewest matching digits over all points
}

// CheckFit compiles the canonical string of p, exactly as a client would
// send it back, and evaluates it at every sample.
func CheckFit(p *Polynomial) (Fit, error) {
	c, err := Compile(p.String())
	if err != nil {
		return Fit{}, err
	}

	fit := Fit{Degree: p.Degree(), CorrectDigits: maxDigits}
	for i, pt := range p.Points {
		y, err := c.Evaluate(pt.X)
		if err != nil {
			return Fit{}, err
		}
		if r := math.Abs(y - pt.Y); r > fit.MaxResidual {
			fit.MaxResidual = r
			fit.WorstIndex = i
		}
		fit.CorrectDigits = math.Min(fit.CorrectDigits, countCorrectDigits(y, pt.Y))
	}
	return fit, nil
}

// countCorrectDigits counts matching decimal digits using float64 arithmetic.
func countCorrectDigits(computed, target float64) float64 {
	diff := math.Abs(computed - target)
	if diff == 0 {
		return maxDigits
	}

	absTgt := math.Abs(target)
	if absTgt == 0 {
		return math.Max(0, math.Min(-math.Log10(diff), maxDigits))
	}

	digits := -math.Log10(diff / absTgt)
	return math.Max(0, math.Min(digits, maxDigits))
}
