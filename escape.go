package mandel

import (
	"math"
	"math/cmplx"
)

// Mode selects what Evaluate returns for an escaped point.
type Mode int

const (
	// Discrete returns the integer escape index.
	Discrete Mode = iota
	// Smooth returns the continuous iteration value mu.
	Smooth
)

func (m Mode) String() string {
	switch m {
	case Discrete:
		return "discrete"
	case Smooth:
		return "smooth"
	}
	return "unknown"
}

// Default periodicity check parameters. Both are empirical.
const (
	DefaultPeriodInterval = 20
	DefaultPeriodEpsilon  = 1e-12
)

var ln2 = math.Log(2)

// Evaluator runs the escape-time iteration z = z*z + c for single points.
//
// An Evaluator is a plain value and safe to share between goroutines.
type Evaluator struct {
	MaxIter int
	Mode    Mode

	// PeriodInterval is the number of iterations between orbit checkpoints.
	// Zero disables the periodicity check.
	PeriodInterval int
	// PeriodEpsilon is the squared distance below which two checkpoints are
	// considered the same point of a cycle.
	PeriodEpsilon float64
}

// NewEvaluator returns an Evaluator with the default periodicity settings.
func NewEvaluator(maxIter int, mode Mode) Evaluator {
	return Evaluator{
		MaxIter:        maxIter,
		Mode:           mode,
		PeriodInterval: DefaultPeriodInterval,
		PeriodEpsilon:  DefaultPeriodEpsilon,
	}
}

// Sentinel is the value Evaluate returns for points that did not escape.
func (e Evaluator) Sentinel() float64 {
	return float64(e.MaxIter)
}

// Inside reports whether v is the in-set sentinel.
func (e Evaluator) Inside(v float64) bool {
	return v >= float64(e.MaxIter)
}

// Evaluate iterates c and returns its escape value: the index i of the first
// iterate with |z|² > 4 (Discrete) or i + 1 - log2(ln|z|) (Smooth). Points
// that stay bounded for MaxIter iterations, or that the periodicity check
// finds on a cycle, return Sentinel.
func (e Evaluator) Evaluate(c complex128) float64 {
	z := complex(0, 0)
	saved := z

	for i := range e.MaxIter {
		z = z*z + c
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			if e.Mode == Smooth {
				return e.smooth(i, z)
			}
			return float64(i)
		}

		if e.PeriodInterval > 0 && (i+1)%e.PeriodInterval == 0 {
			dr, di := real(z)-real(saved), imag(z)-imag(saved)
			if dr*dr+di*di < e.PeriodEpsilon {
				return e.Sentinel()
			}
			saved = z
		}
	}
	return e.Sentinel()
}

// Count is Evaluate in Discrete mode, as an int.
func (e Evaluator) Count(c complex128) int {
	e.Mode = Discrete
	return int(e.Evaluate(c))
}

// smooth refines escape index i. The value is clamped to [0, MaxIter) so an
// escaped point is never mistaken for the sentinel.
func (e Evaluator) smooth(i int, z complex128) float64 {
	mu := float64(i) + 1 - math.Log(math.Log(cmplx.Abs(z)))/ln2
	if mu < 0 || math.IsNaN(mu) {
		return 0
	}
	if top := math.Nextafter(e.Sentinel(), 0); mu > top {
		return top
	}
	return mu
}
