package mandel

import (
	"math"
	"testing"
)

func TestEvaluateOriginNeverEscapes(t *testing.T) {
	for _, maxIter := range []int{1, 2, 10, 21, 1000} {
		for _, mode := range []Mode{Discrete, Smooth} {
			for _, interval := range []int{0, DefaultPeriodInterval} {
				ev := Evaluator{MaxIter: maxIter, Mode: mode, PeriodInterval: interval, PeriodEpsilon: DefaultPeriodEpsilon}
				if got := ev.Evaluate(0); got != ev.Sentinel() {
					t.Errorf("maxIter=%d mode=%s interval=%d: Evaluate(0) = %v, want sentinel %v",
						maxIter, mode, interval, got, ev.Sentinel())
				}
			}
		}
	}
}

func TestEvaluateFarPointEscapesImmediately(t *testing.T) {
	for _, c := range []complex128{3, -3, complex(0, 2.5), complex(2, 2)} {
		for _, maxIter := range []int{1, 2, 100} {
			ev := NewEvaluator(maxIter, Discrete)
			if got := ev.Count(c); got > 1 {
				t.Errorf("Count(%v) with maxIter=%d = %d, want 0 or 1", c, maxIter, got)
			}
			ev.Mode = Smooth
			if v := ev.Evaluate(c); ev.Inside(v) {
				t.Errorf("Evaluate(%v) with maxIter=%d reported in-set", c, maxIter)
			}
		}
	}

	ev := NewEvaluator(10, Discrete)
	if got := ev.Count(3); got != 0 {
		t.Errorf("Count(3) = %d, want 0", got)
	}
}

func TestEvaluateSmoothValue(t *testing.T) {
	ev := NewEvaluator(1000, Smooth)

	// c = 3 escapes on the first iterate with |z| = 3.
	want := 1 - math.Log(math.Log(3))/math.Log(2)
	if got := ev.Evaluate(3); math.Abs(got-want) > 1e-12 {
		t.Errorf("Evaluate(3) = %v, want %v", got, want)
	}

	// mu refines the discrete count: i + 1 - log2(ln|z|) with 2 < |z| <= 4+|c|.
	for _, c := range []complex128{0.3, complex(-0.75, 0.1), complex(0.26, 0), complex(0.5, 0.5)} {
		i := float64(ev.Count(c))
		mu := ev.Evaluate(c)
		if ev.Inside(mu) {
			t.Fatalf("Evaluate(%v) unexpectedly in set", c)
		}
		if mu < i || mu >= i+2 {
			t.Errorf("Evaluate(%v) = %v, want within [%v, %v)", c, mu, i, i+2)
		}
	}
}

func TestEvaluateSmoothContinuous(t *testing.T) {
	ev := NewEvaluator(1000, Smooth)
	for _, c := range []complex128{0.3, complex(-0.75, 0.1), complex(0.5, 0.5)} {
		a := ev.Evaluate(c)
		b := ev.Evaluate(c + complex(1e-10, 1e-10))
		if math.Abs(a-b) > 1e-3 {
			t.Errorf("Evaluate jumps near %v: %v vs %v", c, a, b)
		}
	}
}

func TestEvaluateEscapedNeverSentinel(t *testing.T) {
	c := complex128(0.3)
	k := NewEvaluator(1000, Discrete).Count(c)

	// Budget ends exactly at the escape iteration, where mu may exceed MaxIter
	// before clamping.
	ev := NewEvaluator(k+1, Smooth)
	v := ev.Evaluate(c)
	if ev.Inside(v) {
		t.Errorf("Evaluate(%v) with maxIter=%d = %v, reported in set", c, k+1, v)
	}
	if v < 0 {
		t.Errorf("Evaluate(%v) = %v, want >= 0", c, v)
	}

	if v := NewEvaluator(5, Smooth).Evaluate(complex(1e100, 0)); v != 0 {
		t.Errorf("Evaluate(1e100) = %v, want 0", v)
	}
}

func TestEvaluateBoundaryPoint(t *testing.T) {
	// -2 lands on the fixed point 2 with |z|² == 4, which is not an escape.
	for _, interval := range []int{0, DefaultPeriodInterval} {
		ev := Evaluator{MaxIter: 500, PeriodInterval: interval, PeriodEpsilon: DefaultPeriodEpsilon}
		if got := ev.Evaluate(-2); !ev.Inside(got) {
			t.Errorf("interval=%d: Evaluate(-2) = %v, want sentinel", interval, got)
		}
	}
}

func TestEvaluatePeriodicityAgrees(t *testing.T) {
	with := NewEvaluator(2000, Discrete)
	without := with
	without.PeriodInterval = 0

	// Points well away from the boundary, where the heuristic is reliable.
	points := []complex128{
		-1, -0.1, complex(-0.5, 0.5), complex(0.25, 0.1), complex(-1.2, 0.1),
		0.3, complex(-0.75, 0.2), 1, complex(0.4, -0.4),
	}
	for _, c := range points {
		if a, b := with.Evaluate(c), without.Evaluate(c); a != b {
			t.Errorf("Evaluate(%v): with periodicity %v, without %v", c, a, b)
		}
	}
}

func TestEvaluatePeriodicityShortCircuits(t *testing.T) {
	// Without the check this would run for 2^31 iterations.
	ev := NewEvaluator(math.MaxInt32, Discrete)
	for _, c := range []complex128{0, -1, -0.1, complex(-0.1, 0.2)} {
		if v := ev.Evaluate(c); !ev.Inside(v) {
			t.Errorf("Evaluate(%v) = %v, want sentinel", c, v)
		}
	}
}
