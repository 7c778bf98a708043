package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.scores))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)
}

func TestTVal(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(TVal(95, 1)-12.7062) < 1e-3)
	is.True(math.Abs(TVal(95, 10)-2.2281) < 1e-3)
	// Approaches the normal value for many degrees of freedom.
	is.True(math.Abs(TVal(95, 100000)-ZVal(95)) < 1e-3)
	is.True(math.IsInf(TVal(95, 0), 1))
}

func TestBoundedEmpty(t *testing.T) {
	is := is.New(t)
	b := NewBounded()
	lo, hi := b.Interval(DefaultConfidence)
	is.Equal(lo, 0.0)
	is.Equal(hi, 1.0)
	is.Equal(b.Count(), 0)
}

func TestBoundedClamps(t *testing.T) {
	is := is.New(t)
	b := NewBounded()
	b.Push(-3)
	b.Push(7)
	is.Equal(b.Mean(), 0.5)
	lo, hi := b.Interval(DefaultConfidence)
	is.True(lo >= 0 && lo <= b.Mean())
	is.True(hi <= 1 && hi >= b.Mean())
}

func TestBoundedSingleSampleIsWide(t *testing.T) {
	is := is.New(t)
	b := NewBounded()
	b.Push(0.5)
	lo, hi := b.Interval(DefaultConfidence)
	is.Equal(lo, 0.0)
	is.Equal(hi, 1.0)
}

func TestBoundedWidthShrinks(t *testing.T) {
	is := is.New(t)
	for _, p := range []float64{0.05, 0.3, 0.5} {
		prev := math.Inf(1)
		for _, n := range []int{10, 100, 1000, 10000} {
			b := NewBounded()
			for i := 0; i < n; i++ {
				if frand.Float64() < p {
					b.Push(1)
				} else {
					b.Push(0)
				}
			}
			lo, hi := b.Interval(DefaultConfidence)
			is.True(lo <= b.Mean() && b.Mean() <= hi)
			w := hi - lo
			is.True(w <= prev) // interval must shrink with more samples
			prev = w
		}
		is.True(prev < 0.05)
	}
}

func TestBoundedConstantSamples(t *testing.T) {
	is := is.New(t)
	prev := math.Inf(1)
	for _, n := range []int{1, 2, 5, 20, 200} {
		b := NewBounded()
		for i := 0; i < n; i++ {
			b.Push(0.25)
		}
		lo, hi := b.Interval(90)
		is.True(hi-lo <= prev)
		prev = hi - lo
		is.True(FuzzyEqual(b.Mean(), 0.25))
	}
}
