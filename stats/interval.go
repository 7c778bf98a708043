package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidence is the confidence level, in percent, used when none is
// configured.
const DefaultConfidence = 95.0

// ZVal returns the two-tailed Z-value for a confidence level given in
// percent (0 to 100).
func ZVal(confidence float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return dist.Quantile((1 + confidence/100) / 2)
}

// TVal returns the two-tailed Student t critical value for a confidence
// level in percent and the given degrees of freedom. With fewer than one
// degree of freedom it returns +Inf.
func TVal(confidence float64, dof int) float64 {
	if dof < 1 {
		return math.Inf(1)
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	return dist.Quantile((1 + confidence/100) / 2)
}

// Bounded summarizes samples that live in [0, 1]. Pushed values are
// clamped to the domain. The interval is a t-interval over the samples
// padded with one pseudo-sample at each bound, so a handful of samples
// give a wide interval rather than a falsely narrow one.
type Bounded struct {
	raw    Statistic
	padded Statistic
}

// NewBounded returns an empty Bounded statistic.
func NewBounded() *Bounded {
	b := &Bounded{}
	b.padded.Push(0)
	b.padded.Push(1)
	return b
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (b *Bounded) Push(v float64) {
	v = clamp(v)
	b.raw.Push(v)
	b.padded.Push(v)
}

// Mean is the mean of the pushed samples, without padding.
func (b *Bounded) Mean() float64 {
	return b.raw.Mean()
}

// Count is the number of pushed samples.
func (b *Bounded) Count() int {
	return b.raw.Iterations()
}

// Interval returns the lower and upper confidence bounds, clamped to
// [0, 1]. An empty statistic returns [0, 1].
func (b *Bounded) Interval(confidence float64) (float64, float64) {
	if b.raw.Iterations() == 0 {
		return 0, 1
	}
	n := b.padded.Iterations()
	half := TVal(confidence, n-1) * b.padded.StandardError()
	m := b.padded.Mean()
	return clamp(m - half), clamp(m + half)
}
