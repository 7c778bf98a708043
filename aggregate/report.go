package aggregate

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/domino14/hoju/feature"
)

// Split holds the two summaries of a feature under a base criterion.
type Split struct {
	Feature  string
	Negative *Summary
	Positive *Summary
}

// Gap is the separation of the two confidence intervals, oriented by
// which branch has the higher average. It is negative when the intervals
// overlap. ok is false if either branch is empty.
func (s *Split) Gap() (gap float64, ok bool) {
	if s.Negative == nil || s.Positive == nil {
		return 0, false
	}
	return IntervalGap(s.Negative, s.Positive), true
}

// IntervalGap returns pos.Lower-neg.Upper when pos has the higher (or
// equal) average, and neg.Lower-pos.Upper otherwise.
func IntervalGap(neg, pos *Summary) float64 {
	if pos.Average >= neg.Average {
		return pos.Lower - neg.Upper
	}
	return neg.Lower - pos.Upper
}

// Report is the result of SplitReport.
type Report struct {
	Base   *Summary
	Splits []Split
}

// SplitReport summarizes base and, for every feature base leaves
// unconstrained, base extended with that feature false and true. It makes
// a single pass. Splits are in catalog order.
func (a *Aggregator) SplitReport(ctx context.Context, base feature.Criterion) (*Report, error) {
	free := lo.Filter(a.catalog.Names(), func(name string, _ int) bool {
		_, assigned := base.Value(name)
		return !assigned
	})
	criteria := make([]feature.Criterion, 0, 1+2*len(free))
	criteria = append(criteria, base)
	for _, name := range free {
		criteria = append(criteria, base.With(name, false), base.With(name, true))
	}
	sums, err := a.Summarize(ctx, criteria)
	if err != nil {
		return nil, err
	}
	rep := &Report{Base: sums[0], Splits: make([]Split, len(free))}
	for i, name := range free {
		rep.Splits[i] = Split{Feature: name, Negative: sums[1+2*i], Positive: sums[2+2*i]}
	}
	return rep, nil
}

// SingleFeatureReport is SplitReport over the whole dataset.
func (a *Aggregator) SingleFeatureReport(ctx context.Context) (*Report, error) {
	return a.SplitReport(ctx, feature.Criterion{})
}

// Interesting returns the splits whose gap exceeds minGap, sorted by
// decreasing gap. Equal gaps keep catalog order.
func (r *Report) Interesting(minGap float64) []Split {
	type scored struct {
		Split
		gap float64
	}
	var out []scored
	for _, s := range r.Splits {
		if g, ok := s.Gap(); ok && g > minGap {
			out = append(out, scored{s, g})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].gap > out[j].gap })
	return lo.Map(out, func(s scored, _ int) Split { return s.Split })
}
