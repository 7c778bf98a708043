package dtree

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/domino14/hoju/aggregate"
	"github.com/domino14/hoju/feature"
)

// DefaultMinGap is the smallest interval gap accepted for a split.
const DefaultMinGap = 0.001

var ErrEmptyDataset = errors.New("dataset has no matching examples")

// SplitEvent describes the outcome at one node during induction. Feature
// is empty when the node became a leaf.
type SplitEvent struct {
	Criterion feature.Criterion
	Feature   string
	Gap       float64
	Node      *aggregate.Summary
	// Snapshot builds the tree as decided so far. Nodes not yet decided
	// appear as leaves.
	Snapshot func() *Node
}

// Observer is notified after every node decision.
type Observer func(SplitEvent)

// Inducer grows a tree greedily. At each node it makes one aggregation pass
// over the node's criterion extended by every unconstrained feature, and
// splits on the feature whose two branches have the widest interval gap.
// Ties go to the feature earliest in catalog order. A node whose best gap
// does not exceed the minimum gap is a leaf.
type Inducer struct {
	agg      *aggregate.Aggregator
	minGap   float64
	observer Observer
}

type InducerOption func(*Inducer)

func WithMinGap(g float64) InducerOption {
	return func(in *Inducer) {
		in.minGap = g
	}
}

func WithObserver(o Observer) InducerOption {
	return func(in *Inducer) {
		in.observer = o
	}
}

func NewInducer(agg *aggregate.Aggregator, opts ...InducerOption) *Inducer {
	in := &Inducer{agg: agg, minGap: DefaultMinGap}
	for _, o := range opts {
		o(in)
	}
	return in
}

// decided records the split chosen for a criterion, for snapshots.
type decided struct {
	feature  string
	neg, pos *aggregate.Summary
}

type growth struct {
	in      *Inducer
	root    *aggregate.Summary
	choices map[string]decided
}

// Induce grows a tree over the whole dataset.
func (in *Inducer) Induce(ctx context.Context) (*Node, error) {
	g := &growth{in: in, choices: make(map[string]decided)}
	return g.grow(ctx, feature.Criterion{}, nil)
}

func (g *growth) grow(ctx context.Context, cr feature.Criterion, self *aggregate.Summary) (*Node, error) {
	rep, err := g.in.agg.SplitReport(ctx, cr)
	if err != nil {
		return nil, err
	}
	if self == nil {
		if rep.Base == nil {
			return nil, ErrEmptyDataset
		}
		self = rep.Base
		g.root = self
	}

	best, bestGap := -1, 0.0
	for i := range rep.Splits {
		gap, ok := rep.Splits[i].Gap()
		if !ok || gap <= g.in.minGap {
			continue
		}
		if best < 0 || gap > bestGap {
			best, bestGap = i, gap
		}
	}
	if best < 0 {
		log.Debug().Str("criterion", cr.String()).Int("samples", self.Samples).Msg("leaf")
		g.notify(SplitEvent{Criterion: cr, Node: self})
		return NewLeaf(self), nil
	}

	sp := rep.Splits[best]
	g.choices[cr.Key()] = decided{feature: sp.Feature, neg: sp.Negative, pos: sp.Positive}
	log.Info().Str("criterion", cr.String()).Str("feature", sp.Feature).
		Float64("gap", bestGap).Int("samples", self.Samples).Msg("split")
	g.notify(SplitEvent{Criterion: cr, Feature: sp.Feature, Gap: bestGap, Node: self})

	neg, err := g.grow(ctx, cr.With(sp.Feature, false), sp.Negative)
	if err != nil {
		return nil, err
	}
	pos, err := g.grow(ctx, cr.With(sp.Feature, true), sp.Positive)
	if err != nil {
		return nil, err
	}
	n := NewLeaf(self)
	n.FeatureName = sp.Feature
	n.Negative = neg
	n.Positive = pos
	return n, nil
}

func (g *growth) notify(ev SplitEvent) {
	if g.in.observer == nil {
		return
	}
	ev.Snapshot = func() *Node {
		return g.snapshot(feature.Criterion{}, g.root)
	}
	g.in.observer(ev)
}

func (g *growth) snapshot(cr feature.Criterion, s *aggregate.Summary) *Node {
	n := NewLeaf(s)
	d, ok := g.choices[cr.Key()]
	if !ok {
		return n
	}
	n.FeatureName = d.feature
	n.Negative = g.snapshot(cr.With(d.feature, false), d.neg)
	n.Positive = g.snapshot(cr.With(d.feature, true), d.pos)
	return n
}
