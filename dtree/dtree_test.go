package dtree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/hoju/aggregate"
	"github.com/domino14/hoju/dataset"
	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/tile"
)

func never(*feature.Scene, tile.Tile) bool { return false }

func testCatalog() *feature.Catalog {
	return feature.NewBuilder().
		Add("a", "a", never).
		Add("b", "b", never).
		Add("c", "c", never).
		Build()
}

func vec(c *feature.Catalog, bits ...bool) feature.Vector {
	v, err := c.Encode(bits)
	if err != nil {
		panic(err)
	}
	return v
}

// separable builds rounds where a drives the hit rate and b, c are noise.
func separable(c *feature.Catalog, n int) dataset.Bytes {
	rng := rand.New(rand.NewPCG(1, 2))
	rounds := make([]dataset.Round, n)
	for i := range rounds {
		rounds[i].ID = fmt.Sprintf("round-%d", i)
		for d := 0; d < 3; d++ {
			var dec dataset.Decision
			for e := 0; e < 4; e++ {
				a := rng.IntN(2) == 1
				p := 0.05
				if a {
					p = 0.7
				}
				dec.Examples = append(dec.Examples, dataset.Example{
					Vector: vec(c, a, rng.IntN(2) == 1, rng.IntN(2) == 1),
					Hit:    rng.Float64() < p,
				})
			}
			rounds[i].Decisions = append(rounds[i].Decisions, dec)
		}
	}
	data, err := dataset.Encode(c.Names(), 50, rounds)
	if err != nil {
		panic(err)
	}
	return data
}

func TestInduceSplitsOnSignal(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	data := separable(c, 1000)
	tree, err := NewInducer(aggregate.New(c, data)).Induce(context.Background())
	is.NoErr(err)
	is.Equal(tree.FeatureName, "a")
	is.Equal(tree.NumSamples, 1000)
	is.True(tree.Positive.AverageProb > tree.Negative.AverageProb)
	is.True(tree.Positive.ConfInterval[0] > tree.Negative.ConfInterval[1])
	for _, leaf := range tree.Leaves() {
		is.True(leaf.NumSamples > 0)
		is.True(leaf.ConfInterval[0] <= leaf.AverageProb && leaf.AverageProb <= leaf.ConfInterval[1])
	}
}

func TestInduceTieKeepsCatalogOrder(t *testing.T) {
	is := is.New(t)
	// z and a always agree, so their splits have the same gap; z comes
	// first in the catalog and must win despite sorting after a.
	c := feature.NewBuilder().
		Add("z", "z", never).
		Add("a", "a", never).
		Add("b", "b", never).
		Build()
	rng := rand.New(rand.NewPCG(3, 4))
	rounds := make([]dataset.Round, 600)
	for i := range rounds {
		var dec dataset.Decision
		for e := 0; e < 4; e++ {
			x := rng.IntN(2) == 1
			p := 0.05
			if x {
				p = 0.7
			}
			dec.Examples = append(dec.Examples, dataset.Example{
				Vector: vec(c, x, x, rng.IntN(2) == 1),
				Hit:    rng.Float64() < p,
			})
		}
		rounds[i].Decisions = []dataset.Decision{dec}
	}
	data, err := dataset.Encode(c.Names(), 50, rounds)
	is.NoErr(err)

	rep, err := aggregate.New(c, data).SingleFeatureReport(context.Background())
	is.NoErr(err)
	gz, ok := rep.Splits[0].Gap()
	is.True(ok)
	ga, _ := rep.Splits[1].Gap()
	is.Equal(gz, ga)

	tree, err := NewInducer(aggregate.New(c, data)).Induce(context.Background())
	is.NoErr(err)
	is.Equal(tree.FeatureName, "z")
}

func TestInduceDeterministic(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	data := separable(c, 400)
	first, err := NewInducer(aggregate.New(c, data)).Induce(context.Background())
	is.NoErr(err)
	for _, workers := range []int{1, 4} {
		again, err := NewInducer(aggregate.New(c, data, aggregate.WithWorkers(workers))).Induce(context.Background())
		is.NoErr(err)
		is.True(first.Equal(again))
		is.Equal(first.String(), again.String())
	}
}

func TestInduceSingleLeaf(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	v := vec(c, true, false, true)
	var rounds []dataset.Round
	for i := 0; i < 30; i++ {
		rounds = append(rounds, dataset.Round{Decisions: []dataset.Decision{{Examples: []dataset.Example{
			{Vector: v, Hit: i%3 == 0}, {Vector: v},
		}}}})
	}
	data, err := dataset.Encode(c.Names(), 0, rounds)
	is.NoErr(err)
	agg := aggregate.New(c, data)
	tree, err := NewInducer(agg).Induce(context.Background())
	is.NoErr(err)
	is.True(tree.IsLeaf())
	is.Equal(tree.Negative, nil)

	sums, err := agg.Summarize(context.Background(), []feature.Criterion{{}})
	is.NoErr(err)
	is.True(tree.Equal(NewLeaf(sums[0])))
}

func TestInduceHugeMinGap(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	tree, err := NewInducer(aggregate.New(c, separable(c, 200)), WithMinGap(1)).Induce(context.Background())
	is.NoErr(err)
	is.True(tree.IsLeaf())
}

func TestInduceEmpty(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	data, err := dataset.Encode(c.Names(), 0, nil)
	is.NoErr(err)
	_, err = NewInducer(aggregate.New(c, data)).Induce(context.Background())
	is.True(errors.Is(err, ErrEmptyDataset))
}

func TestObserverSnapshots(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	var events []SplitEvent
	var last *Node
	tree, err := NewInducer(aggregate.New(c, separable(c, 500)), WithObserver(func(ev SplitEvent) {
		events = append(events, ev)
		last = ev.Snapshot()
	})).Induce(context.Background())
	is.NoErr(err)
	is.Equal(events[0].Feature, "a")
	is.Equal(events[0].Criterion.Len(), 0)
	is.True(events[0].Gap > 0)

	// One event per node of the final tree.
	nodes := 0
	tree.Walk(func(*Node, int) { nodes++ })
	is.Equal(len(events), nodes)
	is.True(last.Equal(tree))
}

func leaf(p, lo, hi float64, n int) *Node {
	return &Node{AverageProb: p, ConfInterval: [2]float64{lo, hi}, NumSamples: n}
}

func split(n *Node, name string, neg, pos *Node) *Node {
	n.FeatureName = name
	n.Negative = neg
	n.Positive = pos
	return n
}

func handTree() *Node {
	return split(leaf(0.2, 0.1, 0.3, 100), "a",
		leaf(0.1, 0.05, 0.15, 60),
		split(leaf(0.5, 0.4, 0.6, 40), "b",
			leaf(0.3, 0.2, 0.4, 25),
			leaf(0.9, 0.8, 1, 15)))
}

func TestModelEstimate(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	m, err := NewModel(handTree(), c)
	is.NoErr(err)
	is.Equal(m.NumNodes(), 5)
	is.Equal(m.Estimate(vec(c, false, true, true)), 0.1)
	is.Equal(m.Estimate(vec(c, true, false, true)), 0.3)
	is.Equal(m.Estimate(vec(c, true, true, false)), 0.9)
	is.Equal(m.Root().Depth(), 2)
	is.Equal(len(m.Root().Leaves()), 3)
}

func TestModelUnknownFeature(t *testing.T) {
	is := is.New(t)
	_, err := NewModel(&Node{FeatureName: "zzz", Negative: &Node{}, Positive: &Node{}}, testCatalog())
	is.True(errors.Is(err, feature.ErrUnknownFeature))
	_, err = NewModel(&Node{FeatureName: "a", Negative: &Node{}}, testCatalog())
	is.True(err != nil)
}

func TestEstimateProbabilityFromScene(t *testing.T) {
	is := is.New(t)
	c := feature.Default()
	root := split(leaf(0.1, 0, 1, 10), "tsupai", leaf(0.12, 0, 1, 7), leaf(0.04, 0, 1, 3))
	m, err := NewModel(root, c)
	is.NoErr(err)
	hand, err := tile.ParseList("5m 0m E")
	is.NoErr(err)
	s := feature.NewScene(feature.SceneParams{Hand: hand})
	is.Equal(m.EstimateProbability(s, tile.MustParse("E")), 0.04)
	is.Equal(m.EstimateProbability(s, tile.MustParse("5mr")), 0.12)

	ests := m.EstimateScene(s)
	is.Equal(len(ests), 2)
	is.Equal(ests[0].Tile, tile.MustParse("5m"))
	is.Equal(ests[1].Prob, 0.04)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	for _, root := range []*Node{handTree(), leaf(0.25, 0, 1, 1)} {
		var buf bytes.Buffer
		is.NoErr(Save(&buf, root, c))
		m, err := Load(&buf, c)
		is.NoErr(err)
		is.True(m.Root().Equal(root))
	}
}

func TestLoadRejectsOtherCatalog(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Save(&buf, handTree(), testCatalog()))
	other := feature.NewBuilder().Add("a", "a", never).Add("b", "b", never).Build()
	_, err := Load(&buf, other)
	is.True(errors.Is(err, ErrFingerprintMismatch))
}

func TestSaveFile(t *testing.T) {
	c := testCatalog()
	path := t.TempDir() + "/model.json"
	assert.NoError(t, SaveFile(path, handTree(), c))
	m, err := LoadFile(path, c)
	assert.NoError(t, err)
	assert.True(t, m.Root().Equal(handTree()))
	_, err = LoadFile(path+".missing", c)
	assert.Error(t, err)
}

func TestRenderAndYAML(t *testing.T) {
	is := is.New(t)
	out := handTree().String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	is.Equal(len(lines), 5)
	is.Equal(lines[0], "all: 0.2000 [0.1000, 0.3000] (100)")
	is.Equal(lines[1], "  !a: 0.1000 [0.0500, 0.1500] (60)")
	is.Equal(lines[4], "    b: 0.9000 [0.8000, 1.0000] (15)")

	var buf bytes.Buffer
	is.NoErr(DumpYAML(&buf, handTree()))
	is.True(strings.Contains(buf.String(), "feature_name: a"))
	is.True(strings.Contains(buf.String(), "num_samples: 15"))
}

func TestEvaluate(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	m, err := NewModel(leaf(0.5, 0, 1, 1), c)
	is.NoErr(err)
	data := separable(c, 50)
	ev, err := Evaluate(m, data, nil)
	is.NoErr(err)
	is.Equal(ev.Rounds, 50)
	is.Equal(ev.Examples, 600)
	is.True(math.Abs(ev.Brier-0.25) < 1e-9)
	is.True(math.Abs(ev.LogLoss-math.Ln2) < 1e-6)
	is.Equal(ev.Buckets[5].Count, 600)

	held, err := Evaluate(m, data, func(r *dataset.Round) bool { return Holdout(r.ID, 20) })
	is.NoErr(err)
	is.True(held.Rounds < 50)
}

func TestHoldout(t *testing.T) {
	is := is.New(t)
	n := 0
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("game-%d/3", i)
		is.Equal(Holdout(id, 10), Holdout(id, 10))
		is.True(!Holdout(id, 0))
		is.True(Holdout(id, 100))
		if Holdout(id, 10) {
			n++
		}
	}
	is.True(n > 800 && n < 1200)
}
