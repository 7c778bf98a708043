package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/hoju/dataset"
	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/stats"
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

func vec(t *testing.T, c *feature.Catalog, bits ...bool) feature.Vector {
	v, err := c.Encode(bits)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func encode(t *testing.T, c *feature.Catalog, chunk int, rounds []dataset.Round) dataset.Bytes {
	data, err := dataset.Encode(c.Names(), chunk, rounds)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestTwoLevelAverage(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	v := vec(t, c, true, false, false)
	hit := dataset.Example{Vector: v, Hit: true}
	miss := dataset.Example{Vector: v}
	rounds := []dataset.Round{{Decisions: []dataset.Decision{
		{Examples: []dataset.Example{hit, hit, hit, miss}},
		{Examples: []dataset.Example{miss, miss}},
	}}}
	agg := New(c, encode(t, c, 0, rounds))
	sums, err := agg.Summarize(context.Background(), []feature.Criterion{{}})
	is.NoErr(err)
	is.Equal(sums[0].Samples, 1)
	is.True(stats.FuzzyEqual(sums[0].Average, 0.375)) // not the pooled 0.5
	is.True(sums[0].Lower <= 0.375 && sums[0].Upper >= 0.375)
}

func TestDecisionsWithoutMatchesAreSkipped(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	a := vec(t, c, true, false, false)
	b := vec(t, c, false, true, false)
	rounds := []dataset.Round{
		{Decisions: []dataset.Decision{
			{Examples: []dataset.Example{{Vector: a, Hit: true}, {Vector: b}}},
			{Examples: []dataset.Example{{Vector: b, Hit: true}}},
		}},
		{Decisions: []dataset.Decision{
			{Examples: []dataset.Example{{Vector: b}}},
		}},
	}
	agg := New(c, encode(t, c, 1, rounds))
	sums, err := agg.Summarize(context.Background(), []feature.Criterion{
		feature.NewCriterion(map[string]bool{"a": true}),
		feature.NewCriterion(map[string]bool{"b": true}),
		feature.NewCriterion(map[string]bool{"c": true}),
		feature.NewCriterion(map[string]bool{"a": true}),
	})
	is.NoErr(err)
	// a matches one example in one round.
	is.Equal(sums[0].Samples, 1)
	is.Equal(sums[0].Average, 1.0)
	// b: round 1 = mean(0/1, 1/1) = 0.5; round 2 = 0.
	is.Equal(sums[1].Samples, 2)
	is.True(stats.FuzzyEqual(sums[1].Average, 0.25))
	// c never matches.
	is.Equal(sums[2], nil)
	// Duplicates share a result.
	is.Equal(*sums[3], *sums[0])
}

func TestCatalogMismatch(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	data, err := dataset.Encode([]string{"a", "c", "b"}, 0, nil)
	is.NoErr(err)
	_, err = New(c, data).Summarize(context.Background(), []feature.Criterion{{}})
	is.True(errors.Is(err, dataset.ErrCatalogMismatch))
}

func TestUnknownFeatureCriterion(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	_, err := New(c, encode(t, c, 0, nil)).Summarize(context.Background(),
		[]feature.Criterion{feature.NewCriterion(map[string]bool{"zzz": true})})
	is.True(errors.Is(err, feature.ErrUnknownFeature))
}

func randomRounds(t *testing.T, c *feature.Catalog, n int) []dataset.Round {
	rounds := make([]dataset.Round, n)
	for i := range rounds {
		nd := 1 + frand.Intn(4)
		for d := 0; d < nd; d++ {
			var dec dataset.Decision
			ne := 1 + frand.Intn(6)
			for e := 0; e < ne; e++ {
				a, b, cc := frand.Intn(2) == 1, frand.Intn(2) == 1, frand.Intn(2) == 1
				// Hits are likelier when a is set.
				p := 0.1
				if a {
					p = 0.6
				}
				dec.Examples = append(dec.Examples, dataset.Example{
					Vector: vec(t, c, a, b, cc),
					Hit:    frand.Float64() < p,
				})
			}
			rounds[i].Decisions = append(rounds[i].Decisions, dec)
		}
	}
	return rounds
}

func TestWorkersAreDeterministic(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	data := encode(t, c, 7, randomRounds(t, c, 200))
	criteria := []feature.Criterion{
		{},
		feature.NewCriterion(map[string]bool{"a": true}),
		feature.NewCriterion(map[string]bool{"a": false, "b": true}),
		feature.NewCriterion(map[string]bool{"c": true, "b": false}),
	}
	want, err := New(c, data).Summarize(context.Background(), criteria)
	is.NoErr(err)
	for _, w := range []int{2, 3, 8} {
		got, err := New(c, data, WithWorkers(w)).Summarize(context.Background(), criteria)
		is.NoErr(err)
		is.Equal(len(got), len(want))
		for i := range want {
			is.Equal(*got[i], *want[i])
		}
	}
}

func TestCanceledContext(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	data := encode(t, c, 5, randomRounds(t, c, 20))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(c, data, WithWorkers(2)).Summarize(ctx, []feature.Criterion{{}})
	is.True(errors.Is(err, context.Canceled))
}

func TestSingleFeatureReport(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	data := encode(t, c, 0, randomRounds(t, c, 2000))
	agg := New(c, data, WithConfidence(90))
	is.Equal(agg.Confidence(), 90.0)
	rep, err := agg.SingleFeatureReport(context.Background())
	is.NoErr(err)
	is.Equal(rep.Base.Samples, 2000)
	is.Equal(len(rep.Splits), 3)
	is.Equal(rep.Splits[0].Feature, "a")

	gap, ok := rep.Splits[0].Gap()
	is.True(ok)
	is.True(gap > 0.2) // a separates 0.6 from 0.1

	top := rep.Interesting(0.001)
	is.True(len(top) >= 1)
	is.Equal(top[0].Feature, "a")
	for _, s := range top {
		g, _ := s.Gap()
		is.True(g > 0.001)
	}

	sub, err := agg.SplitReport(context.Background(), feature.NewCriterion(map[string]bool{"a": true}))
	is.NoErr(err)
	is.Equal(len(sub.Splits), 2)
	is.Equal(sub.Splits[0].Feature, "b")
}

func TestIntervalGap(t *testing.T) {
	is := is.New(t)
	neg := &Summary{Average: 0.1, Lower: 0.05, Upper: 0.15}
	pos := &Summary{Average: 0.5, Lower: 0.4, Upper: 0.6}
	is.True(stats.FuzzyEqual(IntervalGap(neg, pos), 0.25))
	is.True(stats.FuzzyEqual(IntervalGap(pos, neg), 0.25))
	over := &Summary{Average: 0.12, Lower: 0.0, Upper: 0.3}
	is.True(IntervalGap(neg, over) < 0)
	_, ok := (&Split{Negative: neg}).Gap()
	is.True(!ok)
}

func TestRoundFilter(t *testing.T) {
	is := is.New(t)
	c := testCatalog()
	v := vec(t, c, false, false, false)
	rounds := []dataset.Round{
		{ID: "keep", Decisions: []dataset.Decision{{Examples: []dataset.Example{{Vector: v, Hit: true}}}}},
		{ID: "drop", Decisions: []dataset.Decision{{Examples: []dataset.Example{{Vector: v}}}}},
	}
	agg := New(c, encode(t, c, 0, rounds), WithRoundFilter(func(r *dataset.Round) bool {
		return r.ID == "keep"
	}))

	var buf bytes.Buffer
	saved := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	defer func() { log.Logger = saved }()

	sums, err := agg.Summarize(context.Background(), []feature.Criterion{{}})
	is.NoErr(err)
	is.Equal(sums[0].Samples, 1)
	is.Equal(sums[0].Average, 1.0)

	// Only the rounds that passed the filter are reported.
	var line struct {
		Message string `json:"message"`
		Rounds  int    `json:"rounds"`
	}
	is.NoErr(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	is.Equal(line.Message, "aggregated")
	is.Equal(line.Rounds, 1)
}
