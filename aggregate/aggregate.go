// Package aggregate estimates hit probabilities of feature criteria over a
// dataset stream.
//
// Each criterion gets one sample per round that contains a matching
// example: the mean, over the round's decisions with at least one match,
// of the decision's hit ratio among matching examples. Rounds weigh
// equally regardless of how many discards they hold.
package aggregate

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/hoju/dataset"
	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/stats"
)

// Summary is the aggregate of one criterion.
type Summary struct {
	Average float64
	Lower   float64
	Upper   float64
	Samples int
}

func (s *Summary) String() string {
	return fmt.Sprintf("%.4f [%.4f, %.4f] (%d)", s.Average, s.Lower, s.Upper, s.Samples)
}

type Aggregator struct {
	catalog    *feature.Catalog
	src        dataset.Source
	confidence float64
	workers    int
	filter     func(*dataset.Round) bool
}

type Option func(*Aggregator)

// WithConfidence sets the confidence level, in percent, of the intervals.
func WithConfidence(pct float64) Option {
	return func(a *Aggregator) {
		if pct > 0 && pct < 100 {
			a.confidence = pct
		}
	}
}

// WithWorkers sets how many chunks are matched concurrently.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithRoundFilter restricts passes to rounds for which keep returns true.
func WithRoundFilter(keep func(*dataset.Round) bool) Option {
	return func(a *Aggregator) {
		a.filter = keep
	}
}

func New(c *feature.Catalog, src dataset.Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog:    c,
		src:        src,
		confidence: stats.DefaultConfidence,
		workers:    1,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Aggregator) Catalog() *feature.Catalog {
	return a.catalog
}

func (a *Aggregator) Confidence() float64 {
	return a.confidence
}

// sample is one round's probability for an interned criterion.
type sample struct {
	id   int
	prob float64
}

// Summarize runs one pass over the dataset. The result is aligned with
// criteria; an entry is nil when its criterion matched nothing.
func (a *Aggregator) Summarize(ctx context.Context, criteria []feature.Criterion) ([]*Summary, error) {
	// Intern criteria so duplicates share one accumulator.
	ids := make([]int, len(criteria))
	byKey := make(map[string]int)
	var masks []feature.Mask
	for i, cr := range criteria {
		k := cr.Key()
		id, ok := byKey[k]
		if !ok {
			m, err := a.catalog.Compile(cr)
			if err != nil {
				return nil, err
			}
			id = len(masks)
			byKey[k] = id
			masks = append(masks, m)
		}
		ids[i] = id
	}

	acc := make([]*stats.Bounded, len(masks))
	merge := func(samples []sample) {
		for _, s := range samples {
			if acc[s.id] == nil {
				acc[s.id] = stats.NewBounded()
			}
			acc[s.id].Push(s.prob)
		}
	}

	r, err := a.src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if err := r.Metadata().CheckCompatible(a.catalog.Names()); err != nil {
		return nil, err
	}

	nrounds := 0
	states := make([]*roundState, a.workers)
	for i := range states {
		states[i] = newRoundState(len(masks))
	}
	for done := false; !done; {
		// Read up to one chunk per worker, match them concurrently, then
		// merge in stream order.
		var batch []*dataset.Chunk
		for len(batch) < a.workers {
			c, err := r.Next()
			if err == io.EOF {
				done = true
				break
			}
			if err != nil {
				return nil, err
			}
			batch = append(batch, c)
		}
		results := make([][]sample, len(batch))
		kept := make([]int, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range batch {
			i, c := i, c
			g.Go(func() error {
				st := states[i]
				for j := range c.Rounds {
					if err := gctx.Err(); err != nil {
						return err
					}
					if a.filter != nil && !a.filter(&c.Rounds[j]) {
						continue
					}
					kept[i]++
					results[i] = st.round(&c.Rounds[j], masks, results[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, res := range results {
			merge(res)
			nrounds += kept[i]
		}
	}
	log.Debug().Int("criteria", len(criteria)).Int("unique", len(masks)).
		Int("rounds", nrounds).Msg("aggregated")

	out := make([]*Summary, len(criteria))
	for i, id := range ids {
		b := acc[id]
		if b == nil {
			continue
		}
		lo, hi := b.Interval(a.confidence)
		out[i] = &Summary{Average: b.Mean(), Lower: lo, Upper: hi, Samples: b.Count()}
	}
	return out, nil
}

// roundState holds the per-decision and per-round tallies of one worker.
// Only touched entries are reset, so a pass costs O(matches), not
// O(rounds x criteria).
type roundState struct {
	hits, total []int
	decTouched  []int
	probSum     []float64
	probN       []int
	rndTouched  []int
}

func newRoundState(n int) *roundState {
	return &roundState{
		hits:    make([]int, n),
		total:   make([]int, n),
		probSum: make([]float64, n),
		probN:   make([]int, n),
	}
}

// round appends one sample per criterion matching somewhere in r.
func (s *roundState) round(r *dataset.Round, masks []feature.Mask, out []sample) []sample {
	for _, d := range r.Decisions {
		for _, ex := range d.Examples {
			for id := range masks {
				if !masks[id].Matches(ex.Vector) {
					continue
				}
				if s.total[id] == 0 {
					s.decTouched = append(s.decTouched, id)
				}
				s.total[id]++
				if ex.Hit {
					s.hits[id]++
				}
			}
		}
		for _, id := range s.decTouched {
			if s.probN[id] == 0 {
				s.rndTouched = append(s.rndTouched, id)
			}
			s.probSum[id] += float64(s.hits[id]) / float64(s.total[id])
			s.probN[id]++
			s.hits[id], s.total[id] = 0, 0
		}
		s.decTouched = s.decTouched[:0]
	}
	for _, id := range s.rndTouched {
		out = append(out, sample{id: id, prob: s.probSum[id] / float64(s.probN[id])})
		s.probSum[id], s.probN[id] = 0, 0
	}
	s.rndTouched = s.rndTouched[:0]
	return out
}
