package dtree

import (
	"math"

	"github.com/cespare/xxhash"

	"github.com/domino14/hoju/dataset"
)

const numBuckets = 10

// Bucket is one calibration bin of predictions in [i/10, (i+1)/10).
type Bucket struct {
	Count     int
	Predicted float64
	Observed  float64
}

// Evaluation scores a model against labeled examples.
type Evaluation struct {
	Rounds   int
	Examples int
	Brier    float64
	LogLoss  float64
	Buckets  [numBuckets]Bucket
}

// Evaluate scores m over every round of src for which keep returns true
// (every round if keep is nil). Examples weigh equally here; this is a
// per-tile score, unlike induction.
func Evaluate(m *Model, src dataset.Source, keep func(*dataset.Round) bool) (*Evaluation, error) {
	ev := &Evaluation{}
	err := dataset.Each(src, m.catalog.Names(), func(r *dataset.Round) error {
		if keep != nil && !keep(r) {
			return nil
		}
		ev.Rounds++
		for _, d := range r.Decisions {
			for _, ex := range d.Examples {
				ev.add(m.Estimate(ex.Vector), ex.Hit)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ev.finish()
	return ev, nil
}

func (ev *Evaluation) add(p float64, hit bool) {
	y := 0.0
	if hit {
		y = 1
	}
	ev.Examples++
	ev.Brier += (p - y) * (p - y)
	q := math.Min(math.Max(p, 1e-6), 1-1e-6)
	ev.LogLoss -= y*math.Log(q) + (1-y)*math.Log(1-q)
	b := int(p * numBuckets)
	if b >= numBuckets {
		b = numBuckets - 1
	}
	ev.Buckets[b].Count++
	ev.Buckets[b].Predicted += p
	ev.Buckets[b].Observed += y
}

func (ev *Evaluation) finish() {
	if ev.Examples == 0 {
		return
	}
	ev.Brier /= float64(ev.Examples)
	ev.LogLoss /= float64(ev.Examples)
	for i := range ev.Buckets {
		b := &ev.Buckets[i]
		if b.Count > 0 {
			b.Predicted /= float64(b.Count)
			b.Observed /= float64(b.Count)
		}
	}
}

// Holdout reports whether the round with the given id falls in a stable
// pct percent holdout set.
func Holdout(id string, pct float64) bool {
	return float64(xxhash.Sum64String(id)%10000) < pct*100
}
