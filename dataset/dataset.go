// Package dataset stores labeled discard decisions as a chunked stream.
//
// A dataset file is a snappy-framed stream of gob records. The first record
// is the Metadata naming, in order, the features every vector was built
// with. Each following record is a Chunk holding at most a fixed number of
// rounds. The stream ends at io.EOF.
package dataset

import (
	"errors"
	"fmt"

	"github.com/domino14/hoju/feature"
)

// DefaultChunkSize is the number of rounds per chunk record.
const DefaultChunkSize = 100

var ErrCatalogMismatch = errors.New("dataset was built with a different feature catalog")

// Example is one candidate tile at one decision.
type Example struct {
	Vector feature.Vector
	Hit    bool
}

// Decision holds the candidates of one discard decision.
type Decision struct {
	Examples []Example
}

// Round holds the decisions of one kyoku. ID identifies the round across
// runs (source file and round index) and is used for holdout splits.
type Round struct {
	ID        string
	Decisions []Decision
}

// NumExamples is the number of candidates over every decision.
func (r *Round) NumExamples() int {
	n := 0
	for _, d := range r.Decisions {
		n += len(d.Examples)
	}
	return n
}

type Metadata struct {
	FeatureNames []string
}

// CheckCompatible returns ErrCatalogMismatch unless names equals the
// stored feature list exactly.
func (m Metadata) CheckCompatible(names []string) error {
	if len(names) != len(m.FeatureNames) {
		return fmt.Errorf("%w: %d stored features, %d in catalog",
			ErrCatalogMismatch, len(m.FeatureNames), len(names))
	}
	for i := range names {
		if names[i] != m.FeatureNames[i] {
			return fmt.Errorf("%w: feature %d is %q, catalog has %q",
				ErrCatalogMismatch, i, m.FeatureNames[i], names[i])
		}
	}
	return nil
}

type Chunk struct {
	Rounds []Round
}
