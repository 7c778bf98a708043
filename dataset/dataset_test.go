package dataset

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/hoju/feature"
)

var names = []string{"a", "b", "c"}

func makeRounds(n int) []Round {
	rounds := make([]Round, n)
	for i := range rounds {
		var v feature.Vector
		v[0] = uint64(i)
		v[3] = uint64(i) << 40
		rounds[i] = Round{
			ID: "r" + string(rune('a'+i%26)),
			Decisions: []Decision{
				{Examples: []Example{{Vector: v, Hit: i%2 == 0}, {Vector: v}}},
				{Examples: []Example{{Vector: v, Hit: true}}},
			},
		}
	}
	return rounds
}

func TestRoundTripChunks(t *testing.T) {
	is := is.New(t)
	rounds := makeRounds(25)
	data, err := Encode(names, 10, rounds)
	is.NoErr(err)

	r, err := data.Open()
	is.NoErr(err)
	is.Equal(r.Metadata().FeatureNames, names)

	var sizes []int
	var got []Round
	for {
		c, err := r.Next()
		if err == io.EOF {
			break
		}
		is.NoErr(err)
		sizes = append(sizes, len(c.Rounds))
		got = append(got, c.Rounds...)
	}
	is.Equal(sizes, []int{10, 10, 5})
	is.Equal(got, rounds)
	// EOF is sticky.
	_, err = r.Next()
	is.Equal(err, io.EOF)
}

func TestEmptyDataset(t *testing.T) {
	is := is.New(t)
	data, err := Encode(names, 0, nil)
	is.NoErr(err)
	r, err := data.Open()
	is.NoErr(err)
	_, err = r.Next()
	is.Equal(err, io.EOF)
}

func TestTruncatedMetadata(t *testing.T) {
	is := is.New(t)
	_, err := Bytes(nil).Open()
	is.True(errors.Is(err, io.ErrUnexpectedEOF))
}

func TestCheckCompatible(t *testing.T) {
	m := Metadata{FeatureNames: names}
	assert.NoError(t, m.CheckCompatible([]string{"a", "b", "c"}))
	assert.ErrorIs(t, m.CheckCompatible([]string{"a", "c", "b"}), ErrCatalogMismatch)
	assert.ErrorIs(t, m.CheckCompatible([]string{"a", "b"}), ErrCatalogMismatch)
}

func TestFileEach(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "train.dat")
	w, err := Create(path, names, 3)
	is.NoErr(err)
	rounds := makeRounds(7)
	for _, r := range rounds {
		is.NoErr(w.Write(r))
	}
	is.Equal(w.Rounds(), 7)
	is.NoErr(w.Close())

	// Two passes use independent cursors.
	for pass := 0; pass < 2; pass++ {
		var ids []string
		err = Each(File(path), names, func(r *Round) error {
			ids = append(ids, r.ID)
			return nil
		})
		is.NoErr(err)
		is.Equal(len(ids), 7)
		is.Equal(ids[6], rounds[6].ID)
	}

	err = Each(File(path), []string{"x"}, func(*Round) error { return nil })
	is.True(errors.Is(err, ErrCatalogMismatch))
}

func TestEachStopsOnCallbackError(t *testing.T) {
	data, err := Encode(names, 2, makeRounds(5))
	assert.NoError(t, err)
	stop := errors.New("stop")
	n := 0
	err = Each(data, names, func(*Round) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, n)
}

func TestNumExamples(t *testing.T) {
	r := makeRounds(1)[0]
	assert.Equal(t, 3, r.NumExamples())
}
