package feature

import (
	"math/bits"
)

const (
	vectorWords = 4
	// MaxFeatures is the widest catalog a Vector can hold.
	MaxFeatures = vectorWords * 64
)

// Vector is a fixed-width bit field; bit i is the value of catalog feature i.
type Vector [vectorWords]uint64

func (v Vector) Bit(i int) bool {
	return v[i>>6]&(1<<(uint(i)&63)) != 0
}

func (v *Vector) set(i int) {
	v[i>>6] |= 1 << (uint(i) & 63)
}

func (v *Vector) clear(i int) {
	v[i>>6] &^= 1 << (uint(i) & 63)
}

// OnesCount is the number of set bits.
func (v Vector) OnesCount() int {
	n := 0
	for _, w := range v {
		n += bits.OnesCount64(w)
	}
	return n
}

// Mask is a compiled Criterion. Positive has ones at features required to
// be true; Negative is all ones except at features required to be false.
type Mask struct {
	Positive Vector
	Negative Vector
}

func allOnes() Vector {
	var v Vector
	for i := range v {
		v[i] = ^uint64(0)
	}
	return v
}

// Matches reports whether v satisfies every assignment of the mask.
func (m *Mask) Matches(v Vector) bool {
	for i := 0; i < vectorWords; i++ {
		if v[i]&m.Positive[i] != m.Positive[i] || v[i]|m.Negative[i] != m.Negative[i] {
			return false
		}
	}
	return true
}
