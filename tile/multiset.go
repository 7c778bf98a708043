package tile

// Multiset counts tiles by kind. Red fives are counted as plain fives.
type Multiset [NumKinds]int

func NewMultiset(tiles []Tile) Multiset {
	var m Multiset
	for _, t := range tiles {
		m[t.Kind()]++
	}
	return m
}

func (m *Multiset) Add(t Tile) {
	m[t.Kind()]++
}

// Remove decrements the count of t. It returns false if t was absent.
func (m *Multiset) Remove(t Tile) bool {
	k := t.Kind()
	if m[k] == 0 {
		return false
	}
	m[k]--
	return true
}

func (m *Multiset) Count(t Tile) int {
	return m[t.Kind()]
}

func (m *Multiset) Has(t Tile) bool {
	return m[t.Kind()] > 0
}

// Len is the total number of tiles.
func (m *Multiset) Len() int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// Kinds returns one normalized tile per kind present, in kind order.
func (m *Multiset) Kinds() []Tile {
	var out []Tile
	for k, c := range m {
		if c > 0 {
			out = append(out, FromKind(k))
		}
	}
	return out
}

// SuitCount is the number of tiles of the given suit.
func (m *Multiset) SuitCount(s Suit) int {
	n := 0
	lo, hi := int(s)*9, int(s)*9+9
	if s == Honor {
		hi = NumKinds
	}
	for k := lo; k < hi; k++ {
		n += m[k]
	}
	return n
}

// SuitRanks is the number of distinct kinds of the given suit present.
func (m *Multiset) SuitRanks(s Suit) int {
	n := 0
	lo, hi := int(s)*9, int(s)*9+9
	if s == Honor {
		hi = NumKinds
	}
	for k := lo; k < hi; k++ {
		if m[k] > 0 {
			n++
		}
	}
	return n
}

// Tiles expands the multiset into a sorted slice of normalized tiles.
func (m *Multiset) Tiles() []Tile {
	var out []Tile
	for k, c := range m {
		for i := 0; i < c; i++ {
			out = append(out, FromKind(k))
		}
	}
	return out
}
