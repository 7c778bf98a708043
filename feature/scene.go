// Package feature holds the fixed catalog of boolean danger features, the
// Scene snapshot they are evaluated against, and the bit-vector codec used
// to store and match evaluations.
package feature

import (
	"github.com/domino14/hoju/tile"
)

// SceneParams are the raw inputs of a discard decision, seen from the
// discarding player against one reached opponent.
type SceneParams struct {
	// Hand is the discarding player's concealed hand, including the drawn tile.
	Hand []tile.Tile
	// Safe holds tiles known not to deal into the reached opponent.
	Safe []tile.Tile
	// Visible is every tile the discarding player can see.
	Visible []tile.Tile
	// Doras are dora tiles (not indicators).
	Doras  []tile.Tile
	Bakaze tile.Tile
	// Jikaze is the seat wind of the reached opponent.
	Jikaze tile.Tile
	// Prereach is the opponent's discards up to and including the reach
	// declaration tile, oldest first.
	Prereach []tile.Tile
}

// Scene is an immutable snapshot of one discard decision.
type Scene struct {
	hand    tile.Multiset
	safe    tile.Multiset
	visible tile.Multiset
	dora    tile.Multiset
	bakaze  tile.Tile
	jikaze  tile.Tile

	prereach    []tile.Tile
	prereachSet tile.Multiset
	early       tile.Multiset
	late        tile.Multiset
	// prereachFives holds the suited 5s among the pre-reach discards.
	prereachFives tile.Multiset

	reachTile    tile.Tile
	hasReachTile bool
	// reach holds just the reach declaration tile.
	reach tile.Multiset

	candidates []tile.Tile
}

func NewScene(p SceneParams) *Scene {
	s := &Scene{
		hand:    tile.NewMultiset(p.Hand),
		safe:    tile.NewMultiset(p.Safe),
		visible: tile.NewMultiset(p.Visible),
		dora:    tile.NewMultiset(p.Doras),
		bakaze:  p.Bakaze.RemoveRed(),
		jikaze:  p.Jikaze.RemoveRed(),
	}
	s.prereach = make([]tile.Tile, len(p.Prereach))
	for i, t := range p.Prereach {
		s.prereach[i] = t.RemoveRed()
	}
	half := len(s.prereach) / 2
	s.early = tile.NewMultiset(s.prereach[:half])
	s.late = tile.NewMultiset(s.prereach[half:])
	s.prereachSet = tile.NewMultiset(s.prereach)
	for _, t := range s.prereach {
		if t.IsNumber() && t.Rank == 5 {
			s.prereachFives.Add(t)
		}
	}
	if n := len(s.prereach); n > 0 {
		s.reachTile = s.prereach[n-1]
		s.hasReachTile = true
		s.reach.Add(s.reachTile)
	}
	for _, t := range s.hand.Kinds() {
		if !s.safe.Has(t) {
			s.candidates = append(s.candidates, t)
		}
	}
	return s
}

// Candidates are the distinct normalized hand tiles not already known to
// be safe, in kind order.
func (s *Scene) Candidates() []tile.Tile {
	out := make([]tile.Tile, len(s.candidates))
	copy(out, s.candidates)
	return out
}

func (s *Scene) Hand() tile.Multiset    { return s.hand }
func (s *Scene) Safe() tile.Multiset    { return s.safe }
func (s *Scene) Visible() tile.Multiset { return s.visible }
func (s *Scene) Dora() tile.Multiset    { return s.dora }
func (s *Scene) Early() tile.Multiset   { return s.early }
func (s *Scene) Late() tile.Multiset    { return s.late }
func (s *Scene) Bakaze() tile.Tile      { return s.bakaze }
func (s *Scene) Jikaze() tile.Tile      { return s.jikaze }
func (s *Scene) NumPrereach() int       { return len(s.prereach) }

func (s *Scene) ReachTile() (tile.Tile, bool) {
	return s.reachTile, s.hasReachTile
}

func (s *Scene) Prereach() []tile.Tile {
	out := make([]tile.Tile, len(s.prereach))
	copy(out, s.prereach)
	return out
}
