package game

import (
	"fmt"

	"github.com/domino14/hoju/tile"
)

// NumPlayers is the table size.
const NumPlayers = 4

type playerState struct {
	name string
	// concealed tiles, in draw order
	hand []tile.Tile
	// every tile discarded this round, called or not
	discards []tile.Tile
	// discards still lying in the pond
	river []tile.Tile
	melds [][]tile.Tile

	reachDeclared bool
	reached       bool
	// discards at the moment reach was accepted
	prereach []tile.Tile
	// tiles discarded by others after this player's reach
	passed []tile.Tile
}

func (p *playerState) reset(hand []tile.Tile) {
	name := p.name
	*p = playerState{name: name, hand: append([]tile.Tile(nil), hand...)}
}

// take removes one copy of t from the concealed hand. An exact match is
// preferred; a plain five stands in for a red five and vice versa only
// when no exact copy exists.
func (p *playerState) take(t tile.Tile) error {
	idx := -1
	for i, h := range p.hand {
		if h == t {
			idx = i
			break
		}
		if idx < 0 && h.RemoveRed() == t.RemoveRed() {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("%v not in hand %v", t, tile.Join(p.hand))
	}
	p.hand = append(p.hand[:idx], p.hand[idx+1:]...)
	return nil
}

// safe is the set of tiles proven safe against this player.
func (p *playerState) safe() []tile.Tile {
	out := make([]tile.Tile, 0, len(p.discards)+len(p.passed))
	out = append(out, p.discards...)
	return append(out, p.passed...)
}
