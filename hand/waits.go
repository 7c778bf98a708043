// Package hand analyses concealed hands for the tiles they wait on.
package hand

import (
	"github.com/domino14/hoju/tile"
)

var kokushiKinds = []int{0, 8, 9, 17, 18, 26, 27, 28, 29, 30, 31, 32, 33}

// Waits returns the tile kinds that would complete the concealed part of a
// tenpai hand. concealed must hold 3n+1 tiles; open melds are implied by
// the shortfall from 13. Seven pairs and thirteen orphans are only
// considered for a full 13-tile concealed hand.
func Waits(concealed []tile.Tile) []tile.Tile {
	if len(concealed)%3 != 1 || len(concealed) > 13 {
		return nil
	}
	counts := tile.NewMultiset(concealed)
	sets := len(concealed) / 3
	var waits []tile.Tile
	for k := 0; k < tile.NumKinds; k++ {
		if counts[k] == 4 {
			// The fifth copy does not exist.
			continue
		}
		counts[k]++
		if isComplete(&counts, sets, len(concealed) == 13) {
			waits = append(waits, tile.FromKind(k))
		}
		counts[k]--
	}
	return waits
}

func isComplete(counts *tile.Multiset, sets int, closed13 bool) bool {
	if closed13 && (isSevenPairs(counts) || isKokushi(counts)) {
		return true
	}
	for k := 0; k < tile.NumKinds; k++ {
		if counts[k] < 2 {
			continue
		}
		counts[k] -= 2
		ok := decompose(counts, 0, sets)
		counts[k] += 2
		if ok {
			return true
		}
	}
	return false
}

// decompose removes triplets and runs greedily from the lowest kind. Taking
// the triplet first is safe: three equal runs cover the same tiles.
func decompose(counts *tile.Multiset, from, sets int) bool {
	k := from
	for k < tile.NumKinds && counts[k] == 0 {
		k++
	}
	if k == tile.NumKinds {
		return sets == 0
	}
	if sets == 0 {
		return false
	}
	if counts[k] >= 3 {
		counts[k] -= 3
		ok := decompose(counts, k, sets-1)
		counts[k] += 3
		if ok {
			return true
		}
	}
	rank := k % 9
	if k < 27 && rank <= 6 && counts[k+1] > 0 && counts[k+2] > 0 {
		counts[k]--
		counts[k+1]--
		counts[k+2]--
		ok := decompose(counts, k, sets-1)
		counts[k]++
		counts[k+1]++
		counts[k+2]++
		return ok
	}
	return false
}

func isSevenPairs(counts *tile.Multiset) bool {
	pairs := 0
	for _, c := range counts {
		switch c {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 7
}

func isKokushi(counts *tile.Multiset) bool {
	pair := false
	total := 0
	for _, k := range kokushiKinds {
		switch counts[k] {
		case 1:
		case 2:
			if pair {
				return false
			}
			pair = true
		default:
			return false
		}
		total += counts[k]
	}
	return pair && total == 14
}
