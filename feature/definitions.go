package feature

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/domino14/hoju/tile"
)

// defaultCatalog is built once at start and never modified.
var defaultCatalog = buildDefault()

// Default returns the standard danger catalog.
func Default() *Catalog {
	return defaultCatalog
}

type setFunc func(s *Scene) *tile.Multiset

func prereachSet(s *Scene) *tile.Multiset { return &s.prereachSet }
func earlySet(s *Scene) *tile.Multiset    { return &s.early }
func lateSet(s *Scene) *tile.Multiset     { return &s.late }
func reachSet(s *Scene) *tile.Multiset    { return &s.reach }

// has reports whether the tile n ranks from t is in m.
func has(m *tile.Multiset, t tile.Tile, n int) bool {
	o, ok := t.Offset(n)
	return ok && m.Has(o)
}

func count(m *tile.Multiset, t tile.Tile, n int) int {
	o, ok := t.Offset(n)
	if !ok {
		return 0
	}
	return m.Count(o)
}

// anyOffset reports whether any tile at one of the offsets from t is in m.
func anyOffset(m *tile.Multiset, t tile.Tile, offsets ...int) bool {
	for _, n := range offsets {
		if has(m, t, n) {
			return true
		}
	}
	return false
}

// suji: 1-3 need +3, 7-9 need -3, 4-6 need both.
func suji(m *tile.Multiset, t tile.Tile) bool {
	switch {
	case t.Rank <= 3:
		return has(m, t, 3)
	case t.Rank >= 7:
		return has(m, t, -3)
	default:
		return has(m, t, -3) && has(m, t, 3)
	}
}

func weakSuji(m *tile.Multiset, t tile.Tile) bool {
	return anyOffset(m, t, -3, 3)
}

func rankOf(t tile.Tile, r int) (tile.Tile, bool) {
	if r < 1 || r > 9 {
		return tile.Tile{}, false
	}
	return tile.Tile{Suit: t.Suit, Rank: uint8(r)}, true
}

// liveSujis returns the lower ends of the sujis (s, s+3) through t that
// lie inside 1-9 and have neither end safe.
func liveSujis(s *Scene, t tile.Tile) ([2]int, int) {
	var out [2]int
	n := 0
	for _, low := range [2]int{int(t.Rank) - 3, int(t.Rank)} {
		a, okA := rankOf(t, low)
		b, okB := rankOf(t, low+3)
		if !okA || !okB || s.safe.Has(a) || s.safe.Has(b) {
			continue
		}
		out[n] = low
		n++
	}
	return out, n
}

// sujiPattern reports whether m holds the tile at one of offsets from the
// lower end of a live suji of t.
func sujiPattern(s *Scene, m *tile.Multiset, t tile.Tile, offsets ...int) bool {
	los, n := liveSujis(s, t)
	for _, low := range los[:n] {
		for _, off := range offsets {
			if o, ok := rankOf(t, low+off); ok && m.Has(o) {
				return true
			}
		}
	}
	return false
}

// For a live suji (s, s+3) of t, a discard of s-1 or s+4 makes t urasuji.
func urasuji(s *Scene, m *tile.Multiset, t tile.Tile) bool {
	return sujiPattern(s, m, t, -1, 4)
}

// s+1 or s+2: matagisuji.
func matagisuji(s *Scene, m *tile.Multiset, t tile.Tile) bool {
	return sujiPattern(s, m, t, 1, 2)
}

// s-2 or s+5: senkisuji.
func senkisuji(s *Scene, m *tile.Multiset, t tile.Tile) bool {
	return sujiPattern(s, m, t, -2, 5)
}

// Discards d and d+5 make d+1 and d+4 dangerous.
func aida4ken(_ *Scene, m *tile.Multiset, t tile.Tile) bool {
	return (has(m, t, -1) && has(m, t, 4)) || (has(m, t, 1) && has(m, t, -4))
}

// outer: some same-suit discard lies between t and the center, or t is
// on either side of a discarded 5.
func outer(m *tile.Multiset, t tile.Tile) bool {
	for r := 1; r <= 9; r++ {
		if !m.Has(tile.Tile{Suit: t.Suit, Rank: uint8(r)}) {
			continue
		}
		tr := int(t.Rank)
		if (r <= 5 && tr < r) || (r >= 5 && tr > r) {
			return true
		}
	}
	return false
}

// nOuter: t is exactly n ranks from a same-suit discard, towards the terminal.
func nOuter(m *tile.Multiset, t tile.Tile, n int) bool {
	// Discard d = t+n with d <= 5, or d = t-n with d >= 5.
	return (int(t.Rank)+n <= 5 && has(m, t, n)) || (int(t.Rank)-n >= 5 && has(m, t, -n))
}

// nInner: the same-suit discard n ranks towards the terminal of t; 5 looks
// upwards.
func nInner(m *tile.Multiset, t tile.Tile, n int) bool {
	if t.Rank < 5 {
		return has(m, t, -n)
	}
	return has(m, t, n)
}

// neighborsAtLeast: at least n distinct ranks within d of t (t included)
// are in m.
func neighborsAtLeast(m *tile.Multiset, t tile.Tile, d, n int) bool {
	found := 0
	for off := -d; off <= d; off++ {
		if has(m, t, off) {
			found++
		}
	}
	return found >= n
}

// sujiPartners returns the counts in m of the in-range suji partners of
// t.
func sujiPartners(m *tile.Multiset, t tile.Tile) []int {
	var out []int
	for _, off := range [2]int{-3, 3} {
		if o, ok := t.Offset(off); ok {
			out = append(out, m.Count(o))
		}
	}
	return out
}

// chancesAtMost: for 1-3 (7-9), one of the two tiles above (below) is
// visible at least 4-n times, limiting the two-sided waits through t.
func chancesAtMost(s *Scene, t tile.Tile, n int) bool {
	if t.Rank >= 4 && t.Rank <= 6 {
		return false
	}
	dir := 1
	if t.Rank >= 7 {
		dir = -1
	}
	for i := 1; i <= 2; i++ {
		if count(&s.visible, t, dir*i) >= 4-n {
			return true
		}
	}
	return false
}

// visibleOthers counts visible copies of t besides the one being
// discarded, which is in the hand and so always visible.
func visibleOthers(s *Scene, t tile.Tile) int {
	return max(s.visible.Count(t)-1, 0)
}

func isFanpai(s *Scene, t tile.Tile) bool {
	return t.IsDragon() || t == s.bakaze || t == s.jikaze
}

func inBand(t tile.Tile, from int) bool {
	return int(t.Rank) >= from && int(t.Rank) <= 10-from
}

func doraOffset(s *Scene, t tile.Tile, offsets ...int) bool {
	return anyOffset(&s.dora, t, offsets...)
}

// sameSuitCount counts copies of t's suit.
func sameSuitCount(m *tile.Multiset, t tile.Tile) int {
	return m.SuitCount(t.Suit)
}

// sameSuitRanks counts distinct ranks of t's suit.
func sameSuitRanks(m *tile.Multiset, t tile.Tile) int {
	return m.SuitRanks(t.Suit)
}

func buildDefault() *Catalog {
	b := NewBuilder()

	b.Add("tsupai", "honor tile", func(s *Scene, t tile.Tile) bool { return t.IsHonor() })
	b.Add("fonpai", "wind tile", func(s *Scene, t tile.Tile) bool { return t.IsWind() })
	b.Add("sangenpai", "dragon tile", func(s *Scene, t tile.Tile) bool { return t.IsDragon() })
	b.Add("fanpai", "value honor for the reached player: dragon, round wind or seat wind", isFanpai)
	b.Add("ryenfonpai", "both round wind and seat wind", func(s *Scene, t tile.Tile) bool {
		return t == s.bakaze && t == s.jikaze
	})
	b.Add("bakaze", "round wind", func(s *Scene, t tile.Tile) bool { return t == s.bakaze })
	b.Add("jikaze", "seat wind of the reached player", func(s *Scene, t tile.Tile) bool { return t == s.jikaze })
	b.Add("dora", "dora tile", func(s *Scene, t tile.Tile) bool { return s.dora.Has(t) })
	b.AddNumeric("dora_suji", "three ranks from a dora", func(s *Scene, t tile.Tile) bool {
		return doraOffset(s, t, -3, 3)
	})
	b.AddNumeric("dora_matagi", "matagisuji of a dora", func(s *Scene, t tile.Tile) bool {
		return matagisuji(s, &s.dora, t)
	})

	for r := 1; r <= 9; r++ {
		r := r
		b.AddNumeric(fmt.Sprintf("n=%d", r), fmt.Sprintf("rank is %d", r), func(s *Scene, t tile.Tile) bool {
			return int(t.Rank) == r
		})
	}
	for from := 2; from <= 5; from++ {
		from := from
		b.AddNumeric(fmt.Sprintf("%d<=n<=%d", from, 10-from),
			fmt.Sprintf("rank between %d and %d", from, 10-from),
			func(s *Scene, t tile.Tile) bool { return inBand(t, from) })
	}
	for a := 1; a <= 6; a++ {
		a := a
		b.AddNumeric(fmt.Sprintf("n=%dor%d", a, a+3),
			fmt.Sprintf("rank is %d or %d", a, a+3),
			func(s *Scene, t tile.Tile) bool { return int(t.Rank) == a || int(t.Rank) == a+3 })
	}

	b.AddNumeric("suji", "suji of safe tiles (both sides for 4-6)", func(s *Scene, t tile.Tile) bool {
		return suji(&s.safe, t)
	})
	b.AddNumeric("weak_suji", "suji of a safe tile on at least one side", func(s *Scene, t tile.Tile) bool {
		return weakSuji(&s.safe, t)
	})
	b.AddNumeric("prereach_suji", "suji of pre-reach discards", func(s *Scene, t tile.Tile) bool {
		return suji(&s.prereachSet, t)
	})
	b.AddNumeric("weak_prereach_suji", "one-sided suji of a pre-reach discard", func(s *Scene, t tile.Tile) bool {
		return weakSuji(&s.prereachSet, t)
	})
	b.AddNumeric("early_suji", "suji of discards in the early half", func(s *Scene, t tile.Tile) bool {
		return suji(&s.early, t)
	})
	b.AddNumeric("late_suji", "suji of discards in the late half", func(s *Scene, t tile.Tile) bool {
		return suji(&s.late, t)
	})
	b.AddNumeric("reach_suji", "three ranks from the reach declaration tile", func(s *Scene, t tile.Tile) bool {
		return weakSuji(&s.reach, t)
	})

	type scoped struct {
		prefix string
		doc    string
		set    setFunc
	}
	scopes := []scoped{
		{"", "pre-reach discards", prereachSet},
		{"early_", "early-half discards", earlySet},
		{"late_", "late-half discards", lateSet},
		{"reach_", "the reach declaration tile", reachSet},
	}
	patterns := []struct {
		name string
		doc  string
		fn   func(s *Scene, m *tile.Multiset, t tile.Tile) bool
	}{
		{"urasuji", "urasuji (s-1 or s+4 of a live suji s) of", urasuji},
		{"aida4ken", "between an aida4ken pair (d, d+5) of", aida4ken},
		{"matagisuji", "matagisuji (s+1 or s+2 of a live suji s) of", matagisuji},
		{"senkisuji", "senkisuji (s-2 or s+5 of a live suji s) of", senkisuji},
	}
	for _, p := range patterns {
		for _, sc := range scopes {
			if p.name == "aida4ken" && sc.prefix == "reach_" {
				// A single tile cannot form a pair.
				continue
			}
			p, sc := p, sc
			b.AddNumeric(sc.prefix+p.name, p.doc+" "+sc.doc, func(s *Scene, t tile.Tile) bool {
				return p.fn(s, sc.set(s), t)
			})
		}
	}
	b.AddNumeric("urasuji_of_5", "urasuji of a pre-reach 5", func(s *Scene, t tile.Tile) bool {
		return urasuji(s, &s.prereachFives, t)
	})

	outerNames := map[string]string{"": "prereach", "early_": "early", "late_": "late", "reach_": "reach"}
	for _, sc := range scopes {
		sc := sc
		b.AddNumeric("outer_"+outerNames[sc.prefix]+"_sutehai", "outside (towards the terminal) of "+sc.doc,
			func(s *Scene, t tile.Tile) bool { return outer(sc.set(s), t) })
	}
	for n := 1; n <= 3; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("%d_outer_prereach_sutehai", n),
			fmt.Sprintf("%d ranks outside a pre-reach discard", n),
			func(s *Scene, t tile.Tile) bool { return nOuter(&s.prereachSet, t, n) })
	}
	for n := 1; n <= 3; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("%d_inner_prereach_sutehai", n),
			fmt.Sprintf("%d ranks inside a pre-reach discard", n),
			func(s *Scene, t tile.Tile) bool { return nInner(&s.prereachSet, t, n) })
	}
	for i := 1; i <= 2; i++ {
		for j := 1; j <= 2*i; j++ {
			i, j := i, j
			b.AddNumeric(fmt.Sprintf("+-%d_in_prereach_sutehais>=%d", i, j),
				fmt.Sprintf("at least %d ranks within %d of the tile discarded before reach", j, i),
				func(s *Scene, t tile.Tile) bool { return neighborsAtLeast(&s.prereachSet, t, i, j) })
		}
	}

	for n := 0; n <= 3; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("chances<=%d", n),
			fmt.Sprintf("a wall tile next to the outer tile leaves at most %d copies", n),
			func(s *Scene, t tile.Tile) bool { return chancesAtMost(s, t, n) })
	}
	for n := 1; n <= 3; n++ {
		n := n
		b.Add(fmt.Sprintf("visible>=%d", n), fmt.Sprintf("at least %d other copies visible", n),
			func(s *Scene, t tile.Tile) bool { return visibleOthers(s, t) >= n })
	}
	for n := 2; n <= 4; n++ {
		n := n
		b.Add(fmt.Sprintf("in_tehais>=%d", n), fmt.Sprintf("at least %d copies in hand", n),
			func(s *Scene, t tile.Tile) bool { return s.hand.Count(t) >= n })
	}
	for n := 1; n <= 4; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("suji_in_tehais>=%d", n), fmt.Sprintf("one suji partner held at least %d times", n),
			func(s *Scene, t tile.Tile) bool {
				return lo.SomeBy(sujiPartners(&s.hand, t), func(c int) bool { return c >= n })
			})
	}
	for n := 1; n <= 8; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("same_type_in_prereach>=%d", n),
			fmt.Sprintf("at least %d ranks of the suit among pre-reach discards", n),
			func(s *Scene, t tile.Tile) bool { return sameSuitRanks(&s.prereachSet, t) >= n })
	}
	for n := 1; n <= 4; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("same_type_in_early>=%d", n),
			fmt.Sprintf("at least %d ranks of the suit among early-half discards", n),
			func(s *Scene, t tile.Tile) bool { return sameSuitRanks(&s.early, t) >= n })
	}
	for n := 1; n <= 4; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("same_type_in_late>=%d", n),
			fmt.Sprintf("at least %d ranks of the suit among late-half discards", n),
			func(s *Scene, t tile.Tile) bool { return sameSuitRanks(&s.late, t) >= n })
	}
	for n := 4; n <= 18; n += 2 {
		n := n
		b.Add(fmt.Sprintf("prereach_sutehais>=%d", n), fmt.Sprintf("reach declared after at least %d discards", n),
			func(s *Scene, t tile.Tile) bool { return len(s.prereach) >= n })
	}
	for n := 4; n <= 16; n += 4 {
		n := n
		b.AddNumeric(fmt.Sprintf("visible_same_type>=%d", n), fmt.Sprintf("at least %d same-suit tiles visible", n),
			func(s *Scene, t tile.Tile) bool { return sameSuitCount(&s.visible, t) >= n })
	}
	for n := 2; n <= 8; n += 2 {
		n := n
		b.AddNumeric(fmt.Sprintf("same_type_in_tehais>=%d", n), fmt.Sprintf("at least %d same-suit tiles in hand", n),
			func(s *Scene, t tile.Tile) bool { return sameSuitCount(&s.hand, t) >= n })
	}
	for i := 1; i <= 2; i++ {
		for _, n := range []int{4, 6} {
			i, n := i, n
			b.AddNumeric(fmt.Sprintf("+-%d_visible>=%d", i, n),
				fmt.Sprintf("at least %d visible tiles %d ranks away", n, i),
				func(s *Scene, t tile.Tile) bool { return count(&s.visible, t, -i)+count(&s.visible, t, i) >= n })
		}
	}
	for n := 0; n <= 3; n++ {
		n := n
		b.AddNumeric(fmt.Sprintf("suji_visible<=%d", n), fmt.Sprintf("one suji partner visible at most %d times", n),
			func(s *Scene, t tile.Tile) bool {
				return lo.SomeBy(sujiPartners(&s.visible, t), func(c int) bool { return c <= n })
			})
	}

	b.AddNumeric("same_type_as_reach_tile", "same suit as the reach declaration tile", func(s *Scene, t tile.Tile) bool {
		return s.hasReachTile && s.reachTile.IsNumber() && s.reachTile.Suit == t.Suit
	})
	b.AddNumeric("reach_tile_neighbor", "one rank from the reach declaration tile", func(s *Scene, t tile.Tile) bool {
		return anyOffset(&s.reach, t, -1, 1)
	})
	b.Add("reach_tile_tsupai", "reach declared with an honor", func(s *Scene, t tile.Tile) bool {
		return s.hasReachTile && s.reachTile.IsHonor()
	})
	b.Add("reach_tile_yaochu", "reach declared with a terminal or honor", func(s *Scene, t tile.Tile) bool {
		return s.hasReachTile && s.reachTile.IsYaochu()
	})
	b.Add("reach_tile_dora", "reach declared with a dora", func(s *Scene, t tile.Tile) bool {
		return s.hasReachTile && s.dora.Has(s.reachTile)
	})
	b.Add("reach_tile_inner", "reach declared with a 2-8", func(s *Scene, t tile.Tile) bool {
		return s.hasReachTile && s.reachTile.IsNumber() && inBand(s.reachTile, 2)
	})
	for _, n := range []int{2, 3} {
		n := n
		b.Add(fmt.Sprintf("dora_count>=%d", n), fmt.Sprintf("at least %d dora", n),
			func(s *Scene, t tile.Tile) bool { return s.dora.Len() >= n })
	}
	for _, n := range []int{10, 15, 20} {
		n := n
		b.Add(fmt.Sprintf("safe_kinds>=%d", n), fmt.Sprintf("at least %d safe tile kinds", n),
			func(s *Scene, t tile.Tile) bool { return len(s.safe.Kinds()) >= n })
	}

	bases := []struct {
		name string
		fn   func(s *Scene, t tile.Tile) bool
	}{
		{"suji", func(s *Scene, t tile.Tile) bool { return suji(&s.safe, t) }},
		{"weak_suji", func(s *Scene, t tile.Tile) bool { return weakSuji(&s.safe, t) }},
		{"prereach_suji", func(s *Scene, t tile.Tile) bool { return suji(&s.prereachSet, t) }},
		{"urasuji", func(s *Scene, t tile.Tile) bool { return urasuji(s, &s.prereachSet, t) }},
		{"matagisuji", func(s *Scene, t tile.Tile) bool { return matagisuji(s, &s.prereachSet, t) }},
		{"senkisuji", func(s *Scene, t tile.Tile) bool { return senkisuji(s, &s.prereachSet, t) }},
		{"outer_prereach_sutehai", func(s *Scene, t tile.Tile) bool { return outer(&s.prereachSet, t) }},
	}
	for _, base := range bases {
		for from := 2; from <= 4; from++ {
			base, from := base, from
			b.AddNumeric(fmt.Sprintf("%s&%d<=n<=%d", base.name, from, 10-from),
				fmt.Sprintf("%s and rank between %d and %d", base.name, from, 10-from),
				func(s *Scene, t tile.Tile) bool { return inBand(t, from) && base.fn(s, t) })
		}
	}
	for n := 1; n <= 3; n++ {
		n := n
		b.Add(fmt.Sprintf("tsupai&visible>=%d", n), fmt.Sprintf("honor with at least %d other copies visible", n),
			func(s *Scene, t tile.Tile) bool { return t.IsHonor() && visibleOthers(s, t) >= n })
	}
	for n := 1; n <= 2; n++ {
		n := n
		b.Add(fmt.Sprintf("fanpai&visible>=%d", n), fmt.Sprintf("value honor with at least %d other copies visible", n),
			func(s *Scene, t tile.Tile) bool { return isFanpai(s, t) && visibleOthers(s, t) >= n })
	}

	return b.Build()
}
