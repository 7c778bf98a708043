// Package tile models riichi mahjong tiles in mjai notation.
package tile

import (
	"errors"
	"fmt"
	"strings"
)

type Suit uint8

const (
	Man Suit = iota
	Pin
	Sou
	Honor
)

const (
	// NumKinds is the number of distinct tile kinds, ignoring red fives.
	NumKinds = 34

	East  = 1
	South = 2
	West  = 3
	North = 4
	Haku  = 5
	Hatsu = 6
	Chun  = 7
)

var ErrBadTile = errors.New("bad tile")

var honorLetters = []string{"", "E", "S", "W", "N", "P", "F", "C"}

var suitLetters = []byte{'m', 'p', 's'}

// Tile is a single tile. Honors use Ranks 1-7 in the order E S W N P F C.
type Tile struct {
	Suit Suit
	Rank uint8
	Red  bool
}

// Parse parses mjai notation, e.g. "3m", "5pr", "E", "C".
func Parse(s string) (Tile, error) {
	for i := 1; i < len(honorLetters); i++ {
		if s == honorLetters[i] {
			return Tile{Suit: Honor, Rank: uint8(i)}, nil
		}
	}
	if len(s) < 2 || len(s) > 3 {
		return Tile{}, fmt.Errorf("%w: %q", ErrBadTile, s)
	}
	if s[0] < '1' || s[0] > '9' {
		return Tile{}, fmt.Errorf("%w: %q", ErrBadTile, s)
	}
	t := Tile{Rank: s[0] - '0'}
	switch s[1] {
	case 'm':
		t.Suit = Man
	case 'p':
		t.Suit = Pin
	case 's':
		t.Suit = Sou
	default:
		return Tile{}, fmt.Errorf("%w: %q", ErrBadTile, s)
	}
	if len(s) == 3 {
		if s[2] != 'r' || t.Rank != 5 {
			return Tile{}, fmt.Errorf("%w: %q", ErrBadTile, s)
		}
		t.Red = true
	}
	return t, nil
}

// MustParse is like Parse but panics. Meant for tests and static tables.
func MustParse(s string) Tile {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseList parses a whitespace- or comma-separated list of tiles. It also
// accepts compact runs like "123m456p77s".
func ParseList(s string) ([]Tile, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	var tiles []Tile
	for _, f := range fields {
		if t, err := Parse(f); err == nil {
			tiles = append(tiles, t)
			continue
		}
		run, err := parseCompact(f)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, run...)
	}
	return tiles, nil
}

func parseCompact(s string) ([]Tile, error) {
	var tiles []Tile
	var digits []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == 'm' || c == 'p' || c == 's':
			if len(digits) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrBadTile, s)
			}
			for _, d := range digits {
				red := false
				if d == '0' {
					d, red = '5', true
				}
				t, err := Parse(string([]byte{d, c}))
				if err != nil {
					return nil, err
				}
				t.Red = red
				tiles = append(tiles, t)
			}
			digits = digits[:0]
		default:
			t, err := Parse(string(c))
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadTile, s)
			}
			tiles = append(tiles, t)
		}
	}
	if len(digits) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadTile, s)
	}
	return tiles, nil
}

func (t Tile) String() string {
	if t.Suit == Honor {
		if int(t.Rank) < len(honorLetters) {
			return honorLetters[t.Rank]
		}
		return "?"
	}
	s := fmt.Sprintf("%d%c", t.Rank, suitLetters[t.Suit])
	if t.Red {
		s += "r"
	}
	return s
}

// RemoveRed returns the tile with the red-five flag cleared.
func (t Tile) RemoveRed() Tile {
	t.Red = false
	return t
}

func (t Tile) IsNumber() bool { return t.Suit != Honor }
func (t Tile) IsHonor() bool  { return t.Suit == Honor }
func (t Tile) IsWind() bool   { return t.Suit == Honor && t.Rank <= North }
func (t Tile) IsDragon() bool { return t.Suit == Honor && t.Rank >= Haku }

// IsYaochu is true for terminals and honors.
func (t Tile) IsYaochu() bool {
	return t.Suit == Honor || t.Rank == 1 || t.Rank == 9
}

// Kind returns the 0-33 index of the tile, with red fives folded in.
func (t Tile) Kind() int {
	return int(t.Suit)*9 + int(t.Rank) - 1
}

func FromKind(k int) Tile {
	return Tile{Suit: Suit(k / 9), Rank: uint8(k%9 + 1)}
}

// Offset returns the tile n ranks away in the same numbered suit. ok is
// false for honors or when the rank would fall outside 1-9.
func (t Tile) Offset(n int) (Tile, bool) {
	if t.Suit == Honor {
		return Tile{}, false
	}
	r := int(t.Rank) + n
	if r < 1 || r > 9 {
		return Tile{}, false
	}
	return Tile{Suit: t.Suit, Rank: uint8(r)}, true
}

// DoraFromIndicator returns the dora tile shown by the given indicator.
func DoraFromIndicator(ind Tile) Tile {
	ind = ind.RemoveRed()
	switch {
	case ind.IsNumber():
		return Tile{Suit: ind.Suit, Rank: ind.Rank%9 + 1}
	case ind.IsWind():
		return Tile{Suit: Honor, Rank: ind.Rank%4 + 1}
	default:
		return Tile{Suit: Honor, Rank: (ind.Rank-Haku+1)%3 + Haku}
	}
}

// Wind returns the wind tile for a seat offset from the dealer (0 = East).
func Wind(seat int) Tile {
	return Tile{Suit: Honor, Rank: uint8(seat%4 + 1)}
}

func Join(tiles []Tile) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
