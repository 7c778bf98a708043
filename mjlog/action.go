// Package mjlog reads mjai-format replay logs: one JSON action per line.
package mjlog

import (
	"fmt"

	"github.com/domino14/hoju/tile"
)

type ActionType string

const (
	StartGame     ActionType = "start_game"
	StartKyoku    ActionType = "start_kyoku"
	Tsumo         ActionType = "tsumo"
	Dahai         ActionType = "dahai"
	Chi           ActionType = "chi"
	Pon           ActionType = "pon"
	Daiminkan     ActionType = "daiminkan"
	Kakan         ActionType = "kakan"
	Ankan         ActionType = "ankan"
	Dora          ActionType = "dora"
	Reach         ActionType = "reach"
	ReachAccepted ActionType = "reach_accepted"
	Hora          ActionType = "hora"
	Ryukyoku      ActionType = "ryukyoku"
	EndKyoku      ActionType = "end_kyoku"
	EndGame       ActionType = "end_game"
)

// NoActor marks actions without an acting player.
const NoActor = -1

// Action is a single decoded log line. Fields not used by a given type are
// left at their zero values; Actor and Target are NoActor when absent.
type Action struct {
	Type       ActionType
	Actor      int
	Target     int
	Pai        tile.Tile
	HasPai     bool
	Consumed   []tile.Tile
	Tsumogiri  bool
	Bakaze     tile.Tile
	Kyoku      int
	Honba      int
	Oya        int
	DoraMarker tile.Tile
	Tehais     [][]tile.Tile
	Names      []string
}

// rawAction mirrors the JSON layout. Hidden tiles ("?") only appear in
// per-player views of a log and are rejected at conversion time.
type rawAction struct {
	Type       string     `json:"type"`
	Actor      *int       `json:"actor"`
	Target     *int       `json:"target"`
	Pai        string     `json:"pai"`
	Consumed   []string   `json:"consumed"`
	Tsumogiri  bool       `json:"tsumogiri"`
	Bakaze     string     `json:"bakaze"`
	Kyoku      int        `json:"kyoku"`
	Honba      int        `json:"honba"`
	Oya        int        `json:"oya"`
	DoraMarker string     `json:"dora_marker"`
	Tehais     [][]string `json:"tehais"`
	Names      []string   `json:"names"`
}

func (r *rawAction) toAction() (Action, error) {
	a := Action{
		Type:      ActionType(r.Type),
		Actor:     NoActor,
		Target:    NoActor,
		Tsumogiri: r.Tsumogiri,
		Kyoku:     r.Kyoku,
		Honba:     r.Honba,
		Oya:       r.Oya,
		Names:     r.Names,
	}
	if r.Actor != nil {
		a.Actor = *r.Actor
	}
	if r.Target != nil {
		a.Target = *r.Target
	}
	var err error
	if r.Pai != "" {
		if a.Pai, err = tile.Parse(r.Pai); err != nil {
			return a, fmt.Errorf("pai: %w", err)
		}
		a.HasPai = true
	}
	if a.Consumed, err = parseTiles(r.Consumed); err != nil {
		return a, fmt.Errorf("consumed: %w", err)
	}
	if r.Bakaze != "" {
		if a.Bakaze, err = tile.Parse(r.Bakaze); err != nil {
			return a, fmt.Errorf("bakaze: %w", err)
		}
	}
	if r.DoraMarker != "" {
		if a.DoraMarker, err = tile.Parse(r.DoraMarker); err != nil {
			return a, fmt.Errorf("dora_marker: %w", err)
		}
	}
	for i, th := range r.Tehais {
		hand, err := parseTiles(th)
		if err != nil {
			return a, fmt.Errorf("tehais[%d]: %w", i, err)
		}
		a.Tehais = append(a.Tehais, hand)
	}
	return a, nil
}

func parseTiles(ss []string) ([]tile.Tile, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]tile.Tile, len(ss))
	for i, s := range ss {
		t, err := tile.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
