// Package game tracks the observable state of one mahjong round by
// replaying log actions.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/mjlog"
	"github.com/domino14/hoju/tile"
)

var ErrNoRound = errors.New("action outside of a round")

// Round is the table state of the current kyoku. The zero value is ready
// for a start_kyoku action.
type Round struct {
	started     bool
	bakaze      tile.Tile
	kyoku       int
	honba       int
	oya         int
	doraMarkers []tile.Tile
	players     [NumPlayers]playerState

	lastActor int
	lastTile  tile.Tile
	hasLast   bool
}

func NewRound() *Round {
	return &Round{lastActor: mjlog.NoActor}
}

func checkActor(a mjlog.Action) error {
	if a.Actor < 0 || a.Actor >= NumPlayers {
		return fmt.Errorf("%s: bad actor %d", a.Type, a.Actor)
	}
	return nil
}

// Apply updates the state with one action.
func (r *Round) Apply(a mjlog.Action) error {
	switch a.Type {
	case mjlog.StartGame:
		for i := range r.players {
			r.players[i] = playerState{}
			if i < len(a.Names) {
				r.players[i].name = a.Names[i]
			}
		}
		return nil
	case mjlog.EndGame, mjlog.Hora, mjlog.Ryukyoku:
		return nil
	case mjlog.StartKyoku:
		if len(a.Tehais) != NumPlayers {
			return fmt.Errorf("start_kyoku: %d hands", len(a.Tehais))
		}
		r.started = true
		r.bakaze = a.Bakaze
		r.kyoku, r.honba, r.oya = a.Kyoku, a.Honba, a.Oya
		r.doraMarkers = []tile.Tile{a.DoraMarker}
		for i := range r.players {
			r.players[i].reset(a.Tehais[i])
		}
		r.hasLast = false
		log.Debug().Str("bakaze", a.Bakaze.String()).Int("kyoku", a.Kyoku).
			Int("honba", a.Honba).Msg("start-kyoku")
		return nil
	case mjlog.EndKyoku:
		r.started = false
		return nil
	}

	switch a.Type {
	case mjlog.Dora, mjlog.Tsumo, mjlog.Dahai, mjlog.Reach, mjlog.ReachAccepted,
		mjlog.Chi, mjlog.Pon, mjlog.Daiminkan, mjlog.Kakan, mjlog.Ankan:
	default:
		log.Debug().Str("type", string(a.Type)).Msg("ignoring-action")
		return nil
	}
	if !r.started {
		return fmt.Errorf("%s: %w", a.Type, ErrNoRound)
	}
	if a.Type == mjlog.Dora {
		r.doraMarkers = append(r.doraMarkers, a.DoraMarker)
		return nil
	}
	if err := checkActor(a); err != nil {
		return err
	}

	p := &r.players[a.Actor]
	switch a.Type {
	case mjlog.Tsumo:
		if !a.HasPai {
			return errors.New("tsumo: no tile")
		}
		p.hand = append(p.hand, a.Pai)

	case mjlog.Dahai:
		if !a.HasPai {
			return errors.New("dahai: no tile")
		}
		if err := p.take(a.Pai); err != nil {
			return fmt.Errorf("dahai by %d: %w", a.Actor, err)
		}
		p.discards = append(p.discards, a.Pai)
		p.river = append(p.river, a.Pai)
		for i := range r.players {
			if i != a.Actor && r.players[i].reached {
				r.players[i].passed = append(r.players[i].passed, a.Pai)
			}
		}
		r.lastActor, r.lastTile, r.hasLast = a.Actor, a.Pai, true

	case mjlog.Reach:
		p.reachDeclared = true

	case mjlog.ReachAccepted:
		if !p.reachDeclared {
			return fmt.Errorf("reach_accepted by %d without reach", a.Actor)
		}
		p.reached = true
		p.prereach = append([]tile.Tile(nil), p.discards...)

	case mjlog.Chi, mjlog.Pon, mjlog.Daiminkan:
		if !r.hasLast || a.Target != r.lastActor || a.Pai.RemoveRed() != r.lastTile.RemoveRed() {
			return fmt.Errorf("%s by %d: %v was not just discarded by %d", a.Type, a.Actor, a.Pai, a.Target)
		}
		for _, t := range a.Consumed {
			if err := p.take(t); err != nil {
				return fmt.Errorf("%s by %d: %w", a.Type, a.Actor, err)
			}
		}
		target := &r.players[a.Target]
		target.river = target.river[:len(target.river)-1]
		p.melds = append(p.melds, append(append([]tile.Tile(nil), a.Consumed...), a.Pai))
		r.hasLast = false

	case mjlog.Ankan:
		for _, t := range a.Consumed {
			if err := p.take(t); err != nil {
				return fmt.Errorf("ankan by %d: %w", a.Actor, err)
			}
		}
		p.melds = append(p.melds, append([]tile.Tile(nil), a.Consumed...))

	case mjlog.Kakan:
		if err := p.take(a.Pai); err != nil {
			return fmt.Errorf("kakan by %d: %w", a.Actor, err)
		}
		found := false
		for i, m := range p.melds {
			if len(m) == 3 && m[0].RemoveRed() == a.Pai.RemoveRed() {
				p.melds[i] = append(m, a.Pai)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("kakan by %d: no pon of %v", a.Actor, a.Pai)
		}
	}
	return nil
}

func (r *Round) Bakaze() tile.Tile { return r.bakaze }
func (r *Round) Kyoku() int        { return r.kyoku }
func (r *Round) Honba() int        { return r.honba }
func (r *Round) Oya() int          { return r.oya }
func (r *Round) InProgress() bool  { return r.started }

// Name returns the player's name from start_game.
func (r *Round) Name(seat int) string {
	return r.players[seat].name
}

// Hand returns a copy of the player's concealed tiles.
func (r *Round) Hand(seat int) []tile.Tile {
	return append([]tile.Tile(nil), r.players[seat].hand...)
}

// Reached reports whether the player's reach has been accepted.
func (r *Round) Reached(seat int) bool {
	return r.players[seat].reached
}

// Safe returns the tiles proven safe against a player: their own discards
// and every tile discarded by others since their reach.
func (r *Round) Safe(seat int) []tile.Tile {
	return r.players[seat].safe()
}

// Doras returns the dora tiles indicated so far.
func (r *Round) Doras() []tile.Tile {
	out := make([]tile.Tile, len(r.doraMarkers))
	for i, m := range r.doraMarkers {
		out[i] = tile.DoraFromIndicator(m)
	}
	return out
}

// SeatWind is the player's seat wind tile.
func (r *Round) SeatWind(seat int) tile.Tile {
	return tile.Wind((seat - r.oya + NumPlayers) % NumPlayers)
}

// visibleTo lists every tile the player can see: dora indicators, their
// own concealed hand, every pond and every meld.
func (r *Round) visibleTo(seat int) []tile.Tile {
	var out []tile.Tile
	out = append(out, r.doraMarkers...)
	out = append(out, r.players[seat].hand...)
	for i := range r.players {
		out = append(out, r.players[i].river...)
		for _, m := range r.players[i].melds {
			out = append(out, m...)
		}
	}
	return out
}

// SceneFor snapshots the decision of actor, about to discard, against
// reacher. The reacher must have been accepted.
func (r *Round) SceneFor(actor, reacher int) (*feature.Scene, error) {
	if actor < 0 || actor >= NumPlayers || reacher < 0 || reacher >= NumPlayers {
		return nil, fmt.Errorf("bad seats %d, %d", actor, reacher)
	}
	rp := &r.players[reacher]
	if !rp.reached {
		return nil, fmt.Errorf("player %d has not reached", reacher)
	}
	return feature.NewScene(feature.SceneParams{
		Hand:     r.players[actor].hand,
		Safe:     rp.safe(),
		Visible:  r.visibleTo(actor),
		Doras:    r.Doras(),
		Bakaze:   r.bakaze,
		Jikaze:   r.SeatWind(reacher),
		Prereach: rp.prereach,
	}), nil
}
