// Package testhelpers holds replay fixtures shared by package tests.
package testhelpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/domino14/hoju/tile"
)

// ReachRound is one mjai round. Seat 0 reaches on its second turn
// waiting on 4s and 7s; seats 1 and 2 each discard once afterwards and seat
// 2 deals in with 4s.
const ReachRound = `{"type":"start_kyoku","bakaze":"E","kyoku":1,"honba":0,"kyotaku":0,"oya":0,"dora_marker":"3p","tehais":[["1m","2m","3m","4p","5p","6p","7s","8s","9s","E","E","5s","N"],["1p","1p","9m","9m","3s","4s","2p","3p","W","W","S","C","C"],["2m","4m","6m","8m","1s","2s","3s","P","P","F","F","9p","9p"],["1m","1m","5m","5m","7m","7m","3p","3p","6s","6s","8p","8p","S"]]}
{"type":"tsumo","actor":0,"pai":"9p"}
{"type":"dahai","actor":0,"pai":"9p","tsumogiri":true}
{"type":"tsumo","actor":1,"pai":"F"}
{"type":"dahai","actor":1,"pai":"F","tsumogiri":true}
{"type":"tsumo","actor":2,"pai":"1m"}
{"type":"dahai","actor":2,"pai":"1m","tsumogiri":true}
{"type":"tsumo","actor":3,"pai":"5m"}
{"type":"dahai","actor":3,"pai":"5m","tsumogiri":true}
{"type":"tsumo","actor":0,"pai":"6s"}
{"type":"reach","actor":0}
{"type":"dahai","actor":0,"pai":"N","tsumogiri":false}
{"type":"reach_accepted","actor":0,"deltas":[-1000,0,0,0],"scores":[24000,25000,25000,25000]}
{"type":"tsumo","actor":1,"pai":"7p"}
{"type":"dahai","actor":1,"pai":"7p","tsumogiri":true}
{"type":"tsumo","actor":2,"pai":"4s"}
{"type":"dahai","actor":2,"pai":"4s","tsumogiri":true}
{"type":"hora","actor":0,"target":2,"pai":"4s"}
{"type":"end_kyoku"}
`

// DoubleReachRound is a round in which two players reach.
const DoubleReachRound = `{"type":"start_kyoku","bakaze":"E","kyoku":2,"honba":0,"kyotaku":0,"oya":1,"dora_marker":"3p","tehais":[["1m","2m","3m","4p","5p","6p","7s","8s","9s","E","E","5s","N"],["1p","2p","3p","4m","5m","6m","7p","8p","9p","S","S","2s","W"],["2m","4m","6m","8m","1s","2s","3s","P","P","F","F","9p","9p"],["1m","1m","5m","5m","7m","7m","3p","3p","6s","6s","8p","8p","S"]]}
{"type":"tsumo","actor":1,"pai":"3s"}
{"type":"reach","actor":1}
{"type":"dahai","actor":1,"pai":"W","tsumogiri":false}
{"type":"reach_accepted","actor":1}
{"type":"tsumo","actor":2,"pai":"7m"}
{"type":"dahai","actor":2,"pai":"7m","tsumogiri":true}
{"type":"tsumo","actor":3,"pai":"1s"}
{"type":"dahai","actor":3,"pai":"1s","tsumogiri":true}
{"type":"tsumo","actor":0,"pai":"6s"}
{"type":"reach","actor":0}
{"type":"dahai","actor":0,"pai":"N","tsumogiri":false}
{"type":"reach_accepted","actor":0}
{"type":"tsumo","actor":2,"pai":"C"}
{"type":"dahai","actor":2,"pai":"C","tsumogiri":true}
{"type":"ryukyoku"}
{"type":"end_kyoku"}
`

// EndGame closes a game log.
const EndGame = `{"type":"end_game"}
`

// BrokenRound discards a tile the player does not hold.
const BrokenRound = `{"type":"start_kyoku","bakaze":"S","kyoku":1,"honba":0,"kyotaku":0,"oya":0,"dora_marker":"1m","tehais":[["1m","2m","3m","4p","5p","6p","7s","8s","9s","E","E","5s","N"],["1p","1p","9m","9m","3s","4s","2p","3p","W","W","S","C","C"],["2m","4m","6m","8m","1s","2s","3s","P","P","F","F","9p","9p"],["1m","1m","5m","5m","7m","7m","3p","3p","6s","6s","8p","8p","S"]]}
{"type":"tsumo","actor":0,"pai":"9p"}
{"type":"dahai","actor":0,"pai":"C","tsumogiri":false}
{"type":"end_kyoku"}
`

// Game joins rounds into one log with start_game and end_game lines.
func Game(rounds ...string) string {
	var sb strings.Builder
	sb.WriteString(`{"type":"start_game","names":["alice","bob","carol","dave"]}` + "\n")
	for _, r := range rounds {
		sb.WriteString(r)
	}
	sb.WriteString(EndGame)
	return sb.String()
}

// WriteLog writes content to dir/name and returns the path.
func WriteLog(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Tiles parses a tile list or panics.
func Tiles(s string) []tile.Tile {
	ts, err := tile.ParseList(s)
	if err != nil {
		panic(err)
	}
	return ts
}
