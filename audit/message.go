// Package audit records extracted decisions outside the dataset, for
// inspection and visualization.
package audit

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/domino14/hoju/extract"
	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/tile"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message is the readable form of a decision.
type Message struct {
	File        string             `json:"file"`
	Round       string             `json:"round"`
	Bakaze      string             `json:"bakaze"`
	Kyoku       int                `json:"kyoku"`
	Honba       int                `json:"honba"`
	Actor       int                `json:"actor"`
	ActorName   string             `json:"actor_name,omitempty"`
	Reacher     int                `json:"reacher"`
	ReacherName string             `json:"reacher_name,omitempty"`
	Discarded   string             `json:"discarded"`
	Waits       []string           `json:"waits"`
	Candidates  []CandidateMessage `json:"candidates"`
}

type CandidateMessage struct {
	Tile     string   `json:"tile"`
	Hit      bool     `json:"hit"`
	Features []string `json:"features"`
}

func tileNames(ts []tile.Tile) []string {
	return lo.Map(ts, func(t tile.Tile, _ int) string { return t.String() })
}

// NewMessage converts ev, naming set features from c.
func NewMessage(ev *extract.DecisionEvent, c *feature.Catalog) *Message {
	m := &Message{
		File:        ev.File,
		Round:       ev.RoundID,
		Bakaze:      ev.Bakaze.String(),
		Kyoku:       ev.Kyoku,
		Honba:       ev.Honba,
		Actor:       ev.Actor,
		ActorName:   ev.ActorName,
		Reacher:     ev.Reacher,
		ReacherName: ev.ReacherName,
		Discarded:   ev.Discarded.String(),
		Waits:       tileNames(ev.Waits),
	}
	m.Candidates = lo.Map(ev.Candidates, func(cand extract.Candidate, _ int) CandidateMessage {
		return CandidateMessage{Tile: cand.Tile.String(), Hit: cand.Hit, Features: c.Readable(cand.Vector)}
	})
	return m
}

// Multi sends every decision to each listener in turn.
type Multi []extract.Listener

func (m Multi) OnDecision(ev *extract.DecisionEvent) error {
	var errs []error
	for _, l := range m {
		if err := l.OnDecision(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
