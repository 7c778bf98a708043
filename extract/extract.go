// Package extract turns replay logs into labeled danger datasets.
//
// In every round the first player whose reach is accepted is the reacher;
// their waits are computed at that moment. Each later discard by a player
// who has not reached becomes one decision whose candidates are that
// player's hand tiles not yet proven safe, labeled by whether they are in
// the reacher's waits. Rounds in which a second player reaches are dropped.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/hoju/dataset"
	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/game"
	"github.com/domino14/hoju/hand"
	"github.com/domino14/hoju/mjlog"
	"github.com/domino14/hoju/tile"
)

// Candidate is one tile considered at a decision.
type Candidate struct {
	Tile   tile.Tile
	Hit    bool
	Vector feature.Vector
}

// DecisionEvent describes one recorded decision.
type DecisionEvent struct {
	File        string
	RoundID     string
	Bakaze      tile.Tile
	Kyoku       int
	Honba       int
	Actor       int
	ActorName   string
	Reacher     int
	ReacherName string
	Discarded   tile.Tile
	Waits       []tile.Tile
	Candidates  []Candidate
}

// Listener observes decisions. Calls are serialized and follow input file
// order; an error aborts the run.
type Listener interface {
	OnDecision(ev *DecisionEvent) error
}

// RoundWriter receives extracted rounds.
type RoundWriter interface {
	Write(r dataset.Round) error
}

// FileResult holds everything extracted from one log.
type FileResult struct {
	Path   string
	Rounds []dataset.Round
	Events []*DecisionEvent
}

// Stats counts a run's output.
type Stats struct {
	Files     int
	Skipped   int
	Rounds    int
	Decisions int
	Examples  int
}

type Extractor struct {
	catalog    *feature.Catalog
	listener   Listener
	workers    int
	skipErrors bool
	root       string
}

type Option func(*Extractor)

func WithListener(l Listener) Option {
	return func(e *Extractor) { e.listener = l }
}

// WithWorkers sets how many files are replayed concurrently.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSkipErrors makes Run log and skip unreadable files instead of
// failing.
func WithSkipErrors(skip bool) Option {
	return func(e *Extractor) { e.skipErrors = skip }
}

// WithRoot names round IDs after file paths relative to dir. Without it
// Run uses the deepest directory holding all of its paths.
func WithRoot(dir string) Option {
	return func(e *Extractor) { e.root = dir }
}

func New(c *feature.Catalog, opts ...Option) *Extractor {
	e := &Extractor{catalog: c, workers: 1}
	for _, o := range opts {
		o(e)
	}
	return e
}

// File extracts one log. Nothing is returned on error: a partially
// replayed file never contributes rounds.
func (e *Extractor) File(path string) (*FileResult, error) {
	root := e.root
	if root == "" {
		root = filepath.Dir(path)
	}
	return e.file(root, path)
}

func (e *Extractor) file(root, path string) (*FileResult, error) {
	f, err := mjlog.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := e.replay(path, roundLabel(root, path), f.Reader)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("extract-failed")
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Reader extracts a log from r; name labels round IDs and events.
func (e *Extractor) Reader(name string, r io.Reader) (*FileResult, error) {
	res, err := e.replay(name, name, mjlog.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

type roundState struct {
	round   *dataset.Round
	events  []*DecisionEvent
	reacher int
	waits   tile.Multiset
	wset    []tile.Tile
	skip    bool
}

// roundLabel is path relative to root with forward slashes, or the
// cleaned path when it lies outside root.
func roundLabel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Clean(path)
	}
	return filepath.ToSlash(rel)
}

// commonDir is the deepest directory containing every path.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	dir := filepath.Dir(filepath.Clean(paths[0]))
	for _, p := range paths[1:] {
		d := filepath.Dir(filepath.Clean(p))
		for dir != d && !strings.HasPrefix(d, dir+string(filepath.Separator)) {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return dir
}

func (e *Extractor) replay(path, label string, lr *mjlog.Reader) (*FileResult, error) {
	res := &FileResult{Path: path}
	g := game.NewRound()
	var st *roundState
	nround := 0

	for {
		a, err := lr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if a.Type == mjlog.Dahai && st != nil && !st.skip && st.reacher >= 0 &&
			a.Actor != st.reacher && a.Actor >= 0 && a.Actor < game.NumPlayers && !g.Reached(a.Actor) {
			if err := e.decide(g, st, path, a); err != nil {
				return nil, fmt.Errorf("line %d: %w", lr.Line(), err)
			}
		}

		if err := g.Apply(a); err != nil {
			return nil, fmt.Errorf("line %d: %w", lr.Line(), err)
		}

		switch a.Type {
		case mjlog.StartKyoku:
			st = &roundState{
				round:   &dataset.Round{ID: fmt.Sprintf("%s#%d", label, nround)},
				reacher: -1,
			}
			nround++
		case mjlog.ReachAccepted:
			if st == nil {
				break
			}
			if st.reacher >= 0 {
				log.Debug().Str("round", st.round.ID).Msg("second-reach-skipping-round")
				st.skip = true
				break
			}
			st.reacher = a.Actor
			st.wset = hand.Waits(g.Hand(a.Actor))
			st.waits = tile.NewMultiset(st.wset)
			if len(st.wset) == 0 {
				log.Debug().Str("round", st.round.ID).Int("reacher", a.Actor).Msg("reach-without-waits")
			}
		case mjlog.EndKyoku:
			if st == nil {
				return nil, fmt.Errorf("line %d: end_kyoku without start_kyoku", lr.Line())
			}
			if !st.skip && len(st.round.Decisions) > 0 {
				res.Rounds = append(res.Rounds, *st.round)
				res.Events = append(res.Events, st.events...)
			}
			st = nil
		}
	}
	if st != nil {
		return nil, errors.New("log ends inside a round")
	}
	return res, nil
}

func (e *Extractor) decide(g *game.Round, st *roundState, path string, a mjlog.Action) error {
	scene, err := g.SceneFor(a.Actor, st.reacher)
	if err != nil {
		return err
	}
	cands := scene.Candidates()
	if len(cands) == 0 {
		return nil
	}
	dec := dataset.Decision{Examples: make([]dataset.Example, len(cands))}
	ev := &DecisionEvent{
		File:        path,
		RoundID:     st.round.ID,
		Bakaze:      g.Bakaze(),
		Kyoku:       g.Kyoku(),
		Honba:       g.Honba(),
		Actor:       a.Actor,
		ActorName:   g.Name(a.Actor),
		Reacher:     st.reacher,
		ReacherName: g.Name(st.reacher),
		Discarded:   a.Pai,
		Waits:       st.wset,
		Candidates:  make([]Candidate, len(cands)),
	}
	for i, t := range cands {
		v := e.catalog.Evaluate(scene, t)
		hit := st.waits.Has(t)
		dec.Examples[i] = dataset.Example{Vector: v, Hit: hit}
		ev.Candidates[i] = Candidate{Tile: t, Hit: hit, Vector: v}
	}
	st.round.Decisions = append(st.round.Decisions, dec)
	st.events = append(st.events, ev)
	return nil
}

// Run extracts paths and writes their rounds to w in input order. Up to
// the configured number of files are replayed at once.
func (e *Extractor) Run(ctx context.Context, paths []string, w RoundWriter) (*Stats, error) {
	stats := &Stats{}
	root := e.root
	if root == "" {
		root = commonDir(paths)
	}
	for start := 0; start < len(paths); start += e.workers {
		end := min(start+e.workers, len(paths))
		batch := paths[start:end]
		results := make([]*FileResult, len(batch))
		errs := make([]error, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, p := range batch {
			i, p := i, p
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i], errs[i] = e.file(root, p)
				if errs[i] != nil && !e.skipErrors {
					return errs[i]
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}

		for i, res := range results {
			if errs[i] != nil {
				stats.Skipped++
				continue
			}
			if err := e.emit(res, w, stats); err != nil {
				return stats, err
			}
		}
		log.Info().Int("files", end).Int("of", len(paths)).Int("rounds", stats.Rounds).Msg("extract-progress")
	}
	return stats, nil
}

func (e *Extractor) emit(res *FileResult, w RoundWriter, stats *Stats) error {
	stats.Files++
	for _, r := range res.Rounds {
		if err := w.Write(r); err != nil {
			return err
		}
		stats.Rounds++
		stats.Decisions += len(r.Decisions)
		stats.Examples += r.NumExamples()
	}
	if e.listener == nil {
		return nil
	}
	for _, ev := range res.Events {
		if err := e.listener.OnDecision(ev); err != nil {
			return fmt.Errorf("listener: %w", err)
		}
	}
	return nil
}
