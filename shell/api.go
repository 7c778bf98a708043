package shell

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/hoju/cache"
	"github.com/domino14/hoju/config"
	"github.com/domino14/hoju/dtree"
	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/tile"
)

const (
	histogramBins       = 10
	histogramResolution = 1000
)

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage), nil
	}
	text, ok := helpTopics[cmd.args[0]]
	if !ok {
		return nil, fmt.Errorf("there is no help text for the topic %s", cmd.args[0])
	}
	return msg(text), nil
}

func modelLoader(c *feature.Catalog) cache.LoadFunc {
	return func(cfg *config.Config, key string) (any, error) {
		return dtree.LoadFile(cfg.DataFile(key), c)
	}
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <model.json>")
	}
	obj, err := cache.Load(sc.config, cmd.args[0], modelLoader(sc.catalog))
	if err != nil {
		return nil, err
	}
	sc.model = obj.(*dtree.Model)
	sc.modelPath = cmd.args[0]
	root := sc.model.Root()
	log.Debug().Str("model", sc.modelPath).Int("nodes", sc.model.NumNodes()).Msg("loaded-model")
	return msg(fmt.Sprintf("Loaded %s: %d nodes, %d leaves, depth %d, %d samples",
		sc.modelPath, sc.model.NumNodes(), len(root.Leaves()), root.Depth(), root.NumSamples)), nil
}

func parseTiles(opts map[string]string, key string) ([]tile.Tile, bool, error) {
	s, ok := opts[key]
	if !ok {
		return nil, false, nil
	}
	ts, err := tile.ParseList(s)
	if err != nil {
		return nil, true, fmt.Errorf("-%s: %w", key, err)
	}
	return ts, true, nil
}

func parseWind(opts map[string]string, key string) (tile.Tile, bool, error) {
	s, ok := opts[key]
	if !ok {
		return tile.Tile{}, false, nil
	}
	t, err := tile.Parse(s)
	if err != nil {
		return tile.Tile{}, true, fmt.Errorf("-%s: %w", key, err)
	}
	if !t.IsWind() {
		return tile.Tile{}, true, fmt.Errorf("-%s: %s is not a wind", key, s)
	}
	return t, true, nil
}

// setScene updates the current decision from -key value options or
// key=value arguments. Keys not given keep their previous value; `scene
// reset` starts over and a bare `scene` shows it.
// When -visible is never given the visible tiles default to everything
// else the scene names.
func (sc *ShellController) setScene(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "reset" {
		sc.params = feature.SceneParams{}
		sc.scene = nil
		return msg("Scene cleared"), nil
	}
	for _, a := range cmd.args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("unexpected argument %q", a)
		}
		cmd.options[k] = v
	}
	if len(cmd.options) == 0 {
		if sc.scene == nil {
			return nil, errNoScene
		}
		return msg(sc.showScene()), nil
	}
	p := sc.params
	lists := []struct {
		key string
		dst *[]tile.Tile
	}{
		{"hand", &p.Hand},
		{"safe", &p.Safe},
		{"visible", &p.Visible},
		{"dora", &p.Doras},
		{"prereach", &p.Prereach},
	}
	for _, l := range lists {
		ts, ok, err := parseTiles(cmd.options, l.key)
		if err != nil {
			return nil, err
		}
		if ok {
			*l.dst = ts
		}
	}
	winds := []struct {
		key string
		dst *tile.Tile
	}{
		{"bakaze", &p.Bakaze},
		{"jikaze", &p.Jikaze},
	}
	for _, w := range winds {
		t, ok, err := parseWind(cmd.options, w.key)
		if err != nil {
			return nil, err
		}
		if ok {
			*w.dst = t
		}
	}
	if len(p.Hand) == 0 {
		return nil, errors.New("a scene needs at least -hand")
	}
	sc.params = p
	if len(p.Visible) == 0 {
		p.Visible = lo.Flatten([][]tile.Tile{p.Hand, p.Safe, p.Prereach, p.Doras})
	}
	sc.scene = feature.NewScene(p)
	return msg(sc.showScene()), nil
}

func (sc *ShellController) showScene() string {
	var sb strings.Builder
	p := sc.params
	fmt.Fprintf(&sb, "hand:     %s\n", tile.Join(p.Hand))
	fmt.Fprintf(&sb, "prereach: %s\n", tile.Join(p.Prereach))
	fmt.Fprintf(&sb, "safe:     %s\n", tile.Join(p.Safe))
	fmt.Fprintf(&sb, "dora:     %s\n", tile.Join(p.Doras))
	fmt.Fprintf(&sb, "bakaze %s, jikaze %s, %d candidates", p.Bakaze, p.Jikaze,
		len(sc.scene.Candidates()))
	return sb.String()
}

func (sc *ShellController) estimate(cmd *shellcmd) (*Response, error) {
	if sc.model == nil {
		return nil, errNoModel
	}
	if sc.scene == nil {
		return nil, errNoScene
	}
	ests := sc.model.EstimateScene(sc.scene)
	sort.SliceStable(ests, func(i, j int) bool { return ests[i].Prob > ests[j].Prob })
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s%-9s%-20s%s\n", "Tile", "Danger", "Interval", "Samples")
	for _, e := range ests {
		fmt.Fprintf(&sb, "%-6s%-9.4f[%.4f, %.4f]    %d\n", e.Tile, e.Prob,
			e.Leaf.ConfInterval[0], e.Leaf.ConfInterval[1], e.Leaf.NumSamples)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) features(cmd *shellcmd) (*Response, error) {
	if sc.scene == nil {
		return nil, errNoScene
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: features <tile>")
	}
	t, err := tile.Parse(cmd.args[0])
	if err != nil {
		return nil, err
	}
	names := sc.catalog.Readable(sc.catalog.Evaluate(sc.scene, t))
	if len(names) == 0 {
		return msg("(no features set)"), nil
	}
	return msg(strings.Join(names, "\n")), nil
}

func (sc *ShellController) tree(cmd *shellcmd) (*Response, error) {
	if sc.model == nil {
		return nil, errNoModel
	}
	return msg(strings.TrimRight(sc.model.Root().String(), "\n")), nil
}

// hist plots the leaf probabilities of the loaded tree, each leaf weighted
// by its share of the root's samples.
func (sc *ShellController) hist(cmd *shellcmd) (*Response, error) {
	if sc.model == nil {
		return nil, errNoModel
	}
	leaves := sc.model.Root().Leaves()
	total := lo.SumBy(leaves, func(n *dtree.Node) int { return n.NumSamples })
	var probs []float64
	for _, n := range leaves {
		reps := 1
		if total > 0 {
			reps = max(1, n.NumSamples*histogramResolution/total)
		}
		for i := 0; i < reps; i++ {
			probs = append(probs, n.AverageProb)
		}
	}
	var sb strings.Builder
	h := histogram.Hist(histogramBins, probs)
	if err := histogram.Fprint(&sb, h, histogram.Linear(40)); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}
