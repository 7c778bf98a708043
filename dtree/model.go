package dtree

import (
	"fmt"

	"github.com/domino14/hoju/feature"
	"github.com/domino14/hoju/tile"
)

// flatNode is the compiled form of a Node. Leaves have bit -1.
type flatNode struct {
	bit      int
	neg, pos int32
	node     *Node
}

// Model is a tree bound to the catalog it was trained against. Split
// features are resolved to catalog indices when the model is built.
type Model struct {
	root    *Node
	catalog *feature.Catalog
	nodes   []flatNode
}

// NewModel compiles root against c. It fails if a split names a feature c
// does not have, or an internal node lacks a child.
func NewModel(root *Node, c *feature.Catalog) (*Model, error) {
	m := &Model{root: root, catalog: c}
	if _, err := m.compile(root); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) compile(n *Node) (int32, error) {
	if n == nil {
		return 0, fmt.Errorf("missing tree node")
	}
	idx := int32(len(m.nodes))
	m.nodes = append(m.nodes, flatNode{bit: -1, node: n})
	if n.IsLeaf() {
		return idx, nil
	}
	bit, err := m.catalog.Index(n.FeatureName)
	if err != nil {
		return 0, err
	}
	neg, err := m.compile(n.Negative)
	if err != nil {
		return 0, err
	}
	pos, err := m.compile(n.Positive)
	if err != nil {
		return 0, err
	}
	m.nodes[idx].bit = bit
	m.nodes[idx].neg = neg
	m.nodes[idx].pos = pos
	return idx, nil
}

func (m *Model) Root() *Node               { return m.root }
func (m *Model) Catalog() *feature.Catalog { return m.catalog }
func (m *Model) NumNodes() int             { return len(m.nodes) }

// Leaf returns the leaf v falls into.
func (m *Model) Leaf(v feature.Vector) *Node {
	i := int32(0)
	for {
		fn := &m.nodes[i]
		if fn.bit < 0 {
			return fn.node
		}
		if v.Bit(fn.bit) {
			i = fn.pos
		} else {
			i = fn.neg
		}
	}
}

// Estimate returns the danger of a precomputed feature vector.
func (m *Model) Estimate(v feature.Vector) float64 {
	return m.Leaf(v).AverageProb
}

// EstimateProbability evaluates every feature for t once, then walks the
// tree.
func (m *Model) EstimateProbability(s *feature.Scene, t tile.Tile) float64 {
	return m.Estimate(m.catalog.Evaluate(s, t))
}

// TileEstimate is the danger of one candidate.
type TileEstimate struct {
	Tile tile.Tile
	Prob float64
	Leaf *Node
}

// EstimateScene estimates every candidate of s, in candidate order.
func (m *Model) EstimateScene(s *feature.Scene) []TileEstimate {
	cands := s.Candidates()
	out := make([]TileEstimate, len(cands))
	for i, t := range cands {
		leaf := m.Leaf(m.catalog.Evaluate(s, t))
		out[i] = TileEstimate{Tile: t, Prob: leaf.AverageProb, Leaf: leaf}
	}
	return out
}
