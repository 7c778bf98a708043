// Package dtree induces, stores and applies binary danger trees.
package dtree

import (
	"github.com/domino14/hoju/aggregate"
)

// Node is a tree node. Internal nodes split on FeatureName and have both
// children; leaves have neither.
type Node struct {
	AverageProb  float64    `json:"average_prob" yaml:"average_prob"`
	ConfInterval [2]float64 `json:"conf_interval" yaml:"conf_interval,flow"`
	NumSamples   int        `json:"num_samples" yaml:"num_samples"`
	FeatureName  string     `json:"feature_name,omitempty" yaml:"feature_name,omitempty"`
	Negative     *Node      `json:"negative,omitempty" yaml:"negative,omitempty"`
	Positive     *Node      `json:"positive,omitempty" yaml:"positive,omitempty"`
}

// NewLeaf returns a leaf holding s.
func NewLeaf(s *aggregate.Summary) *Node {
	return &Node{
		AverageProb:  s.Average,
		ConfInterval: [2]float64{s.Lower, s.Upper},
		NumSamples:   s.Samples,
	}
}

func (n *Node) IsLeaf() bool {
	return n.FeatureName == ""
}

// Walk calls fn for n and every descendant, negative branch first. Depth
// is zero at n.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	if n.IsLeaf() {
		return
	}
	n.Negative.walk(fn, depth+1)
	n.Positive.walk(fn, depth+1)
}

// Leaves returns the leaves under n in negative-first order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(node *Node, _ int) {
		if node.IsLeaf() {
			out = append(out, node)
		}
	})
	return out
}

// Depth is the length of the longest root-to-leaf path.
func (n *Node) Depth() int {
	d := 0
	n.Walk(func(_ *Node, depth int) {
		if depth > d {
			d = depth
		}
	})
	return d
}

// Equal reports whether two trees are structurally identical with equal
// statistics.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.AverageProb != o.AverageProb || n.ConfInterval != o.ConfInterval ||
		n.NumSamples != o.NumSamples || n.FeatureName != o.FeatureName {
		return false
	}
	return n.Negative.Equal(o.Negative) && n.Positive.Equal(o.Positive)
}
