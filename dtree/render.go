package dtree

import (
	"fmt"
	"io"
	"strings"
)

// Render writes an indented text view of the tree, one node per line.
func Render(w io.Writer, root *Node) error {
	return render(w, root, "all", 0)
}

func render(w io.Writer, n *Node, label string, depth int) error {
	_, err := fmt.Fprintf(w, "%s%s: %.4f [%.4f, %.4f] (%d)\n", strings.Repeat("  ", depth),
		label, n.AverageProb, n.ConfInterval[0], n.ConfInterval[1], n.NumSamples)
	if err != nil || n.IsLeaf() {
		return err
	}
	if err := render(w, n.Negative, "!"+n.FeatureName, depth+1); err != nil {
		return err
	}
	return render(w, n.Positive, n.FeatureName, depth+1)
}

// String renders the tree.
func (n *Node) String() string {
	var sb strings.Builder
	Render(&sb, n)
	return sb.String()
}
