package graphio

import (
	"bufio"
	"fmt"
	"io"

	"flexvg/internal/graph"
)

// labelLen is how many bases of a segment a DOT label shows.
const labelLen = 5

// DOTGenerator names the tool in the DOT header comment.
var DOTGenerator = "flexvg"

// WriteDOT renders g as a left-to-right graphviz digraph.
func WriteDOT(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `digraph {
	// Generated by %s

	rankdir=LR;
	dpi=300;
	edge [color=blue, tailport=ne, headport=nw, arrowtail=dot, arrowhead=normal, arrowsize=.5];
	node [shape=box];

	// nodes
`, DOTGenerator)
	for n := range g.Nodes() {
		label := n.Segment
		if len(label) > labelLen {
			label = label[:labelLen]
		}
		fmt.Fprintf(bw, "\t\"%s\" [label=\"%s\"]\n", n.ID, label)
	}
	fmt.Fprint(bw, "\n\t// edges\n")
	for x, y := range g.Edges() {
		fmt.Fprintf(bw, "\t\"%s\" -> \"%s\"\n", x, y)
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
