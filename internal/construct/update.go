package construct

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"

	"flexvg/internal/graph"
)

// Update cuts the existing graph at every variant position from cursor.
// The node of the variant's sequence that strictly contains the cut is split
// in two and rewired; a cut on an existing boundary only records the allele.
// Records do not need to be sorted.
func Update(g *graph.Graph, cursor VariantCursor, log *slog.Logger) (Stats, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	idx := backbone(g)
	touched := make(map[string]bool)
	var st Stats

	for {
		rec, err := cursor.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return st, wrapReadErr("", 0, err)
		}
		nodes, ok := idx[rec.Chrom]
		if !ok {
			return st, &MalformedRecordError{Sequence: rec.Chrom, Err: errors.New("sequence not in graph")}
		}
		cut := rec.Pos
		allele := graph.Allele{ID: rec.ID, Position: rec.Pos, Ref: rec.Ref, Alt: rec.Alt}

		i := sort.Search(len(nodes), func(i int) bool { return nodes[i].End() > cut })
		switch {
		case i == len(nodes):
			last := nodes[len(nodes)-1]
			if cut != last.End() {
				return st, &MalformedRecordError{
					Sequence: rec.Chrom, LastPosition: last.End(),
					Err: fmt.Errorf("position %d beyond graph end %d", rec.Pos, last.End()),
				}
			}
			last.Variants = append(last.Variants, allele)
		case nodes[i].Offset >= cut:
			if i == 0 {
				return st, &MalformedRecordError{
					Sequence: rec.Chrom,
					Err:      fmt.Errorf("position %d before first node at %d", rec.Pos, nodes[0].Offset),
				}
			}
			nodes[i-1].Variants = append(nodes[i-1].Variants, allele)
		default:
			old := nodes[i]
			left, right, err := splitNode(g, old, cut, allele)
			if err != nil {
				return st, err
			}
			log.Debug("split node", "sequence", rec.Chrom, "cut", cut,
				"left", left.ID.Short(), "right", right.ID.Short())
			// a shared node is cut for every sequence running through it
			for _, seq := range old.Sequences {
				if j := slices.Index(idx[seq], old); j >= 0 {
					idx[seq] = slices.Replace(idx[seq], j, j+1, left, right)
				}
			}
		}
		st.Variants++
		touched[rec.Chrom] = true
	}

	st.Sequences = len(touched)
	st.Nodes = g.Len()
	st.Edges = g.EdgeCount()
	return st, nil
}

// backbone lists the nodes on each sequence's path, sorted by offset. A
// shared node appears under every sequence it belongs to.
func backbone(g *graph.Graph) map[string][]*graph.Node {
	idx := make(map[string][]*graph.Node)
	for n := range g.Nodes() {
		for _, seq := range n.Sequences {
			idx[seq] = append(idx[seq], n)
		}
	}
	for _, nodes := range idx {
		sort.SliceStable(nodes, func(a, b int) bool { return nodes[a].Offset < nodes[b].Offset })
	}
	return idx
}

func splitNode(g *graph.Graph, old *graph.Node, cut int, allele graph.Allele) (*graph.Node, *graph.Node, error) {
	at := cut - old.Offset
	left := graph.NewNode(old.Segment[:at], old.Offset, old.Sequence)
	right := graph.NewNode(old.Segment[at:], cut, old.Sequence)
	left.Sequences = slices.Clone(old.Sequences)
	right.Sequences = slices.Clone(old.Sequences)
	left.Variants = []graph.Allele{allele}
	right.Variants = append([]graph.Allele(nil), old.Variants...)

	lefts := slices.Clone(old.Left)
	rights := slices.Clone(old.Right)
	g.RemoveNode(old.ID)

	for _, n := range []*graph.Node{left, right} {
		if err := g.AddNode(n); err != nil {
			return nil, nil, err
		}
	}
	left, _ = g.Node(left.ID)
	right, _ = g.Node(right.ID)

	for _, l := range lefts {
		if l == old.ID {
			continue
		}
		if err := g.AddEdge(l, left.ID); err != nil {
			return nil, nil, err
		}
	}
	if err := g.AddEdge(left.ID, right.ID); err != nil {
		return nil, nil, err
	}
	for _, r := range rights {
		if r == old.ID {
			continue
		}
		if err := g.AddEdge(right.ID, r); err != nil {
			return nil, nil, err
		}
	}
	return left, right, nil
}
