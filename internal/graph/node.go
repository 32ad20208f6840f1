package graph

import (
	"fmt"
	"slices"

	"flexvg/internal/nodeid"
)

// Allele is the variant payload recorded at a node's right boundary.
type Allele struct {
	ID       string
	Position int // 1-based, as in the variant file
	Ref      string
	Alt      []string
}

// Node is a vertex of the variation graph.
type Node struct {
	ID       nodeid.ID
	Segment  []byte
	Offset   int    // 0-based start of Segment on Sequence
	Sequence string // first sequence that produced the node; empty for sequence-agnostic nodes

	// Sequences lists every sequence whose path runs through the node, in the
	// order they reached it. Identical content at the same offset is shared.
	Sequences []string

	Variants []Allele

	// Right and Left are owned by the Graph; use AddEdge.
	Right []nodeid.ID
	Left  []nodeid.ID
}

// NewNode copies segment and computes the node's ID.
func NewNode(segment []byte, offset int, sequence string) *Node {
	seg := append([]byte(nil), segment...)
	n := &Node{
		ID:       nodeid.Compute(seg, offset),
		Segment:  seg,
		Offset:   offset,
		Sequence: sequence,
	}
	if sequence != "" {
		n.Sequences = []string{sequence}
	}
	return n
}

// On reports whether the path of sequence runs through n.
func (n *Node) On(sequence string) bool { return slices.Contains(n.Sequences, sequence) }

// End is the exclusive end coordinate of the segment.
func (n *Node) End() int { return n.Offset + len(n.Segment) }

func (n *Node) String() string {
	return fmt.Sprintf("%s %s:%d-%d", n.ID.Short(), n.Sequence, n.Offset, n.End())
}

func contains(list []nodeid.ID, id nodeid.ID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// removeAll drops every occurrence of id.
func removeAll(list []nodeid.ID, id nodeid.ID) []nodeid.ID {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
