package graphio

import (
	"fmt"

	"flexvg/internal/graph"
	"flexvg/internal/nodeid"
	"flexvg/pkg/api"
)

// ToAPI converts g to the wire schema, nodes in insertion order.
func ToAPI(g *graph.Graph) api.GraphV1 {
	out := api.GraphV1{Version: api.Version, Nodes: make([]api.NodeV1, 0, g.Len())}
	for n := range g.Nodes() {
		out.Nodes = append(out.Nodes, toAPINode(n))
	}
	return out
}

func toAPINode(n *graph.Node) api.NodeV1 {
	v := api.NodeV1{
		ID:       n.ID.String(),
		Segment:  string(n.Segment),
		Offset:   n.Offset,
		Sequence: n.Sequence,
		Right:    idStrings(n.Right),
		Left:     idStrings(n.Left),
	}
	if len(n.Sequences) > 1 || (len(n.Sequences) == 1 && n.Sequences[0] != n.Sequence) {
		v.Sequences = append([]string(nil), n.Sequences...)
	}
	for _, a := range n.Variants {
		v.Variants = append(v.Variants, api.AlleleV1{
			ID: a.ID, Position: a.Position, Ref: a.Ref, Alt: append([]string(nil), a.Alt...),
		})
	}
	return v
}

func idStrings(ids []nodeid.ID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// FromAPI validates and rebuilds a graph from its wire form.
func FromAPI(v api.GraphV1) (*graph.Graph, error) {
	if v.Version != api.Version {
		return nil, fmt.Errorf("graphio: unsupported schema version %d", v.Version)
	}
	nodes := make([]*graph.Node, 0, len(v.Nodes))
	for i, nv := range v.Nodes {
		n, err := fromAPINode(nv)
		if err != nil {
			return nil, fmt.Errorf("graphio: node %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	return graph.Rebuild(nodes)
}

func fromAPINode(nv api.NodeV1) (*graph.Node, error) {
	id, err := nodeid.Parse(nv.ID)
	if err != nil {
		return nil, err
	}
	n := &graph.Node{
		ID:       id,
		Segment:  []byte(nv.Segment),
		Offset:   nv.Offset,
		Sequence: nv.Sequence,
	}
	switch {
	case len(nv.Sequences) > 0:
		n.Sequences = nv.Sequences
	case nv.Sequence != "":
		n.Sequences = []string{nv.Sequence}
	}
	if n.Right, err = parseIDs(nv.Right); err != nil {
		return nil, err
	}
	if n.Left, err = parseIDs(nv.Left); err != nil {
		return nil, err
	}
	for _, a := range nv.Variants {
		n.Variants = append(n.Variants, graph.Allele{ID: a.ID, Position: a.Position, Ref: a.Ref, Alt: a.Alt})
	}
	return n, nil
}

func parseIDs(ss []string) ([]nodeid.ID, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]nodeid.ID, len(ss))
	for i, s := range ss {
		id, err := nodeid.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
