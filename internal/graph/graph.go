package graph

import (
	"fmt"
	"iter"

	"flexvg/internal/nodeid"
)

// Graph maps node IDs to nodes and remembers insertion order.
type Graph struct {
	nodes map[nodeid.ID]*Node
	order []nodeid.ID
	edges int
}

func New() *Graph {
	return &Graph{nodes: make(map[nodeid.ID]*Node)}
}

func (g *Graph) Len() int       { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return g.edges }

func (g *Graph) HasNode(id nodeid.ID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the stored node. Callers must not touch its adjacency.
func (g *Graph) Node(id nodeid.ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// AddNode inserts n. A node already stored under the same ID keeps its
// adjacency and first sequence, and gains n's sequences and alleles, so
// adding identical content twice leaves a single entry.
func (g *Graph) AddNode(n *Node) error {
	if len(n.Segment) == 0 {
		return fmt.Errorf("%w at offset %d", ErrEmptySegment, n.Offset)
	}
	if nodeid.Compute(n.Segment, n.Offset) != n.ID {
		return fmt.Errorf("%w: %s", ErrIDMismatch, n.ID)
	}
	if old, ok := g.nodes[n.ID]; ok {
		if n == old {
			return nil
		}
		if old.Sequence == "" {
			old.Sequence = n.Sequence
		}
		for _, seq := range n.Sequences {
			if !old.On(seq) {
				old.Sequences = append(old.Sequences, seq)
			}
		}
		old.Variants = mergeVariants(old.Variants, n.Variants)
		return nil
	}
	n.Right, n.Left = nil, nil
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

func mergeVariants(have, add []Allele) []Allele {
next:
	for _, a := range add {
		for _, h := range have {
			if h.ID == a.ID && h.Position == a.Position && h.Ref == a.Ref {
				continue next
			}
		}
		have = append(have, a)
	}
	return have
}

// AddEdge links x to y: y goes on x's right, x on y's left. Both must exist;
// otherwise nothing is written.
func (g *Graph) AddEdge(x, y nodeid.ID) error {
	nx, okx := g.nodes[x]
	ny, oky := g.nodes[y]
	if !okx || !oky {
		e := &DanglingReferenceError{From: x, To: y}
		if !okx {
			e.Missing = append(e.Missing, x)
		}
		if !oky && y != x {
			e.Missing = append(e.Missing, y)
		}
		return e
	}
	nx.Right = append(nx.Right, y)
	ny.Left = append(ny.Left, x)
	g.edges++
	return nil
}

// EdgeExists is true only when both directions are recorded.
func (g *Graph) EdgeExists(x, y nodeid.ID) bool {
	nx, okx := g.nodes[x]
	ny, oky := g.nodes[y]
	if !okx || !oky {
		return false
	}
	return contains(nx.Right, y) && contains(ny.Left, x)
}

// RemoveNode deletes id and every edge touching it.
func (g *Graph) RemoveNode(id nodeid.ID) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for _, r := range n.Right {
		if r == id {
			continue
		}
		if o := g.nodes[r]; o != nil {
			o.Left = removeAll(o.Left, id)
		}
	}
	for _, l := range n.Left {
		if l == id {
			continue
		}
		if o := g.nodes[l]; o != nil {
			o.Right = removeAll(o.Right, id)
		}
	}
	g.edges -= len(n.Right) + len(n.Left)
	for _, r := range n.Right {
		if r == id {
			g.edges++ // self loop counted on both lists
		}
	}
	delete(g.nodes, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

// Nodes yields nodes in insertion order.
func (g *Graph) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, id := range g.order {
			if !yield(g.nodes[id]) {
				return
			}
		}
	}
}

// Edges yields (from, to) pairs in node insertion order.
func (g *Graph) Edges() iter.Seq2[nodeid.ID, nodeid.ID] {
	return func(yield func(nodeid.ID, nodeid.ID) bool) {
		for _, id := range g.order {
			for _, r := range g.nodes[id].Right {
				if !yield(id, r) {
					return
				}
			}
		}
	}
}

// Rebuild installs decoded nodes with their adjacency as given and checks
// that every reference resolves and every right entry has a matching left one.
func Rebuild(nodes []*Node) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if len(n.Segment) == 0 {
			return nil, fmt.Errorf("%w at offset %d", ErrEmptySegment, n.Offset)
		}
		if nodeid.Compute(n.Segment, n.Offset) != n.ID {
			return nil, fmt.Errorf("%w: %s", ErrIDMismatch, n.ID)
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("graph: duplicate node %s", n.ID)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	type pair struct{ x, y nodeid.ID }
	balance := make(map[pair]int)
	for _, n := range nodes {
		for _, r := range n.Right {
			if !g.HasNode(r) {
				return nil, &DanglingReferenceError{From: n.ID, To: r, Missing: []nodeid.ID{r}}
			}
			balance[pair{n.ID, r}]++
			g.edges++
		}
		for _, l := range n.Left {
			if !g.HasNode(l) {
				return nil, &DanglingReferenceError{From: l, To: n.ID, Missing: []nodeid.ID{l}}
			}
			balance[pair{l, n.ID}]--
		}
	}
	for p, c := range balance {
		if c != 0 {
			return nil, fmt.Errorf("%w: %s -> %s", ErrAsymmetricEdge, p.x.Short(), p.y.Short())
		}
	}
	return g, nil
}
