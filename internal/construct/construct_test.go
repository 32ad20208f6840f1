package construct

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"flexvg/internal/fasta"
	"flexvg/internal/graph"
	"flexvg/internal/nodeid"
	"flexvg/internal/vcf"
)

type sliceCursor struct {
	recs []vcf.Record
	err  error // returned after recs are consumed, instead of io.EOF
	read int
}

func (s *sliceCursor) Next() (vcf.Record, error) {
	if s.read < len(s.recs) {
		r := s.recs[s.read]
		s.read++
		return r, nil
	}
	if s.err != nil {
		return vcf.Record{}, s.err
	}
	return vcf.Record{}, io.EOF
}

func variants(kv ...any) *sliceCursor {
	c := &sliceCursor{}
	for i := 0; i < len(kv); i += 2 {
		c.recs = append(c.recs, vcf.Record{
			Chrom: kv[i].(string), Pos: kv[i+1].(int),
			ID: "v", Ref: "N", Alt: []string{"A"},
		})
	}
	return c
}

var scenarioRefs = []fasta.Record{
	{ID: "chr1", Seq: []byte("ACGTACGTAA")},
	{ID: "chr2", Seq: []byte("TTTTGGGGCC")},
}

func build(t *testing.T, refs []fasta.Record, cur VariantCursor, opts Options) (*Context, error) {
	t.Helper()
	c := NewContext(graph.New(), cur, opts)
	for _, r := range refs {
		if err := c.Split(r); err != nil {
			return c, err
		}
	}
	return c, c.Finish()
}

type span struct {
	seg string
	off int
}

// path walks a sequence from its head following the first right edge that
// stays on the same sequence.
func path(g *graph.Graph, seq string) []span {
	var head *graph.Node
	for n := range g.Nodes() {
		if !n.On(seq) {
			continue
		}
		hasLeft := false
		for _, l := range n.Left {
			if ln, _ := g.Node(l); ln.On(seq) {
				hasLeft = true
			}
		}
		if !hasLeft {
			head = n
			break
		}
	}
	var out []span
	for n := head; n != nil; {
		out = append(out, span{string(n.Segment), n.Offset})
		var next *graph.Node
		for _, r := range n.Right {
			if rn, _ := g.Node(r); rn.On(seq) {
				next = rn
				break
			}
		}
		n = next
	}
	return out
}

func TestScenarioA(t *testing.T) {
	cur := variants("chr1", 4, "chr1", 8, "chr2", 3)
	c, err := build(t, scenarioRefs, cur, Options{})
	require.NoError(t, err)

	require.Equal(t, []span{{"ACGT", 0}, {"ACGT", 4}, {"AA", 8}}, path(c.Graph, "chr1"))
	// chr2 restarts at offset 0, not at chr1's last position
	require.Equal(t, []span{{"TTT", 0}, {"TGGGGCC", 3}}, path(c.Graph, "chr2"))

	st := c.Stats()
	require.Equal(t, Stats{Sequences: 2, Variants: 3, Nodes: 5, Edges: 3}, st)

	first := nodeid.Compute([]byte("ACGT"), 0)
	second := nodeid.Compute([]byte("ACGT"), 4)
	require.True(t, c.Graph.EdgeExists(first, second))
	require.False(t, c.Graph.EdgeExists(second, first))
}

func TestScenarioANoTrailing(t *testing.T) {
	c, err := build(t, scenarioRefs, variants("chr1", 4, "chr1", 8, "chr2", 3), Options{NoTrailing: true})
	require.NoError(t, err)
	require.Equal(t, []span{{"ACGT", 0}, {"ACGT", 4}}, path(c.Graph, "chr1"))
	require.Equal(t, []span{{"TTT", 0}}, path(c.Graph, "chr2"))
	require.Equal(t, 3, c.Graph.Len())
}

func TestScenarioBLookahead(t *testing.T) {
	cur := variants("chr1", 2, "chr2", 5, "chr2", 7)
	c := NewContext(graph.New(), cur, Options{})

	require.NoError(t, c.Split(scenarioRefs[0]))
	buffered, ok := c.Sync.Buffer.Peek()
	require.True(t, ok, "chr2 record must wait in the buffer")
	require.Equal(t, "chr2", buffered.Chrom)
	require.Equal(t, 5, buffered.Pos)
	require.Equal(t, []span{{"AC", 0}, {"GTACGTAA", 2}}, path(c.Graph, "chr1"))

	require.NoError(t, c.Split(scenarioRefs[1]))
	require.False(t, c.Sync.Buffer.HasValue())
	require.Equal(t, []span{{"TTTTG", 0}, {"GG", 5}, {"GGCC", 7}}, path(c.Graph, "chr2"))
	require.NoError(t, c.Finish())

	// each variant landed exactly once
	var alleles []int
	for n := range c.Graph.Nodes() {
		for _, a := range n.Variants {
			alleles = append(alleles, a.Position)
		}
	}
	require.ElementsMatch(t, []int{2, 5, 7}, alleles)
	require.Equal(t, 3, c.Stats().Variants)
}

func TestBufferWrittenBackForSkippedSequence(t *testing.T) {
	refs := []fasta.Record{
		{ID: "chr1", Seq: []byte("AAAA")},
		{ID: "chr2", Seq: []byte("CCCC")},
		{ID: "chr3", Seq: []byte("GGGG")},
	}
	c, err := build(t, refs, variants("chr3", 2), Options{})
	require.NoError(t, err)
	require.Equal(t, []span{{"AAAA", 0}}, path(c.Graph, "chr1"))
	require.Equal(t, []span{{"CCCC", 0}}, path(c.Graph, "chr2"))
	require.Equal(t, []span{{"GG", 0}, {"GG", 2}}, path(c.Graph, "chr3"))
}

func TestZeroVariantsOneNodePerSequence(t *testing.T) {
	c, err := build(t, scenarioRefs, variants(), Options{})
	require.NoError(t, err)
	require.Equal(t, 2, c.Graph.Len())
	require.Zero(t, c.Graph.EdgeCount())
	require.Equal(t, []span{{"ACGTACGTAA", 0}}, path(c.Graph, "chr1"))
}

func TestIdenticalContentIsDeduplicated(t *testing.T) {
	refs := []fasta.Record{{ID: "a", Seq: []byte("ACGT")}, {ID: "b", Seq: []byte("ACGT")}}
	c, err := build(t, refs, variants(), Options{})
	require.NoError(t, err)
	require.Equal(t, 1, c.Graph.Len())

	n, _ := c.Graph.Node(nodeid.Compute([]byte("ACGT"), 0))
	require.Equal(t, "a", n.Sequence)
	require.Equal(t, []string{"a", "b"}, n.Sequences)
}

func TestRepeatedPositionAttachesToPreviousNode(t *testing.T) {
	c, err := build(t, scenarioRefs[:1], variants("chr1", 4, "chr1", 4), Options{})
	require.NoError(t, err)
	n, ok := c.Graph.Node(nodeid.Compute([]byte("ACGT"), 0))
	require.True(t, ok)
	require.Len(t, n.Variants, 2)
	require.Equal(t, []span{{"ACGT", 0}, {"ACGTAA", 4}}, path(c.Graph, "chr1"))
}

func TestOrderingViolations(t *testing.T) {
	tests := []struct {
		name   string
		cur    *sliceCursor
		seq    string
		reason string
	}{
		{"decreasing position", variants("chr1", 8, "chr1", 4), "chr1", "decrease"},
		{"sequence revisited", variants("chr2", 3, "chr1", 4), "chr1", "already split"},
		{"sequence missing from reference", variants("chr1", 4, "chrX", 5), "chrX", "not found"},
		{"variants after last sequence", variants("chr1", 2, "chr2", 3, "chr1", 5), "chr1", "already split"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := build(t, scenarioRefs, tc.cur, Options{})
			var ove *OrderingViolationError
			require.True(t, errors.As(err, &ove), "got %v", err)
			require.Equal(t, tc.seq, ove.Sequence)
			require.Contains(t, ove.Reason, tc.reason)
			require.Equal(t, "ordering-violation", Kind(err))
		})
	}
}

func TestDuplicateReferenceSequence(t *testing.T) {
	refs := []fasta.Record{scenarioRefs[0], scenarioRefs[0]}
	_, err := build(t, refs, variants(), Options{})
	var ove *OrderingViolationError
	require.True(t, errors.As(err, &ove))
}

func TestMalformedRecords(t *testing.T) {
	t.Run("beyond sequence end", func(t *testing.T) {
		_, err := build(t, scenarioRefs, variants("chr1", 4, "chr1", 11), Options{})
		var mre *MalformedRecordError
		require.True(t, errors.As(err, &mre), "got %v", err)
		require.Equal(t, "chr1", mre.Sequence)
		require.Equal(t, 4, mre.LastPosition)
	})
	t.Run("zero position", func(t *testing.T) {
		_, err := build(t, scenarioRefs, variants("chr1", 0), Options{})
		require.Equal(t, "malformed-record", Kind(err))
	})
	t.Run("syntax error from reader", func(t *testing.T) {
		cur := variants("chr1", 4)
		cur.err = &vcf.SyntaxError{Line: 7, Field: "POS", Value: "x", Err: vcf.ErrPosition}
		c, err := build(t, scenarioRefs, cur, Options{})
		var mre *MalformedRecordError
		require.True(t, errors.As(err, &mre), "got %v", err)
		require.Equal(t, 7, mre.Line)
		require.ErrorIs(t, err, vcf.ErrPosition)
		// the node committed before the bad line survives
		require.True(t, c.Graph.HasNode(nodeid.Compute([]byte("ACGT"), 0)))
	})
	t.Run("io error passes through", func(t *testing.T) {
		cur := variants()
		cur.err = io.ErrUnexpectedEOF
		_, err := build(t, scenarioRefs, cur, Options{})
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		require.Equal(t, "io", Kind(err))
	})
}

func TestKind(t *testing.T) {
	g := graph.New()
	err := g.AddEdge(nodeid.Compute([]byte("A"), 0), nodeid.Compute([]byte("C"), 1))
	require.Equal(t, "dangling-reference", Kind(err))
	require.Empty(t, Kind(nil))
	require.Equal(t, "malformed-record", Kind(&vcf.SyntaxError{Line: 1, Err: vcf.ErrTooFewColumns}))
	require.Equal(t, "malformed-record", Kind(fmt.Errorf("read: %w", &fasta.SyntaxError{Line: 1, Err: fasta.ErrNoHeader})))
}

func TestErrorMessagesCarryContext(t *testing.T) {
	m := &MalformedRecordError{Sequence: "chr1", LastPosition: 4, Line: 9, Err: errors.New("boom")}
	require.True(t, strings.Contains(m.Error(), `"chr1"`) && strings.Contains(m.Error(), "line 9"))
	o := &OrderingViolationError{Sequence: "chr2", Position: 3, LastPosition: 8, Reason: "r"}
	require.Contains(t, o.Error(), "position 3")
}
