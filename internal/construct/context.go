// Package construct builds and extends variation graphs from a reference
// stream and a variant stream.
//
// A Context is shared by every per-sequence Split of one run. Variant records
// are pulled from the cursor one at a time; a record belonging to a later
// sequence waits in the synchronizer's single-slot buffer.
package construct

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"flexvg/internal/fasta"
	"flexvg/internal/graph"
	"flexvg/internal/stream"
	"flexvg/internal/vcf"
)

// VariantCursor is a forward-only variant source; Next returns io.EOF at the end.
type VariantCursor interface {
	Next() (vcf.Record, error)
}

type Options struct {
	// NoTrailing skips the region after the last variant of a sequence.
	NoTrailing bool
	Logger     *slog.Logger
}

type Stats struct {
	Sequences int
	Variants  int
	Nodes     int
	Edges     int
}

// Context is the shared state of one construction run.
type Context struct {
	Graph *graph.Graph
	Sync  *stream.Synchronizer[vcf.Record]

	cursor    VariantCursor
	opts      Options
	log       *slog.Logger
	done      map[string]bool
	exhausted bool
	variants  int

	// per Split
	prev    *graph.Node
	nodeSeq string
}

func NewContext(g *graph.Graph, cursor VariantCursor, opts Options) *Context {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Context{
		Graph:  g,
		Sync:   stream.NewSynchronizer[vcf.Record](),
		cursor: cursor,
		opts:   opts,
		log:    log,
		done:   make(map[string]bool),
	}
}

func (c *Context) Stats() Stats {
	return Stats{
		Sequences: len(c.done),
		Variants:  c.variants,
		Nodes:     c.Graph.Len(),
		Edges:     c.Graph.EdgeCount(),
	}
}

// Split threads one reference sequence into the graph using every variant
// recorded for it.
func (c *Context) Split(ref fasta.Record) error {
	seqID := ref.ID
	if c.done[seqID] {
		return &OrderingViolationError{Sequence: seqID, Reason: "reference sequence appears twice"}
	}
	c.log.Debug("processing sequence", "sequence", seqID, "length", len(ref.Seq))
	c.prev, c.nodeSeq = nil, seqID

	// A buffered record must be looked at before the cursor moves, or it is lost.
	if rec, ok := c.Sync.Buffer.Read(); ok {
		if rec.Chrom == seqID {
			if err := c.process(ref, rec); err != nil {
				return err
			}
			if err := c.drain(ref); err != nil {
				return err
			}
		} else {
			if c.done[rec.Chrom] {
				return c.revisited(rec)
			}
			c.Sync.Buffer.Write(rec)
		}
	} else if err := c.drain(ref); err != nil {
		return err
	}

	if !c.opts.NoTrailing {
		if err := c.emit(ref, c.Sync.Start(seqID), len(ref.Seq), nil); err != nil {
			return err
		}
	}
	c.done[seqID] = true
	return nil
}

// drain pulls matching records until one for another sequence shows up or
// the cursor is exhausted.
func (c *Context) drain(ref fasta.Record) error {
	for !c.exhausted {
		rec, err := c.cursor.Next()
		if errors.Is(err, io.EOF) {
			c.exhausted = true
			return nil
		}
		if err != nil {
			return c.malformed(ref.ID, err)
		}
		if rec.Chrom != ref.ID {
			if c.done[rec.Chrom] {
				return c.revisited(rec)
			}
			c.log.Debug("buffering record for later sequence",
				"record_sequence", rec.Chrom, "sequence", ref.ID, "pos", rec.Pos)
			c.Sync.Buffer.Write(rec)
			return nil
		}
		if err := c.process(ref, rec); err != nil {
			return err
		}
	}
	return nil
}

// process slices the conserved region ending at the record's position.
func (c *Context) process(ref fasta.Record, rec vcf.Record) error {
	start := c.Sync.Start(ref.ID)
	end := rec.Pos
	if end < 1 {
		return &MalformedRecordError{
			Sequence: ref.ID, LastPosition: start,
			Err: fmt.Errorf("position %d is not 1-based", rec.Pos),
		}
	}
	if end > len(ref.Seq) {
		return &MalformedRecordError{
			Sequence: ref.ID, LastPosition: start,
			Err: fmt.Errorf("position %d beyond sequence length %d", rec.Pos, len(ref.Seq)),
		}
	}
	if end < start {
		return &OrderingViolationError{
			Sequence: ref.ID, Position: rec.Pos, LastPosition: start,
			Reason: "positions decrease within sequence",
		}
	}
	c.variants++
	allele := &graph.Allele{ID: rec.ID, Position: rec.Pos, Ref: rec.Ref, Alt: rec.Alt}
	if err := c.emit(ref, start, end, allele); err != nil {
		return err
	}
	c.Sync.Advance(ref.ID, end)
	return nil
}

// emit adds the node for ref.Seq[start:end] and links it after the previous
// one. An empty region only attaches the allele to the previous node.
func (c *Context) emit(ref fasta.Record, start, end int, allele *graph.Allele) error {
	if start >= end {
		if allele != nil && c.prev != nil {
			c.prev.Variants = append(c.prev.Variants, *allele)
		}
		return nil
	}
	n := graph.NewNode(ref.Seq[start:end], start, ref.ID)
	if allele != nil {
		n.Variants = []graph.Allele{*allele}
	}
	if err := c.Graph.AddNode(n); err != nil {
		return err
	}
	stored, _ := c.Graph.Node(n.ID)
	if c.prev != nil {
		if err := c.Graph.AddEdge(c.prev.ID, stored.ID); err != nil {
			return err
		}
	}
	c.log.Debug("node", "id", stored.ID.Short(), "sequence", ref.ID, "start", start, "end", end)
	c.prev = stored
	return nil
}

// Finish reports variants that were never consumed: their sequence is either
// missing from the reference or came in a different order.
func (c *Context) Finish() error {
	if rec, ok := c.Sync.Buffer.Peek(); ok {
		return c.leftover(rec)
	}
	if c.exhausted {
		return nil
	}
	rec, err := c.cursor.Next()
	if errors.Is(err, io.EOF) {
		c.exhausted = true
		return nil
	}
	if err != nil {
		return c.malformed("", err)
	}
	return c.leftover(rec)
}

func (c *Context) leftover(rec vcf.Record) error {
	reason := "sequence not found in reference"
	if c.done[rec.Chrom] {
		reason = "variants remain after the sequence was split"
	} else if len(c.done) > 0 {
		reason = "sequence not found in reference or out of reference order"
	}
	return &OrderingViolationError{Sequence: rec.Chrom, Position: rec.Pos, Reason: reason}
}

func (c *Context) revisited(rec vcf.Record) error {
	return &OrderingViolationError{
		Sequence: rec.Chrom, Position: rec.Pos,
		Reason: "sequence was already split; variant file order differs from reference order",
	}
}

func (c *Context) malformed(seqID string, err error) error {
	return wrapReadErr(seqID, c.Sync.Start(seqID), err)
}

// wrapReadErr turns parse failures into MalformedRecordError and passes I/O
// errors through.
func wrapReadErr(seqID string, last int, err error) error {
	var se *vcf.SyntaxError
	if errors.As(err, &se) {
		return &MalformedRecordError{Sequence: seqID, LastPosition: last, Line: se.Line, Err: err}
	}
	return fmt.Errorf("reading variants for %q: %w", seqID, err)
}
