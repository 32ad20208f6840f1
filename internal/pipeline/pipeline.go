package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"flexvg/internal/construct"
	"flexvg/internal/ctxlog"
	"flexvg/internal/fasta"
	"flexvg/internal/fileio"
	"flexvg/internal/graph"
	"flexvg/internal/vcf"
)

// Config controls one construction run.
type Config struct {
	NoTrailing bool // skip the region after the last variant of each sequence
	Precheck   bool // verify chromosome order before construction (regular files only)
}

// Construct builds a graph from the reference at refPath and the variants at
// vcfPath. Either path may be "-" for stdin, but not both.
func Construct(ctx context.Context, cfg Config, refPath, vcfPath string) (*graph.Graph, construct.Stats, error) {
	log := ctxlog.FromContext(ctx)
	if refPath == "-" && vcfPath == "-" {
		return nil, construct.Stats{}, errors.New("reference and variant file cannot both be stdin")
	}

	if cfg.Precheck && fileio.IsRegular(refPath) && fileio.IsRegular(vcfPath) {
		if err := Precheck(ctx, refPath, vcfPath); err != nil {
			return nil, construct.Stats{}, err
		}
		log.Debug("precheck passed", "reference", refPath, "variants", vcfPath)
	}

	vr, err := vcf.Open(vcfPath)
	if err != nil {
		return nil, construct.Stats{}, fmt.Errorf("open variants: %w", err)
	}
	defer vr.Close()

	g := graph.New()
	cc := construct.NewContext(g, vr, construct.Options{NoTrailing: cfg.NoTrailing, Logger: log})
	if err := fasta.StreamPathCtx(ctx, refPath, cc.Split); err != nil {
		return nil, cc.Stats(), err
	}
	if err := cc.Finish(); err != nil {
		return nil, cc.Stats(), err
	}

	st := cc.Stats()
	log.Info("graph constructed",
		"sequences", st.Sequences, "variants", st.Variants, "nodes", st.Nodes, "edges", st.Edges)
	return g, st, nil
}

// Update splits the nodes of g at every variant in vcfPath.
func Update(ctx context.Context, g *graph.Graph, vcfPath string) (construct.Stats, error) {
	log := ctxlog.FromContext(ctx)
	vr, err := vcf.Open(vcfPath)
	if err != nil {
		return construct.Stats{}, fmt.Errorf("open variants: %w", err)
	}
	defer vr.Close()

	st, err := construct.Update(g, cancelCursor{ctx: ctx, c: vr}, log)
	if err != nil {
		return st, err
	}
	log.Info("graph updated", "variants", st.Variants, "nodes", st.Nodes, "edges", st.Edges)
	return st, nil
}

// cancelCursor stops a variant stream once ctx is done.
type cancelCursor struct {
	ctx context.Context
	c   construct.VariantCursor
}

func (cc cancelCursor) Next() (vcf.Record, error) {
	if err := cc.ctx.Err(); err != nil {
		return vcf.Record{}, err
	}
	return cc.c.Next()
}

// Precheck fails with *construct.OrderingViolationError when the variant file
// names a sequence the reference lacks, or when its chromosome blocks are not
// contiguous and in reference order.
func Precheck(ctx context.Context, refPath, vcfPath string) error {
	ids, err := fasta.Headers(ctx, refPath)
	if err != nil {
		return fmt.Errorf("read reference headers: %w", err)
	}
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := rank[id]; dup {
			return &construct.OrderingViolationError{Sequence: id, Reason: "reference sequence appears twice"}
		}
		rank[id] = i
	}

	vr, err := vcf.Open(vcfPath)
	if err != nil {
		return fmt.Errorf("open variants: %w", err)
	}
	defer vr.Close()

	var (
		cur     string
		curRank = -1
		seen    = map[string]bool{}
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := vr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// left for construction to report with sequence context
			return nil
		}
		if rec.Chrom == cur {
			continue
		}
		r, ok := rank[rec.Chrom]
		switch {
		case !ok:
			return &construct.OrderingViolationError{Sequence: rec.Chrom, Position: rec.Pos,
				Reason: "sequence not present in the reference"}
		case seen[rec.Chrom]:
			return &construct.OrderingViolationError{Sequence: rec.Chrom, Position: rec.Pos,
				Reason: "variants for the sequence are not contiguous"}
		case r < curRank:
			return &construct.OrderingViolationError{Sequence: rec.Chrom, Position: rec.Pos,
				Reason: fmt.Sprintf("sequence comes before %q in the reference", cur)}
		}
		seen[rec.Chrom] = true
		cur, curRank = rec.Chrom, r
	}
}
