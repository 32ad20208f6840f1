package app

import (
	"github.com/spf13/cobra"

	"flexvg/internal/ctxlog"
	"flexvg/internal/graphio"
	"flexvg/internal/pipeline"
)

func newConstructCmd(g *globals) *cobra.Command {
	var (
		output     string
		format     string
		noTrailing bool
		noPrecheck bool
	)
	cmd := &cobra.Command{
		Use:   "construct <reference-file> <variant-file>",
		Short: "Build a graph from a FASTA reference and a VCF file",
		Long: `Build a graph from a FASTA reference and a VCF file.

Either input may be gzip-compressed, and either (not both) may be "-" for
stdin. The graph is written to --output only after construction succeeds.`,
		Example: `  flexvg construct ref.fa.gz calls.vcf.gz -o graph.fvg
  flexvg construct ref.fa calls.vcf --format dot | dot -Tsvg > graph.svg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			if cmd.Flags().Changed("format") {
				cfg.Format = format
			}
			if noTrailing {
				cfg.NoTrailing = true
			}
			if noPrecheck {
				cfg.Precheck = false
			}
			if err := checkFormat(cfg.Format, output); err != nil {
				return err
			}

			ctx := cmd.Context()
			graph, _, err := pipeline.Construct(ctx,
				pipeline.Config{NoTrailing: cfg.NoTrailing, Precheck: cfg.Precheck}, args[0], args[1])
			if err != nil {
				return fatal(err)
			}
			return fatal(graphio.Save(output, cfg.Format, graph, cmd.OutOrStdout(), ctxlog.FromContext(ctx)))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "-", `output path ("-" is stdout; a directory for badger)`)
	f.StringVar(&format, "format", "msgpack", "output format: msgpack, json, dot or badger")
	f.BoolVar(&noTrailing, "no-trailing", false, "do not emit the region after the last variant of each sequence")
	f.BoolVar(&noPrecheck, "no-precheck", false, "skip the variant order check before construction")
	return cmd
}
