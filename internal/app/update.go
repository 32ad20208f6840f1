package app

import (
	"github.com/spf13/cobra"

	"flexvg/internal/ctxlog"
	"flexvg/internal/graphio"
	"flexvg/internal/pipeline"
)

func newUpdateCmd(g *globals) *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "update <graph-file> <variant-file>",
		Short: "Split an existing graph at the positions of new variants",
		Long: `Split an existing graph at the positions of new variants.

The graph may be any readable format (msgpack, json or a badger directory).
Without --output the input graph is rewritten in place, in its own format
unless --format says otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			detected, err := graphio.Detect(in)
			if err != nil {
				return fatal(err)
			}
			if !cmd.Flags().Changed("format") {
				format = detected
			}
			if !cmd.Flags().Changed("output") {
				output = in
			}
			if err := checkFormat(format, output); err != nil {
				return err
			}

			ctx := cmd.Context()
			log := ctxlog.FromContext(ctx)
			graph, err := graphio.Load(in, log)
			if err != nil {
				return fatal(err)
			}
			if _, err := pipeline.Update(ctx, graph, args[1]); err != nil {
				return fatal(err)
			}
			return fatal(graphio.Save(output, format, graph, cmd.OutOrStdout(), log))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", `output path ("-" is stdout); defaults to the input graph`)
	f.StringVar(&format, "format", "", "output format: msgpack, json, dot or badger; defaults to the input's")
	return cmd
}
