// Package app is the flexvg command line.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"flexvg/internal/config"
	"flexvg/internal/construct"
	"flexvg/internal/ctxlog"
	"flexvg/internal/graphio"
)

const (
	exitOK          = 0
	exitUsage       = 2
	exitFatal       = 3
	exitInterrupted = 130
)

// fatalError marks a failure of the work itself, as opposed to bad usage.
type fatalError struct{ err error }

func (f fatalError) Error() string { return f.err.Error() }
func (f fatalError) Unwrap() error { return f.err }

func fatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	debug      bool
	verbose    int
	logFormat  string

	cfg config.Config
}

// RunContext executes one flexvg invocation and returns its exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	g := &globals{}
	root := newRootCmd(g, outw, stderr)
	root.SetArgs(argv)

	err := root.ExecuteContext(parent)
	if ferr := outw.Flush(); err == nil && ferr != nil && !graphio.IsBrokenPipe(ferr) {
		err = fatal(ferr)
	}

	var fe fatalError
	switch {
	case err == nil:
		return exitOK
	case parent.Err() != nil || errors.Is(err, context.Canceled):
		_, _ = fmt.Fprintln(stderr, "interrupted")
		return exitInterrupted
	case graphio.IsBrokenPipe(err):
		return exitOK
	case errors.As(err, &fe):
		printError(stderr, construct.Kind(fe.err), fe.err)
		return exitFatal
	default:
		printError(stderr, "usage", err)
		_, _ = fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.CommandPath())
		return exitUsage
	}
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func printError(w io.Writer, kind string, err error) {
	prefix := color.New(color.FgHiRed, color.Bold)
	if isTerminal(w) {
		prefix.EnableColor()
	} else {
		prefix.DisableColor()
	}
	_, _ = fmt.Fprintf(w, "%s %s: %v\n", prefix.Sprint("error:"), kind, err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func newRootCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "flexvg",
		Short: "Build variation graphs from a reference and its variants",
		Long: `flexvg builds a variation graph from a FASTA reference and a VCF file.

Every reference sequence is cut at each variant position; the pieces become
content-addressed nodes linked in reference order. Variants must be sorted by
position and grouped by sequence in reference order.

Settings are read from --config (YAML), then FLEXVG_* environment variables,
then flags.

` + envHelp(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: g.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return err })

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVarP(&g.debug, "debug", "d", false, "debug logging")
	pf.CountVarP(&g.verbose, "verbose", "v", "more logging (repeatable)")
	pf.StringVar(&g.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newConstructCmd(g), newUpdateCmd(g), newVersionCmd())
	return root
}

// envHelp lists the environment variables config.Load reads.
func envHelp() string {
	var b strings.Builder
	b.WriteString("Environment:\n")
	config.Usage(&b)
	return strings.TrimRight(b.String(), "\n")
}

// setup resolves configuration and installs the logger on the command context.
func (g *globals) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if g.debug || g.verbose > 0 {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg

	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	} else {
		h = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	}
	log := slog.New(h).With("cmd", cmd.Name())
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), log))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "flexvg version %s\n", Version)
			return fatal(err)
		},
	}
}

// checkFormat rejects unknown output formats and Badger on stdout.
func checkFormat(name, output string) error {
	if name != graphio.Badger {
		if f, ok := graphio.Lookup(name); !ok || f.Write == nil {
			return fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(graphio.Names(), ", "))
		}
		return nil
	}
	if output == "-" {
		return errors.New("format badger needs --output DIR")
	}
	return nil
}
