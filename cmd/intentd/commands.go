// ABOUTME: Cobra command tree for intentd: serve (default), watch, catalog
// ABOUTME: Persistent flags --config, --interval, --verbose apply to every subcommand

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mauromedda/intentd/internal/catalog"
	"github.com/mauromedda/intentd/internal/intent"
)

type cliArgs struct {
	config   string
	interval time.Duration
	verbose  bool
}

func newRootCmd() *cobra.Command {
	var args cliArgs

	root := &cobra.Command{
		Use:   "intentd",
		Short: "Classify what a developer is doing from editor telemetry",
		Long: `intentd watches a stream of editing events (insertions, deletions,
cursor movement, undo/redo) and every few seconds infers an intent:
building, exploring, experimenting, refactoring, confused, or proposing.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), args)
		},
	}
	root.SetVersionTemplate("intentd {{.Version}}\n")

	root.PersistentFlags().StringVar(&args.config, "config", "", "Read settings from this file instead of ~/.intentd and .intentd")
	root.PersistentFlags().DurationVar(&args.interval, "interval", 0, "Classification interval (overrides config, e.g. 3s)")
	root.PersistentFlags().BoolVarP(&args.verbose, "verbose", "v", false, "Log every tick at debug level")

	root.AddCommand(serveCmd(&args))
	root.AddCommand(watchCmd(&args))
	root.AddCommand(catalogCmd())
	return root
}

func serveCmd(args *cliArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSONL RPC protocol on stdin/stdout",
		Long: `Read telemetry requests (record_change, cursor_move, undo_redo, tick, ...)
as JSON lines on stdin and answer on stdout. Every intent change is also
pushed as an intent_changed notification, forwarded to the broadcast
command, and sent to websocket clients when broadcast.listen is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *args)
		},
	}
}

func watchCmd(args *cliArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open a scratch editor and show the live intent badge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), *args)
		},
	}
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [query]",
		Short: "List the intents, optionally fuzzy-filtered by key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			query := ""
			if len(argv) == 1 {
				query = argv[0]
			}
			return runCatalog(cmd.OutOrStdout(), query)
		},
	}
}

// runCatalog prints the matching intents, styled on a terminal and as TSV
// otherwise.
func runCatalog(w io.Writer, query string) error {
	intents := intent.Search(query)
	if len(intents) == 0 {
		return fmt.Errorf("no intent matches %q", query)
	}

	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return catalog.WriteTSV(w, intents)
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return catalog.WriteStyled(w, intents, width)
}
