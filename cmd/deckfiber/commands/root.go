package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// globals holds the persistent flags.
type globals struct {
	journal       string
	verbose       bool
	jsonOutput    bool
	traceExporter string
	otlpEndpoint  string
	renderTimeout time.Duration
	version       string
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	g := &globals{version: version}

	rootCmd := &cobra.Command{
		Use:   "deckfiber",
		Short: "Declarative layer trees for a deck.gl style engine",
		Long: `deckfiber renders declarative scene files into a deck instance.

A scene is a tree of views and layers, optionally grouped by wrapper
components. Each render is reconciled against the previous one and
committed to the engine as a single update of its views and layers.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.journal, "journal", "", "SQLite commit journal path")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVar(&g.jsonOutput, "json", false, "output in JSON format")
	flags.StringVar(&g.traceExporter, "trace-exporter", "none", "trace exporter (none, stdout, otlp)")
	flags.StringVar(&g.otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP collector endpoint")
	flags.DurationVar(&g.renderTimeout, "render-timeout", 0, "discard renders that take longer than this")

	rootCmd.AddCommand(newRenderCommand(g))
	rootCmd.AddCommand(newWatchCommand(g))
	rootCmd.AddCommand(newValidateCommand(g))
	rootCmd.AddCommand(newCatalogueCommand(g))
	rootCmd.AddCommand(newHistoryCommand(g))

	return rootCmd
}
