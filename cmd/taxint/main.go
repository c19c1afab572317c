package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/crane-bio/taxint/internal/logging"
)

const version = "0.4.0"

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "taxint",
	Short: "taxint - taxonomic-intersection read classifier",
	Long: `taxint assigns sequenced reads to taxonomic groups by intersecting the
reference-tree lineages of their top database-search hits. Using only the
portion of the tree all top hits agree on makes the assignment tolerant to
incomplete reference databases.`,
	Version: version,
}

func init() {
	rootCmd.SetVersionTemplate("taxint version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"log level: debug, info, warn, error (default from TAXINT_LOG_LEVEL)")
}

// initLogging configures the default slog logger from the --log-level flag
// or environment. JSON diagnostics when records go to stdout.
func initLogging(level string, outputIsStdout bool) {
	logging.Init(outputIsStdout, logging.ParseLevel(level))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
