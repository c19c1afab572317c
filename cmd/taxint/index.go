package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crane-bio/taxint/internal/config"
	"github.com/crane-bio/taxint/internal/taxonomy"
)

var indexFlags = struct {
	nodes string
	names string
	out   string
}{}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "build the taxonomy sqlite index from NCBI dump files",
	Long: `Index builds the read-only taxonomy index the classifier opens at run
time, from NCBI-style nodes.dmp and names.dmp dumps (scientific names only).
Inputs may be gzip-compressed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		level := cfg.LogLevel
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		initLogging(level, false)

		if err := taxonomy.BuildIndex(indexFlags.nodes, indexFlags.names, indexFlags.out); err != nil {
			return err
		}
		slog.Info("taxonomy index built",
			"nodes", indexFlags.nodes, "names", indexFlags.names, "out", indexFlags.out)
		return nil
	},
}

func init() {
	f := indexCmd.Flags()
	f.StringVar(&indexFlags.nodes, "nodes", "", "nodes.dmp path (required)")
	f.StringVar(&indexFlags.names, "names", "", "names.dmp path (required)")
	f.StringVar(&indexFlags.out, "out", "", "output sqlite index path (required)")
	for _, name := range []string{"nodes", "names", "out"} {
		_ = indexCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(indexCmd)
}
