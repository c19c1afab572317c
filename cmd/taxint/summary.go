package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crane-bio/taxint/internal/config"
	"github.com/crane-bio/taxint/internal/summary"
)

var summaryFlags = struct {
	in       string
	out      string
	minScore float64
}{}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "filter an intersects file by diversity score",
	Long: `Summary re-parses an intersects file and keeps records whose diversity
score is at or above the threshold, appending a count trailer. It is a text
filter only; the taxonomy index is not consulted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cmd.Flags().Changed("min-score") {
			cfg.MinDiversityScore = summaryFlags.minScore
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := cfg.LogLevel
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		initLogging(level, false)

		kept, total, err := summary.RunFiles(summaryFlags.in, summaryFlags.out, cfg.MinDiversityScore)
		if err != nil {
			return err
		}
		slog.Info("summary written",
			"in", summaryFlags.in, "out", summaryFlags.out,
			"kept", kept, "total", total, "min_score", cfg.MinDiversityScore)
		return nil
	},
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&summaryFlags.in, "in", "", "intersects file to filter (required)")
	f.StringVar(&summaryFlags.out, "out", "", "summary output file (required)")
	f.Float64Var(&summaryFlags.minScore, "min-score", 0.1, "minimum diversity score to keep")
	for _, name := range []string{"in", "out"} {
		_ = summaryCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(summaryCmd)
}
