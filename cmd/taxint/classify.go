package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crane-bio/taxint/internal/config"
	"github.com/crane-bio/taxint/internal/model"
	"github.com/crane-bio/taxint/internal/pipeline"
)

var classifyFlags = struct {
	manifest    string
	hits        string
	taxonomy    string
	out         string
	cap         int
	minCoverage float64
	root        int64
	toStdout    bool
}{}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "classify reads from a tabular alignment hit stream",
	Long: `Classify consumes a read manifest and a read-grouped alignment hit
stream, and appends one classification line per qualifying read to the
intersects file. Hits for each read must be contiguous in the stream, best
alignment first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		applyClassifyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := cfg.LogLevel
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		initLogging(level, classifyFlags.toStdout)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			<-sigCh
			cancel()
		}()

		return pipeline.Run(ctx, pipeline.Config{
			ManifestPath:       classifyFlags.manifest,
			HitsPath:           classifyFlags.hits,
			TaxonomyPath:       classifyFlags.taxonomy,
			OutPath:            classifyFlags.out,
			Cap:                cfg.Cap,
			MinCoveragePercent: cfg.MinCoveragePercent,
			RootTaxon:          model.TaxonID(cfg.RootTaxon),
			Stdout:             classifyFlags.toStdout,
		})
	},
}

// applyClassifyFlags overlays explicitly set flags onto the env-loaded
// config. Precedence: flag > TAXINT_* env var > default.
func applyClassifyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("cap") {
		cfg.Cap = classifyFlags.cap
	}
	if cmd.Flags().Changed("min-coverage") {
		cfg.MinCoveragePercent = classifyFlags.minCoverage
	}
	if cmd.Flags().Changed("root") {
		cfg.RootTaxon = classifyFlags.root
	}
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyFlags.manifest, "manifest", "", "read manifest: readID<TAB>length per line (required)")
	f.StringVar(&classifyFlags.hits, "hits", "", "tabular alignment hit stream, read-grouped (required)")
	f.StringVar(&classifyFlags.taxonomy, "taxonomy", "", "taxonomy sqlite index (required)")
	f.StringVar(&classifyFlags.out, "out", "", "intersects output file, appended to (required)")
	f.IntVar(&classifyFlags.cap, "cap", 100, "max taxa considered per read; diversity denominator")
	f.Float64Var(&classifyFlags.minCoverage, "min-coverage", 95, "coverage gate, percent of read length")
	f.Int64Var(&classifyFlags.root, "root", 1, "root taxon ID of the reference taxonomy")
	f.BoolVar(&classifyFlags.toStdout, "stdout", false, "also write records to stdout")
	for _, name := range []string{"manifest", "hits", "taxonomy", "out"} {
		_ = classifyCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(classifyCmd)
}
