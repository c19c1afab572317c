// Package pipeline wires the classifier together: read manifest plus hit
// stream in, aggregator in the middle, intersects sink out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crane-bio/taxint/internal/engine"
	"github.com/crane-bio/taxint/internal/input"
	"github.com/crane-bio/taxint/internal/model"
	"github.com/crane-bio/taxint/internal/output"
	"github.com/crane-bio/taxint/internal/output/intersects"
	"github.com/crane-bio/taxint/internal/output/multi"
	"github.com/crane-bio/taxint/internal/output/stdout"
	"github.com/crane-bio/taxint/internal/taxonomy"
)

// Config holds everything one classification run needs.
type Config struct {
	ManifestPath string
	HitsPath     string
	TaxonomyPath string
	OutPath      string

	Cap                int
	MinCoveragePercent float64
	RootTaxon          model.TaxonID

	// Stdout mirrors every record to standard output in addition to the
	// intersects file.
	Stdout bool
}

// Run executes one classification run: strictly sequential, one logical
// worker, one pass over the hit stream. Independent runs may share the
// taxonomy index concurrently; it is opened read-only and never copied.
func Run(ctx context.Context, cfg Config) error {
	log := slog.Default().With("run_id", uuid.NewString())
	start := time.Now()

	reads, err := input.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	store, err := taxonomy.Open(cfg.TaxonomyPath)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	defer store.Close()

	res := taxonomy.NewResolver(store,
		taxonomy.WithRoot(cfg.RootTaxon),
		taxonomy.WithLogger(log),
	)

	fileSink, err := intersects.New(cfg.OutPath)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	var sink output.Output = fileSink
	if cfg.Stdout {
		sink = multi.New(fileSink, stdout.New())
	}

	agg := engine.New(res, store, reads,
		engine.Config{Cap: cfg.Cap, MinCoveragePercent: cfg.MinCoveragePercent},
		func(c model.Classification) error { return sink.Write(ctx, c) },
		engine.WithLogger(log),
	)

	log.Info("classification started",
		"manifest", cfg.ManifestPath, "hits", cfg.HitsPath,
		"taxonomy", cfg.TaxonomyPath, "out", cfg.OutPath,
		"reads", len(reads))

	hits, err := input.Open(cfg.HitsPath)
	if err != nil {
		sink.Close()
		return fmt.Errorf("pipeline: %w", err)
	}

	sc := input.NewHitScanner(hits)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			hits.Close()
			sink.Close()
			return ctx.Err()
		default:
		}
		if err := agg.Observe(sc.Hit()); err != nil {
			hits.Close()
			sink.Close()
			return fmt.Errorf("pipeline: observe: %w", err)
		}
		if agg.Done() {
			break
		}
	}
	scanErr := sc.Err()
	if err := hits.Close(); err != nil && scanErr == nil {
		scanErr = err
	}
	if scanErr != nil {
		sink.Close()
		return fmt.Errorf("pipeline: %w", scanErr)
	}

	if err := agg.Finish(); err != nil {
		sink.Close()
		return fmt.Errorf("pipeline: finalize: %w", err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	classified, skipped := agg.Stats()
	log.Info("classification finished",
		"classified", classified, "skipped", skipped,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
