package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all taxint settings that have defaults. File paths are
// required per-command flags and do not live here.
type Config struct {
	// Cap is the maximum number of distinct taxa considered per read and
	// the denominator of the diversity score.
	Cap int
	// MinCoveragePercent is the coverage gate threshold, in percent of
	// read length.
	MinCoveragePercent float64
	// MinDiversityScore is the basic-summary retention threshold. Used
	// only by the summary filter, never by the engine.
	MinDiversityScore float64
	// RootTaxon is the designated root of the reference taxonomy.
	RootTaxon int64
	// LogLevel is the slog level name: debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from TAXINT_* environment variables with the
// standard defaults. Command-line flags override these values.
func Load() Config {
	return Config{
		Cap:                getenvInt("TAXINT_CAP", 100),
		MinCoveragePercent: getenvFloat("TAXINT_MIN_COVERAGE", 95),
		MinDiversityScore:  getenvFloat("TAXINT_MIN_DIVERSITY", 0.1),
		RootTaxon:          int64(getenvInt("TAXINT_ROOT_TAXON", 1)),
		LogLevel:           getenv("TAXINT_LOG_LEVEL", "info"),
	}
}

// Validate checks value ranges, collecting all problems.
func (c Config) Validate() error {
	var errs []error
	if c.Cap <= 0 {
		errs = append(errs, fmt.Errorf("cap must be > 0, got %d", c.Cap))
	}
	if c.MinCoveragePercent < 0 || c.MinCoveragePercent > 100 {
		errs = append(errs, fmt.Errorf("min coverage must be in [0,100], got %g", c.MinCoveragePercent))
	}
	if c.MinDiversityScore < 0 {
		errs = append(errs, fmt.Errorf("min diversity score must be >= 0, got %g", c.MinDiversityScore))
	}
	if c.RootTaxon <= 0 {
		errs = append(errs, fmt.Errorf("root taxon must be > 0, got %d", c.RootTaxon))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
