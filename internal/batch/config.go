package batch

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/MeKo-Tech/symscan/internal/pipeline"
)

// Config holds all configuration for batch scanning.
type Config struct {
	// Pipeline is the scan pipeline configuration shared by all workers.
	Pipeline pipeline.Config

	// Output settings
	Format     string
	OutputFile string
	OverlayDir string

	// Parallelism across files (distinct from per-scan pair fan-out).
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress reporting
	Quiet bool
}

// DefaultConfig returns a default batch configuration.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: pipeline.DefaultConfig(),
		Format:   pipeline.FormatText,
		Workers:  runtime.NumCPU(),
	}
}

// Validate checks the batch configuration.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil batch config")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("invalid worker count: %d (must be positive)", c.Workers)
	}
	if c.Format != "" && !pipeline.IsValidFormat(c.Format) {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}
