package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/pipeline"
	"github.com/MeKo-Tech/symscan/internal/variant"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			Family:    "",
			Policy:    string(pipeline.PolicyFirstHit),
			Plan:      nil, // family default resolved at build time
			TimeoutMS: 0,
			Workers:   1,
			TryHarder: true,
			Multi:     false,
			ZBar: ZBarConfig{
				Enabled: true,
				Binary:  "zbarimg",
			},
		},
		Output: OutputConfig{
			Format: pipeline.FormatText,
		},
		Server: ServerConfig{
			Host:        "localhost",
			Port:        8080,
			CORSOrigin:  "*",
			MaxUploadMB: 50,
			TimeoutSec:  30,
		},
		Batch: BatchConfig{
			Workers:   runtime.NumCPU(),
			Recursive: false,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Output.Format != "" && !pipeline.IsValidFormat(c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(pipeline.ValidFormats, ", "))
	}

	if f := engine.Family(c.Pipeline.Family); f != engine.FamilyUnknown && !engine.IsKnownFamily(f) {
		return fmt.Errorf("invalid symbol family: %s", c.Pipeline.Family)
	}

	validPolicies := []string{string(pipeline.PolicyFirstHit), string(pipeline.PolicyExhaustive)}
	if !contains(validPolicies, c.Pipeline.Policy) {
		return fmt.Errorf("invalid policy: %s (must be one of: %s)",
			c.Pipeline.Policy, strings.Join(validPolicies, ", "))
	}

	if label, ok := variant.Plan(c.Pipeline.Plan).Validate(); !ok {
		return fmt.Errorf("invalid transform label in plan: %s", label)
	}

	if c.Pipeline.TimeoutMS < 0 {
		return fmt.Errorf("invalid timeout: %d (must not be negative)", c.Pipeline.TimeoutMS)
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("invalid pipeline workers: %d (must be positive)", c.Pipeline.Workers)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToPipelineConfig converts the config to the internal pipeline
// configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Family = engine.Family(c.Pipeline.Family)
	cfg.Policy = pipeline.Policy(c.Pipeline.Policy)
	cfg.Plan = variant.Plan(c.Pipeline.Plan)
	cfg.Timeout = time.Duration(c.Pipeline.TimeoutMS) * time.Millisecond
	cfg.MaxWorkers = c.Pipeline.Workers
	cfg.ZXing.TryHarder = c.Pipeline.TryHarder
	cfg.ZXing.Multi = c.Pipeline.Multi
	cfg.ZBarEnabled = c.Pipeline.ZBar.Enabled
	if c.Pipeline.ZBar.Binary != "" {
		cfg.ZBar.Binary = c.Pipeline.ZBar.Binary
	}
	return cfg
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
