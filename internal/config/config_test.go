package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/pipeline"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad family", func(c *Config) { c.Pipeline.Family = "hologram" }},
		{"bad policy", func(c *Config) { c.Pipeline.Policy = "best-effort" }},
		{"bad plan label", func(c *Config) { c.Pipeline.Plan = []string{"identity", "swirl"} }},
		{"negative timeout", func(c *Config) { c.Pipeline.TimeoutMS = -1 }},
		{"zero pipeline workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"zero server timeout", func(c *Config) { c.Server.TimeoutSec = 0 }},
		{"zero batch workers", func(c *Config) { c.Batch.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAcceptsKnownFamilies(t *testing.T) {
	for _, f := range engine.Families {
		cfg := DefaultConfig()
		cfg.Pipeline.Family = string(f)
		assert.NoError(t, cfg.Validate(), string(f))
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Family = "qr"
	cfg.Pipeline.Policy = string(pipeline.PolicyExhaustive)
	cfg.Pipeline.Plan = []string{"identity", "otsu-threshold"}
	cfg.Pipeline.TimeoutMS = 1500
	cfg.Pipeline.Workers = 4
	cfg.Pipeline.TryHarder = false
	cfg.Pipeline.Multi = true
	cfg.Pipeline.ZBar.Enabled = false
	cfg.Pipeline.ZBar.Binary = "/usr/local/bin/zbarimg"
	require.NoError(t, cfg.Validate())

	pCfg := cfg.ToPipelineConfig()
	assert.Equal(t, engine.FamilyQR, pCfg.Family)
	assert.Equal(t, pipeline.PolicyExhaustive, pCfg.Policy)
	assert.Equal(t, 2, len(pCfg.Plan))
	assert.Equal(t, 1500*time.Millisecond, pCfg.Timeout)
	assert.Equal(t, 4, pCfg.MaxWorkers)
	assert.False(t, pCfg.ZXing.TryHarder)
	assert.True(t, pCfg.ZXing.Multi)
	assert.False(t, pCfg.ZBarEnabled)
	assert.Equal(t, "/usr/local/bin/zbarimg", pCfg.ZBar.Binary)
}
