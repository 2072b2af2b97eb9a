package pipeline

import (
	"fmt"
	"time"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/variant"
)

// Policy selects how the orchestrator consumes the (variant, engine)
// cross product.
type Policy string

const (
	// PolicyFirstHit stops at the first non-empty decode in priority order.
	PolicyFirstHit Policy = "first-hit"

	// PolicyExhaustive scans every pair and selects the best hit by
	// bounding-polygon area.
	PolicyExhaustive Policy = "exhaustive"
)

// Config holds configuration for the scan pipeline.
type Config struct {
	// Family restricts the scan to one symbol family. FamilyUnknown scans
	// for everything.
	Family engine.Family

	// Plan is the ordered transform plan. Empty selects a family default.
	Plan variant.Plan

	// Policy is the cross-product consumption policy.
	Policy Policy

	// Timeout is the wall-clock budget for one scan. Zero means no
	// budget beyond the caller's context.
	Timeout time.Duration

	// MaxWorkers > 1 fans (variant, engine) pairs out to a worker pool.
	// Selection stays deterministic regardless of scheduling.
	MaxWorkers int

	// ZXing configures the in-process engine.
	ZXing engine.ZXingConfig

	// ZBar configures the external engine. Disabled when Binary is "-".
	ZBar        engine.ZBarConfig
	ZBarEnabled bool

	// HitLess orders two hits from one engine invocation; the later one
	// in the order wins. Nil uses largest bounding-polygon area, an
	// inferred tie-break documented as configurable rather than
	// load-bearing.
	HitLess func(a, b engine.RawHit) bool
}

// DefaultConfig returns a default pipeline config.
func DefaultConfig() Config {
	return Config{
		Family:      engine.FamilyUnknown,
		Policy:      PolicyFirstHit,
		ZXing:       engine.ZXingConfig{TryHarder: true},
		ZBar:        engine.DefaultZBarConfig(),
		ZBarEnabled: true,
	}
}

// PlanForFamily returns the default transform plan for a symbol family:
// MaxiCode gets the extended plan with geometric and morphological
// transforms, linear barcodes the minimal one.
func PlanForFamily(f engine.Family) variant.Plan {
	switch f {
	case engine.FamilyMaxiCode:
		return variant.ExtendedPlan()
	case engine.FamilyLinear:
		return variant.MinimalPlan()
	default:
		return variant.DefaultPlan()
	}
}

// Pipeline runs the adaptive detection pipeline: variant generation,
// deterministic cross-product orchestration, result normalization. A
// Pipeline is stateless across Scan calls and safe for concurrent use.
type Pipeline struct {
	cfg      Config
	registry *engine.Registry
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg     Config
	engines []engine.Engine
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithFamily restricts scanning to one symbol family.
func (b *Builder) WithFamily(f engine.Family) *Builder {
	b.cfg.Family = f
	return b
}

// WithPlan overrides the transform plan.
func (b *Builder) WithPlan(p variant.Plan) *Builder {
	if len(p) > 0 {
		b.cfg.Plan = p
	}
	return b
}

// WithPolicy selects the cross-product policy.
func (b *Builder) WithPolicy(p Policy) *Builder {
	if p != "" {
		b.cfg.Policy = p
	}
	return b
}

// WithTimeout sets the wall-clock scan budget.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	if d > 0 {
		b.cfg.Timeout = d
	}
	return b
}

// WithWorkers enables parallel fan-out over (variant, engine) pairs.
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.MaxWorkers = n
	}
	return b
}

// WithZBar toggles the external engine and sets its binary.
func (b *Builder) WithZBar(enabled bool, binary string) *Builder {
	b.cfg.ZBarEnabled = enabled
	if binary != "" {
		b.cfg.ZBar.Binary = binary
	}
	return b
}

// WithEngines replaces the default engine roster with an explicit one in
// priority order. Used by tests and by callers embedding custom decoders.
func (b *Builder) WithEngines(engines ...engine.Engine) *Builder {
	b.engines = engines
	return b
}

// WithHitLess overrides the within-engine hit ordering.
func (b *Builder) WithHitLess(less func(a, b engine.RawHit) bool) *Builder {
	b.cfg.HitLess = less
	return b
}

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	cfg := b.cfg
	if cfg.Family != engine.FamilyUnknown && !engine.IsKnownFamily(cfg.Family) {
		return nil, fmt.Errorf("unknown symbol family: %q", cfg.Family)
	}
	if cfg.Policy != PolicyFirstHit && cfg.Policy != PolicyExhaustive {
		return nil, fmt.Errorf("unknown policy: %q", cfg.Policy)
	}
	if len(cfg.Plan) == 0 {
		cfg.Plan = PlanForFamily(cfg.Family)
	}
	if label, ok := cfg.Plan.Validate(); !ok {
		return nil, fmt.Errorf("unknown transform label in plan: %q", label)
	}
	if cfg.HitLess == nil {
		cfg.HitLess = func(a, b engine.RawHit) bool { return a.Area() < b.Area() }
	}

	registry := engine.NewRegistry()
	if len(b.engines) > 0 {
		for _, e := range b.engines {
			registry.Register(e)
		}
	} else {
		registry.Register(engine.NewZXing(cfg.ZXing))
		if cfg.ZBarEnabled {
			registry.Register(engine.NewZBar(cfg.ZBar))
		}
	}
	return &Pipeline{cfg: cfg, registry: registry}, nil
}

// Config returns the effective pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Engines returns the engine names in priority order.
func (p *Pipeline) Engines() []string { return p.registry.Names() }
