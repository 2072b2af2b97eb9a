package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/symscan/internal/engine"
	"github.com/MeKo-Tech/symscan/internal/variant"
)

func TestBuilderDefaults(t *testing.T) {
	pl, err := NewBuilder().Build()
	require.NoError(t, err)

	cfg := pl.Config()
	assert.Equal(t, engine.FamilyUnknown, cfg.Family)
	assert.Equal(t, PolicyFirstHit, cfg.Policy)
	assert.Equal(t, variant.DefaultPlan(), cfg.Plan)
	assert.NotNil(t, cfg.HitLess)
	assert.Equal(t, []string{"zxing", "zbar"}, pl.Engines())
}

func TestBuilderRejectsUnknownFamily(t *testing.T) {
	_, err := NewBuilder().WithFamily(engine.Family("hologram")).Build()
	assert.Error(t, err)
}

func TestBuilderRejectsUnknownPolicy(t *testing.T) {
	_, err := NewBuilder().WithPolicy(Policy("best-effort")).Build()
	assert.Error(t, err)
}

func TestBuilderRejectsUnknownPlanLabel(t *testing.T) {
	_, err := NewBuilder().WithPlan(variant.Plan{"identity", "hologram-filter"}).Build()
	assert.Error(t, err)
}

func TestBuilderZBarDisabled(t *testing.T) {
	pl, err := NewBuilder().WithZBar(false, "").Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"zxing"}, pl.Engines())
}

func TestBuilderExplicitEnginesReplaceRoster(t *testing.T) {
	stub := &fakeEngine{name: "custom", families: engine.Families,
		attempt: nil}
	pl, err := NewBuilder().WithEngines(stub).Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, pl.Engines())
}

func TestPlanForFamily(t *testing.T) {
	assert.Equal(t, variant.ExtendedPlan(), PlanForFamily(engine.FamilyMaxiCode))
	assert.Equal(t, variant.MinimalPlan(), PlanForFamily(engine.FamilyLinear))
	assert.Equal(t, variant.DefaultPlan(), PlanForFamily(engine.FamilyQR))
	assert.Equal(t, variant.DefaultPlan(), PlanForFamily(engine.FamilyUnknown))
}

func TestPlanForFamilyResolvedAtBuild(t *testing.T) {
	pl, err := NewBuilder().WithFamily(engine.FamilyMaxiCode).Build()
	require.NoError(t, err)
	assert.Equal(t, variant.ExtendedPlan(), pl.Config().Plan)

	// An explicit plan wins over the family default.
	pl, err = NewBuilder().WithFamily(engine.FamilyMaxiCode).WithPlan(variant.MinimalPlan()).Build()
	require.NoError(t, err)
	assert.Equal(t, variant.MinimalPlan(), pl.Config().Plan)
}
