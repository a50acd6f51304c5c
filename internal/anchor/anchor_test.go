package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrison/foresight/internal/models"
)

func TestExtract(t *testing.T) {
	got := Extract(
		"I'm going to quit my job and start a company",
		"Perhaps the freedom of the first year comes with a new kind of risk, and my partner notices how much I miss the office.",
	)

	assert.Equal(t, []string{"security_vs_freedom", "known_vs_unknown", "connection_vs_autonomy"}, got.LifeTensions)
	assert.Equal(t, []string{"professional_self", "partner_self", "independent_self"}, got.IdentityMarkers)
	assert.Equal(t, "year_horizon", got.TemporalFrame)
	assert.Equal(t, "career_transition", got.DecisionEssence)
}

func TestExtractFallbacks(t *testing.T) {
	got := Extract("I'm going to do something different", "Perhaps it unfolds quietly.")

	assert.Empty(t, got.LifeTensions)
	assert.Empty(t, got.IdentityMarkers)
	assert.Equal(t, UndefinedHorizon, got.TemporalFrame)
	assert.Equal(t, LifeDirectionChange, got.DecisionEssence)
}

func TestExtractCaps(t *testing.T) {
	got := Extract(
		"freedom community achieve new duty growth partner past comfort identity",
		"job partner baby art travel degree care",
	)

	assert.Equal(t, []string{
		"security_vs_freedom",
		"belonging_vs_independence",
		"ambition_vs_contentment",
		"known_vs_unknown",
		"duty_vs_desire",
	}, got.LifeTensions)
	assert.Equal(t, []string{"professional_self", "partner_self", "parent_self", "creative_self"}, got.IdentityMarkers)
}

func TestExtractTemporalPriority(t *testing.T) {
	assert.Equal(t, "decade_horizon", Extract("We are moving abroad for the rest of my life", "Years pass.").TemporalFrame)
	assert.Equal(t, "month_horizon", Extract("I'm enrolling next month", "").TemporalFrame)
}

func TestExtractIsDeterministic(t *testing.T) {
	a := Extract("I'm going to move to Lisbon with my partner", "Maybe the mornings feel new.")
	b := Extract("I'm going to move to Lisbon with my partner", "Maybe the mornings feel new.")
	assert.Equal(t, a, b)
	assert.Equal(t, "relationship_change", a.DecisionEssence)
}

func TestSummary(t *testing.T) {
	assert.Empty(t, Summary(nil))

	s := Summary(&models.CoherenceAnchors{
		LifeTensions:    []string{"known_vs_unknown"},
		TemporalFrame:   "year_horizon",
		DecisionEssence: "career_transition",
	})
	assert.Contains(t, s, "Decision essence: career transition")
	assert.Contains(t, s, "Life tensions: known vs unknown")
	assert.NotContains(t, s, "Identity facets")
}
