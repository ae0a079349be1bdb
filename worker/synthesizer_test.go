package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/reasoning"
)

func TestSynthesizer_FullResponse(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Design the specification",
		`{"capabilities":["tax_law","audit_review"],"personality_traits":["precise","skeptical"],"decision_style":"evidence_based","expertise_level":0.95,"context_requirements":{"jurisdiction":"US"}}`)
	s := NewSynthesizer(svc)

	spec, err := s.Synthesize(context.Background(), core.ArchetypeDomainExpert, "tax law", map[string]any{"market": "US"}, "tax_expert")
	require.NoError(t, err)

	assert.Equal(t, "tax_expert", spec.Name)
	assert.Equal(t, core.ArchetypeDomainExpert, spec.Archetype)
	assert.Equal(t, "tax law", spec.Specialization)
	assert.Equal(t, []string{"tax_law", "audit_review"}, spec.Capabilities)
	assert.Equal(t, "evidence_based", spec.DecisionStyle)
	assert.InDelta(t, 0.95, spec.ExpertiseLevel, 1e-9)
	assert.Equal(t, "US", spec.ContextRequirements["jurisdiction"])
}

func TestSynthesizer_DefaultsForMissingFields(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Design the specification", `{}`)
	s := NewSynthesizer(svc)

	spec, err := s.Synthesize(context.Background(), core.ArchetypeTrendAnalyst, "short video", nil, "")
	require.NoError(t, err)

	assert.Equal(t, []string{}, spec.Capabilities)
	assert.Equal(t, []string{}, spec.PersonalityTraits)
	assert.Equal(t, "analytical", spec.DecisionStyle)
	assert.InDelta(t, 0.8, spec.ExpertiseLevel, 1e-9)
	assert.NotNil(t, spec.ContextRequirements)
	assert.Empty(t, spec.ContextRequirements)
}

func TestSynthesizer_ExplicitZeroExpertiseHonored(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Design the specification", `{"expertise_level":0}`)
	s := NewSynthesizer(svc)

	spec, err := s.Synthesize(context.Background(), core.ArchetypeTrendAnalyst, "memes", nil, "novice")
	require.NoError(t, err)
	assert.Zero(t, spec.ExpertiseLevel)
}

func TestSynthesizer_ClampsExpertise(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Design the specification", `{"expertise_level":1.7}`)
	s := NewSynthesizer(svc)

	spec, err := s.Synthesize(context.Background(), core.ArchetypeTrendAnalyst, "memes", nil, "expert")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, spec.ExpertiseLevel, 1e-9)
}

func TestSynthesizer_RejectsUnknownArchetype(t *testing.T) {
	svc := reasoning.NewMockService()
	s := NewSynthesizer(svc)

	_, err := s.Synthesize(context.Background(), core.Archetype("wizard"), "spells", nil, "")
	var unknown *core.UnknownArchetypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "wizard", unknown.Value)
	assert.Equal(t, 0, svc.CallCount())
}

func TestSynthesizer_RejectsEmptySpecialization(t *testing.T) {
	svc := reasoning.NewMockService()
	s := NewSynthesizer(svc)

	_, err := s.Synthesize(context.Background(), core.ArchetypeDomainExpert, "   ", nil, "")
	var synth *core.SynthesisError
	require.ErrorAs(t, err, &synth)
	assert.Equal(t, 0, svc.CallCount())
}

func TestSynthesizer_ServiceFailureIsSynthesisError(t *testing.T) {
	boom := errors.New("provider down")
	svc := reasoning.NewMockService().FailWith(boom)
	s := NewSynthesizer(svc)

	_, err := s.Synthesize(context.Background(), core.ArchetypeDomainExpert, "tax law", nil, "")
	var synth *core.SynthesisError
	require.ErrorAs(t, err, &synth)
	assert.ErrorIs(t, err, boom)
}

func TestSynthesizer_UnparseableResponseIsSynthesisError(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Design the specification", "I would rather not.")
	s := NewSynthesizer(svc)

	_, err := s.Synthesize(context.Background(), core.ArchetypeDomainExpert, "tax law", nil, "")
	var synth *core.SynthesisError
	require.ErrorAs(t, err, &synth)
}

func TestSynthesizer_PromptCarriesContextAndSchema(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Design the specification", `{}`)
	s := NewSynthesizer(svc)

	_, err := s.Synthesize(context.Background(), core.ArchetypeCulturalAdvisor, "latam markets", map[string]any{"language": "es"}, "")
	require.NoError(t, err)

	sent := svc.LastCall().Prompt
	assert.Contains(t, sent, "cultural_advisor")
	assert.Contains(t, sent, "latam markets")
	assert.Contains(t, sent, `"language": "es"`)
	assert.Contains(t, sent, `"expertise_level"`)
}

func TestGenerateName_Shape(t *testing.T) {
	name := GenerateName(core.ArchetypeQualityController, "Brand Safety")
	assert.True(t, strings.HasPrefix(name, "quality_controller_brand_safety_"), name)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "tax_law_compliance", Slugify("Tax Law & Compliance"))
	assert.Equal(t, "hebrew_poetry", Slugify("  Hebrew   poetry!! "))
	assert.Equal(t, "a1_b2", Slugify("A1-B2"))
	assert.Equal(t, "", Slugify("---"))

	// An empty slug falls back to a generic one.
	name := GenerateName(core.ArchetypeDomainExpert, "©®™")
	assert.True(t, strings.HasPrefix(name, "domain_expert_worker_"), name)
}
