package catalog

import (
	"sort"
	"strings"

	"github.com/hupe1980/agentforge/core"
)

// Catalog maps each worker archetype to its known capability tags.
// It is immutable after New and safe for concurrent use.
type Catalog struct {
	capabilities map[core.Archetype][]string
}

// New returns a catalog seeded with the built-in capability table.
func New() *Catalog {
	return &Catalog{
		capabilities: map[core.Archetype][]string{
			core.ArchetypeContentSpecialist: {
				"content_creation",
				"copywriting",
				"storytelling",
				"editing",
				"headline_writing",
			},
			core.ArchetypePlatformExpert: {
				"platform_optimization",
				"algorithm_analysis",
				"format_adaptation",
				"audience_targeting",
				"posting_strategy",
			},
			core.ArchetypeLanguageSpecialist: {
				"translation",
				"localization",
				"tone_adaptation",
				"grammar_review",
				"multilingual_content",
			},
			core.ArchetypeDomainExpert: {
				"domain_research",
				"fact_checking",
				"technical_accuracy",
				"industry_analysis",
				"terminology",
			},
			core.ArchetypeQualityController: {
				"quality_review",
				"consistency_checking",
				"error_detection",
				"standards_enforcement",
				"final_approval",
			},
			core.ArchetypePerformanceOptimizer: {
				"performance_analysis",
				"engagement_optimization",
				"ab_testing",
				"metric_interpretation",
				"iteration_planning",
			},
			core.ArchetypeCulturalAdvisor: {
				"cultural_sensitivity",
				"regional_adaptation",
				"social_context",
				"inclusive_language",
				"taboo_detection",
			},
			core.ArchetypeLegalCompliance: {
				"legal_review",
				"regulatory_compliance",
				"copyright_checking",
				"disclosure_requirements",
				"risk_assessment",
			},
			core.ArchetypeTrendAnalyst: {
				"trend_detection",
				"virality_analysis",
				"competitor_monitoring",
				"timing_optimization",
				"topic_forecasting",
			},
			core.ArchetypeEmotionEngineer: {
				"emotional_resonance",
				"sentiment_design",
				"hook_crafting",
				"narrative_tension",
				"audience_empathy",
			},
		},
	}
}

// CapabilitiesOf returns a sorted copy of the capability tags for the given
// archetype. Unknown archetypes yield an empty, non-nil slice.
func (c *Catalog) CapabilitiesOf(archetype core.Archetype) []string {
	caps, ok := c.capabilities[archetype]
	if !ok {
		return []string{}
	}
	out := make([]string, len(caps))
	copy(out, caps)
	sort.Strings(out)
	return out
}

// Has reports whether the archetype declares the given capability tag.
func (c *Catalog) Has(archetype core.Archetype, capability string) bool {
	for _, tag := range c.capabilities[archetype] {
		if tag == capability {
			return true
		}
	}
	return false
}

// All returns a deep copy of the full archetype to capability mapping.
func (c *Catalog) All() map[core.Archetype][]string {
	out := make(map[core.Archetype][]string, len(c.capabilities))
	for archetype, caps := range c.capabilities {
		cp := make([]string, len(caps))
		copy(cp, caps)
		out[archetype] = cp
	}
	return out
}

// PromptOverview renders the catalog as a bulleted list in canonical
// archetype order, suitable for embedding in reasoning prompts so the model
// picks from the closed archetype vocabulary.
func (c *Catalog) PromptOverview() string {
	var b strings.Builder
	for _, archetype := range core.Archetypes() {
		caps, ok := c.capabilities[archetype]
		if !ok {
			continue
		}
		b.WriteString("- ")
		b.WriteString(archetype.String())
		b.WriteString(": ")
		b.WriteString(strings.Join(caps, ", "))
		b.WriteString("\n")
	}
	return b.String()
}
