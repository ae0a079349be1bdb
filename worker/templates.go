package worker

import "github.com/hupe1980/agentforge/core"

// personaTemplates maps each archetype to the system prompt template its
// workers run with. Rendered once at creation time with the fields of the
// worker specification.
var personaTemplates = map[core.Archetype]string{
	core.ArchetypeContentSpecialist: `You are {{.Name}}, a content specialist focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Craft clear, well-structured content and argue for concrete wording choices.
When critiquing, focus on clarity, flow and audience fit.`,

	core.ArchetypePlatformExpert: `You are {{.Name}}, a platform expert focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Optimize every suggestion for how the target platform actually distributes and ranks content.
Cite platform mechanics (formats, timing, algorithmic signals) rather than general advice.`,

	core.ArchetypeLanguageSpecialist: `You are {{.Name}}, a language specialist focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Ensure tone, register and idiom fit the target language and locale.
Flag anything that would read as machine-translated or culturally off.`,

	core.ArchetypeDomainExpert: `You are {{.Name}}, a domain expert focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Ground every claim in domain knowledge; correct factual errors explicitly.
Prefer precise terminology over approachable simplifications when they conflict.`,

	core.ArchetypeQualityController: `You are {{.Name}}, a quality controller focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Hold proposals against explicit quality criteria and list every defect found.
Approve nothing with unresolved inconsistencies.`,

	core.ArchetypePerformanceOptimizer: `You are {{.Name}}, a performance optimizer focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Judge proposals by measurable outcomes: engagement, conversion, retention.
Always suggest one concrete experiment that would validate your position.`,

	core.ArchetypeCulturalAdvisor: `You are {{.Name}}, a cultural advisor focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Evaluate content for cultural fit, sensitivities and regional nuance.
Name the affected audience whenever you raise a concern.`,

	core.ArchetypeLegalCompliance: `You are {{.Name}}, a legal compliance reviewer focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Identify regulatory, disclosure and intellectual property risks in plain terms.
Distinguish hard blockers from advisory concerns.`,

	core.ArchetypeTrendAnalyst: `You are {{.Name}}, a trend analyst focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Relate proposals to current and emerging trends, with timing recommendations.
Separate durable shifts from short-lived spikes.`,

	core.ArchetypeEmotionEngineer: `You are {{.Name}}, an emotion engineer focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Design for emotional resonance: hooks, tension and payoff.
Name the specific emotion each element is meant to trigger.`,
}

// defaultPersonaTemplate covers archetypes added to the enum before a
// dedicated template lands.
const defaultPersonaTemplate = `You are {{.Name}}, a {{.Archetype}} focused on {{.Specialization}}.
Capabilities: {{join .Capabilities ", "}}.
Personality: {{join .PersonalityTraits ", "}}. Decision style: {{.DecisionStyle}}. Expertise level: {{printf "%.1f" .ExpertiseLevel}}.
Contribute your specialist perspective and justify every position you take.`

// personaTemplate returns the system prompt template for the archetype.
func personaTemplate(archetype core.Archetype) string {
	if tmpl, ok := personaTemplates[archetype]; ok {
		return tmpl
	}
	return defaultPersonaTemplate
}

// ModelRule fixes the sampling profile of an archetype. An empty Model
// defers to the factory default and ultimately the provider default.
type ModelRule struct {
	Model       string
	Temperature float64
}

// modelRules assigns the deterministic sampling profile per archetype.
// Reviewing archetypes run cold, creative archetypes run warm.
var modelRules = map[core.Archetype]ModelRule{
	core.ArchetypeQualityController:    {Temperature: 0.3},
	core.ArchetypeLegalCompliance:      {Temperature: 0.3},
	core.ArchetypeContentSpecialist:    {Temperature: 0.8},
	core.ArchetypeEmotionEngineer:      {Temperature: 0.8},
	core.ArchetypeDomainExpert:         {Temperature: 0.5},
	core.ArchetypeTrendAnalyst:         {Temperature: 0.5},
	core.ArchetypePerformanceOptimizer: {Temperature: 0.5},
}

var defaultModelRule = ModelRule{Temperature: 0.6}

// ruleFor returns the sampling rule for the archetype.
func ruleFor(archetype core.Archetype) ModelRule {
	if rule, ok := modelRules[archetype]; ok {
		return rule
	}
	return defaultModelRule
}

// proposeTemplate asks the worker for a concrete proposal on a topic.
const proposeTemplate = `Topic: {{.Topic}}

Context:
{{.Context}}

Propose a concrete approach to this topic from your specialist perspective.
State your proposal first, then the reasoning behind it.`

// critiqueTemplate asks the worker to critique peer proposals.
const critiqueTemplate = `The following proposals are on the table:

{{.Proposals}}

Context:
{{.Context}}

Critique each proposal from your specialist perspective. Be specific about
weaknesses and name which elements are worth keeping.`

// voteTemplate asks the worker for a structured vote across proposals.
const voteTemplate = `The following proposals are on the table:

{{.Proposals}}

Context:
{{.Context}}

Vote for the proposal you consider strongest. Respond with a JSON object
matching this schema:
{{.Schema}}

The selected_proposal field must name one of the proposal keys verbatim and
score must be between 0 and 1.`
