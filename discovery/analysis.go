package discovery

import (
	"github.com/hupe1980/agentforge/core"
)

// taskAnalysisPayload is the JSON shape requested for task analyses.
// Archetype and priority arrive as plain strings and are validated against
// the closed enumerations before anything downstream sees them.
type taskAnalysisPayload struct {
	ComplexityScore     float64                    `json:"complexity_score" description:"task complexity in [0,1]"`
	RequiredExpertise   []string                   `json:"required_expertise,omitempty" description:"expertise areas the task needs"`
	MissingCapabilities []string                   `json:"missing_capabilities,omitempty" description:"capability tags no active worker covers"`
	RecommendedWorkers  []recommendedWorkerPayload `json:"recommended_workers,omitempty" description:"workers worth spawning"`
	Confidence          float64                    `json:"confidence" description:"confidence in this analysis in [0,1]"`
	Reasoning           string                     `json:"reasoning,omitempty" description:"short explanation of the analysis"`
}

type recommendedWorkerPayload struct {
	Archetype      string `json:"archetype"`
	Specialization string `json:"specialization"`
	Priority       string `json:"priority"`
	Reason         string `json:"reason"`
}

// gapPayload is the JSON shape requested for single-capability analyses.
type gapPayload struct {
	Importance     float64 `json:"importance" description:"how critical the gap is in [0,1]"`
	Archetype      string  `json:"archetype" description:"archetype that would cover the capability"`
	Specialization string  `json:"specialization" description:"focus area for the new worker"`
	Justification  string  `json:"justification" description:"why this worker shape fills the gap"`
}

// discussionPayload is the JSON shape requested for discussion monitoring.
type discussionPayload struct {
	NeedsSpecialist bool    `json:"needs_specialist" description:"whether the discussion is blocked on missing expertise"`
	Confidence      float64 `json:"confidence" description:"confidence in this call in [0,1]"`
	Archetype       string  `json:"archetype,omitempty" description:"archetype of the missing specialist"`
	Specialization  string  `json:"specialization,omitempty" description:"focus area of the missing specialist"`
	Reasoning       string  `json:"reasoning,omitempty" description:"what in the discussion signals the gap"`
}

// DiscussionAnalysis is the monitoring verdict for a running discussion.
// When NeedsSpecialist is false the archetype fields are empty.
type DiscussionAnalysis struct {
	NeedsSpecialist bool           `json:"needs_specialist"`
	Confidence      float64        `json:"confidence"`
	Archetype       core.Archetype `json:"archetype,omitempty"`
	Specialization  string         `json:"specialization,omitempty"`
	Reasoning       string         `json:"reasoning,omitempty"`
}

const taskAnalysisTemplate = `Analyze the following task against the currently active workers.

Task: {{.Task}}

Context:
{{.Context}}

Active workers: {{.Workers}}

Available archetypes and their capabilities:
{{.Catalog}}

Respond with a JSON object matching this schema:
{{.Schema}}

complexity_score and confidence must be between 0 and 1. Every archetype
value must come from the list above. priority must be high, medium or low.`

const capabilityGapTemplate = `A required capability is not covered by any active worker.

Missing capability: {{.Capability}}

Capabilities already covered: {{.Existing}}

Available archetypes and their capabilities:
{{.Catalog}}

Respond with a JSON object matching this schema:
{{.Schema}}

importance must be between 0 and 1. archetype must come from the list above.`

const discussionTemplate = `Monitor an ongoing discussion and decide whether it is missing a specialist.

Topic: {{.Topic}}

Participants: {{.Participants}}

Transcript (most recent part):
{{.Transcript}}

Respond with a JSON object matching this schema:
{{.Schema}}

Set needs_specialist to true only when a concrete expertise gap blocks the
discussion. confidence must be between 0 and 1 and archetype, when set,
must be a known archetype.`
