package core

// RecommendedWorker is one worker suggestion inside a task analysis.
type RecommendedWorker struct {
	Archetype      Archetype `json:"archetype"`
	Specialization string    `json:"specialization"`
	Priority       Priority  `json:"priority"`
	Reason         string    `json:"reason"`
}

// TaskAnalysis is the structured result of analyzing a task against the
// currently active workers. ComplexityScore and Confidence are clamped into
// [0,1]; RecommendedWorkers only ever contains valid archetypes.
type TaskAnalysis struct {
	ComplexityScore     float64             `json:"complexity_score"`
	RequiredExpertise   []string            `json:"required_expertise"`
	MissingCapabilities []string            `json:"missing_capabilities"`
	RecommendedWorkers  []RecommendedWorker `json:"recommended_workers"`
	Confidence          float64             `json:"confidence"`
	Reasoning           string              `json:"reasoning"`
}

// AgentGap describes one uncovered capability and the worker shape that
// would fill it. Importance is clamped into [0,1].
type AgentGap struct {
	Capability     string    `json:"capability"`
	Importance     float64   `json:"importance"`
	Archetype      Archetype `json:"archetype"`
	Specialization string    `json:"specialization"`
	Justification  string    `json:"justification"`
}
