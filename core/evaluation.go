package core

import "time"

// EvaluationRecommendation is the coarse verdict of a worker evaluation.
type EvaluationRecommendation string

const (
	// RecommendationContinue keeps the worker as is.
	RecommendationContinue EvaluationRecommendation = "continue"
	// RecommendationAdjust keeps the worker but suggests changes.
	RecommendationAdjust EvaluationRecommendation = "adjust"
	// RecommendationReplace retires the worker in favor of a new one.
	RecommendationReplace EvaluationRecommendation = "replace"
)

// Valid reports whether the recommendation is one of the defined verdicts.
func (r EvaluationRecommendation) Valid() bool {
	switch r {
	case RecommendationContinue, RecommendationAdjust, RecommendationReplace:
		return true
	}
	return false
}

// EvaluationStatusNoInteractions marks the short-circuit result returned for
// workers with an empty interaction log; no reasoning call is made for them.
const EvaluationStatusNoInteractions = "no_interactions"

// EvaluationStatusDegraded marks results synthesized locally because the
// reasoning service produced unusable output.
const EvaluationStatusDegraded = "degraded"

// EvaluationResult scores one worker's performance. All score fields are
// clamped into [0,1] when parsed from the reasoning service.
type EvaluationResult struct {
	WorkerName                 string                   `json:"worker_name"`
	QualityScore               float64                  `json:"quality_score"`
	ConsistencyScore           float64                  `json:"consistency_score"`
	ExpertiseDemonstrated      float64                  `json:"expertise_demonstrated"`
	CollaborationEffectiveness float64                  `json:"collaboration_effectiveness"`
	OverallScore               float64                  `json:"overall_score"`
	Strengths                  []string                 `json:"strengths"`
	ImprovementsNeeded         []string                 `json:"improvements_needed"`
	Recommendation             EvaluationRecommendation `json:"recommendation"`
	// Status is empty for regular evaluations; see the status constants for
	// the short-circuit and degraded cases.
	Status      string    `json:"status,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}
