package core

import "time"

// NeedLevel expresses how urgently a spawn request should be served.
type NeedLevel string

const (
	// NeedCritical requests bypass manual approval entirely.
	NeedCritical NeedLevel = "critical"
	// NeedHigh marks gaps discovered below the auto-spawn threshold.
	NeedHigh NeedLevel = "high"
	// NeedMedium is the default urgency for planned additions.
	NeedMedium NeedLevel = "medium"
	// NeedLow marks nice-to-have additions.
	NeedLow NeedLevel = "low"
)

// Valid reports whether the need level is one of the defined values.
func (n NeedLevel) Valid() bool {
	switch n {
	case NeedCritical, NeedHigh, NeedMedium, NeedLow:
		return true
	}
	return false
}

// Priority ranks discovery recommendations.
type Priority string

const (
	// PriorityHigh recommendations address blocking gaps.
	PriorityHigh Priority = "high"
	// PriorityMedium recommendations improve coverage.
	PriorityMedium Priority = "medium"
	// PriorityLow recommendations are opportunistic.
	PriorityLow Priority = "low"
)

// Valid reports whether the priority is one of the defined values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// SpawnRequest is a queued intent to create a worker. Requests are created,
// held in the request queue, and either drained by request processing (when
// auto-approvable) or left pending for manual approval.
type SpawnRequest struct {
	ID             string         `json:"id"`
	NeedLevel      NeedLevel      `json:"need_level"`
	Archetype      Archetype      `json:"archetype"`
	Specialization string         `json:"specialization"`
	Context        map[string]any `json:"context,omitempty"`
	Requester      string         `json:"requester"`
	CreatedAt      time.Time      `json:"created_at"`
	// AutoApprove is derived at creation: critical requests always
	// auto-approve; callers may also set it explicitly for lower levels.
	AutoApprove bool `json:"auto_approve"`
}

// NewSpawnRequest stamps identity and creation time and derives AutoApprove
// from the need level.
func NewSpawnRequest(
	needLevel NeedLevel,
	archetype Archetype,
	specialization string,
	taskContext map[string]any,
	requester string,
) SpawnRequest {
	return SpawnRequest{
		ID:             NewID(),
		NeedLevel:      needLevel,
		Archetype:      archetype,
		Specialization: specialization,
		Context:        taskContext,
		Requester:      requester,
		CreatedAt:      time.Now().UTC(),
		AutoApprove:    needLevel == NeedCritical,
	}
}

// AutoApprovable reports whether request processing may spawn this request
// without manual approval.
func (r SpawnRequest) AutoApprovable() bool {
	return r.AutoApprove || r.NeedLevel == NeedCritical
}

// SpawnRecommendation is a transient discovery output: produced by the
// discovery engine, consumed immediately by the orchestrator's threshold
// gate, never persisted.
type SpawnRecommendation struct {
	Archetype      Archetype `json:"archetype"`
	Specialization string    `json:"specialization"`
	Priority       Priority  `json:"priority"`
	Reason         string    `json:"reason"`
	Confidence     float64   `json:"confidence"`
}
