package core

import "time"

// InteractionAction names the externally observable actions a worker can
// perform.
type InteractionAction string

const (
	// ActionPropose records a proposal produced for a topic.
	ActionPropose InteractionAction = "propose"
	// ActionCritique records a critique of peer proposals.
	ActionCritique InteractionAction = "critique"
	// ActionVote records a vote across peer proposals.
	ActionVote InteractionAction = "vote"
)

// Interaction is one append-only record in a worker's interaction log. Logs
// are never truncated or reordered; evaluation reads a bounded "last N"
// window but the log itself only grows.
type Interaction struct {
	Action    InteractionAction `json:"action"`
	Topic     string            `json:"topic,omitempty"`
	Response  string            `json:"response"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewInteraction stamps an interaction record with the current UTC time.
func NewInteraction(action InteractionAction, topic, response string) Interaction {
	return Interaction{
		Action:    action,
		Topic:     topic,
		Response:  response,
		Timestamp: time.Now().UTC(),
	}
}

// VoteOutcome is the structured result of a worker vote.
type VoteOutcome struct {
	SelectedProposal string  `json:"selected_proposal"`
	Score            float64 `json:"score"`
	Reasoning        string  `json:"reasoning"`
}
