// Package core provides the foundational domain types shared across
// AgentForge. It defines:
//
//   - Archetype (the closed classification of worker roles)
//   - WorkerSpecification (the immutable definition of a synthesized worker)
//   - SpawnRequest / SpawnRecommendation (queued and discovered spawn intents)
//   - Interaction (append-only records of worker activity)
//   - TaskAnalysis / AgentGap / EvaluationResult (discovery and health outputs)
//   - The typed error taxonomy for synthesis, registration and analysis
//
// The package intentionally keeps implementation concerns (reasoning calls,
// pool ownership, queue draining) out of scope so higher layers can share
// these values without import cycles. All exported identifiers include
// concise documentation to aid discoverability and external consumption.
package core
