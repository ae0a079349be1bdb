// Package worker implements the lifecycle of specialist workers: synthesis
// of their specifications, creation, pooling and evaluation.
//
// Core pieces:
//   - Synthesizer turns (archetype, specialization, context) into a full
//     WorkerSpecification via one structured reasoning call
//   - Factory assembles handles from specifications using fixed
//     per-archetype prompt templates and sampling rules
//   - Pool is the name-keyed registry of live handles
//   - Handle exposes the worker operations (propose, critique, vote) and
//     owns the append-only interaction log
//
// Archetype-specific behavior lives in data tables (templates.go), not in
// conditionals, so unknown archetypes are rejected at the boundary instead
// of silently defaulting somewhere inside prompt formatting.
package worker
