// Package reasoning defines the provider-agnostic contract for the external
// reasoning service that AgentForge treats as a black box.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Decode structured (JSON) completions into typed values (Structured)
//   - Facilitate deterministic mocking for tests (MockService)
//   - Add resilience (timeout, retry, rate limit, circuit breaker) as a
//     wrapper instead of baking it into every provider adapter
//
// Providers (e.g. OpenAI, Anthropic) implement the Service interface from
// the reasoning/openai and reasoning/anthropic subpackages so higher layers
// (synthesizer, discovery, orchestrator) remain decoupled from vendor SDKs.
package reasoning
