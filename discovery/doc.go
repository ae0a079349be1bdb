// Package discovery decides which workers an ecosystem is missing.
//
// The engine composes the capability catalog with the reasoning service:
//   - AnalyzeTask scores a task and recommends workers against the closed
//     archetype vocabulary
//   - IdentifyGaps computes missing capabilities locally as a set
//     difference, then analyzes each gap concurrently
//   - AnalyzeCapabilityGap performs the point analysis of a single gap,
//     with an LRU cache in front of the reasoning service
//   - RecommendWorkers turns a task analysis into threshold-filtered spawn
//     recommendations
//   - AnalyzeDiscussion watches a running discussion for signs that a
//     specialist is missing
//
// Discovery never hard-fails its callers: when the reasoning service is
// unusable, operations log the degradation and return conservative
// fallbacks.
package discovery
