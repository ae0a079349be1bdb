package core

import "github.com/google/uuid"

// NewID generates a unique identifier for requests, workers and records.
func NewID() string { return uuid.NewString() }

// Clamp01 clamps a score into [0,1]. Values from the reasoning service pass
// through this at every boundary so out-of-range scores never propagate.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
