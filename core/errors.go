package core

import "fmt"

// SynthesisError reports that the reasoning service could not produce a
// usable worker specification. It is a hard error: no worker was created and
// callers must not assume one exists.
type SynthesisError struct {
	Archetype      Archetype
	Specialization string
	Err            error
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed for %s/%s: %v", e.Archetype, e.Specialization, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SynthesisError) Unwrap() error { return e.Err }

// DuplicateNameError reports a registration collision in the active pool.
// The pool is left untouched when this is returned.
type DuplicateNameError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("worker name already registered: %s", e.Name)
}

// UnknownArchetypeError reports a value outside the closed archetype
// enumeration.
type UnknownArchetypeError struct {
	Value string
}

// Error implements the error interface.
func (e *UnknownArchetypeError) Error() string {
	return fmt.Sprintf("unknown archetype: %q", e.Value)
}

// AnalysisDegradedError records that a discovery or evaluation sub-call fell
// back to conservative defaults. It is a warning: discovery operations log it
// and return fallback values instead of propagating it to callers.
type AnalysisDegradedError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *AnalysisDegradedError) Error() string {
	return fmt.Sprintf("analysis degraded in %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *AnalysisDegradedError) Unwrap() error { return e.Err }
