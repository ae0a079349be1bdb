package core

// WorkerSpecification is the immutable definition of a synthesized worker.
// It is produced once by the spec synthesizer and never mutated afterwards;
// treat instances as values and use Clone when handing internals to callers
// that might write through shared slices or maps.
type WorkerSpecification struct {
	// Name uniquely identifies the worker within the active pool.
	Name string `json:"name"`
	// Archetype is the closed-set role classification.
	Archetype Archetype `json:"archetype"`
	// Specialization narrows the archetype to a concrete focus area.
	Specialization string `json:"specialization"`
	// Capabilities are the capability tags this worker covers.
	Capabilities []string `json:"capabilities"`
	// PersonalityTraits flavor the worker's prompts; order is preserved.
	PersonalityTraits []string `json:"personality_traits"`
	// DecisionStyle describes how the worker weighs options.
	DecisionStyle string `json:"decision_style"`
	// ExpertiseLevel is the self-assessed depth in [0,1].
	ExpertiseLevel float64 `json:"expertise_level"`
	// ContextRequirements carries opaque structured needs declared at
	// synthesis time.
	ContextRequirements map[string]any `json:"context_requirements"`
}

// Clone returns a deep copy. Slices and the context map are duplicated so
// the original specification stays immutable no matter what callers do.
func (s WorkerSpecification) Clone() WorkerSpecification {
	out := s
	if s.Capabilities != nil {
		out.Capabilities = make([]string, len(s.Capabilities))
		copy(out.Capabilities, s.Capabilities)
	}
	if s.PersonalityTraits != nil {
		out.PersonalityTraits = make([]string, len(s.PersonalityTraits))
		copy(out.PersonalityTraits, s.PersonalityTraits)
	}
	if s.ContextRequirements != nil {
		out.ContextRequirements = make(map[string]any, len(s.ContextRequirements))
		for k, v := range s.ContextRequirements {
			out.ContextRequirements[k] = v
		}
	}
	return out
}

// HasCapability reports whether the specification declares a capability tag.
func (s WorkerSpecification) HasCapability(capability string) bool {
	for _, c := range s.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
