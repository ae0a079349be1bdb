package core

// Archetype classifies a worker's general role. The set is closed and fixed
// at compile time; values outside it are rejected at every boundary via
// ParseArchetype rather than silently defaulted deep inside prompt code.
type Archetype string

const (
	// ArchetypeContentSpecialist produces and shapes primary content.
	ArchetypeContentSpecialist Archetype = "content_specialist"
	// ArchetypePlatformExpert knows distribution-platform conventions.
	ArchetypePlatformExpert Archetype = "platform_expert"
	// ArchetypeLanguageSpecialist handles a specific language or register.
	ArchetypeLanguageSpecialist Archetype = "language_specialist"
	// ArchetypeDomainExpert contributes subject-matter depth.
	ArchetypeDomainExpert Archetype = "domain_expert"
	// ArchetypeQualityController reviews output against quality bars.
	ArchetypeQualityController Archetype = "quality_controller"
	// ArchetypePerformanceOptimizer tunes for engagement and reach.
	ArchetypePerformanceOptimizer Archetype = "performance_optimizer"
	// ArchetypeCulturalAdvisor guards cultural fit and sensitivity.
	ArchetypeCulturalAdvisor Archetype = "cultural_advisor"
	// ArchetypeLegalCompliance checks regulatory and policy constraints.
	ArchetypeLegalCompliance Archetype = "legal_compliance"
	// ArchetypeTrendAnalyst tracks what is currently resonating.
	ArchetypeTrendAnalyst Archetype = "trend_analyst"
	// ArchetypeEmotionEngineer crafts emotional arc and resonance.
	ArchetypeEmotionEngineer Archetype = "emotion_engineer"
)

// archetypes lists every member in declaration order. Order matters: it is
// the stable iteration order used for prompts and the diversity denominator.
var archetypes = []Archetype{
	ArchetypeContentSpecialist,
	ArchetypePlatformExpert,
	ArchetypeLanguageSpecialist,
	ArchetypeDomainExpert,
	ArchetypeQualityController,
	ArchetypePerformanceOptimizer,
	ArchetypeCulturalAdvisor,
	ArchetypeLegalCompliance,
	ArchetypeTrendAnalyst,
	ArchetypeEmotionEngineer,
}

// Archetypes returns all members of the closed enumeration in stable order.
// The returned slice is a copy and safe to mutate.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypes))
	copy(out, archetypes)
	return out
}

// ArchetypeCount returns the size of the closed enumeration.
func ArchetypeCount() int { return len(archetypes) }

// Valid reports whether the archetype is a member of the closed enumeration.
func (a Archetype) Valid() bool {
	for _, known := range archetypes {
		if a == known {
			return true
		}
	}
	return false
}

// String returns the wire representation of the archetype.
func (a Archetype) String() string { return string(a) }

// ParseArchetype converts a raw string into an Archetype, returning
// *UnknownArchetypeError for values outside the closed enumeration.
func ParseArchetype(s string) (Archetype, error) {
	a := Archetype(s)
	if !a.Valid() {
		return "", &UnknownArchetypeError{Value: s}
	}
	return a, nil
}
