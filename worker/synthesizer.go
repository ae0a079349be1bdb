package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/internal/prompt"
	"github.com/hupe1980/agentforge/logging"
	"github.com/hupe1980/agentforge/reasoning"
)

// SynthesizerOptions configure the specification synthesizer.
type SynthesizerOptions struct {
	// Model overrides the provider default for synthesis calls.
	Model  string
	Logger logging.Logger
}

// Synthesizer turns an (archetype, specialization, context) triple into a
// complete WorkerSpecification with one structured reasoning call.
type Synthesizer struct {
	service reasoning.Service
	opts    SynthesizerOptions
}

// NewSynthesizer creates a synthesizer on top of the given service.
func NewSynthesizer(service reasoning.Service, optFns ...func(o *SynthesizerOptions)) *Synthesizer {
	opts := SynthesizerOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Synthesizer{service: service, opts: opts}
}

// specPayload is the JSON shape requested from the reasoning service.
// Archetype and name are supplied locally and deliberately absent. All
// fields are optional; missing ones take documented defaults.
type specPayload struct {
	Capabilities        []string       `json:"capabilities,omitempty" description:"concrete snake_case capability tags"`
	PersonalityTraits   []string       `json:"personality_traits,omitempty" description:"short personality adjectives, ordered by prominence"`
	DecisionStyle       string         `json:"decision_style,omitempty" description:"how the worker reaches decisions, e.g. analytical or intuitive"`
	ExpertiseLevel      *float64       `json:"expertise_level,omitempty" description:"expertise between 0 and 1"`
	ContextRequirements map[string]any `json:"context_requirements,omitempty" description:"inputs the worker needs available when working"`
}

const synthesisTemplate = `Design the specification for a new specialist worker.

Archetype: {{.Archetype}}
Specialization: {{.Specialization}}

Task context:
{{.Context}}

Respond with a JSON object matching this schema:
{{.Schema}}

capabilities must be concrete snake_case tags relevant to the
specialization. expertise_level must be between 0 and 1.`

// Synthesize produces a WorkerSpecification. The archetype must be a member
// of the closed enumeration and the specialization must be non-empty; an
// unusable reasoning response is a hard *core.SynthesisError. An empty name
// gets a generated one.
func (s *Synthesizer) Synthesize(ctx context.Context, archetype core.Archetype, specialization string, taskContext map[string]any, name string) (*core.WorkerSpecification, error) {
	if !archetype.Valid() {
		return nil, &core.UnknownArchetypeError{Value: string(archetype)}
	}
	if strings.TrimSpace(specialization) == "" {
		return nil, &core.SynthesisError{Archetype: archetype, Specialization: specialization, Err: errors.New("specialization must not be empty")}
	}

	text, err := prompt.Render(synthesisTemplate, map[string]any{
		"Archetype":      archetype.String(),
		"Specialization": specialization,
		"Context":        formatContext(taskContext),
		"Schema":         reasoning.DescribeSchema[specPayload](),
	})
	if err != nil {
		return nil, &core.SynthesisError{Archetype: archetype, Specialization: specialization, Err: err}
	}

	payload, err := reasoning.Structured[specPayload](ctx, s.service, reasoning.Request{
		Prompt: text,
		Model:  s.opts.Model,
	})
	if err != nil {
		return nil, &core.SynthesisError{Archetype: archetype, Specialization: specialization, Err: err}
	}

	spec := &core.WorkerSpecification{
		Archetype:           archetype,
		Specialization:      specialization,
		Capabilities:        payload.Capabilities,
		PersonalityTraits:   payload.PersonalityTraits,
		DecisionStyle:       strings.TrimSpace(payload.DecisionStyle),
		ExpertiseLevel:      0.8,
		ContextRequirements: payload.ContextRequirements,
	}
	if spec.Capabilities == nil {
		spec.Capabilities = []string{}
	}
	if spec.PersonalityTraits == nil {
		spec.PersonalityTraits = []string{}
	}
	if spec.DecisionStyle == "" {
		spec.DecisionStyle = "analytical"
	}
	if payload.ExpertiseLevel != nil {
		spec.ExpertiseLevel = core.Clamp01(*payload.ExpertiseLevel)
	}
	if spec.ContextRequirements == nil {
		spec.ContextRequirements = map[string]any{}
	}

	if name == "" {
		name = GenerateName(archetype, specialization)
	}
	spec.Name = name

	s.opts.Logger.Debug("specification synthesized",
		"worker", spec.Name,
		"archetype", string(archetype),
		"capabilities", len(spec.Capabilities),
	)
	return spec, nil
}

// GenerateName builds a worker name of the form
// <archetype>_<specialization-slug>_<unix-seconds>.
func GenerateName(archetype core.Archetype, specialization string) string {
	slug := Slugify(specialization)
	if slug == "" {
		slug = "worker"
	}
	return fmt.Sprintf("%s_%s_%d", archetype, slug, time.Now().Unix())
}

// Slugify lowercases s and collapses every non-alphanumeric run into a
// single underscore. Generated worker names embed specializations in this
// form, so callers matching names against a specialization fragment must
// apply the same normalization.
func Slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}
