package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/internal/prompt"
	"github.com/hupe1980/agentforge/logging"
	"github.com/hupe1980/agentforge/reasoning"
)

// Handle is a live worker. It owns its specification, rendered persona
// prompt, fixed sampling profile and append-only interaction log. Handles
// are safe for concurrent use.
type Handle struct {
	spec        *core.WorkerSpecification
	persona     string
	model       string
	temperature float64
	createdAt   time.Time
	service     reasoning.Service
	logger      logging.Logger

	mu           sync.Mutex
	interactions []core.Interaction
}

func newHandle(spec *core.WorkerSpecification, persona, model string, temperature float64, service reasoning.Service, logger logging.Logger) *Handle {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Handle{
		spec:        spec,
		persona:     persona,
		model:       model,
		temperature: temperature,
		createdAt:   time.Now().UTC(),
		service:     service,
		logger:      logger,
	}
}

// Name returns the unique worker name.
func (h *Handle) Name() string { return h.spec.Name }

// Spec returns a deep copy of the worker specification.
func (h *Handle) Spec() *core.WorkerSpecification {
	clone := h.spec.Clone()
	return &clone
}

// Archetype returns the worker archetype.
func (h *Handle) Archetype() core.Archetype { return h.spec.Archetype }

// Specialization returns the free-text focus area.
func (h *Handle) Specialization() string { return h.spec.Specialization }

// Model returns the model id the handle completes with; empty means the
// provider default.
func (h *Handle) Model() string { return h.model }

// Temperature returns the fixed sampling temperature.
func (h *Handle) Temperature() float64 { return h.temperature }

// CreatedAt returns the creation timestamp.
func (h *Handle) CreatedAt() time.Time { return h.createdAt }

// Persona returns the rendered system prompt.
func (h *Handle) Persona() string { return h.persona }

// Interactions returns a copy of the full interaction log.
func (h *Handle) Interactions() []core.Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Interaction, len(h.interactions))
	copy(out, h.interactions)
	return out
}

// LastInteractions returns a copy of the most recent n interactions, oldest
// first. n <= 0 returns an empty slice.
func (h *Handle) LastInteractions(n int) []core.Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 {
		return []core.Interaction{}
	}
	start := len(h.interactions) - n
	if start < 0 {
		start = 0
	}
	out := make([]core.Interaction, len(h.interactions)-start)
	copy(out, h.interactions[start:])
	return out
}

// InteractionCount returns the size of the interaction log.
func (h *Handle) InteractionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.interactions)
}

// Propose asks the worker for a proposal on the topic. The response is
// appended to the interaction log.
func (h *Handle) Propose(ctx context.Context, topic string, taskContext map[string]any) (string, error) {
	text, err := prompt.Render(proposeTemplate, map[string]any{
		"Topic":   topic,
		"Context": formatContext(taskContext),
	})
	if err != nil {
		return "", fmt.Errorf("worker %s: render propose prompt: %w", h.Name(), err)
	}

	resp, err := h.complete(ctx, text)
	if err != nil {
		return "", fmt.Errorf("worker %s: propose: %w", h.Name(), err)
	}

	h.record(core.NewInteraction(core.ActionPropose, topic, resp.Text))
	return resp.Text, nil
}

// Critique asks the worker to critique peer proposals, keyed by author. The
// response is appended to the interaction log.
func (h *Handle) Critique(ctx context.Context, proposals map[string]string, taskContext map[string]any) (string, error) {
	text, err := prompt.Render(critiqueTemplate, map[string]any{
		"Proposals": formatProposals(proposals),
		"Context":   formatContext(taskContext),
	})
	if err != nil {
		return "", fmt.Errorf("worker %s: render critique prompt: %w", h.Name(), err)
	}

	resp, err := h.complete(ctx, text)
	if err != nil {
		return "", fmt.Errorf("worker %s: critique: %w", h.Name(), err)
	}

	h.record(core.NewInteraction(core.ActionCritique, "", resp.Text))
	return resp.Text, nil
}

type votePayload struct {
	SelectedProposal string  `json:"selected_proposal" description:"key of the winning proposal, verbatim"`
	Score            float64 `json:"score" description:"strength of the winning proposal in [0,1]"`
	Reasoning        string  `json:"reasoning" description:"why this proposal wins"`
}

// Vote asks the worker for a structured vote across peer proposals. The
// outcome is appended to the interaction log.
func (h *Handle) Vote(ctx context.Context, proposals map[string]string, taskContext map[string]any) (*core.VoteOutcome, error) {
	text, err := prompt.Render(voteTemplate, map[string]any{
		"Proposals": formatProposals(proposals),
		"Context":   formatContext(taskContext),
		"Schema":    reasoning.DescribeSchema[votePayload](),
	})
	if err != nil {
		return nil, fmt.Errorf("worker %s: render vote prompt: %w", h.Name(), err)
	}

	payload, err := reasoning.Structured[votePayload](ctx, h.service, h.request(text))
	if err != nil {
		return nil, fmt.Errorf("worker %s: vote: %w", h.Name(), err)
	}

	outcome := &core.VoteOutcome{
		SelectedProposal: payload.SelectedProposal,
		Score:            core.Clamp01(payload.Score),
		Reasoning:        payload.Reasoning,
	}

	h.record(core.NewInteraction(core.ActionVote, "", fmt.Sprintf("voted for %q (score %.2f): %s", outcome.SelectedProposal, outcome.Score, outcome.Reasoning)))
	return outcome, nil
}

func (h *Handle) complete(ctx context.Context, text string) (*reasoning.Response, error) {
	return h.service.CompleteText(ctx, h.request(text))
}

func (h *Handle) request(text string) reasoning.Request {
	return reasoning.Request{
		Prompt:      text,
		System:      h.persona,
		Model:       h.model,
		Temperature: h.temperature,
	}
}

func (h *Handle) record(interaction core.Interaction) {
	h.mu.Lock()
	h.interactions = append(h.interactions, interaction)
	h.mu.Unlock()
	h.logger.Debug("worker interaction recorded", "worker", h.Name(), "action", string(interaction.Action))
}

// formatContext renders a task context map as indented JSON with stable key
// order. Empty contexts render as a placeholder line.
func formatContext(taskContext map[string]any) string {
	if len(taskContext) == 0 {
		return "(none)"
	}
	b, err := json.MarshalIndent(taskContext, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", taskContext)
	}
	return string(b)
}

// formatProposals renders proposals sorted by author so prompts are stable
// across runs.
func formatProposals(proposals map[string]string) string {
	if len(proposals) == 0 {
		return "(none)"
	}
	authors := make([]string, 0, len(proposals))
	for author := range proposals {
		authors = append(authors, author)
	}
	sort.Strings(authors)

	var b strings.Builder
	for i, author := range authors {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(author)
		b.WriteString(":\n")
		b.WriteString(proposals[author])
	}
	return b.String()
}
