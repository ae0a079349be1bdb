package worker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentforge/core"
	"github.com/hupe1980/agentforge/reasoning"
)

func testHandle(svc reasoning.Service) *Handle {
	spec := &core.WorkerSpecification{
		Name:              "poet_1",
		Archetype:         core.ArchetypeContentSpecialist,
		Specialization:    "poetry",
		Capabilities:      []string{"storytelling"},
		PersonalityTraits: []string{"lyrical"},
		DecisionStyle:     "intuitive",
		ExpertiseLevel:    0.9,
	}
	return newHandle(spec, "You are poet_1.", "test-model", 0.8, svc, nil)
}

func TestHandle_ProposeRecordsInteraction(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Propose a concrete approach", "Write a sonnet.")
	h := testHandle(svc)

	out, err := h.Propose(context.Background(), "launch post", map[string]any{"audience": "devs"})
	require.NoError(t, err)
	assert.Equal(t, "Write a sonnet.", out)

	log := h.Interactions()
	require.Len(t, log, 1)
	assert.Equal(t, core.ActionPropose, log[0].Action)
	assert.Equal(t, "launch post", log[0].Topic)
	assert.Equal(t, "Write a sonnet.", log[0].Response)
	assert.False(t, log[0].Timestamp.IsZero())

	// The call carried the handle's persona and sampling profile.
	call := svc.LastCall()
	assert.Equal(t, "You are poet_1.", call.System)
	assert.Equal(t, "test-model", call.Model)
	assert.InDelta(t, 0.8, call.Temperature, 1e-9)
	assert.Contains(t, call.Prompt, "launch post")
	assert.Contains(t, call.Prompt, `"audience": "devs"`)
}

func TestHandle_CritiqueSortsProposalsByAuthor(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Critique each proposal", "B is stronger.")
	h := testHandle(svc)

	_, err := h.Critique(context.Background(), map[string]string{
		"zoe":  "proposal z",
		"andy": "proposal a",
	}, nil)
	require.NoError(t, err)

	sent := svc.LastCall().Prompt
	assert.Less(t, strings.Index(sent, "andy"), strings.Index(sent, "zoe"))

	log := h.Interactions()
	require.Len(t, log, 1)
	assert.Equal(t, core.ActionCritique, log[0].Action)
	assert.Empty(t, log[0].Topic)
}

func TestHandle_VoteParsesAndClamps(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Vote for the proposal",
		`{"selected_proposal":"alice","score":1.4,"reasoning":"most concrete"}`)
	h := testHandle(svc)

	outcome, err := h.Vote(context.Background(), map[string]string{"alice": "a", "bob": "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", outcome.SelectedProposal)
	assert.InDelta(t, 1.0, outcome.Score, 1e-9)
	assert.Equal(t, "most concrete", outcome.Reasoning)

	log := h.Interactions()
	require.Len(t, log, 1)
	assert.Equal(t, core.ActionVote, log[0].Action)
	assert.Contains(t, log[0].Response, `voted for "alice"`)
}

func TestHandle_VoteFailsOnUnparseableResponse(t *testing.T) {
	svc := reasoning.NewMockService().AddResponse("Vote for the proposal", "abstain")
	h := testHandle(svc)

	_, err := h.Vote(context.Background(), map[string]string{"alice": "a"}, nil)
	require.Error(t, err)
	assert.Zero(t, h.InteractionCount())
}

func TestHandle_LogPreservesOrder(t *testing.T) {
	svc := reasoning.NewMockService().
		AddResponse("Propose a concrete approach", "proposal text").
		AddResponse("Vote for the proposal", `{"selected_proposal":"self","score":0.9,"reasoning":"own work"}`)
	h := testHandle(svc)

	_, err := h.Propose(context.Background(), "topic", nil)
	require.NoError(t, err)
	_, err = h.Vote(context.Background(), map[string]string{"self": "proposal text"}, nil)
	require.NoError(t, err)

	log := h.Interactions()
	require.Len(t, log, 2)
	assert.Equal(t, core.ActionPropose, log[0].Action)
	assert.Equal(t, core.ActionVote, log[1].Action)
	assert.False(t, log[1].Timestamp.Before(log[0].Timestamp))
}

func TestHandle_LastInteractionsWindow(t *testing.T) {
	svc := reasoning.NewMockService()
	h := testHandle(svc)

	for i := 0; i < 5; i++ {
		_, err := h.Propose(context.Background(), "topic", nil)
		require.NoError(t, err)
	}

	assert.Len(t, h.LastInteractions(3), 3)
	assert.Len(t, h.LastInteractions(10), 5)
	assert.Empty(t, h.LastInteractions(0))
	assert.Equal(t, 5, h.InteractionCount())
}

func TestHandle_InteractionsCopyIsIsolated(t *testing.T) {
	svc := reasoning.NewMockService()
	h := testHandle(svc)

	_, err := h.Propose(context.Background(), "topic", nil)
	require.NoError(t, err)

	log := h.Interactions()
	log[0].Response = "tampered"
	assert.NotEqual(t, "tampered", h.Interactions()[0].Response)
}

func TestHandle_ErrorLeavesLogUntouched(t *testing.T) {
	svc := reasoning.NewMockService().FailWith(assert.AnError)
	h := testHandle(svc)

	_, err := h.Propose(context.Background(), "topic", nil)
	require.Error(t, err)
	assert.Zero(t, h.InteractionCount())
}
