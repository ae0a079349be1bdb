package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentforge/core"
)

func TestRequestQueue_DrainAutoApprovedCriticalFirst(t *testing.T) {
	q := NewRequestQueue()

	autoLow := core.NewSpawnRequest(core.NeedMedium, core.ArchetypeTrendAnalyst, "memes", nil, "test")
	autoLow.AutoApprove = true
	critical1 := core.NewSpawnRequest(core.NeedCritical, core.ArchetypeDomainExpert, "tax law", nil, "test")
	manual := core.NewSpawnRequest(core.NeedLow, core.ArchetypeCulturalAdvisor, "nordic markets", nil, "test")
	critical2 := core.NewSpawnRequest(core.NeedCritical, core.ArchetypeQualityController, "fact checking", nil, "test")

	q.Enqueue(autoLow)
	q.Enqueue(critical1)
	q.Enqueue(manual)
	q.Enqueue(critical2)

	drained := q.DrainAutoApproved()
	require.Len(t, drained, 3)
	// Criticals first in FIFO order, then other auto-approved requests.
	assert.Equal(t, critical1.ID, drained[0].ID)
	assert.Equal(t, critical2.ID, drained[1].ID)
	assert.Equal(t, autoLow.ID, drained[2].ID)

	pending := q.PendingRequests()
	require.Len(t, pending, 1)
	assert.Equal(t, manual.ID, pending[0].ID)
}

func TestRequestQueue_DrainEmptyQueue(t *testing.T) {
	q := NewRequestQueue()
	assert.Empty(t, q.DrainAutoApproved())
	assert.Zero(t, q.Pending())
}

func TestRequestQueue_PendingRequestsIsACopy(t *testing.T) {
	q := NewRequestQueue()
	q.Enqueue(core.NewSpawnRequest(core.NeedLow, core.ArchetypeDomainExpert, "tax law", nil, "test"))

	snapshot := q.PendingRequests()
	snapshot[0].Specialization = "mutated"

	assert.Equal(t, "tax law", q.PendingRequests()[0].Specialization)
}

func TestRequestQueue_Backlog(t *testing.T) {
	q := NewRequestQueue()
	for i := 0; i < 5; i++ {
		q.Enqueue(core.NewSpawnRequest(core.NeedLow, core.ArchetypeDomainExpert, "tax law", nil, "test"))
	}
	assert.False(t, q.Backlog(5))

	q.Enqueue(core.NewSpawnRequest(core.NeedLow, core.ArchetypeDomainExpert, "tax law", nil, "test"))
	assert.True(t, q.Backlog(5))
}

func TestRequestQueue_RequeuePutsRequestsInFront(t *testing.T) {
	q := NewRequestQueue()
	later := core.NewSpawnRequest(core.NeedLow, core.ArchetypeDomainExpert, "tax law", nil, "test")
	q.Enqueue(later)

	first := core.NewSpawnRequest(core.NeedCritical, core.ArchetypeTrendAnalyst, "memes", nil, "test")
	second := core.NewSpawnRequest(core.NeedCritical, core.ArchetypeQualityController, "fact checking", nil, "test")
	q.requeue([]core.SpawnRequest{first, second})

	pending := q.PendingRequests()
	require.Len(t, pending, 3)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, later.ID, pending[2].ID)
}
