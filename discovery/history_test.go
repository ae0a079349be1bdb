package discovery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_EvictsOldestWhenFull(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Record(HistoryEntry{Op: "analyze_task", Task: fmt.Sprintf("task_%d", i)})
	}

	assert.Equal(t, 3, h.Len())

	entries := h.Snapshot()
	require.Len(t, entries, 3)
	assert.Equal(t, "task_3", entries[0].Task)
	assert.Equal(t, "task_4", entries[1].Task)
	assert.Equal(t, "task_5", entries[2].Task)
}

func TestHistory_DefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 150; i++ {
		h.Record(HistoryEntry{Op: "analyze_task"})
	}
	assert.Equal(t, 100, h.Len())
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := NewHistory(4)
	h.Record(HistoryEntry{Op: "analyze_task", Task: "original"})

	snap := h.Snapshot()
	snap[0].Task = "mutated"

	assert.Equal(t, "original", h.Snapshot()[0].Task)
}
