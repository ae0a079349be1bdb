package orchestrator

import (
	"sync"

	"github.com/hupe1980/agentforge/core"
)

// RequestQueue holds spawn requests until request processing drains them.
// Arrival order is preserved and all methods are safe for concurrent use.
// The orchestrator owns the only reference; nothing else mutates the queue.
type RequestQueue struct {
	mu      sync.Mutex
	pending []core.SpawnRequest
}

// NewRequestQueue returns an empty queue.
func NewRequestQueue() *RequestQueue {
	return &RequestQueue{}
}

// Enqueue appends a request.
func (q *RequestQueue) Enqueue(req core.SpawnRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, req)
}

// Pending returns the number of queued requests.
func (q *RequestQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// PendingRequests returns a copy of the queued requests in arrival order.
func (q *RequestQueue) PendingRequests() []core.SpawnRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]core.SpawnRequest, len(q.pending))
	copy(out, q.pending)
	return out
}

// Backlog reports whether more than threshold requests are waiting.
func (q *RequestQueue) Backlog(threshold int) bool {
	return q.Pending() > threshold
}

// DrainAutoApproved atomically removes and returns every auto-approvable
// request: critical requests first, then the remaining auto-approved ones,
// each group in FIFO order. Requests that need manual approval stay queued
// in their original order.
func (q *RequestQueue) DrainAutoApproved() []core.SpawnRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var critical, approved, rest []core.SpawnRequest
	for _, req := range q.pending {
		switch {
		case req.NeedLevel == core.NeedCritical:
			critical = append(critical, req)
		case req.AutoApprovable():
			approved = append(approved, req)
		default:
			rest = append(rest, req)
		}
	}
	q.pending = rest
	return append(critical, approved...)
}

// requeue returns undrained requests to the front of the queue so they keep
// their place ahead of anything submitted meanwhile.
func (q *RequestQueue) requeue(reqs []core.SpawnRequest) {
	if len(reqs) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(append(make([]core.SpawnRequest, 0, len(reqs)+len(q.pending)), reqs...), q.pending...)
}
