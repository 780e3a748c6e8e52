package scheduler

import (
	"container/heap"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
)

// requestQueue is a priority queue of work requests, lowest id first.
// It is not safe for concurrent use; RequestRouter guards it.
type requestQueue struct {
	requests requestHeap
	byID     map[int]*request.WorkRequest
}

func newRequestQueue() *requestQueue {
	q := &requestQueue{
		requests: make(requestHeap, 0),
		byID:     make(map[int]*request.WorkRequest),
	}
	heap.Init(&q.requests)
	return q
}

// push adds a request; a request already queued is ignored
func (q *requestQueue) push(req *request.WorkRequest) bool {
	if _, exists := q.byID[req.ID()]; exists {
		return false
	}

	q.byID[req.ID()] = req
	heap.Push(&q.requests, req)
	return true
}

// pop removes and returns the lowest-id request
func (q *requestQueue) pop() (*request.WorkRequest, bool) {
	if q.requests.Len() == 0 {
		return nil, false
	}

	req := heap.Pop(&q.requests).(*request.WorkRequest)
	delete(q.byID, req.ID())
	return req, true
}

// peek returns the lowest-id request without removing it
func (q *requestQueue) peek() (*request.WorkRequest, bool) {
	if q.requests.Len() == 0 {
		return nil, false
	}
	return q.requests[0], true
}

func (q *requestQueue) len() int {
	return q.requests.Len()
}

// ids returns the queued request ids in priority order
func (q *requestQueue) ids() []int {
	sorted := make(requestHeap, len(q.requests))
	copy(sorted, q.requests)

	ids := make([]int, 0, len(sorted))
	for sorted.Len() > 0 {
		ids = append(ids, heap.Pop(&sorted).(*request.WorkRequest).ID())
	}
	return ids
}

// requestHeap implements heap.Interface ordering requests by id ascending
type requestHeap []*request.WorkRequest

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	return h[i].ID() < h[j].ID()
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x interface{}) {
	*h = append(*h, x.(*request.WorkRequest))
}

func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
