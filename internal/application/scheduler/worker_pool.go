package scheduler

import (
	"github.com/andrescamacho/fascia-warehouse/internal/domain/worker"
)

// WorkerPool keeps one idle queue per role, longest-waiting worker first.
// It is not safe for concurrent use on its own; RequestRouter guards it so
// that idle registration and wake-up happen in the same critical section.
type WorkerPool struct {
	idle    map[worker.Role]*fifo[*worker.Worker]
	waiting map[*worker.Worker]bool
}

// NewWorkerPool creates an empty pool
func NewWorkerPool() *WorkerPool {
	idle := make(map[worker.Role]*fifo[*worker.Worker], len(worker.Roles()))
	for _, role := range worker.Roles() {
		idle[role] = &fifo[*worker.Worker]{}
	}

	return &WorkerPool{
		idle:    idle,
		waiting: make(map[*worker.Worker]bool),
	}
}

// Enqueue places a worker at the back of its role's idle queue.
// A worker already waiting keeps its place.
func (p *WorkerPool) Enqueue(w *worker.Worker) bool {
	if p.waiting[w] {
		return false
	}

	queue, ok := p.idle[w.Role()]
	if !ok {
		return false
	}

	queue.push(w)
	p.waiting[w] = true
	return true
}

// Next removes and returns the longest-waiting worker of a role
func (p *WorkerPool) Next(role worker.Role) (*worker.Worker, bool) {
	queue, ok := p.idle[role]
	if !ok {
		return nil, false
	}

	w, ok := queue.pop()
	if ok {
		delete(p.waiting, w)
	}
	return w, ok
}

// Remove takes a worker out of its idle queue, e.g. when it claimed work directly
func (p *WorkerPool) Remove(w *worker.Worker) bool {
	if !p.waiting[w] {
		return false
	}

	queue := p.idle[w.Role()]
	kept := queue.items[:0]
	for _, candidate := range queue.items {
		if candidate != w {
			kept = append(kept, candidate)
		}
	}
	queue.items = kept
	delete(p.waiting, w)
	return true
}

// HasWaiting reports whether any worker of the role is waiting
func (p *WorkerPool) HasWaiting(role worker.Role) bool {
	queue, ok := p.idle[role]
	return ok && queue.len() > 0
}

// Waiting returns the ids of waiting workers of a role, longest-waiting first
func (p *WorkerPool) Waiting(role worker.Role) []string {
	queue, ok := p.idle[role]
	if !ok {
		return nil
	}

	workers := queue.snapshot()
	ids := make([]string, len(workers))
	for i, w := range workers {
		ids[i] = w.ID()
	}
	return ids
}
