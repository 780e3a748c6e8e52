package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/worker"
)

// RequestRouter owns every pipeline queue and the worker pool. All queue
// mutation goes through its methods, each of which is one critical section:
// enqueue and wake, claim or register idle, the load-order readiness check
// and pop, and the completion check and pop.
//
// Woken workers are handed their work after the router lock is released so
// that their callbacks may route work again.
//
// Completions are recorded under recordMu, taken before mu is released, so
// sinks see requests in the order they left the load order while queue
// operations carry on.
type RequestRouter struct {
	mu         sync.Mutex
	recordMu   sync.Mutex
	picking    *requestQueue
	loadOrder  fifo[*request.WorkRequest]
	sequencing fifo[*request.WorkRequest]
	loading    *requestQueue
	replenish  fifo[string]
	pool       *WorkerPool
	sink       CompletionSink
	recorder   Recorder
}

// Option configures a RequestRouter
type Option func(*RequestRouter)

// WithCompletionSink sets where completed requests are recorded
func WithCompletionSink(sink CompletionSink) Option {
	return func(r *RequestRouter) {
		r.sink = sink
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(recorder Recorder) Option {
	return func(r *RequestRouter) {
		r.recorder = recorder
	}
}

// NewRequestRouter creates a router with empty queues
func NewRequestRouter(pool *WorkerPool, opts ...Option) *RequestRouter {
	if pool == nil {
		pool = NewWorkerPool()
	}

	r := &RequestRouter{
		picking:  newRequestQueue(),
		loading:  newRequestQueue(),
		pool:     pool,
		sink:     MultiSink{},
		recorder: noOpRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// handoff is a worker paired with the unit it was woken for
type handoff struct {
	worker     *worker.Worker
	assignment worker.Assignment
}

// AddRequest fixes the request's place in the load order and sends it to picking
func (r *RequestRouter) AddRequest(ctx context.Context, req *request.WorkRequest) {
	r.mu.Lock()
	r.loadOrder.push(req)
	r.picking.push(req)
	h := r.matchLocked(worker.RolePicker)
	r.recordDepthsLocked()
	r.mu.Unlock()

	common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("PickingRequest #%d added to Picking Queue", req.ID()), map[string]interface{}{
		"request_id": req.ID(),
		"orders":     req.OrderIDs(),
	})
	r.deliver(ctx, h)
}

// RouteToPicking queues a request for picking, e.g. after a checker rejects it
func (r *RequestRouter) RouteToPicking(ctx context.Context, req *request.WorkRequest) {
	r.route(ctx, worker.RolePicker, req, func() { r.picking.push(req) })
}

// RouteToSequencing queues a fully picked request for sequencing
func (r *RequestRouter) RouteToSequencing(ctx context.Context, req *request.WorkRequest) {
	r.route(ctx, worker.RoleSequencer, req, func() { r.sequencing.push(req) })
}

// RouteToLoading queues a sequenced request for loading. A loader is only
// woken once the request at the head of the load order is in the queue.
func (r *RequestRouter) RouteToLoading(ctx context.Context, req *request.WorkRequest) {
	r.route(ctx, worker.RoleLoader, req, func() { r.loading.push(req) })
}

// RouteToReplenish queues a slot for restocking
func (r *RequestRouter) RouteToReplenish(ctx context.Context, slot string) {
	r.mu.Lock()
	r.replenish.push(slot)
	h := r.matchLocked(worker.RoleReplenisher)
	r.recordDepthsLocked()
	r.mu.Unlock()

	r.recorder.RecordReplenishmentQueued(slot)
	common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("Location %s added to Replenish Queue", slot), map[string]interface{}{
		"location": slot,
	})
	r.deliver(ctx, h)
}

func (r *RequestRouter) route(ctx context.Context, role worker.Role, req *request.WorkRequest, enqueue func()) {
	r.mu.Lock()
	enqueue()
	h := r.matchLocked(role)
	r.recordDepthsLocked()
	r.mu.Unlock()

	common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("%s added to %s Queue", req, stageTitle(role)), map[string]interface{}{
		"request_id": req.ID(),
	})
	r.deliver(ctx, h)
}

// Claim pops the next unit for the worker's role, or registers the worker
// as idle and waiting when nothing is available.
func (r *RequestRouter) Claim(ctx context.Context, w *worker.Worker) (worker.Assignment, bool) {
	r.mu.Lock()
	assignment, ok := r.nextLocked(w.Role())
	queued := false
	if ok {
		r.pool.Remove(w)
	} else {
		queued = r.pool.Enqueue(w)
	}
	r.recordDepthsLocked()
	r.mu.Unlock()

	logger := common.LoggerFromContext(ctx)
	if ok {
		logger.Log("INFO", fmt.Sprintf("%s %s is assigned task: %s", w.Role(), w.ID(), describe(assignment)), assignmentMetadata(w, assignment))
	} else if queued {
		logger.Log("INFO", fmt.Sprintf("%s %s is placed in the %s queue", w.Role(), w.ID(), w.Role()), map[string]interface{}{
			"worker_id": w.ID(),
			"role":      w.Role().String(),
		})
	}
	return assignment, ok
}

// NextPicking pops the lowest-id request waiting for picking
func (r *RequestRouter) NextPicking() (*request.WorkRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.picking.pop()
}

// NextSequencing pops the oldest request waiting for sequencing
func (r *RequestRouter) NextSequencing() (*request.WorkRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sequencing.pop()
}

// NextLoading pops the head of the loading queue, but only when it is also
// the head of the load order.
func (r *RequestRouter) NextLoading() (*request.WorkRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.readyToLoadLocked() {
		return nil, false
	}
	return r.loading.pop()
}

// NextReplenish pops the oldest slot waiting for restocking
func (r *RequestRouter) NextReplenish() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.replenish.pop()
}

// ReadyToLoad reports whether the next request in the load order has been sequenced
func (r *RequestRouter) ReadyToLoad() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.readyToLoadLocked()
}

// CompleteRequest removes a loaded request from the load order and records
// it. Completing a request other than the load-order head is reported with
// ErrOutOfOrderCompletion, but the head is still popped and the completion
// still recorded. Recording failures are logged and never returned.
func (r *RequestRouter) CompleteRequest(ctx context.Context, req *request.WorkRequest) error {
	logger := common.LoggerFromContext(ctx)

	r.mu.Lock()
	var orderErr error
	head, ok := r.loadOrder.peek()
	if !ok || head != req {
		headID := 0
		if ok {
			headID = head.ID()
		}
		orderErr = &ErrOutOfOrderCompletion{RequestID: req.ID(), HeadID: headID}
	}
	if ok {
		r.loadOrder.pop()
	}
	h := r.matchLocked(worker.RoleLoader)
	r.recordDepthsLocked()
	r.recordMu.Lock()
	r.mu.Unlock()

	sinkErr := r.sink.RecordCompletion(ctx, req)
	r.recordMu.Unlock()

	if orderErr != nil {
		logger.Log("ERROR", orderErr.Error(), map[string]interface{}{"request_id": req.ID()})
	}
	if sinkErr != nil {
		logger.Log("ERROR", fmt.Sprintf("Completed orders from %s could not be recorded: %v", req, sinkErr), map[string]interface{}{
			"request_id": req.ID(),
		})
	}
	logger.Log("INFO", fmt.Sprintf("%s loaded (Orders %s)", req, req.OrderIDs()), map[string]interface{}{
		"request_id": req.ID(),
	})

	r.recorder.RecordRequestCompleted(req.ID(), orderErr != nil)
	r.deliver(ctx, h)
	return orderErr
}

// QueueSnapshot is a point-in-time copy of every queue
type QueueSnapshot struct {
	Picking     []int
	Sequencing  []int
	Loading     []int
	LoadOrder   []int
	Replenish   []string
	ReadyToLoad bool
	Idle        map[worker.Role][]string
}

// Snapshot copies the queue contents for reporting
func (r *RequestRouter) Snapshot() QueueSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	idle := make(map[worker.Role][]string, len(worker.Roles()))
	for _, role := range worker.Roles() {
		idle[role] = r.pool.Waiting(role)
	}

	return QueueSnapshot{
		Picking:     r.picking.ids(),
		Sequencing:  requestIDs(r.sequencing.snapshot()),
		Loading:     r.loading.ids(),
		LoadOrder:   requestIDs(r.loadOrder.snapshot()),
		Replenish:   r.replenish.snapshot(),
		ReadyToLoad: r.readyToLoadLocked(),
		Idle:        idle,
	}
}

// nextLocked pops the next unit for a role. Caller holds r.mu.
func (r *RequestRouter) nextLocked(role worker.Role) (worker.Assignment, bool) {
	switch role {
	case worker.RolePicker:
		req, ok := r.picking.pop()
		return worker.Assignment{Request: req}, ok
	case worker.RoleSequencer:
		req, ok := r.sequencing.pop()
		return worker.Assignment{Request: req}, ok
	case worker.RoleLoader:
		if !r.readyToLoadLocked() {
			return worker.Assignment{}, false
		}
		req, ok := r.loading.pop()
		return worker.Assignment{Request: req}, ok
	case worker.RoleReplenisher:
		slot, ok := r.replenish.pop()
		return worker.Assignment{Location: slot}, ok
	}
	return worker.Assignment{}, false
}

// matchLocked pairs the longest-waiting idle worker of a role with the next
// unit for that role. Nothing is popped unless both exist. Caller holds r.mu.
func (r *RequestRouter) matchLocked(role worker.Role) *handoff {
	if !r.pool.HasWaiting(role) {
		return nil
	}

	assignment, ok := r.nextLocked(role)
	if !ok {
		return nil
	}

	w, _ := r.pool.Next(role)
	return &handoff{worker: w, assignment: assignment}
}

func (r *RequestRouter) readyToLoadLocked() bool {
	head, ok := r.loadOrder.peek()
	if !ok {
		return false
	}
	next, ok := r.loading.peek()
	return ok && next == head
}

// deliver hands woken work to its worker outside the router lock
func (r *RequestRouter) deliver(ctx context.Context, h *handoff) {
	if h == nil {
		return
	}

	logger := common.LoggerFromContext(ctx)
	if err := h.worker.Assign(h.assignment); err != nil {
		logger.Log("WARNING", fmt.Sprintf("Could not hand %s to %s %s: %v", describe(h.assignment), h.worker.Role(), h.worker.ID(), err), nil)
		r.requeue(ctx, h)
		return
	}

	logger.Log("INFO", fmt.Sprintf("%s %s is assigned task: %s", h.worker.Role(), h.worker.ID(), describe(h.assignment)), assignmentMetadata(h.worker, h.assignment))
}

func (r *RequestRouter) requeue(ctx context.Context, h *handoff) {
	switch h.worker.Role() {
	case worker.RolePicker:
		r.RouteToPicking(ctx, h.assignment.Request)
	case worker.RoleSequencer:
		r.RouteToSequencing(ctx, h.assignment.Request)
	case worker.RoleLoader:
		r.RouteToLoading(ctx, h.assignment.Request)
	case worker.RoleReplenisher:
		r.RouteToReplenish(ctx, h.assignment.Location)
	}
}

func (r *RequestRouter) recordDepthsLocked() {
	r.recorder.RecordQueueDepth(StagePicking, r.picking.len())
	r.recorder.RecordQueueDepth(StageSequencing, r.sequencing.len())
	r.recorder.RecordQueueDepth(StageLoading, r.loading.len())
	r.recorder.RecordQueueDepth(StageLoadOrder, r.loadOrder.len())
	r.recorder.RecordQueueDepth(StageReplenish, r.replenish.len())
}

func describe(a worker.Assignment) string {
	if a.Request != nil {
		return a.Request.String()
	}
	return "Replenishing fascias at location: " + a.Location
}

func assignmentMetadata(w *worker.Worker, a worker.Assignment) map[string]interface{} {
	metadata := map[string]interface{}{
		"worker_id": w.ID(),
		"role":      w.Role().String(),
	}
	if a.Request != nil {
		metadata["request_id"] = a.Request.ID()
	} else {
		metadata["location"] = a.Location
	}
	return metadata
}

func stageTitle(role worker.Role) string {
	switch role {
	case worker.RolePicker:
		return "Picking"
	case worker.RoleSequencer:
		return "Sequencing"
	case worker.RoleLoader:
		return "Loading"
	}
	return "Replenish"
}

func requestIDs(requests []*request.WorkRequest) []int {
	ids := make([]int, len(requests))
	for i, req := range requests {
		ids[i] = req.ID()
	}
	return ids
}
