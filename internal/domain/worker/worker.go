package worker

import (
	"context"
	"sync"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// Worker is one person on the warehouse floor. Every role shares this type;
// role behaviour is selected from the behaviours table by the role tag and
// role state lives in the matching payload.
//
// Invariants:
// - an Idle worker holds no request or location and its cursor is zero
// - an Assigned worker holds exactly one request (or one location for replenishers)
// - workers are never destroyed; they cycle Idle -> Assigned -> Idle
type Worker struct {
	mu         sync.Mutex
	id         string
	role       Role
	status     Status
	request    *request.WorkRequest
	location   string
	cursor     int
	picker     *pickerPayload
	checker    *checkerPayload
	dispatcher Dispatcher
	stock      StockKeeper
}

// View is a read-only copy of a worker's state
type View struct {
	ID          string
	Role        Role
	Status      Status
	RequestID   int
	Location    string
	Cursor      int
	DonePicking bool
	Blocked     bool
}

// NewWorker creates an idle worker for a role
func NewWorker(id string, role Role, dispatcher Dispatcher, stock StockKeeper) (*Worker, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "worker id is required")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("role", "unknown role "+role.String())
	}

	w := &Worker{
		id:         id,
		role:       role,
		status:     StatusIdle,
		dispatcher: dispatcher,
		stock:      stock,
	}

	switch role {
	case RolePicker:
		w.picker = &pickerPayload{}
	case RoleSequencer, RoleLoader:
		w.checker = &checkerPayload{}
	}

	return w, nil
}

func (w *Worker) ID() string {
	return w.id
}

func (w *Worker) Role() Role {
	return w.role
}

// IsIdle reports whether the worker can take new work
func (w *Worker) IsIdle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.status == StatusIdle
}

// View returns a snapshot of the worker for reporting
func (w *Worker) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		ID:       w.id,
		Role:     w.role,
		Status:   w.status,
		Location: w.location,
		Cursor:   w.cursor,
	}
	if w.request != nil {
		v.RequestID = w.request.ID()
	}
	if w.picker != nil {
		v.DonePicking = w.picker.donePicking
	}
	if w.checker != nil {
		v.Blocked = w.checker.hasFailure()
	}
	return v
}

// RequestWork asks the dispatcher for the next unit of work for this role.
// If nothing is available the worker is left Idle and waiting; the
// dispatcher hands it work later through Assign.
func (w *Worker) RequestWork(ctx context.Context) (Assignment, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != StatusIdle {
		return Assignment{}, false, shared.NewAlreadyAssignedError(w.role.String(), w.id, w.heldRequestID())
	}

	assignment, ok := w.dispatcher.Claim(ctx, w)
	if !ok {
		return Assignment{}, false, nil
	}
	if err := w.assignLocked(assignment); err != nil {
		return Assignment{}, false, err
	}
	return assignment, true, nil
}

// Assign gives an idle worker a unit of work
func (w *Worker) Assign(assignment Assignment) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status != StatusIdle {
		return shared.NewAlreadyAssignedError(w.role.String(), w.id, w.heldRequestID())
	}
	return w.assignLocked(assignment)
}

// Pick scans one item into the picker's cart
func (w *Worker) Pick(ctx context.Context, item string) (PickResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	b := behaviours[w.role]
	if b.pick == nil {
		return PickResult{}, shared.NewUnsupportedActionError(w.role.String(), w.id, "pick")
	}
	return b.pick(ctx, w, item)
}

// Advance takes a fully picked request to marshaling and releases the picker
func (w *Worker) Advance(ctx context.Context) (int, error) {
	return w.handOff(ctx, "go to marshaling", func(b behaviour) handOffFunc { return b.advance })
}

// Check compares the next expected item against what was handed over
func (w *Worker) Check(ctx context.Context) (CheckResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	b := behaviours[w.role]
	if b.check == nil {
		return CheckResult{}, shared.NewUnsupportedActionError(w.role.String(), w.id, "check")
	}
	return b.check(ctx, w)
}

// Rescan restarts the current checking pass without releasing the request
func (w *Worker) Rescan(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	b := behaviours[w.role]
	if b.rescan == nil {
		return shared.NewUnsupportedActionError(w.role.String(), w.id, "rescan")
	}
	return b.rescan(ctx, w)
}

// Reject sends the held request back to picking
func (w *Worker) Reject(ctx context.Context) (int, error) {
	return w.handOff(ctx, "reject", func(b behaviour) handOffFunc { return b.reject })
}

// Approve sends the held request on to the next stage
func (w *Worker) Approve(ctx context.Context) (int, error) {
	return w.handOff(ctx, "approve", func(b behaviour) handOffFunc { return b.approve })
}

// Replenish restocks the held location and releases the replenisher
func (w *Worker) Replenish(ctx context.Context) (ReplenishResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	b := behaviours[w.role]
	if b.replenish == nil {
		return ReplenishResult{}, shared.NewUnsupportedActionError(w.role.String(), w.id, "replenish")
	}
	return b.replenish(ctx, w)
}

func (w *Worker) handOff(ctx context.Context, action string, pick func(behaviour) handOffFunc) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fn := pick(behaviours[w.role])
	if fn == nil {
		return 0, shared.NewUnsupportedActionError(w.role.String(), w.id, action)
	}
	if w.request == nil {
		return 0, shared.NewNoTaskError(w.role.String(), w.id)
	}

	requestID := w.request.ID()
	return requestID, fn(ctx, w)
}

// assignLocked moves the worker to Assigned. Caller holds w.mu.
func (w *Worker) assignLocked(assignment Assignment) error {
	if w.role == RoleReplenisher {
		if assignment.Location == "" {
			return &ErrAssignmentMismatch{WorkerID: w.id, Role: w.role}
		}
	} else if assignment.Request == nil {
		return &ErrAssignmentMismatch{WorkerID: w.id, Role: w.role}
	}

	w.status = StatusAssigned
	w.request = assignment.Request
	w.location = assignment.Location
	w.cursor = 0

	if onAssigned := behaviours[w.role].onAssigned; onAssigned != nil {
		onAssigned(w)
	}
	return nil
}

// release returns the worker to Idle. Caller holds w.mu.
func (w *Worker) release() {
	w.status = StatusIdle
	w.request = nil
	w.location = ""
	w.cursor = 0
}

func (w *Worker) heldRequestID() int {
	if w.request == nil {
		return 0
	}
	return w.request.ID()
}
