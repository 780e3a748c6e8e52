package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/fascia-warehouse/internal/application/batching"
	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/application/scheduler"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/picking"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/worker"
)

// Dependencies are the loaded tables and sinks a simulation runs against
type Dependencies struct {
	Catalog      *order.Catalog
	Layout       *inventory.Layout
	InitialStock []inventory.StockLevel
	Policy       inventory.Policy
	BatchSize    int

	// StartupSweep queues replenishment for slots that start at or below the threshold
	StartupSweep bool

	CompletionSink scheduler.CompletionSink
	StockSink      inventory.StockSink
	Recorder       scheduler.Recorder
	Middleware     []Middleware
}

// Simulation is the warehouse floor: it owns the worker directory and exposes
// one entry point per event kind. Events are applied one at a time; each is
// processed to completion, including every cascading hand-off, before the
// next one starts.
type Simulation struct {
	mu        sync.Mutex
	catalog   *order.Catalog
	orderIDs  *shared.Sequence
	batcher   *batching.OrderBatcher
	router    *scheduler.RequestRouter
	ledger    *inventory.Ledger
	stockSink inventory.StockSink
	directory map[string]*worker.Worker
	startup   bool
	handler   HandlerFunc
	applied   int
	rejected  int
}

// New wires the core components together
func New(deps Dependencies) (*Simulation, error) {
	if deps.Catalog == nil || deps.Layout == nil {
		return nil, shared.NewDomainError("catalog and layout must be loaded before the simulation starts")
	}
	if deps.Policy == (inventory.Policy{}) {
		deps.Policy = inventory.DefaultPolicy()
	}

	opts := []scheduler.Option{}
	if deps.CompletionSink != nil {
		opts = append(opts, scheduler.WithCompletionSink(deps.CompletionSink))
	}
	if deps.Recorder != nil {
		opts = append(opts, scheduler.WithRecorder(deps.Recorder))
	}
	router := scheduler.NewRequestRouter(scheduler.NewWorkerPool(), opts...)

	ledger := inventory.NewLedger(deps.Layout, deps.Policy, router)
	if err := ledger.Restore(deps.InitialStock); err != nil {
		return nil, fmt.Errorf("failed to restore initial stock: %w", err)
	}

	optimizer := picking.NewOptimizer(deps.Layout)
	batcher := batching.NewOrderBatcher(deps.BatchSize, deps.Catalog, optimizer, shared.NewSequence(), router)

	s := &Simulation{
		catalog:   deps.Catalog,
		orderIDs:  shared.NewSequence(),
		batcher:   batcher,
		router:    router,
		ledger:    ledger,
		stockSink: deps.StockSink,
		directory: make(map[string]*worker.Worker),
		startup:   deps.StartupSweep,
	}
	s.handler = chain(s.dispatch, deps.Middleware...)
	return s, nil
}

// Start runs the startup low-stock sweep when enabled
func (s *Simulation) Start(ctx context.Context) {
	if !s.startup {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	low := s.ledger.CheckAllLevels(ctx)
	if len(low) > 0 {
		common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("System: %d locations start at or below the replenish threshold", len(low)), map[string]interface{}{
			"locations": low,
		})
	}
}

// Apply routes an event to its entry point through the middleware chain
func (s *Simulation) Apply(ctx context.Context, ev Event) error {
	err := s.handler(ctx, ev)

	s.mu.Lock()
	if err != nil {
		s.rejected++
	} else {
		s.applied++
	}
	s.mu.Unlock()
	return err
}

func (s *Simulation) dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case OrderSubmitted:
		return s.SubmitOrder(ctx, e.Colour, e.Model)
	case WorkerReady:
		return s.WorkerReady(ctx, e.Role, e.WorkerID)
	case PickerPicked:
		return s.PickerPicks(ctx, e.WorkerID, e.Item)
	case PickerAdvanced:
		return s.PickerAdvance(ctx, e.WorkerID)
	case CheckerActed:
		return s.CheckerAct(ctx, e.Role, e.WorkerID, e.Action)
	case ReplenisherWent:
		return s.ReplenisherGo(ctx, e.WorkerID)
	}

	err := &ErrUnknownEvent{Event: ev}
	common.LoggerFromContext(ctx).Log("WARNING", err.Error(), nil)
	return err
}

// SubmitOrder accepts an order for a recognised (colour, model) pair
func (s *Simulation) SubmitOrder(ctx context.Context, colour, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := common.LoggerFromContext(ctx)
	if !s.catalog.Contains(colour, model) {
		err := &order.ErrUnknownVariant{Colour: colour, Model: model}
		logger.Log("WARNING", "Invalid Order command: "+err.Error(), map[string]interface{}{
			"colour": colour,
			"model":  model,
		})
		return err
	}

	o, err := order.NewOrder(s.orderIDs.Next(), colour, model)
	if err != nil {
		logger.Log("WARNING", err.Error(), nil)
		return err
	}

	logger.Log("INFO", "New order queued for processing: "+o.String(), map[string]interface{}{
		"order_id": o.ID(),
	})
	if _, err := s.batcher.Submit(ctx, o); err != nil {
		logger.Log("ERROR", fmt.Sprintf("Failed to batch %s: %v", o, err), nil)
		return err
	}
	return nil
}

// WorkerReady registers a worker on first contact and asks for work
func (s *Simulation) WorkerReady(ctx context.Context, role worker.Role, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := common.LoggerFromContext(ctx)
	w, exists := s.directory[id]
	if exists && w.Role() != role {
		err := &ErrRoleConflict{WorkerID: id, Existing: w.Role(), Requested: role}
		logger.Log("WARNING", err.Error(), map[string]interface{}{"worker_id": id})
		return err
	}
	if !exists {
		created, err := worker.NewWorker(id, role, s.router, s.ledger)
		if err != nil {
			logger.Log("WARNING", err.Error(), nil)
			return err
		}
		s.directory[id] = created
		w = created
	}

	_, assigned, err := w.RequestWork(ctx)
	var busy *shared.AlreadyAssignedError
	switch {
	case errors.As(err, &busy):
		logger.Log("INFO", fmt.Sprintf("%s %s is no longer available; Already working on a task", role, id), nil)
		return nil
	case err != nil:
		logger.Log("WARNING", fmt.Sprintf("%s %s reporting an error: %v", role, id, err), nil)
		return err
	case !assigned:
		logger.Log("INFO", fmt.Sprintf("System: %s %s is waiting for tasks to be available", role, id), nil)
	}
	return nil
}

// PickerPicks scans a fascia into a picker's cart
func (s *Simulation) PickerPicks(ctx context.Context, id, item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(ctx, worker.RolePicker, id)
	if err != nil {
		return err
	}

	logger := common.LoggerFromContext(ctx)
	logger.Log("INFO", fmt.Sprintf("Picker %s scanned fascia with SKU# %s", id, item), nil)

	result, err := w.Pick(ctx, item)
	var mismatch *worker.ErrPickMismatch
	switch {
	case errors.As(err, &mismatch):
		logger.Log("WARNING", fmt.Sprintf("Picker %s reporting an error: This fascia is different from what the system told me to pick", id), nil)
		logger.Log("INFO", "System: Please get fascia with sku #"+mismatch.Expected, map[string]interface{}{
			"expected": mismatch.Expected,
			"given":    mismatch.Given,
		})
		return err
	case err != nil:
		s.reportWorkerError(ctx, w, err)
		return err
	}

	slot, _ := s.ledger.SlotOf(item)
	logger.Log("INFO", fmt.Sprintf("System: Fascia with SKU #%s is picked at %s", item, slot), map[string]interface{}{
		"request_id": result.RequestID,
		"remaining":  result.Remaining,
	})
	if result.DonePicking {
		logger.Log("INFO", fmt.Sprintf("Picker %s is done picking %d fascias for PickingRequest #%d", id, result.Cursor, result.RequestID), nil)
	}
	return nil
}

// PickerAdvance takes a picker's finished cart to marshaling
func (s *Simulation) PickerAdvance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(ctx, worker.RolePicker, id)
	if err != nil {
		return err
	}

	requestID, err := w.Advance(ctx)
	if err != nil {
		s.reportWorkerError(ctx, w, err)
		return err
	}
	s.logHandOff(ctx, w, "Sequencing", requestID)
	return nil
}

// CheckerAct applies a sequencer or loader action
func (s *Simulation) CheckerAct(ctx context.Context, role worker.Role, id string, action CheckerAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(ctx, role, id)
	if err != nil {
		return err
	}

	logger := common.LoggerFromContext(ctx)
	switch action {
	case ActionCheck:
		result, err := w.Check(ctx)
		if err != nil {
			s.reportWorkerError(ctx, w, err)
			return err
		}
		logger.Log("INFO", fmt.Sprintf("%s %s scanned fascia with SKU# %s", role, id, result.Item), nil)
		if result.Passed {
			logger.Log("INFO", "System: Scanned fascia is expected; Correct", nil)
		} else {
			logger.Log("INFO", fmt.Sprintf("System: Scanned fascia is not expected; The expected fascia with SKU#: %s is not given. RESCAN or REJECT", result.Item), nil)
		}
		return nil

	case ActionRescan:
		if err := w.Rescan(ctx); err != nil {
			s.reportWorkerError(ctx, w, err)
			return err
		}
		logger.Log("INFO", fmt.Sprintf("System: %s %s rescanning", role, id), nil)
		return nil

	case ActionReject:
		requestID, err := w.Reject(ctx)
		if err != nil {
			s.reportWorkerError(ctx, w, err)
			return err
		}
		s.logHandOff(ctx, w, "Repick", requestID)
		return nil

	case ActionApprove:
		requestID, err := w.Approve(ctx)
		var outOfOrder *scheduler.ErrOutOfOrderCompletion
		if err != nil && !errors.As(err, &outOfOrder) {
			s.reportWorkerError(ctx, w, err)
			return err
		}
		next := "Loading"
		if role == worker.RoleLoader {
			next = "Completion"
		}
		s.logHandOff(ctx, w, next, requestID)
		// The router has logged the ordering error and the orders were
		// still loaded, so the event counts as applied.
		return nil
	}

	err = fmt.Errorf("unknown %s action %q", role, action)
	logger.Log("WARNING", err.Error(), nil)
	return err
}

// ReplenisherGo restocks the location a replenisher holds
func (s *Simulation) ReplenisherGo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(ctx, worker.RoleReplenisher, id)
	if err != nil {
		return err
	}

	logger := common.LoggerFromContext(ctx)
	result, err := w.Replenish(ctx)
	if result.Location == "" && err != nil {
		s.reportWorkerError(ctx, w, err)
		return err
	}
	if err != nil {
		logger.Log("ERROR", fmt.Sprintf("Replenishing %s failed: %v", result.Location, err), nil)
		return err
	}

	if result.Replenished {
		amount, _ := s.ledger.StockAt(result.Location)
		logger.Log("INFO", fmt.Sprintf("System: Location %s replenished to %d fascias", result.Location, amount), map[string]interface{}{
			"location": result.Location,
			"amount":   amount,
		})
	} else {
		logger.Log("INFO", fmt.Sprintf("System: Location %s has enough fascias (5+); no need to replenish", result.Location), nil)
	}
	logger.Log("INFO", fmt.Sprintf("Replenisher %s Completed Task", id), nil)
	return nil
}

// Shutdown writes the final stock levels. Failures are logged and returned;
// the in-memory state is unaffected.
func (s *Simulation) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stockSink == nil {
		return nil
	}

	snapshot := s.ledger.Snapshot()
	if err := s.stockSink.SaveStock(ctx, snapshot); err != nil {
		common.LoggerFromContext(ctx).Log("ERROR", fmt.Sprintf("Final stock could not be saved: %v", err), nil)
		return err
	}

	common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("Final stock saved (%d locations differ from the default)", len(snapshot)), nil)
	return nil
}

// Status is a point-in-time report of the floor
type Status struct {
	Queues         scheduler.QueueSnapshot
	Workers        []worker.View
	PendingOrders  int
	NextOrderID    int
	EventsApplied  int
	EventsRejected int
}

// Status reports the queues and every registered worker
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]worker.View, 0, len(s.directory))
	for _, w := range s.directory {
		views = append(views, w.View())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

	return Status{
		Queues:         s.router.Snapshot(),
		Workers:        views,
		PendingOrders:  len(s.batcher.Pending()),
		NextOrderID:    s.orderIDs.Peek(),
		EventsApplied:  s.applied,
		EventsRejected: s.rejected,
	}
}

// StockLevels returns the current stock of every slot in traversal order
func (s *Simulation) StockLevels() []inventory.StockLevel {
	return s.ledger.Levels()
}

// lookup finds a worker by id and role. Caller holds s.mu.
func (s *Simulation) lookup(ctx context.Context, role worker.Role, id string) (*worker.Worker, error) {
	w, ok := s.directory[id]
	if !ok || w.Role() != role {
		err := &ErrUnknownWorker{Role: role, WorkerID: id}
		common.LoggerFromContext(ctx).Log("WARNING", err.Error(), map[string]interface{}{"worker_id": id})
		return nil, err
	}
	return w, nil
}

func (s *Simulation) reportWorkerError(ctx context.Context, w *worker.Worker, err error) {
	level := "WARNING"
	var noTask *shared.NoTaskError
	if errors.As(err, &noTask) {
		level = "INFO"
	}
	common.LoggerFromContext(ctx).Log(level, fmt.Sprintf("%s %s reporting an error: %v", w.Role(), w.ID(), err), map[string]interface{}{
		"worker_id": w.ID(),
		"role":      w.Role().String(),
	})
}

func (s *Simulation) logHandOff(ctx context.Context, w *worker.Worker, next string, requestID int) {
	logger := common.LoggerFromContext(ctx)
	logger.Log("INFO", fmt.Sprintf("%s %s Requesting --%s-- event for PickingRequest #%d", w.Role(), w.ID(), next, requestID), map[string]interface{}{
		"request_id": requestID,
	})
	logger.Log("INFO", fmt.Sprintf("%s %s Completed Task", w.Role(), w.ID()), nil)
}
