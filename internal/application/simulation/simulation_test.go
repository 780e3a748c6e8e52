package simulation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/application/scheduler"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEntry struct {
	level   string
	message string
}

type captureLogger struct {
	mu      sync.Mutex
	entries []capturedEntry
}

func (l *captureLogger) Log(level, message string, metadata map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, capturedEntry{level: level, message: message})
}

func (l *captureLogger) contains(level, fragment string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && strings.Contains(e.message, fragment) {
			return true
		}
	}
	return false
}

type memoryCompletions struct {
	lines []string
}

func (m *memoryCompletions) RecordCompletion(ctx context.Context, req *request.WorkRequest) error {
	m.lines = append(m.lines, req.CompletionLines()...)
	return nil
}

type memoryStock struct {
	levels []inventory.StockLevel
}

func (m *memoryStock) SaveStock(ctx context.Context, levels []inventory.StockLevel) error {
	m.levels = levels
	return nil
}

type fixture struct {
	sim         *Simulation
	completions *memoryCompletions
	stock       *memoryStock
	logger      *captureLogger
	ctx         context.Context
}

func newFixture(t *testing.T, initial []inventory.StockLevel) *fixture {
	t.Helper()

	catalog, err := order.NewCatalog([]order.CatalogEntry{
		{Variant: order.Variant{Colour: "White", Model: "S"}, FasciaPair: order.FasciaPair{Front: "1", Rear: "2"}},
		{Variant: order.Variant{Colour: "Red", Model: "S"}, FasciaPair: order.FasciaPair{Front: "3", Rear: "4"}},
		{Variant: order.Variant{Colour: "Blue", Model: "SE"}, FasciaPair: order.FasciaPair{Front: "5", Rear: "6"}},
		{Variant: order.Variant{Colour: "Beige", Model: "SEL"}, FasciaPair: order.FasciaPair{Front: "7", Rear: "8"}},
	})
	require.NoError(t, err)

	layout, err := inventory.NewLayout([]inventory.Slot{
		{ID: "A,0,0,0", Item: "1"}, {ID: "A,0,0,1", Item: "2"},
		{ID: "A,0,0,2", Item: "3"}, {ID: "A,0,1,0", Item: "4"},
		{ID: "A,0,1,1", Item: "5"}, {ID: "A,0,1,2", Item: "6"},
		{ID: "B,0,0,0", Item: "7"}, {ID: "B,0,0,1", Item: "8"},
	})
	require.NoError(t, err)

	completions := &memoryCompletions{}
	stock := &memoryStock{}
	sim, err := New(Dependencies{
		Catalog:        catalog,
		Layout:         layout,
		InitialStock:   initial,
		StartupSweep:   true,
		CompletionSink: completions,
		StockSink:      stock,
		Middleware:     []Middleware{CommandLogMiddleware()},
	})
	require.NoError(t, err)

	logger := &captureLogger{}
	return &fixture{
		sim:         sim,
		completions: completions,
		stock:       stock,
		logger:      logger,
		ctx:         common.WithLogger(context.Background(), logger),
	}
}

func (f *fixture) apply(t *testing.T, events ...Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, f.sim.Apply(f.ctx, ev), ev.String())
	}
}

func (f *fixture) submitBatch(t *testing.T) {
	t.Helper()
	f.apply(t,
		OrderSubmitted{Colour: "White", Model: "S"},
		OrderSubmitted{Colour: "Red", Model: "S"},
		OrderSubmitted{Colour: "Blue", Model: "SE"},
		OrderSubmitted{Colour: "Beige", Model: "SEL"},
	)
}

func checkAll(role worker.Role, id string, n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = CheckerActed{Role: role, WorkerID: id, Action: ActionCheck}
	}
	return events
}

func TestSimulation_EndToEnd(t *testing.T) {
	f := newFixture(t, nil)

	// Four orders make one request in the picking queue
	f.submitBatch(t)
	status := f.sim.Status()
	assert.Equal(t, []int{1}, status.Queues.Picking)
	assert.Zero(t, status.PendingOrders)

	// Picker collects all eight fascias in pick order
	f.apply(t, WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"})
	for _, item := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		f.apply(t, PickerPicked{WorkerID: "Alice", Item: item})
	}
	f.apply(t, PickerAdvanced{WorkerID: "Alice"})
	status = f.sim.Status()
	assert.Equal(t, []int{1}, status.Queues.Sequencing)

	// Sequencer checks and approves
	f.apply(t, WorkerReady{Role: worker.RoleSequencer, WorkerID: "Sue"})
	f.apply(t, checkAll(worker.RoleSequencer, "Sue", 8)...)
	f.apply(t, CheckerActed{Role: worker.RoleSequencer, WorkerID: "Sue", Action: ActionApprove})
	status = f.sim.Status()
	assert.Equal(t, []int{1}, status.Queues.Loading)
	assert.True(t, status.Queues.ReadyToLoad)

	// Loader checks and approves
	f.apply(t, WorkerReady{Role: worker.RoleLoader, WorkerID: "Lou"})
	f.apply(t, checkAll(worker.RoleLoader, "Lou", 8)...)
	f.apply(t, CheckerActed{Role: worker.RoleLoader, WorkerID: "Lou", Action: ActionApprove})

	assert.Equal(t, []string{
		"Order #1: White, S",
		"Order #2: Red, S",
		"Order #3: Blue, SE",
		"Order #4: Beige, SEL",
	}, f.completions.lines)
	status = f.sim.Status()
	assert.Empty(t, status.Queues.LoadOrder)
	assert.Equal(t, 0, status.EventsRejected)

	require.NoError(t, f.sim.Shutdown(f.ctx))
	require.Len(t, f.stock.levels, 8)
	assert.Equal(t, 29, f.stock.levels[0].Amount)
	assert.True(t, f.logger.contains("DEBUG", "Command: Order S White"))
}

func TestSimulation_WaitingPickerIsWokenByNewRequest(t *testing.T) {
	f := newFixture(t, nil)

	f.apply(t, WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"})
	assert.True(t, f.logger.contains("INFO", "Picker Alice is placed in the Picker queue"))

	f.submitBatch(t)

	status := f.sim.Status()
	require.Len(t, status.Workers, 1)
	assert.Equal(t, worker.StatusAssigned, status.Workers[0].Status)
	assert.Equal(t, 1, status.Workers[0].RequestID)
	assert.Empty(t, status.Queues.Picking)
}

func TestSimulation_InvalidOrderIsDropped(t *testing.T) {
	f := newFixture(t, nil)

	err := f.sim.Apply(f.ctx, OrderSubmitted{Colour: "Green", Model: "S"})

	var unknown *order.ErrUnknownVariant
	require.True(t, errors.As(err, &unknown))
	assert.True(t, f.logger.contains("WARNING", "is not a recognized combination"))
	status := f.sim.Status()
	assert.Zero(t, status.PendingOrders)
	assert.Equal(t, 1, status.NextOrderID)
	assert.Equal(t, 1, status.EventsRejected)
}

func TestSimulation_RoleConflictIsReported(t *testing.T) {
	f := newFixture(t, nil)
	f.apply(t, WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"})

	err := f.sim.Apply(f.ctx, WorkerReady{Role: worker.RoleLoader, WorkerID: "Alice"})

	var conflict *ErrRoleConflict
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, worker.RolePicker, conflict.Existing)
	assert.Len(t, f.sim.Status().Workers, 1)
}

func TestSimulation_UnknownWorkerEventIsDropped(t *testing.T) {
	f := newFixture(t, nil)

	err := f.sim.Apply(f.ctx, PickerPicked{WorkerID: "Ghost", Item: "1"})

	var unknown *ErrUnknownWorker
	assert.True(t, errors.As(err, &unknown))
}

func TestSimulation_WrongPickKeepsCursor(t *testing.T) {
	f := newFixture(t, nil)
	f.submitBatch(t)
	f.apply(t, WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"})

	err := f.sim.Apply(f.ctx, PickerPicked{WorkerID: "Alice", Item: "3"})

	var mismatch *worker.ErrPickMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.True(t, f.logger.contains("INFO", "Please get fascia with sku #1"))
	assert.Zero(t, f.sim.Status().Workers[0].Cursor)
	amount, _ := f.sim.ledger.Stock("3")
	assert.Equal(t, 30, amount)
}

func TestSimulation_RejectReturnsRequestToPicking(t *testing.T) {
	f := newFixture(t, nil)
	f.submitBatch(t)
	f.apply(t, WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"})
	for _, item := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		f.apply(t, PickerPicked{WorkerID: "Alice", Item: item})
	}
	f.apply(t,
		PickerAdvanced{WorkerID: "Alice"},
		WorkerReady{Role: worker.RoleSequencer, WorkerID: "Sue"},
		CheckerActed{Role: worker.RoleSequencer, WorkerID: "Sue", Action: ActionReject},
	)

	status := f.sim.Status()
	assert.Equal(t, []int{1}, status.Queues.Picking)
	assert.Empty(t, status.Queues.Sequencing)

	// Alice is idle again; ready picks the rejected request back up
	f.apply(t, WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"})
	assert.Equal(t, 1, f.sim.Status().Workers[0].RequestID)
}

func TestSimulation_LowStockIsReplenished(t *testing.T) {
	f := newFixture(t, []inventory.StockLevel{{Slot: "A,0,0,0", Amount: 6}})
	f.submitBatch(t)
	f.apply(t,
		WorkerReady{Role: worker.RoleReplenisher, WorkerID: "Ray"},
		WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"},
		PickerPicked{WorkerID: "Alice", Item: "1"},
	)

	status := f.sim.Status()
	var ray worker.View
	for _, v := range status.Workers {
		if v.ID == "Ray" {
			ray = v
		}
	}
	assert.Equal(t, "A,0,0,0", ray.Location)

	f.apply(t, ReplenisherWent{WorkerID: "Ray"})
	amount, _ := f.sim.ledger.StockAt("A,0,0,0")
	assert.Equal(t, 30, amount)
	assert.True(t, f.logger.contains("INFO", "replenished to 30"))
}

func TestSimulation_StartupSweepQueuesLowSlots(t *testing.T) {
	f := newFixture(t, []inventory.StockLevel{{Slot: "B,0,0,1", Amount: 2}})

	f.sim.Start(f.ctx)

	assert.Equal(t, []string{"B,0,0,1"}, f.sim.Status().Queues.Replenish)
}

func TestSimulation_ReplenishWithoutTask(t *testing.T) {
	f := newFixture(t, nil)
	f.apply(t, WorkerReady{Role: worker.RoleReplenisher, WorkerID: "Ray"})

	err := f.sim.Apply(f.ctx, ReplenisherWent{WorkerID: "Ray"})

	assert.Error(t, err)
}

func TestSimulation_OutOfOrderCompletionIsReported(t *testing.T) {
	f := newFixture(t, nil)
	f.submitBatch(t)

	err := f.sim.router.CompleteRequest(f.ctx, mustRequest(t, 9))

	var outOfOrder *scheduler.ErrOutOfOrderCompletion
	require.True(t, errors.As(err, &outOfOrder))
	assert.True(t, f.logger.contains("ERROR", "PickingRequest #1 must be loaded first"))
	assert.Len(t, f.completions.lines, 4)
}

func TestSimulation_OutOfOrderApproveCountsAsApplied(t *testing.T) {
	// Arrange: Lou holds request #1, then #1 leaves the load order behind Lou's back
	f := newFixture(t, nil)
	f.submitBatch(t)
	f.apply(t, WorkerReady{Role: worker.RolePicker, WorkerID: "Alice"})
	for _, item := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		f.apply(t, PickerPicked{WorkerID: "Alice", Item: item})
	}
	f.apply(t, PickerAdvanced{WorkerID: "Alice"})
	f.apply(t, WorkerReady{Role: worker.RoleSequencer, WorkerID: "Sue"})
	f.apply(t, checkAll(worker.RoleSequencer, "Sue", 8)...)
	f.apply(t, CheckerActed{Role: worker.RoleSequencer, WorkerID: "Sue", Action: ActionApprove})
	f.apply(t, WorkerReady{Role: worker.RoleLoader, WorkerID: "Lou"})
	f.apply(t, checkAll(worker.RoleLoader, "Lou", 8)...)
	_ = f.sim.router.CompleteRequest(f.ctx, mustRequest(t, 9))
	require.Empty(t, f.sim.Status().Queues.LoadOrder)
	before := f.sim.Status()

	// Act
	err := f.sim.Apply(f.ctx, CheckerActed{Role: worker.RoleLoader, WorkerID: "Lou", Action: ActionApprove})

	// Assert
	require.NoError(t, err)
	after := f.sim.Status()
	assert.Equal(t, before.EventsApplied+1, after.EventsApplied)
	assert.Equal(t, before.EventsRejected, after.EventsRejected)
	assert.True(t, f.logger.contains("ERROR", "cannot load PickingRequest #1; no request is waiting in the load order"))
	assert.Contains(t, f.completions.lines, "Order #1: White, S")
}

func mustRequest(t *testing.T, id int) *request.WorkRequest {
	t.Helper()
	var orders []*order.Order
	for i := 1; i <= 4; i++ {
		o, err := order.NewOrder(100+i, "White", "S")
		require.NoError(t, err)
		orders = append(orders, o)
	}
	req, err := request.NewWorkRequest(id, orders, make([]string, 8), nil)
	require.NoError(t, err)
	return req
}
