package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/eventsource"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/tables"
	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/test/helpers"
)

// floorContext is one simulated warehouse floor built from fixture tables
type floorContext struct {
	dir         string
	tables      helpers.Tables
	batchSize   int
	logger      *helpers.CaptureLogger
	ctx         context.Context
	sim         *simulation.Simulation
	completions *tables.CompletionLog

	lastErr error
	stats   eventsource.ReplayStats // of the latest replay step
}

func (f *floorContext) reset() {
	if f.dir != "" {
		os.RemoveAll(f.dir)
	}
	*f = floorContext{logger: &helpers.CaptureLogger{}}
	f.ctx = common.WithLogger(context.Background(), f.logger)
}

// InitializeFloorScenario registers the steps that drive a whole floor
func InitializeFloorScenario(sc *godog.ScenarioContext) {
	f := &floorContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})
	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		if f.dir != "" {
			os.RemoveAll(f.dir)
			f.dir = ""
		}
		return ctx, nil
	})

	sc.Step(`^a warehouse floor with the fixture tables$`, f.aWarehouseFloorWithTheFixtureTables)
	sc.Step(`^a batch size of (\d+)$`, f.aBatchSizeOf)
	sc.Step(`^the initial stock table:$`, f.theInitialStockTable)
	sc.Step(`^the floor opens$`, f.theFloorOpens)
	sc.Step(`^the floor closes$`, f.theFloorCloses)

	sc.Step(`^the commands are replayed:$`, f.theCommandsAreReplayed)
	sc.Step(`^"([^"]*)" is sent$`, f.isSent)
	sc.Step(`^the command should be accepted$`, f.theCommandShouldBeAccepted)
	sc.Step(`^the command should be rejected$`, f.theCommandShouldBeRejected)
	sc.Step(`^the command should be malformed$`, f.theCommandShouldBeMalformed)
	sc.Step(`^(\d+) commands? should be (applied|rejected|malformed)$`, f.commandsShouldBe)

	sc.Step(`^the (picking|sequencing|loading) queue should hold (?:request|requests) ([\d, ]+)$`, f.theQueueShouldHold)
	sc.Step(`^the (picking|sequencing|loading) queue should be empty$`, f.theQueueShouldBeEmpty)
	sc.Step(`^the replenish queue should hold "([^"]*)"$`, f.theReplenishQueueShouldHold)
	sc.Step(`^the replenish queue should be empty$`, f.theReplenishQueueShouldBeEmpty)
	sc.Step(`^(\d+) orders? should be waiting for a batch$`, f.ordersShouldBeWaiting)
	sc.Step(`^the next order id should be (\d+)$`, f.theNextOrderIDShouldBe)
	sc.Step(`^worker "([^"]*)" should be (IDLE|ASSIGNED)$`, f.workerShouldBe)
	sc.Step(`^worker "([^"]*)" should hold request (\d+)$`, f.workerShouldHoldRequest)
	sc.Step(`^(\d+) workers? should be registered$`, f.workersShouldBeRegistered)

	sc.Step(`^the stock at "([^"]*)" should be (\d+)$`, f.theStockAtShouldBe)
	sc.Step(`^the stock should be:$`, f.theStockShouldBe)
	sc.Step(`^the completion log should be:$`, f.theCompletionLogShouldBe)
	sc.Step(`^the completion log should be empty$`, f.theCompletionLogShouldBeEmpty)
	sc.Step(`^the final stock file should be:$`, f.theFinalStockFileShouldBe)
	sc.Step(`^the log should contain (DEBUG|INFO|WARNING|ERROR) "([^"]*)"$`, f.theLogShouldContain)
	sc.Step(`^the log should not contain "([^"]*)"$`, f.theLogShouldNotContain)
}

func (f *floorContext) aWarehouseFloorWithTheFixtureTables() error {
	if f.dir != "" {
		os.RemoveAll(f.dir)
	}
	f.batchSize = 0
	dir, err := os.MkdirTemp("", "warehouse-bdd-")
	if err != nil {
		return err
	}
	f.dir = dir
	f.tables, err = helpers.WriteTablesTo(dir)
	return err
}

func (f *floorContext) aBatchSizeOf(size int) error {
	f.batchSize = size
	return nil
}

func (f *floorContext) theInitialStockTable(doc *godog.DocString) error {
	if f.dir == "" {
		return fmt.Errorf("no floor tables written yet")
	}
	return os.WriteFile(f.tables.InitialStock, []byte(doc.Content+"\n"), 0o644)
}

func (f *floorContext) theFloorOpens() error {
	layout, err := tables.LoadLayout(f.tables.Traversal)
	if err != nil {
		return err
	}
	catalog, err := tables.LoadCatalog(f.tables.Translation)
	if err != nil {
		return err
	}
	initial, err := tables.LoadInitialStock(f.tables.InitialStock)
	if err != nil {
		return err
	}

	f.completions = tables.NewCompletionLog(f.tables.Completions)
	if err := f.completions.Clear(); err != nil {
		return err
	}

	f.sim, err = simulation.New(simulation.Dependencies{
		Catalog:        catalog,
		Layout:         layout,
		InitialStock:   initial,
		Policy:         inventory.DefaultPolicy(),
		BatchSize:      f.batchSize,
		StartupSweep:   true,
		CompletionSink: f.completions,
		StockSink:      tables.NewFinalStockFile(f.tables.FinalStock),
		Middleware:     []simulation.Middleware{simulation.CommandLogMiddleware()},
	})
	if err != nil {
		return err
	}
	f.sim.Start(f.ctx)
	return nil
}

func (f *floorContext) theFloorCloses() error {
	return f.sim.Shutdown(f.ctx)
}

func (f *floorContext) theCommandsAreReplayed(doc *godog.DocString) error {
	stats, err := eventsource.NewReplayer(f.sim, 0, 1).Run(f.ctx, strings.NewReader(doc.Content))
	if err != nil {
		return err
	}
	f.stats = stats
	return nil
}

func (f *floorContext) isSent(line string) error {
	ev, err := eventsource.Parse(line)
	if err != nil {
		f.lastErr = err
		return nil
	}
	f.lastErr = f.sim.Apply(f.ctx, ev)
	return nil
}

func (f *floorContext) theCommandShouldBeAccepted() error {
	if f.lastErr != nil {
		return fmt.Errorf("expected command to be accepted, got: %v", f.lastErr)
	}
	return nil
}

func (f *floorContext) theCommandShouldBeRejected() error {
	if f.lastErr == nil {
		return fmt.Errorf("expected command to be rejected")
	}
	var malformed *eventsource.ErrMalformedCommand
	if errors.As(f.lastErr, &malformed) {
		return fmt.Errorf("expected a rejected event, got a malformed command: %v", f.lastErr)
	}
	return nil
}

func (f *floorContext) theCommandShouldBeMalformed() error {
	var malformed *eventsource.ErrMalformedCommand
	if !errors.As(f.lastErr, &malformed) {
		return fmt.Errorf("expected a malformed command, got: %v", f.lastErr)
	}
	return nil
}

func (f *floorContext) commandsShouldBe(count int, outcome string) error {
	actual := map[string]int{
		"applied":   f.stats.Applied,
		"rejected":  f.stats.Rejected,
		"malformed": f.stats.Malformed,
	}[outcome]
	if actual != count {
		return fmt.Errorf("expected %d %s commands, got %d (stats %+v)", count, outcome, actual, f.stats)
	}
	return nil
}

func (f *floorContext) queue(name string) []int {
	q := f.sim.Status().Queues
	switch name {
	case "picking":
		return q.Picking
	case "sequencing":
		return q.Sequencing
	default:
		return q.Loading
	}
}

func (f *floorContext) theQueueShouldHold(name, list string) error {
	var expected []int
	for _, field := range strings.Split(list, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return err
		}
		expected = append(expected, id)
	}

	actual := f.queue(name)
	if fmt.Sprint(actual) != fmt.Sprint(expected) {
		return fmt.Errorf("expected %s queue %v, got %v", name, expected, actual)
	}
	return nil
}

func (f *floorContext) theQueueShouldBeEmpty(name string) error {
	if actual := f.queue(name); len(actual) != 0 {
		return fmt.Errorf("expected %s queue to be empty, got %v", name, actual)
	}
	return nil
}

func (f *floorContext) theReplenishQueueShouldHold(list string) error {
	expected := strings.Split(list, ";")
	actual := f.sim.Status().Queues.Replenish
	if strings.Join(actual, ";") != strings.Join(expected, ";") {
		return fmt.Errorf("expected replenish queue %v, got %v", expected, actual)
	}
	return nil
}

func (f *floorContext) theReplenishQueueShouldBeEmpty() error {
	if actual := f.sim.Status().Queues.Replenish; len(actual) != 0 {
		return fmt.Errorf("expected replenish queue to be empty, got %v", actual)
	}
	return nil
}

func (f *floorContext) ordersShouldBeWaiting(count int) error {
	if actual := f.sim.Status().PendingOrders; actual != count {
		return fmt.Errorf("expected %d pending orders, got %d", count, actual)
	}
	return nil
}

func (f *floorContext) theNextOrderIDShouldBe(id int) error {
	if actual := f.sim.Status().NextOrderID; actual != id {
		return fmt.Errorf("expected next order id %d, got %d", id, actual)
	}
	return nil
}

func (f *floorContext) workerShouldBe(id, status string) error {
	for _, v := range f.sim.Status().Workers {
		if v.ID == id {
			if string(v.Status) != status {
				return fmt.Errorf("expected worker %s to be %s, got %s", id, status, v.Status)
			}
			return nil
		}
	}
	return fmt.Errorf("worker %s is not registered", id)
}

func (f *floorContext) workerShouldHoldRequest(id string, requestID int) error {
	for _, v := range f.sim.Status().Workers {
		if v.ID == id {
			if v.RequestID != requestID {
				return fmt.Errorf("expected worker %s to hold request %d, got %d", id, requestID, v.RequestID)
			}
			return nil
		}
	}
	return fmt.Errorf("worker %s is not registered", id)
}

func (f *floorContext) workersShouldBeRegistered(count int) error {
	if actual := len(f.sim.Status().Workers); actual != count {
		return fmt.Errorf("expected %d workers, got %d", count, actual)
	}
	return nil
}

func (f *floorContext) theStockAtShouldBe(slot string, amount int) error {
	for _, level := range f.sim.StockLevels() {
		if level.Slot == slot {
			if level.Amount != amount {
				return fmt.Errorf("expected %d at %s, got %d", amount, slot, level.Amount)
			}
			return nil
		}
	}
	return fmt.Errorf("slot %s is not in the layout", slot)
}

func (f *floorContext) theStockShouldBe(table *godog.Table) error {
	for _, row := range dataRows(table) {
		amount, err := strconv.Atoi(cellValue(table, row, "amount"))
		if err != nil {
			return fmt.Errorf("invalid amount in table: %w", err)
		}
		if err := f.theStockAtShouldBe(cellValue(table, row, "location"), amount); err != nil {
			return err
		}
	}
	return nil
}

func (f *floorContext) theCompletionLogShouldBe(doc *godog.DocString) error {
	actual, err := f.completions.Lines()
	if err != nil {
		return err
	}
	expected := docLines(doc)
	if strings.Join(actual, "\n") != strings.Join(expected, "\n") {
		return fmt.Errorf("expected completion log:\n%s\ngot:\n%s", strings.Join(expected, "\n"), strings.Join(actual, "\n"))
	}
	return nil
}

func (f *floorContext) theCompletionLogShouldBeEmpty() error {
	actual, err := f.completions.Lines()
	if err != nil {
		return err
	}
	if len(actual) != 0 {
		return fmt.Errorf("expected empty completion log, got %v", actual)
	}
	return nil
}

func (f *floorContext) theFinalStockFileShouldBe(doc *godog.DocString) error {
	data, err := os.ReadFile(f.tables.FinalStock)
	if err != nil {
		return err
	}
	actual := strings.Fields(string(data))
	expected := docLines(doc)
	sort.Strings(actual)
	sort.Strings(expected)
	if strings.Join(actual, "\n") != strings.Join(expected, "\n") {
		return fmt.Errorf("expected final stock:\n%s\ngot:\n%s", strings.Join(expected, "\n"), string(data))
	}
	return nil
}

func (f *floorContext) theLogShouldContain(level, fragment string) error {
	if !f.logger.Contains(level, fragment) {
		return fmt.Errorf("expected %s log containing %q, got:\n%s", level, fragment, f.dumpLog())
	}
	return nil
}

func (f *floorContext) theLogShouldNotContain(fragment string) error {
	for _, e := range f.logger.Entries() {
		if strings.Contains(e.Message, fragment) {
			return fmt.Errorf("unexpected %s log %q", e.Level, e.Message)
		}
	}
	return nil
}

func (f *floorContext) dumpLog() string {
	var b strings.Builder
	for _, e := range f.logger.Entries() {
		fmt.Fprintf(&b, "  %s: %s\n", e.Level, e.Message)
	}
	return b.String()
}

func docLines(doc *godog.DocString) []string {
	var lines []string
	for _, line := range strings.Split(doc.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
