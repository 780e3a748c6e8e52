package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/persistence"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
	"github.com/andrescamacho/fascia-warehouse/test/helpers"
)

func startRun(t *testing.T, repo *persistence.GormRunRepository, id string) {
	t.Helper()
	require.NoError(t, repo.Start(context.Background(), id, "commands.txt"))
}

func TestRunRepository_StartAndFinish(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC))
	repo := persistence.NewGormRunRepository(db, clock)
	startRun(t, repo, "run-1")

	// Act
	clock.Advance(time.Minute)
	err := repo.Finish(context.Background(), "run-1", persistence.RunStatusFinished, 12, 2)

	// Assert
	require.NoError(t, err)
	run, err := repo.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, persistence.RunStatusFinished, run.Status)
	assert.Equal(t, 12, run.EventsApplied)
	assert.Equal(t, 2, run.EventsRejected)
	assert.Equal(t, "2026-01-02T08:01:00Z", run.FinishedAt)
}

func TestRunRepository_FinishUnknownRun(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRunRepository(db, nil)

	err := repo.Finish(context.Background(), "missing", persistence.RunStatusFailed, 0, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCompletionRepository_RecordsEveryOrder(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	startRun(t, persistence.NewGormRunRepository(db, nil), "run-1")
	repo := persistence.NewGormCompletionRepository(db, "run-1", nil)

	o1, err := order.NewOrder(1, "White", "S")
	require.NoError(t, err)
	o2, err := order.NewOrder(2, "Red", "SE")
	require.NoError(t, err)
	req, err := request.NewWorkRequest(1, []*order.Order{o1, o2}, []string{"2", "8", "1", "7"}, []string{"2", "1", "8", "7"})
	require.NoError(t, err)

	// Act
	require.NoError(t, repo.RecordCompletion(context.Background(), req))

	// Assert
	records, err := repo.FindByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, persistence.CompletionRecord{RequestID: 1, OrderID: 1, Colour: "White", Model: "S"}, records[0])
	assert.Equal(t, persistence.CompletionRecord{RequestID: 1, OrderID: 2, Colour: "Red", Model: "SE"}, records[1])
}

func TestStockSnapshotRepository_SaveTwiceKeepsLatest(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	startRun(t, persistence.NewGormRunRepository(db, nil), "run-1")
	repo := persistence.NewGormStockSnapshotRepository(db, "run-1", nil)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.SaveStock(ctx, []inventory.StockLevel{
		{Slot: "A,1,1,0", Item: "2", Amount: 29},
		{Slot: "A,1,4,1", Item: "7", Amount: 5},
	}))
	require.NoError(t, repo.SaveStock(ctx, []inventory.StockLevel{
		{Slot: "A,1,4,1", Item: "7", Amount: 30},
	}))

	// Assert
	levels, err := repo.FindByRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []inventory.StockLevel{
		{Slot: "A,1,1,0", Item: "2", Amount: 29},
		{Slot: "A,1,4,1", Item: "7", Amount: 30},
	}, levels)
}

func TestStockSnapshotRepository_EmptySnapshotIsNoOp(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormStockSnapshotRepository(db, "run-1", nil)

	assert.NoError(t, repo.SaveStock(context.Background(), nil))
}

func TestJournalMiddleware_RecordsOutcomes(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	startRun(t, persistence.NewGormRunRepository(db, nil), "run-1")
	journal := persistence.NewGormEventJournalRepository(db, "run-1", nil)
	mw := persistence.JournalMiddleware(journal)
	ctx := context.Background()

	accept := func(ctx context.Context, ev simulation.Event) error { return nil }
	reject := func(ctx context.Context, ev simulation.Event) error { return errors.New("unknown worker") }

	// Act
	require.NoError(t, mw(ctx, simulation.OrderSubmitted{Colour: "White", Model: "S"}, accept))
	require.Error(t, mw(ctx, simulation.PickerAdvanced{WorkerID: "ghost"}, reject))

	// Assert
	entries, err := journal.FindByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Sequence)
	assert.Equal(t, "order_submitted", entries[0].Kind)
	assert.Equal(t, "Order S White", entries[0].Command)
	assert.True(t, entries[0].Accepted)
	assert.Equal(t, 2, entries[1].Sequence)
	assert.False(t, entries[1].Accepted)
	assert.Equal(t, "unknown worker", entries[1].Error)
}

func TestRunLogRepository_LogAndFilter(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	startRun(t, persistence.NewGormRunRepository(db, nil), "run-1")
	repo := persistence.NewGormRunLogRepository(db, nil)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Log(ctx, "run-1", "INFO", "Picker a is placed in the picking queue", nil))
	require.NoError(t, repo.Log(ctx, "run-1", "INFO", "Picker a is placed in the picking queue", nil))
	require.NoError(t, repo.Log(ctx, "run-1", "WARNING", "unknown worker", map[string]interface{}{"worker_id": "ghost"}))

	// Assert
	all, err := repo.GetLogs(ctx, "run-1", 0, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	level := "WARNING"
	warnings, err := repo.GetLogs(ctx, "run-1", 10, &level)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "ghost", warnings[0].Metadata["worker_id"])
}
