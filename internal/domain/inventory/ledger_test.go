package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRouter struct {
	slots []string
}

func (r *recordingRouter) RouteToReplenish(ctx context.Context, slot string) {
	r.slots = append(r.slots, slot)
}

func testLayout(t *testing.T) *Layout {
	t.Helper()
	layout, err := NewLayout([]Slot{
		{ID: "A,0,0,0", Item: "1"},
		{ID: "A,0,0,1", Item: "5"},
		{ID: "A,0,0,2", Item: "9"},
	})
	require.NoError(t, err)
	return layout
}

func TestLedger_DecrementTriggersReplenishmentAtThreshold(t *testing.T) {
	// Arrange
	router := &recordingRouter{}
	ledger := NewLedger(testLayout(t), DefaultPolicy(), router)
	require.NoError(t, ledger.Restore([]StockLevel{{Slot: "A,0,0,1", Amount: 7}}))

	// Act
	remaining, err := ledger.Decrement(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)
	assert.Empty(t, router.slots)

	remaining, err = ledger.Decrement(context.Background(), "5")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 5, remaining)
	assert.Equal(t, []string{"A,0,0,1"}, router.slots)
}

func TestLedger_DecrementNeverGoesNegative(t *testing.T) {
	ledger := NewLedger(testLayout(t), DefaultPolicy(), nil)
	require.NoError(t, ledger.Restore([]StockLevel{{Slot: "A,0,0,0", Amount: 0}}))

	remaining, err := ledger.Decrement(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestLedger_DecrementUnknownItem(t *testing.T) {
	ledger := NewLedger(testLayout(t), DefaultPolicy(), nil)

	_, err := ledger.Decrement(context.Background(), "ABC")

	var unknown *ErrUnknownItem
	assert.True(t, errors.As(err, &unknown))
}

func TestLedger_Replenish(t *testing.T) {
	tests := []struct {
		name        string
		initial     int
		replenished bool
		expected    int
	}{
		{name: "above threshold is left alone", initial: 6, replenished: false, expected: 6},
		{name: "at threshold adds stock", initial: 5, replenished: true, expected: 30},
		{name: "empty slot adds stock", initial: 0, replenished: true, expected: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(testLayout(t), DefaultPolicy(), nil)
			require.NoError(t, ledger.Restore([]StockLevel{{Slot: "A,0,0,2", Amount: tt.initial}}))

			replenished, err := ledger.Replenish("A,0,0,2")

			require.NoError(t, err)
			assert.Equal(t, tt.replenished, replenished)
			amount, _ := ledger.StockAt("A,0,0,2")
			assert.Equal(t, tt.expected, amount)
		})
	}
}

func TestLedger_ReplenishUnknownSlot(t *testing.T) {
	ledger := NewLedger(testLayout(t), DefaultPolicy(), nil)

	_, err := ledger.Replenish("Z,9,9,9")

	var unknown *ErrUnknownSlot
	assert.True(t, errors.As(err, &unknown))
}

func TestLedger_CheckAllLevels(t *testing.T) {
	router := &recordingRouter{}
	ledger := NewLedger(testLayout(t), DefaultPolicy(), router)
	require.NoError(t, ledger.Restore([]StockLevel{
		{Slot: "A,0,0,2", Amount: 3},
		{Slot: "A,0,0,0", Amount: 5},
	}))

	low := ledger.CheckAllLevels(context.Background())

	assert.Equal(t, []string{"A,0,0,0", "A,0,0,2"}, low)
	assert.Equal(t, low, router.slots)
}

func TestLedger_SnapshotListsOnlyChangedSlots(t *testing.T) {
	ledger := NewLedger(testLayout(t), DefaultPolicy(), nil)
	require.NoError(t, ledger.Restore([]StockLevel{{Slot: "A,0,0,2", Amount: 12}}))
	_, err := ledger.Decrement(context.Background(), "1")
	require.NoError(t, err)

	snapshot := ledger.Snapshot()

	assert.Equal(t, []StockLevel{
		{Slot: "A,0,0,0", Item: "1", Amount: 29},
		{Slot: "A,0,0,2", Item: "9", Amount: 12},
	}, snapshot)
}

func TestLedger_RestoreRejectsUnknownSlot(t *testing.T) {
	ledger := NewLedger(testLayout(t), DefaultPolicy(), nil)

	err := ledger.Restore([]StockLevel{{Slot: "B,1,1,1", Amount: 4}})

	assert.Error(t, err)
}

func TestNewLayout_RejectsBrokenBijection(t *testing.T) {
	_, err := NewLayout([]Slot{{ID: "A,0,0,0", Item: "1"}, {ID: "A,0,0,1", Item: "1"}})
	assert.Error(t, err)

	_, err = NewLayout([]Slot{{ID: "A,0,0,0", Item: "1"}, {ID: "A,0,0,0", Item: "2"}})
	assert.Error(t, err)
}
