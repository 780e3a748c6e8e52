package request

import (
	"testing"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batch(t *testing.T) []*order.Order {
	t.Helper()
	var orders []*order.Order
	for i, colour := range []string{"White", "Red", "Blue", "Beige"} {
		o, err := order.NewOrder(i+1, colour, "S")
		require.NoError(t, err)
		orders = append(orders, o)
	}
	return orders
}

func TestNewWorkRequest_CopiesSequences(t *testing.T) {
	// Arrange
	load := []string{"2", "4", "6", "8", "1", "3", "5", "7"}
	pick := []string{"1", "2", "3", "4", "5", "6", "7", "8"}

	// Act
	req, err := NewWorkRequest(1, batch(t), load, pick)
	require.NoError(t, err)
	load[0] = "mutated"

	// Assert
	assert.Equal(t, "2", req.LoadSequence()[0])
	assert.Equal(t, pick, req.PickSequence())
	assert.Empty(t, req.State())
	assert.Equal(t, "1, 2, 3, 4", req.OrderIDs())
}

func TestNewWorkRequest_RejectsWrongLoadSequenceLength(t *testing.T) {
	_, err := NewWorkRequest(1, batch(t), []string{"1"}, []string{"1"})
	assert.Error(t, err)

	_, err = NewWorkRequest(0, batch(t), make([]string, 8), nil)
	assert.Error(t, err)
}

func TestWorkRequest_StateTransitions(t *testing.T) {
	load := []string{"2", "4", "6", "8", "1", "3", "5", "7"}
	req, err := NewWorkRequest(3, batch(t), load, load)
	require.NoError(t, err)

	req.AppendState("8")
	req.AppendState("1")
	assert.Equal(t, []string{"8", "1"}, req.State())

	req.ArrangeForLoading()
	assert.Equal(t, load, req.State())

	req.ClearState()
	assert.Empty(t, req.State())
}

func TestWorkRequest_CompletionLines(t *testing.T) {
	req, err := NewWorkRequest(1, batch(t), make([]string, 8), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Order #1: White, S",
		"Order #2: Red, S",
		"Order #3: Blue, S",
		"Order #4: Beige, S",
	}, req.CompletionLines())
	assert.Equal(t, "PickingRequest #1", req.String())
}
