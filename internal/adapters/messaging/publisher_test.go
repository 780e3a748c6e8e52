package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

type fakeChannel struct {
	exchange string
	key      string
	messages []amqp.Publishing
	err      error
}

func (c *fakeChannel) GetNextPublishSeqNo() uint64 {
	return uint64(len(c.messages)) + 1
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.exchange = exchange
	c.key = key
	c.messages = append(c.messages, msg)
	return nil
}

func loadedRequest(t *testing.T) *request.WorkRequest {
	t.Helper()
	o1, err := order.NewOrder(1, "White", "S")
	require.NoError(t, err)
	o2, err := order.NewOrder(2, "Red", "SE")
	require.NoError(t, err)
	req, err := request.NewWorkRequest(1, []*order.Order{o1, o2}, []string{"2", "8", "1", "7"}, []string{"2", "1", "8", "7"})
	require.NoError(t, err)
	return req
}

func TestCompletionPublisher_PublishesJSON(t *testing.T) {
	// Arrange
	ch := &fakeChannel{}
	clock := shared.NewMockClock(time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC))
	pub := NewCompletionPublisher(ch, nil, "completions", "request.completed", "run-1", clock)

	// Act
	err := pub.RecordCompletion(context.Background(), loadedRequest(t))

	// Assert
	require.NoError(t, err)
	require.Len(t, ch.messages, 1)
	assert.Equal(t, "completions", ch.exchange)
	assert.Equal(t, "request.completed", ch.key)
	assert.Equal(t, "run-1-1", ch.messages[0].MessageId)
	assert.Equal(t, uint8(amqp.Persistent), ch.messages[0].DeliveryMode)

	var msg CompletionMessage
	require.NoError(t, json.Unmarshal(ch.messages[0].Body, &msg))
	assert.Equal(t, 1, msg.RequestID)
	assert.Equal(t, []OrderLine{{1, "White", "S"}, {2, "Red", "SE"}}, msg.Orders)
}

func TestCompletionPublisher_WaitsForConfirm(t *testing.T) {
	acks := make(chan amqp.Confirmation, 1)
	acks <- amqp.Confirmation{DeliveryTag: 1, Ack: false}
	pub := NewCompletionPublisher(&fakeChannel{}, acks, "completions", "request.completed", "run-1", nil)

	err := pub.RecordCompletion(context.Background(), loadedRequest(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker rejected PickingRequest #1")
}

func TestCompletionPublisher_PublishFailure(t *testing.T) {
	pub := NewCompletionPublisher(&fakeChannel{err: errors.New("channel closed")}, nil, "completions", "", "run-1", nil)

	err := pub.RecordCompletion(context.Background(), loadedRequest(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}

func TestCompletionPublisher_LateConfirmIsNotTakenForTheNextPublish(t *testing.T) {
	// Arrange
	acks := make(chan amqp.Confirmation, 2)
	pub := NewCompletionPublisher(&fakeChannel{}, acks, "completions", "request.completed", "run-1", nil)
	pub.timeout = 20 * time.Millisecond

	firstErr := pub.RecordCompletion(context.Background(), loadedRequest(t))
	require.ErrorIs(t, firstErr, context.DeadlineExceeded)

	// The first publish's ack turns up after it gave up; the second is nacked
	acks <- amqp.Confirmation{DeliveryTag: 1, Ack: true}
	acks <- amqp.Confirmation{DeliveryTag: 2, Ack: false}

	// Act
	err := pub.RecordCompletion(context.Background(), loadedRequest(t))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker rejected PickingRequest #1")
}

func TestCompletionPublisher_SkipsStaleConfirmsBeforeItsOwn(t *testing.T) {
	acks := make(chan amqp.Confirmation, 3)
	pub := NewCompletionPublisher(&fakeChannel{}, acks, "completions", "request.completed", "run-1", nil)
	pub.timeout = 20 * time.Millisecond
	require.Error(t, pub.RecordCompletion(context.Background(), loadedRequest(t)))
	require.Error(t, pub.RecordCompletion(context.Background(), loadedRequest(t)))

	acks <- amqp.Confirmation{DeliveryTag: 1, Ack: false}
	acks <- amqp.Confirmation{DeliveryTag: 2, Ack: false}
	acks <- amqp.Confirmation{DeliveryTag: 3, Ack: true}

	assert.NoError(t, pub.RecordCompletion(context.Background(), loadedRequest(t)))
	assert.Empty(t, acks)
}
