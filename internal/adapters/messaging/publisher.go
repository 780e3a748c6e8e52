package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// Channel is the part of an AMQP channel the publisher needs
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	GetNextPublishSeqNo() uint64
}

// OrderLine is one order of a completion message
type OrderLine struct {
	OrderID int    `json:"order_id"`
	Colour  string `json:"colour"`
	Model   string `json:"model"`
}

// CompletionMessage is published for every loaded work request
type CompletionMessage struct {
	RunID       string      `json:"run_id"`
	RequestID   int         `json:"request_id"`
	Orders      []OrderLine `json:"orders"`
	CompletedAt time.Time   `json:"completed_at"`
}

// CompletionPublisher announces loaded requests on a fanout exchange.
// It satisfies scheduler.CompletionSink.
type CompletionPublisher struct {
	mu         sync.Mutex
	ch         Channel
	acks       <-chan amqp.Confirmation
	exchange   string
	routingKey string
	runID      string
	clock      shared.Clock
	timeout    time.Duration
}

// NewCompletionPublisher publishes through ch. acks may be nil when the
// channel is not in confirm mode.
func NewCompletionPublisher(ch Channel, acks <-chan amqp.Confirmation, exchange, routingKey, runID string, clock shared.Clock) *CompletionPublisher {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CompletionPublisher{
		ch:         ch,
		acks:       acks,
		exchange:   exchange,
		routingKey: routingKey,
		runID:      runID,
		clock:      clock,
		timeout:    5 * time.Second,
	}
}

// RecordCompletion publishes req and waits for the broker confirm
func (p *CompletionPublisher) RecordCompletion(ctx context.Context, req *request.WorkRequest) error {
	now := p.clock.Now().UTC()
	msg := CompletionMessage{
		RunID:       p.runID,
		RequestID:   req.ID(),
		CompletedAt: now,
	}
	for _, o := range req.Orders() {
		msg.Orders = append(msg.Orders, OrderLine{OrderID: o.ID(), Colour: o.Colour(), Model: o.Model()})
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal completion message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// Serialised so the sequence number read below is the one this publish gets
	p.mu.Lock()
	defer p.mu.Unlock()

	tag := p.ch.GetNextPublishSeqNo()
	err = p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		Body:          body,
		MessageId:     fmt.Sprintf("%s-%d", p.runID, req.ID()),
		CorrelationId: p.runID,
		Timestamp:     now,
		Headers: amqp.Table{
			"x-source": "warehouse-simulator",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", req, err)
	}

	if p.acks == nil {
		return nil
	}
	return p.awaitConfirm(ctx, tag, req)
}

// awaitConfirm waits for the confirm carrying tag. Confirms for earlier
// publishes that gave up waiting arrive late and are skipped.
func (p *CompletionPublisher) awaitConfirm(ctx context.Context, tag uint64, req *request.WorkRequest) error {
	for {
		select {
		case conf, ok := <-p.acks:
			if !ok {
				return errors.New("confirm channel closed")
			}
			if conf.DeliveryTag < tag {
				continue
			}
			if conf.DeliveryTag > tag {
				return fmt.Errorf("confirm for %s missing: broker confirmed delivery %d", req, conf.DeliveryTag)
			}
			if !conf.Ack {
				return fmt.Errorf("broker rejected %s", req)
			}
			return nil
		case <-ctx.Done():
			return fmt.Errorf("no confirm for %s: %w", req, ctx.Err())
		}
	}
}

// Connection owns the broker connection behind a publisher
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	acks <-chan amqp.Confirmation
}

// Dial connects to url, declares a durable fanout exchange and enables
// publisher confirms
func Dial(url, exchange string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 16))

	return &Connection{conn: conn, ch: ch, acks: acks}, nil
}

// Publisher builds a completion publisher on this connection
func (c *Connection) Publisher(exchange, routingKey, runID string) *CompletionPublisher {
	return NewCompletionPublisher(c.ch, c.acks, exchange, routingKey, runID, nil)
}

// Close closes the channel and connection
func (c *Connection) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
