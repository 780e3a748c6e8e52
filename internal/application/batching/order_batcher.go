package batching

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/picking"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// DefaultBatchSize is the number of orders that make up one work request
const DefaultBatchSize = 4

// RequestSink receives newly created work requests
type RequestSink interface {
	AddRequest(ctx context.Context, req *request.WorkRequest)
}

// OrderBatcher buffers incoming orders and emits a work request once a full
// batch has arrived. Partial batches persist across calls.
type OrderBatcher struct {
	mu        sync.Mutex
	size      int
	buffer    []*order.Order
	catalog   *order.Catalog
	optimizer *picking.Optimizer
	ids       *shared.Sequence
	sink      RequestSink
}

// NewOrderBatcher creates a batcher. A non-positive size falls back to DefaultBatchSize.
func NewOrderBatcher(size int, catalog *order.Catalog, optimizer *picking.Optimizer, ids *shared.Sequence, sink RequestSink) *OrderBatcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if ids == nil {
		ids = shared.NewSequence()
	}

	return &OrderBatcher{
		size:      size,
		buffer:    make([]*order.Order, 0, size-1),
		catalog:   catalog,
		optimizer: optimizer,
		ids:       ids,
		sink:      sink,
	}
}

// Submit buffers an order. When the buffer already holds size-1 orders the
// new order completes a batch: the buffer is cleared and the resulting work
// request is handed to the sink and returned. Otherwise nil is returned.
func (b *OrderBatcher) Submit(ctx context.Context, o *order.Order) (*request.WorkRequest, error) {
	b.mu.Lock()
	if len(b.buffer) < b.size-1 {
		b.buffer = append(b.buffer, o)
		b.mu.Unlock()
		return nil, nil
	}

	batch := make([]*order.Order, 0, b.size)
	batch = append(batch, b.buffer...)
	batch = append(batch, o)

	req, err := b.buildRequest(ctx, batch)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.buffer = b.buffer[:0]
	b.mu.Unlock()

	common.LoggerFromContext(ctx).Log("INFO", fmt.Sprintf("%s created (Orders %s)", req, req.OrderIDs()), map[string]interface{}{
		"request_id": req.ID(),
	})
	b.sink.AddRequest(ctx, req)
	return req, nil
}

// Pending returns the buffered orders waiting for a full batch
func (b *OrderBatcher) Pending() []*order.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]*order.Order(nil), b.buffer...)
}

// Size returns the number of orders per work request
func (b *OrderBatcher) Size() int {
	return b.size
}

// buildRequest derives the load and pick sequences for a batch. Caller holds b.mu.
func (b *OrderBatcher) buildRequest(ctx context.Context, batch []*order.Order) (*request.WorkRequest, error) {
	loadSequence, err := b.catalog.LoadSequence(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to build load sequence: %w", err)
	}

	if missing := b.optimizer.Unreachable(loadSequence); len(missing) > 0 {
		common.LoggerFromContext(ctx).Log("WARNING", fmt.Sprintf("Fascias %v are not in the traversal table and will not be picked", missing), map[string]interface{}{
			"items": missing,
		})
	}

	return request.NewWorkRequest(b.ids.Next(), batch, loadSequence, b.optimizer.Optimize(loadSequence))
}
