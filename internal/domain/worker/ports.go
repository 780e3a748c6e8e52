package worker

import (
	"context"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
)

// Assignment is one unit of work: a request for pipeline roles or a slot
// location for replenishers.
type Assignment struct {
	Request  *request.WorkRequest
	Location string
}

// Dispatcher hands work to workers and accepts finished work back
type Dispatcher interface {
	// Claim pops the next unit for the worker's role or, if none is
	// available, registers the worker as idle. Both happen atomically.
	Claim(ctx context.Context, w *Worker) (Assignment, bool)

	RouteToPicking(ctx context.Context, req *request.WorkRequest)
	RouteToSequencing(ctx context.Context, req *request.WorkRequest)
	RouteToLoading(ctx context.Context, req *request.WorkRequest)

	// CompleteRequest removes a loaded request from the pipeline
	CompleteRequest(ctx context.Context, req *request.WorkRequest) error
}

// StockKeeper is the inventory the workers pick from and restock
type StockKeeper interface {
	Decrement(ctx context.Context, item string) (int, error)
	Replenish(slot string) (bool, error)
}
