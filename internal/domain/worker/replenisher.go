package worker

import (
	"context"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// ReplenishResult describes a finished replenishment task
type ReplenishResult struct {
	Location    string
	Replenished bool
}

// replenisherReplenish restocks the held location. The replenisher is
// released whether or not restocking was needed.
func replenisherReplenish(ctx context.Context, w *Worker) (ReplenishResult, error) {
	if w.location == "" {
		return ReplenishResult{}, shared.NewNoTaskError(w.role.String(), w.id)
	}

	location := w.location
	replenished, err := w.stock.Replenish(location)
	w.release()
	if err != nil {
		return ReplenishResult{Location: location}, err
	}

	return ReplenishResult{Location: location, Replenished: replenished}, nil
}
