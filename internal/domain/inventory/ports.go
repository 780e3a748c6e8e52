package inventory

import "context"

// ReplenishmentRouter receives slots that need restocking
type ReplenishmentRouter interface {
	RouteToReplenish(ctx context.Context, slot string)
}

// StockSink persists the final stock levels of a run
type StockSink interface {
	SaveStock(ctx context.Context, levels []StockLevel) error
}
