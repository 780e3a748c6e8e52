package eventsource

import (
	"context"
	"io"
	"math"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
)

// Applier consumes parsed events
type Applier interface {
	Apply(ctx context.Context, ev simulation.Event) error
}

// ReplayStats counts what happened to the lines of a command file
type ReplayStats struct {
	Applied   int
	Rejected  int
	Malformed int
}

// Replayer feeds a command file into an Applier, optionally paced
type Replayer struct {
	applier Applier
	limiter *rate.Limiter
}

// NewReplayer creates a replayer. eventsPerSecond <= 0 replays unthrottled.
func NewReplayer(applier Applier, eventsPerSecond float64, burst int) *Replayer {
	limit := rate.Inf
	if eventsPerSecond > 0 && !math.IsInf(eventsPerSecond, 1) {
		limit = rate.Limit(eventsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Replayer{
		applier: applier,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Run applies every command in r. Malformed lines are logged and dropped;
// rejected events are counted and the replay continues.
func (p *Replayer) Run(ctx context.Context, r io.Reader) (ReplayStats, error) {
	var stats ReplayStats
	logger := common.LoggerFromContext(ctx)

	err := Scan(ctx, r, func(cmd Command) error {
		if cmd.Err != nil {
			stats.Malformed++
			logger.Log("WARNING", cmd.Err.Error(), map[string]interface{}{
				"line": cmd.Line,
			})
			return nil
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		if err := p.applier.Apply(ctx, cmd.Event); err != nil {
			stats.Rejected++
			return nil
		}
		stats.Applied++
		return nil
	})
	return stats, err
}
