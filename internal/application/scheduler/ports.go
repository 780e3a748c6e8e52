package scheduler

import (
	"context"
	"errors"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
)

// Stage names a pipeline queue
type Stage string

const (
	StagePicking    Stage = "picking"
	StageSequencing Stage = "sequencing"
	StageLoading    Stage = "loading"
	StageLoadOrder  Stage = "load_order"
	StageReplenish  Stage = "replenish"
)

// CompletionSink durably records completed requests
type CompletionSink interface {
	RecordCompletion(ctx context.Context, req *request.WorkRequest) error
}

// Recorder observes queue activity for metrics
type Recorder interface {
	RecordQueueDepth(stage Stage, depth int)
	RecordRequestCompleted(requestID int, outOfOrder bool)
	RecordReplenishmentQueued(slot string)
}

type noOpRecorder struct{}

func (noOpRecorder) RecordQueueDepth(stage Stage, depth int)                {}
func (noOpRecorder) RecordRequestCompleted(requestID int, outOfOrder bool) {}
func (noOpRecorder) RecordReplenishmentQueued(slot string)                 {}

// MultiSink fans a completion out to several sinks. Every sink is tried
// even when an earlier one fails.
type MultiSink []CompletionSink

func (m MultiSink) RecordCompletion(ctx context.Context, req *request.WorkRequest) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.RecordCompletion(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
