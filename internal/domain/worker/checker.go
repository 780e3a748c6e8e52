package worker

import (
	"context"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// checkerPayload is shared by sequencers and loaders
type checkerPayload struct {
	expected []string
	given    []string
	results  []bool
}

// CheckResult describes one comparison made by a checker
type CheckResult struct {
	RequestID int
	Item      string
	Passed    bool
	Cursor    int
	Complete  bool
}

func (c *checkerPayload) hasFailure() bool {
	for _, passed := range c.results {
		if !passed {
			return true
		}
	}
	return false
}

func (c *checkerPayload) reset() {
	c.results = c.results[:0]
}

func checkerAssigned(w *Worker) {
	w.checker.expected = w.request.LoadSequence()
	w.checker.given = w.request.State()
	w.checker.reset()
}

func checkerCheck(ctx context.Context, w *Worker) (CheckResult, error) {
	if w.request == nil {
		return CheckResult{}, shared.NewNoTaskError(w.role.String(), w.id)
	}

	c := w.checker
	if w.cursor >= len(c.expected) {
		return CheckResult{}, &ErrCheckLimitReached{WorkerID: w.id, Role: w.role, Count: len(c.expected)}
	}
	if c.hasFailure() {
		return CheckResult{}, &ErrCheckBlocked{WorkerID: w.id, Role: w.role}
	}

	item := c.expected[w.cursor]
	passed := contains(c.given, item)
	c.results = append(c.results, passed)
	w.cursor++

	return CheckResult{
		RequestID: w.request.ID(),
		Item:      item,
		Passed:    passed,
		Cursor:    w.cursor,
		Complete:  w.cursor == len(c.expected),
	}, nil
}

func checkerRescan(ctx context.Context, w *Worker) error {
	if w.request == nil {
		return shared.NewNoTaskError(w.role.String(), w.id)
	}

	w.cursor = 0
	w.checker.reset()
	return nil
}

func checkerReject(ctx context.Context, w *Worker) error {
	w.dispatcher.RouteToPicking(ctx, w.request)
	w.checker.reset()
	w.release()
	return nil
}

func sequencerApprove(ctx context.Context, w *Worker) error {
	w.request.ArrangeForLoading()
	w.dispatcher.RouteToLoading(ctx, w.request)
	w.checker.reset()
	w.release()
	return nil
}

// loaderApprove completes the request. The loader is released even when the
// dispatcher reports that the request was completed out of load order.
func loaderApprove(ctx context.Context, w *Worker) error {
	w.request.ArrangeForLoading()
	err := w.dispatcher.CompleteRequest(ctx, w.request)
	w.checker.reset()
	w.release()
	return err
}
