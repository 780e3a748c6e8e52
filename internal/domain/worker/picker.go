package worker

import (
	"context"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

type pickerPayload struct {
	sequence    []string
	donePicking bool
}

// PickResult describes an accepted pick
type PickResult struct {
	RequestID   int
	Item        string
	Remaining   int
	Cursor      int
	DonePicking bool
}

func pickerAssigned(w *Worker) {
	// A rejected request comes back with the previous attempt's items; picking starts over.
	w.request.ClearState()
	w.picker.sequence = w.request.PickSequence()
	w.picker.donePicking = len(w.picker.sequence) == 0
}

func pickerPick(ctx context.Context, w *Worker, item string) (PickResult, error) {
	if w.request == nil {
		return PickResult{}, shared.NewNoTaskError(w.role.String(), w.id)
	}

	p := w.picker
	if p.donePicking {
		return PickResult{}, &ErrAlreadyDonePicking{WorkerID: w.id, Count: len(p.sequence)}
	}

	expected := p.sequence[w.cursor]
	if item != expected || !contains(p.sequence[w.cursor:], item) {
		return PickResult{}, &ErrPickMismatch{WorkerID: w.id, Expected: expected, Given: item}
	}

	remaining, err := w.stock.Decrement(ctx, item)
	if err != nil {
		return PickResult{}, err
	}

	w.request.AppendState(item)
	w.cursor++
	if w.cursor == len(p.sequence) {
		p.donePicking = true
	}

	return PickResult{
		RequestID:   w.request.ID(),
		Item:        item,
		Remaining:   remaining,
		Cursor:      w.cursor,
		DonePicking: p.donePicking,
	}, nil
}

func pickerAdvance(ctx context.Context, w *Worker) error {
	p := w.picker
	if !p.donePicking {
		return &ErrNotDonePicking{WorkerID: w.id, Picked: w.cursor, Remaining: len(p.sequence) - w.cursor}
	}

	w.dispatcher.RouteToSequencing(ctx, w.request)
	p.donePicking = false
	p.sequence = nil
	w.release()
	return nil
}

func contains(items []string, item string) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}
