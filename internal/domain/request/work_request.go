package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
)

// WorkRequest is a batch of orders moving through picking, sequencing and
// loading as one unit. Lower ids have priority wherever requests are ranked.
//
// Invariants:
// - orders, loadSequence and pickSequence are fixed at creation
// - state is cleared and rebuilt by whichever worker holds the request
// - a request is held by at most one worker at a time
type WorkRequest struct {
	id           int
	orders       []*order.Order
	loadSequence []string
	pickSequence []string
	state        []string
}

// NewWorkRequest creates a request with an id handed out by the caller's sequence
func NewWorkRequest(id int, orders []*order.Order, loadSequence, pickSequence []string) (*WorkRequest, error) {
	if id < 1 {
		return nil, &ErrInvalidRequest{Field: "id", Reason: "id must be positive"}
	}
	if len(orders) == 0 {
		return nil, &ErrInvalidRequest{Field: "orders", Reason: "at least one order is required"}
	}
	if len(loadSequence) != len(orders)*2 {
		return nil, &ErrInvalidRequest{
			Field:  "load_sequence",
			Reason: fmt.Sprintf("expected %d items for %d orders, got %d", len(orders)*2, len(orders), len(loadSequence)),
		}
	}

	return &WorkRequest{
		id:           id,
		orders:       append([]*order.Order(nil), orders...),
		loadSequence: append([]string(nil), loadSequence...),
		pickSequence: append([]string(nil), pickSequence...),
		state:        make([]string, 0, len(loadSequence)),
	}, nil
}

func (r *WorkRequest) ID() int {
	return r.id
}

// Orders returns the batched orders in arrival order
func (r *WorkRequest) Orders() []*order.Order {
	return append([]*order.Order(nil), r.orders...)
}

// LoadSequence returns the only valid final arrangement of the request's items
func (r *WorkRequest) LoadSequence() []string {
	return append([]string(nil), r.loadSequence...)
}

// PickSequence returns the physical pick order of the request's items
func (r *WorkRequest) PickSequence() []string {
	return append([]string(nil), r.pickSequence...)
}

// State returns the items accumulated by the current holder
func (r *WorkRequest) State() []string {
	return append([]string(nil), r.state...)
}

// AppendState records one more item handed over by the current holder
func (r *WorkRequest) AppendState(item string) {
	r.state = append(r.state, item)
}

// ClearState empties the accumulated items
func (r *WorkRequest) ClearState() {
	r.state = r.state[:0]
}

// ArrangeForLoading rebuilds the state so it matches the load sequence exactly
func (r *WorkRequest) ArrangeForLoading() {
	r.ClearState()
	r.state = append(r.state, r.loadSequence...)
}

// OrderIDs renders the batched order ids, e.g. "1, 2, 3, 4"
func (r *WorkRequest) OrderIDs() string {
	ids := make([]string, len(r.orders))
	for i, o := range r.orders {
		ids[i] = strconv.Itoa(o.ID())
	}
	return strings.Join(ids, ", ")
}

// CompletionLines renders one completion log line per batched order
func (r *WorkRequest) CompletionLines() []string {
	lines := make([]string, len(r.orders))
	for i, o := range r.orders {
		lines[i] = o.String()
	}
	return lines
}

func (r *WorkRequest) String() string {
	return fmt.Sprintf("PickingRequest #%d", r.id)
}
