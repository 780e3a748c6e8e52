package order

import "fmt"

// Order is a single customer order for one fascia pair.
// Orders are immutable once created.
type Order struct {
	id     int
	colour string
	model  string
}

// NewOrder creates an order with an id handed out by the caller's sequence
func NewOrder(id int, colour, model string) (*Order, error) {
	if id < 1 {
		return nil, &ErrInvalidOrder{Field: "id", Reason: "id must be positive"}
	}
	if colour == "" {
		return nil, &ErrInvalidOrder{Field: "colour", Reason: "colour is required"}
	}
	if model == "" {
		return nil, &ErrInvalidOrder{Field: "model", Reason: "model is required"}
	}

	return &Order{id: id, colour: colour, model: model}, nil
}

func (o *Order) ID() int {
	return o.id
}

func (o *Order) Colour() string {
	return o.colour
}

func (o *Order) Model() string {
	return o.model
}

// String renders the order the way it appears in the completion log
func (o *Order) String() string {
	return fmt.Sprintf("Order #%d: %s, %s", o.id, o.colour, o.model)
}
