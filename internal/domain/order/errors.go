package order

import "fmt"

// ErrInvalidOrder represents validation errors for orders
type ErrInvalidOrder struct {
	Field  string
	Reason string
}

func (e *ErrInvalidOrder) Error() string {
	return fmt.Sprintf("invalid order: %s - %s", e.Field, e.Reason)
}

// ErrUnknownVariant is returned when a (colour, model) pair is not in the catalog
type ErrUnknownVariant struct {
	Colour string
	Model  string
}

func (e *ErrUnknownVariant) Error() string {
	return fmt.Sprintf("'Colour %s, Model %s' is not a recognized combination", e.Colour, e.Model)
}

// ErrInvalidCatalog represents a malformed translation table row
type ErrInvalidCatalog struct {
	Row    int
	Reason string
}

func (e *ErrInvalidCatalog) Error() string {
	return fmt.Sprintf("invalid catalog row %d: %s", e.Row, e.Reason)
}
