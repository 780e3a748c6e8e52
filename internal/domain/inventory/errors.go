package inventory

import "fmt"

// ErrUnknownItem is returned when an item has no slot in the layout
type ErrUnknownItem struct {
	Item string
}

func (e *ErrUnknownItem) Error() string {
	return fmt.Sprintf("unknown item: %s", e.Item)
}

// ErrUnknownSlot is returned when a slot is not part of the layout
type ErrUnknownSlot struct {
	Slot string
}

func (e *ErrUnknownSlot) Error() string {
	return fmt.Sprintf("unknown slot: %s", e.Slot)
}

// ErrInvalidLayout represents a malformed traversal table row
type ErrInvalidLayout struct {
	Row    int
	Reason string
}

func (e *ErrInvalidLayout) Error() string {
	return fmt.Sprintf("invalid layout row %d: %s", e.Row, e.Reason)
}

// ErrInvalidStockLevel is returned when a snapshot holds a negative amount
type ErrInvalidStockLevel struct {
	Slot   string
	Amount int
}

func (e *ErrInvalidStockLevel) Error() string {
	return fmt.Sprintf("invalid stock level at %s: %d", e.Slot, e.Amount)
}
