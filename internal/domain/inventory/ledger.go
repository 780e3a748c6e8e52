package inventory

import (
	"context"
	"sync"
)

const (
	DefaultStock      = 30
	LowStockThreshold = 5
	ReplenishAmount   = 25
)

// Policy holds the stocking rules of the warehouse
type Policy struct {
	DefaultStock      int
	LowStockThreshold int
	ReplenishAmount   int
}

// DefaultPolicy returns the standard stocking rules
func DefaultPolicy() Policy {
	return Policy{
		DefaultStock:      DefaultStock,
		LowStockThreshold: LowStockThreshold,
		ReplenishAmount:   ReplenishAmount,
	}
}

// StockLevel is the amount of stock at one slot
type StockLevel struct {
	Slot   string
	Item   string
	Amount int
}

// Ledger tracks remaining stock per item and raises replenishment requests
// when a slot runs low.
//
// Invariants:
// - stock never goes below zero
// - the layout bijection is never mutated after construction
// - replenishment routing happens outside the ledger lock
type Ledger struct {
	mu     sync.Mutex
	layout *Layout
	policy Policy
	stock  map[string]int
	router ReplenishmentRouter
}

// NewLedger creates a ledger with every slot at the policy's default stock
func NewLedger(layout *Layout, policy Policy, router ReplenishmentRouter) *Ledger {
	stock := make(map[string]int, layout.Len())
	for _, slot := range layout.Slots() {
		stock[slot.Item] = policy.DefaultStock
	}

	return &Ledger{
		layout: layout,
		policy: policy,
		stock:  stock,
		router: router,
	}
}

// Restore loads per-slot amounts from a persisted snapshot. Slots not
// listed keep the default stock.
func (l *Ledger) Restore(levels []StockLevel) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, level := range levels {
		item, ok := l.layout.ItemAt(level.Slot)
		if !ok {
			return &ErrUnknownSlot{Slot: level.Slot}
		}
		if level.Amount < 0 {
			return &ErrInvalidStockLevel{Slot: level.Slot, Amount: level.Amount}
		}
		l.stock[item] = level.Amount
	}

	return nil
}

// CheckAllLevels requests replenishment for every slot already at or below
// the low-stock threshold and returns those slots in traversal order.
func (l *Ledger) CheckAllLevels(ctx context.Context) []string {
	l.mu.Lock()
	var low []string
	for _, slot := range l.layout.Slots() {
		if l.stock[slot.Item] <= l.policy.LowStockThreshold {
			low = append(low, slot.ID)
		}
	}
	l.mu.Unlock()

	for _, slot := range low {
		l.routeReplenishment(ctx, slot)
	}
	return low
}

// Decrement removes one unit of an item and returns the remaining stock.
// Reaching the low-stock threshold enqueues a replenishment for the item's slot.
func (l *Ledger) Decrement(ctx context.Context, item string) (int, error) {
	l.mu.Lock()
	current, ok := l.stock[item]
	if !ok {
		l.mu.Unlock()
		return 0, &ErrUnknownItem{Item: item}
	}
	if current > 0 {
		current--
	}
	l.stock[item] = current
	slot, _ := l.layout.SlotOf(item)
	low := current <= l.policy.LowStockThreshold
	l.mu.Unlock()

	if low {
		l.routeReplenishment(ctx, slot)
	}
	return current, nil
}

// Replenish restocks a slot if it is at or below the low-stock threshold.
// It returns false when the slot already holds enough stock.
func (l *Ledger) Replenish(slot string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.layout.ItemAt(slot)
	if !ok {
		return false, &ErrUnknownSlot{Slot: slot}
	}
	if l.stock[item] > l.policy.LowStockThreshold {
		return false, nil
	}

	l.stock[item] += l.policy.ReplenishAmount
	return true, nil
}

// Stock returns the remaining amount of an item
func (l *Ledger) Stock(item string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	amount, ok := l.stock[item]
	return amount, ok
}

// StockAt returns the remaining amount at a slot
func (l *Ledger) StockAt(slot string) (int, bool) {
	item, ok := l.layout.ItemAt(slot)
	if !ok {
		return 0, false
	}
	return l.Stock(item)
}

// SlotOf returns the slot holding an item
func (l *Ledger) SlotOf(item string) (string, bool) {
	return l.layout.SlotOf(item)
}

// Levels returns the stock of every slot in traversal order
func (l *Ledger) Levels() []StockLevel {
	l.mu.Lock()
	defer l.mu.Unlock()

	levels := make([]StockLevel, 0, l.layout.Len())
	for _, slot := range l.layout.Slots() {
		levels = append(levels, StockLevel{Slot: slot.ID, Item: slot.Item, Amount: l.stock[slot.Item]})
	}
	return levels
}

// Snapshot returns the slots whose stock differs from the default, in traversal order
func (l *Ledger) Snapshot() []StockLevel {
	var changed []StockLevel
	for _, level := range l.Levels() {
		if level.Amount != l.policy.DefaultStock {
			changed = append(changed, level)
		}
	}
	return changed
}

func (l *Ledger) routeReplenishment(ctx context.Context, slot string) {
	if l.router == nil {
		return
	}
	l.router.RouteToReplenish(ctx, slot)
}
