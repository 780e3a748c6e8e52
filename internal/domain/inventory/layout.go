package inventory

// Slot is a physical storage location holding exactly one item type
type Slot struct {
	ID   string
	Item string
}

// Layout is the slot/item bijection read from the traversal table.
// Slot order is the physical traversal order of a picker walking the floor.
type Layout struct {
	slots      []Slot
	itemBySlot map[string]string
	slotByItem map[string]string
	rank       map[string]int
}

// NewLayout validates the bijection and records traversal ranks
func NewLayout(slots []Slot) (*Layout, error) {
	l := &Layout{
		slots:      make([]Slot, 0, len(slots)),
		itemBySlot: make(map[string]string, len(slots)),
		slotByItem: make(map[string]string, len(slots)),
		rank:       make(map[string]int, len(slots)),
	}

	for i, slot := range slots {
		if slot.ID == "" || slot.Item == "" {
			return nil, &ErrInvalidLayout{Row: i + 1, Reason: "slot and item are required"}
		}
		if _, exists := l.itemBySlot[slot.ID]; exists {
			return nil, &ErrInvalidLayout{Row: i + 1, Reason: "duplicate slot " + slot.ID}
		}
		if _, exists := l.slotByItem[slot.Item]; exists {
			return nil, &ErrInvalidLayout{Row: i + 1, Reason: "item " + slot.Item + " stored in more than one slot"}
		}

		l.itemBySlot[slot.ID] = slot.Item
		l.slotByItem[slot.Item] = slot.ID
		l.rank[slot.Item] = len(l.slots)
		l.slots = append(l.slots, slot)
	}

	return l, nil
}

// ItemAt returns the item stored at a slot
func (l *Layout) ItemAt(slot string) (string, bool) {
	item, ok := l.itemBySlot[slot]
	return item, ok
}

// SlotOf returns the slot holding an item
func (l *Layout) SlotOf(item string) (string, bool) {
	slot, ok := l.slotByItem[item]
	return slot, ok
}

// Rank returns an item's position in the traversal order
func (l *Layout) Rank(item string) (int, bool) {
	rank, ok := l.rank[item]
	return rank, ok
}

// Slots returns every slot in traversal order
func (l *Layout) Slots() []Slot {
	return append([]Slot(nil), l.slots...)
}

func (l *Layout) Len() int {
	return len(l.slots)
}
