package shared

import "sync"

// Sequence hands out monotonically increasing integer ids starting at 1.
// Each entity kind owns its own Sequence so tests can start from a known state.
type Sequence struct {
	mu   sync.Mutex
	next int
}

// NewSequence creates a sequence whose first id is 1
func NewSequence() *Sequence {
	return &Sequence{next: 1}
}

// NewSequenceFrom creates a sequence whose first id is start
func NewSequenceFrom(start int) *Sequence {
	if start < 1 {
		start = 1
	}
	return &Sequence{next: start}
}

// Next returns the next id and advances the sequence
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	return id
}

// Peek returns the id the next call to Next will hand out
func (s *Sequence) Peek() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.next
}
