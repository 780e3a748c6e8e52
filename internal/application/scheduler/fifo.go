package scheduler

// fifo is an unbounded first-in first-out queue.
// It is not safe for concurrent use; RequestRouter and WorkerPool guard it.
type fifo[T any] struct {
	items []T
}

func (q *fifo[T]) push(item T) {
	q.items = append(q.items, item)
}

func (q *fifo[T]) pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

func (q *fifo[T]) peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

func (q *fifo[T]) len() int {
	return len(q.items)
}

func (q *fifo[T]) snapshot() []T {
	return append([]T(nil), q.items...)
}
