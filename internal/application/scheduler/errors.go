package scheduler

import "fmt"

// ErrOutOfOrderCompletion is reported when a request is completed before the
// request at the head of the load order. The completion still goes through.
type ErrOutOfOrderCompletion struct {
	RequestID int
	HeadID    int
}

func (e *ErrOutOfOrderCompletion) Error() string {
	if e.HeadID == 0 {
		return fmt.Sprintf("cannot load PickingRequest #%d; no request is waiting in the load order", e.RequestID)
	}
	return fmt.Sprintf("cannot load PickingRequest #%d; PickingRequest #%d must be loaded first", e.RequestID, e.HeadID)
}
