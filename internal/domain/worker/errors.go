package worker

import "fmt"

// ErrPickMismatch is returned when a picker scans an item other than the one expected next
type ErrPickMismatch struct {
	WorkerID string
	Expected string
	Given    string
}

func (e *ErrPickMismatch) Error() string {
	return fmt.Sprintf("picker %s scanned %s but should get fascia with sku #%s", e.WorkerID, e.Given, e.Expected)
}

// ErrAlreadyDonePicking is returned when a picker has already collected every item
type ErrAlreadyDonePicking struct {
	WorkerID string
	Count    int
}

func (e *ErrAlreadyDonePicking) Error() string {
	return fmt.Sprintf("picker %s already done picking %d fascias", e.WorkerID, e.Count)
}

// ErrNotDonePicking is returned when a picker heads to marshaling too early
type ErrNotDonePicking struct {
	WorkerID  string
	Picked    int
	Remaining int
}

func (e *ErrNotDonePicking) Error() string {
	return fmt.Sprintf("picker %s has picked %d fascias, %d left before marshaling", e.WorkerID, e.Picked, e.Remaining)
}

// ErrCheckBlocked is returned when a checker keeps scanning after a failed comparison
type ErrCheckBlocked struct {
	WorkerID string
	Role     Role
}

func (e *ErrCheckBlocked) Error() string {
	return fmt.Sprintf("%s %s already found a misplaced fascia: rescan or reject", e.Role, e.WorkerID)
}

// ErrCheckLimitReached is returned when a checker has already checked every item
type ErrCheckLimitReached struct {
	WorkerID string
	Role     Role
	Count    int
}

func (e *ErrCheckLimitReached) Error() string {
	return fmt.Sprintf("%s %s already checked all %d fascias", e.Role, e.WorkerID, e.Count)
}

// ErrAssignmentMismatch is returned when a unit of work does not fit the worker's role
type ErrAssignmentMismatch struct {
	WorkerID string
	Role     Role
}

func (e *ErrAssignmentMismatch) Error() string {
	return fmt.Sprintf("%s %s cannot take this kind of work", e.Role, e.WorkerID)
}
