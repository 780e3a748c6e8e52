package simulation

import (
	"fmt"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/worker"
)

// ErrUnknownWorker is returned for events naming a worker that never reported ready
type ErrUnknownWorker struct {
	Role     worker.Role
	WorkerID string
}

func (e *ErrUnknownWorker) Error() string {
	return fmt.Sprintf("no %s named %s has reported ready", e.Role, e.WorkerID)
}

// ErrRoleConflict is returned when an id already belongs to a worker of another role
type ErrRoleConflict struct {
	WorkerID  string
	Existing  worker.Role
	Requested worker.Role
}

func (e *ErrRoleConflict) Error() string {
	return fmt.Sprintf("%s already exists, but is not working as a %s", e.WorkerID, e.Requested)
}

// ErrUnknownEvent is returned for an event type the simulation does not handle
type ErrUnknownEvent struct {
	Event Event
}

func (e *ErrUnknownEvent) Error() string {
	return fmt.Sprintf("unsupported event %T", e.Event)
}
